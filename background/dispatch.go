package background

import (
	"fmt"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"

	"github.com/quarantaenehelden/notification-api/external/sendgrid"
	"github.com/quarantaenehelden/notification-api/match"
	"github.com/quarantaenehelden/notification-api/schema"
	"github.com/quarantaenehelden/notification-api/store"
	"github.com/quarantaenehelden/notification-api/utils"
)

// SendGrid dynamic templates
const (
	BROADCAST_NEW_HELP_TEMPLATE = "d-ccf43a3e17b14c16bf64fa2d0dd5a985"
	NOTIFY_REPLY_TEMPLATE       = "d-ed9746e4ff064676b7df121c81037fab"
)

const fallbackBroadcastSubject = "QuarantäneHelden - Jemand in deiner Nähe braucht Hilfe!"

// Outcome is the terminal state of one candidate's dispatch.
type Outcome struct {
	Candidate match.Candidate
	Err       error
}

// Sent reports whether the notification went out and was recorded.
func (o Outcome) Sent() bool {
	return o.Err == nil
}

// Dispatcher sends one notification per selected candidate. Dispatches are
// isolated: a candidate failing its identity lookup or its delivery only
// marks that candidate's outcome, siblings keep going.
type Dispatcher struct {
	mailer   sendgrid.Mailer
	identity store.Identity
	ledger   store.NotificationLedger
	conf     Config
}

func NewDispatcher(mailer sendgrid.Mailer, identity store.Identity, ledger store.NotificationLedger, conf Config) *Dispatcher {
	return &Dispatcher{
		mailer:   mailer,
		identity: identity,
		ledger:   ledger,
		conf:     conf,
	}
}

// DispatchAll fans out one dispatch per candidate and joins all outcomes.
// The caller evaluates the delivery kill-switch once per sweep tick and hands
// it down; when delivery is off every dispatch degrades to an intent log and
// no ledger write happens. Candidates already in the request's receiver set
// are skipped.
func (d *Dispatcher) DispatchAll(request *schema.HelpRequest, candidates []match.Candidate, enabled bool) []Outcome {
	if !enabled {
		for _, c := range candidates {
			log.WithFields(log.Fields{
				"prefix":  logPrefix,
				"request": request.ID,
				"offer":   c.UID,
			}).Info("mail delivery disabled, would notify offer")
		}
		return nil
	}

	pending := make([]match.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if request.Notified(c.UID) {
			log.WithFields(log.Fields{
				"prefix":  logPrefix,
				"request": request.ID,
				"offer":   c.UID,
			}).Debug("offer already notified, skipping")
			continue
		}
		pending = append(pending, c)
	}

	outcomes := make([]Outcome, len(pending))

	var wg sync.WaitGroup
	for i, c := range pending {
		wg.Add(1)
		go func(i int, c match.Candidate) {
			defer wg.Done()
			outcomes[i] = Outcome{
				Candidate: c,
				Err:       d.dispatch(request, c),
			}
		}(i, c)
	}
	wg.Wait()

	return outcomes
}

// dispatch runs one candidate's pipeline strictly in order: identity lookup,
// mail delivery, ledger write.
func (d *Dispatcher) dispatch(request *schema.HelpRequest, candidate match.Candidate) error {
	email, err := d.identity.GetAccountEmail(candidate.UID)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"request": request.ID,
			"offer":   candidate.UID,
		}).Warnf("resolve offer account with error: %s", err)
		return err
	}

	subject := fallbackBroadcastSubject
	if localized, err := utils.NewLocalizer("").Localize(&i18n.LocalizeConfig{
		MessageID: "notification.broadcast.subject",
	}); err == nil {
		subject = localized
	}

	mail := sendgrid.Mail{
		To:         email,
		From:       d.conf.MailFrom,
		FromName:   d.conf.MailFromName,
		TemplateID: BROADCAST_NEW_HELP_TEMPLATE,
		DynamicTemplateData: map[string]interface{}{
			"subject":  subject,
			"request":  request.Request,
			"location": request.Location,
			"link":     fmt.Sprintf("%s/#/offer-help/%s", d.conf.SiteURL, request.ID),
		},
	}

	if err := d.mailer.Send(mail); err != nil {
		if sendErr, ok := err.(*sendgrid.SendError); ok && len(sendErr.Errors) > 0 {
			log.WithFields(log.Fields{
				"prefix":  logPrefix,
				"request": request.ID,
				"offer":   candidate.UID,
				"detail":  sendErr.Errors,
			}).Error("mail delivery rejected")
		} else {
			log.WithFields(log.Fields{
				"prefix":  logPrefix,
				"request": request.ID,
				"offer":   candidate.UID,
			}).Errorf("mail delivery with error: %s", err)
		}
		return err
	}

	return d.ledger.RecordNotification(request.ID, candidate.UID)
}
