package background

import (
	"github.com/getsentry/sentry-go"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"

	"github.com/quarantaenehelden/notification-api/external/sendgrid"
	"github.com/quarantaenehelden/notification-api/store"
	"github.com/quarantaenehelden/notification-api/utils"
)

const fallbackReplySubject = "QuarantäneHelden - Jemand hat dir geschrieben!"

// NotifyOfferReply is the creation-triggered reply path: when someone offers
// help, the requester gets a mail with the offerer's answer, sent in the
// offerer's name so the two can talk directly.
//
// This path predates the sweep's bookkeeping and deliberately does not touch
// the notification ledger: it is an immediate 1:1 reply, not part of the
// broadcast, so it can repeat for every new offer.
func (m *BackgroundManager) NotifyOfferReply(offerID string) error {
	offer, err := m.store.GetHelpOffer(offerID)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"offer":  offerID,
		}).Errorf("load offer with error: %s", err)
		sentry.CaptureException(err)
		return err
	}

	request, err := m.store.GetHelpRequest(offer.RequestID)
	if err == store.ErrRequestNotExist {
		// the parent disappeared (moderated or withdrawn); nothing to reply to
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"offer":   offerID,
			"request": offer.RequestID,
		}).Warn("offer without parent request, skipping reply")
		return nil
	} else if err != nil {
		sentry.CaptureException(err)
		return err
	}

	receiver, err := m.store.GetAccountEmail(request.UID)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"request": request.ID,
		}).Warnf("resolve requester account with error: %s", err)
		return err
	}

	subject := fallbackReplySubject
	if localized, err := utils.NewLocalizer("").Localize(&i18n.LocalizeConfig{
		MessageID: "notification.reply.subject",
	}); err == nil {
		subject = localized
	}

	if !m.mailer.Enabled() {
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"request": request.ID,
			"to":      receiver,
		}).Info("mail delivery disabled, would send reply")
		return nil
	}

	return m.mailer.Send(sendgrid.Mail{
		To:         receiver,
		From:       m.conf.MailFrom,
		FromName:   m.conf.MailFromName,
		ReplyTo:    offer.Email,
		TemplateID: NOTIFY_REPLY_TEMPLATE,
		DynamicTemplateData: map[string]interface{}{
			"subject": subject,
			"answer":  offer.Answer,
			"email":   offer.Email,
			"request": request.Request,
		},
	})
}
