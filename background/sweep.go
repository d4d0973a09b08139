package background

import (
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"

	"github.com/quarantaenehelden/notification-api/match"
	"github.com/quarantaenehelden/notification-api/schema"
)

// SweepNotifications is the periodic matching job: it selects a bounded
// batch of help requests that are old enough and still unnotified, and runs
// the match/sample/dispatch pipeline over each of them. Requests are
// processed independently; one request failing never blocks the others.
//
// Selection filters on notification_counter == 0, so a request leaves the
// sweep's sight after its first successful dispatch. A request whose every
// later dispatch failed is not retried; re-runs after a crash are safe
// because selection re-derives its state from the store.
func (m *BackgroundManager) SweepNotifications() error {
	cutoff := time.Now().Add(-m.conf.SweepMinAge).Unix()

	requests, err := m.store.ListUnnotifiedRequests(cutoff, m.conf.SweepBatchSize)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}

	if len(requests) == 0 {
		log.WithField("prefix", logPrefix).Debug("no requests due for notification")
		return nil
	}

	// one kill-switch decision per tick, shared by every request
	enabled := m.mailer.Enabled()

	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(request *schema.HelpRequest) {
			defer wg.Done()
			m.notifyRequest(request, m.conf.SweepCandidateCap, enabled)
		}(&requests[i])
	}
	wg.Wait()

	return nil
}

// notifyRequest drives one request through the full pipeline. Failures end
// here: logged, reported to sentry, never propagated into sibling requests.
func (m *BackgroundManager) notifyRequest(request *schema.HelpRequest, cap int, enabled bool) {
	candidates, err := m.strategy.FindCandidates(request, cap)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"request": request.ID,
		}).Errorf("find candidates with error: %s", err)
		sentry.CaptureException(err)
		return
	}

	if len(candidates) == 0 {
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"request": request.ID,
		}).Info("no offers nearby")
		return
	}

	selected := match.Sample(candidates, cap)
	outcomes := m.dispatcher.DispatchAll(request, selected, enabled)

	sent := 0
	for _, o := range outcomes {
		if o.Sent() {
			sent++
		}
	}

	log.WithFields(log.Fields{
		"prefix":     logPrefix,
		"request":    request.ID,
		"candidates": len(candidates),
		"selected":   len(selected),
		"sent":       sent,
		"failed":     len(outcomes) - sent,
	}).Info("notification fan-out finished")
}
