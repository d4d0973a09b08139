package background

import (
	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// BroadcastNewRequest is the legacy single-shot broadcast fired right when a
// request is created, with its own smaller candidate cap. The periodic sweep
// replaced it; it stays behind the broadcast.oncreate switch for platforms
// that still want instant matching.
func (m *BackgroundManager) BroadcastNewRequest(requestID string) error {
	request, err := m.store.GetHelpRequest(requestID)
	if err != nil {
		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"request": requestID,
		}).Errorf("load request with error: %s", err)
		sentry.CaptureException(err)
		return err
	}

	m.notifyRequest(request, m.conf.BroadcastCandidateCap, m.mailer.Enabled())
	return nil
}
