package slack

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	logPrefix      = "slack"
	defaultTimeout = 10 * time.Second
)

// Webhook posts plain text to a Slack incoming webhook. Delivery is
// fire-and-forget: failures are logged, never returned to the caller's flow.
type Webhook interface {
	Post(text string)
}

type webhook struct {
	url        string
	httpClient *http.Client
}

func (w *webhook) Post(text string) {
	if w.url == "" {
		log.WithField("prefix", logPrefix).Debug("no webhook url configured, dropping message")
		return
	}

	go func() {
		payload, err := json.Marshal(map[string]string{"text": text})
		if err != nil {
			log.WithField("prefix", logPrefix).Errorf("marshal webhook payload with error: %s", err)
			return
		}

		resp, err := w.httpClient.Post(w.url, "application/json", bytes.NewReader(payload))
		if err != nil {
			log.WithField("prefix", logPrefix).Errorf("post to webhook with error: %s", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.WithFields(log.Fields{
				"prefix": logPrefix,
				"status": resp.StatusCode,
			}).Error("webhook post rejected")
		}
	}()
}

// New - new Webhook poster
func New(url string) Webhook {
	return &webhook{
		url: url,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}
