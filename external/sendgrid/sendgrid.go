package sendgrid

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	log "github.com/sirupsen/logrus"
)

const (
	logPrefix      = "sendgrid"
	defaultTimeout = 15 * time.Second
)

// Mail is a dynamic-template delivery request.
type Mail struct {
	To                  string
	From                string
	FromName            string
	ReplyTo             string
	TemplateID          string
	DynamicTemplateData map[string]interface{}
}

// ProviderError is one entry of SendGrid's structured error list.
type ProviderError struct {
	Message string `json:"message"`
	Field   string `json:"field"`
	Help    string `json:"help"`
}

// SendError carries the provider's error detail for a rejected send.
type SendError struct {
	StatusCode int
	Errors     []ProviderError
	Body       string
}

func (e *SendError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("sendgrid rejected mail (%d): %s", e.StatusCode, e.Errors[0].Message)
	}
	return fmt.Sprintf("sendgrid rejected mail (%d)", e.StatusCode)
}

// Mailer - deliver templated notification mails
type Mailer interface {
	Enabled() bool
	Send(m Mail) error
}

type client struct {
	apiKey string
}

// Enabled reports whether delivery credentials are configured. Callers check
// this once per batch and fall back to dry-run logging when false.
func (c *client) Enabled() bool {
	return c.apiKey != ""
}

func (c *client) Send(m Mail) error {
	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail(m.FromName, m.From))
	v3.SetTemplateID(m.TemplateID)
	if m.ReplyTo != "" {
		v3.SetReplyTo(mail.NewEmail("", m.ReplyTo))
	}

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", m.To))
	for key, value := range m.DynamicTemplateData {
		p.SetDynamicTemplateData(key, value)
	}
	v3.AddPersonalizations(p)

	resp, err := sg.NewSendClient(c.apiKey).Send(v3)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseSendError(resp.StatusCode, resp.Body)
	}

	log.WithFields(log.Fields{
		"prefix":   logPrefix,
		"to":       m.To,
		"template": m.TemplateID,
	}).Debug("mail accepted")

	return nil
}

func parseSendError(statusCode int, body string) *SendError {
	sendErr := &SendError{
		StatusCode: statusCode,
		Body:       body,
	}

	var detail struct {
		Errors []ProviderError `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &detail); err == nil {
		sendErr.Errors = detail.Errors
	}

	return sendErr
}

// New - new Mailer backed by the SendGrid v3 mail send API. An empty apiKey
// yields a disabled mailer.
func New(apiKey string) Mailer {
	sg.DefaultClient = &rest.Client{HTTPClient: &http.Client{
		Timeout: defaultTimeout,
	}}

	return &client{
		apiKey: apiKey,
	}
}
