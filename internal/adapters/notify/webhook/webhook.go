package webhook

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"parish-calendar/internal/platform/httpclient"
	"parish-calendar/internal/ports/notify"
)

// payload es lo que recibe el webhook, un POST por destinatario.
type payload struct {
	Recipient string   `json:"recipient"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Lines     []string `json:"lines,omitempty"`
}

type Notifier struct {
	client *httpclient.Client
	url    string
}

var _ notify.Notifier = (*Notifier)(nil)

func New(url string, timeout time.Duration) (*Notifier, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("webhook url required")
	}
	return &Notifier{client: httpclient.New(timeout), url: url}, nil
}

func (n *Notifier) Notify(ctx context.Context, recipient string, msg notify.Message) error {
	return n.client.DoJSON(ctx, http.MethodPost, n.url, nil, payload{
		Recipient: recipient,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Lines:     msg.Lines,
	}, nil)
}
