// Package logsink es el notifier por defecto: sin webhook configurado,
// los avisos a administradores quedan en el log.
package logsink

import (
	"context"

	"parish-calendar/internal/platform/logger"
	"parish-calendar/internal/ports/notify"
)

type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.Discard()
	}
	return &Notifier{log: log}
}

func (n *Notifier) Notify(_ context.Context, recipient string, msg notify.Message) error {
	n.log.Warn(msg.Subject, map[string]any{
		"recipient": recipient,
		"body":      msg.Body,
		"lines":     msg.Lines,
	})
	return nil
}
