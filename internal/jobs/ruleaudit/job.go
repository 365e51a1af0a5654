// Package ruleaudit revisa periódicamente los eventos recurrentes guardados
// y avisa a los administradores de los que no se pueden expandir.
package ruleaudit

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"parish-calendar/internal/domain/events"
	"parish-calendar/internal/platform/fanout"
	"parish-calendar/internal/platform/logger"
	"parish-calendar/internal/ports/notify"
)

type Source interface {
	ListRecurring(ctx context.Context) ([]events.Event, error)
}

type Checker interface {
	Check(e events.Event) error
}

type Job struct {
	source   Source
	checker  Checker
	admins   notify.AdminDirectory
	notifier notify.Notifier
	log      logger.Logger
}

func New(source Source, checker Checker, admins notify.AdminDirectory, notifier notify.Notifier, log logger.Logger) *Job {
	if log == nil {
		log = logger.Discard()
	}
	return &Job{source: source, checker: checker, admins: admins, notifier: notifier, log: log}
}

type Summary struct {
	Checked     int
	Diagnostics []events.Diagnostic
	Report      fanout.Report
}

// Run valida cada evento recurrente y, si hay problemas, notifica a cada admin
// por separado. Un fallo al notificar queda en Report; no se reintenta.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	list, err := j.source.ListRecurring(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list recurring events: %w", err)
	}

	sum := Summary{Checked: len(list)}
	for _, e := range list {
		if err := j.checker.Check(e); err != nil {
			d := events.DiagnosticFor(e.ID, err)
			sum.Diagnostics = append(sum.Diagnostics, d)
			j.log.Warn("recurring event fails audit", d.LogFields())
		}
	}

	if len(sum.Diagnostics) == 0 {
		j.log.Info("rule audit clean", map[string]any{"checked": sum.Checked})
		return sum, nil
	}

	recipients, err := j.admins.Admins(ctx)
	if err != nil {
		return sum, fmt.Errorf("list admins: %w", err)
	}

	msg := message(sum)
	sum.Report = fanout.Deliver(ctx, recipients, func(ctx context.Context, rcpt string) error {
		return j.notifier.Notify(ctx, rcpt, msg)
	})

	for _, f := range sum.Report.Failed() {
		j.log.Error("admin notification failed", map[string]any{
			"recipient": f.Recipient,
			"error":     f.Err.Error(),
		})
	}
	j.log.Info("rule audit done", map[string]any{
		"checked":   sum.Checked,
		"broken":    len(sum.Diagnostics),
		"notified":  sum.Report.Delivered(),
		"attempted": len(recipients),
	})
	return sum, nil
}

func message(sum Summary) notify.Message {
	lines := make([]string, 0, len(sum.Diagnostics))
	for _, d := range sum.Diagnostics {
		line := fmt.Sprintf("event %s: %s: %s", d.EventID, d.Field, d.Message)
		if d.Rule != "" {
			line += fmt.Sprintf(" (rule %q)", d.Rule)
		}
		lines = append(lines, line)
	}
	return notify.Message{
		Subject: "Recurring events excluded from the calendar",
		Body:    fmt.Sprintf("%d of %d recurring events cannot be expanded and are missing from the calendar.", len(sum.Diagnostics), sum.Checked),
		Lines:   lines,
	}
}

// Schedule registra el job en un cron nuevo (sin arrancarlo).
func Schedule(spec string, loc *time.Location, job *Job, log logger.Logger) (*cron.Cron, error) {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Discard()
	}

	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			log.Error("rule audit failed", map[string]any{"error": err.Error()})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid rule audit schedule %q: %w", spec, err)
	}
	return c, nil
}
