package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"parish-calendar/internal/platform/logger"
)

type Service struct {
	repo     Repository
	expander *Expander
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, expander *Expander, log logger.Logger) *Service {
	if expander == nil {
		expander = NewExpander(nil, ExpanderOptions{})
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		repo:     repo,
		expander: expander,
		log:      log,
		now:      time.Now,
	}
}

// Location es la zona con la que se interpretan horas sin offset.
func (s *Service) Location() *time.Location {
	return s.expander.Location()
}

// Create valida el sub-modelo vigente y persiste el evento.
func (s *Service) Create(ctx context.Context, e Event) (Event, error) {
	if strings.TrimSpace(e.MinistryID) == "" || strings.TrimSpace(e.Title) == "" {
		return Event{}, ErrInvalidInput
	}
	if err := Validate(e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if e.IsRecurring {
		if err := s.expander.Check(e); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Title = strings.TrimSpace(e.Title)

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// Delete borra el evento; sus excepciones se van con él.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("event deleted", map[string]any{"event_id": id})
	return nil
}

// OccurrenceException devuelve la excepción guardada para (eventID, date).
// ErrNotFound si el evento no existe o la ocurrencia no tiene excepción.
func (s *Service) OccurrenceException(ctx context.Context, eventID string, date time.Time) (Exception, error) {
	e, err := s.GetByID(ctx, eventID)
	if err != nil {
		return Exception{}, err
	}
	if !e.IsRecurring {
		return Exception{}, ErrNotRecurring
	}
	return s.repo.GetException(ctx, e.ID, DateOf(date))
}

// Occurrences expande todos los eventos de la ventana.
// Los errores de storage se propagan; los de datos de un evento quedan en
// Batch.Diagnostics (y en el log) sin afectar al resto.
func (s *Service) Occurrences(ctx context.Context, w Window) (Batch, error) {
	if w.Empty() {
		return Batch{Occurrences: []Occurrence{}}, nil
	}

	adhoc, err := s.repo.ListAdHocStartingBetween(ctx, w.Start, w.End)
	if err != nil {
		return Batch{}, fmt.Errorf("list ad-hoc events: %w", err)
	}

	recurring, err := s.repo.ListRecurringActiveBetween(ctx, w.Start, w.End)
	if err != nil {
		return Batch{}, fmt.Errorf("list recurring events: %w", err)
	}

	var exceptions []Exception
	if len(recurring) > 0 {
		ids := make([]string, 0, len(recurring))
		for _, e := range recurring {
			ids = append(ids, e.ID)
		}
		exceptions, err = s.repo.ListExceptions(ctx, ids, w.Start, w.End)
		if err != nil {
			return Batch{}, fmt.Errorf("list exceptions: %w", err)
		}
	}

	batch := s.expander.Expand(w, adhoc, recurring, IndexExceptions(exceptions))
	for _, d := range batch.Diagnostics {
		s.log.Warn("event skipped during expansion", d.LogFields())
	}
	return batch, nil
}

// ReschedulePayload trae los instantes nuevos tal como llegan del cliente.
type ReschedulePayload struct {
	NewStart string
	NewEnd   string
}

// SetOccurrenceAction aplica cancel / reschedule / restore sobre la ocurrencia
// (eventID, date). La autorización (dueño del ministerio) la valida quien llama.
func (s *Service) SetOccurrenceAction(ctx context.Context, eventID string, date time.Time, action Action, payload ReschedulePayload) (Outcome, error) {
	e, err := s.GetByID(ctx, eventID)
	if err != nil {
		return "", err
	}
	if !e.IsRecurring {
		return "", ErrNotRecurring
	}

	date = DateOf(date)
	fields := map[string]any{
		"event_id": e.ID,
		"date":     FormatDate(date),
		"action":   string(action),
	}

	switch action {
	case ActionCancel:
		x := Exception{
			ID:                     uuid.NewString(),
			EventID:                e.ID,
			OriginalOccurrenceDate: date,
			Status:                 StatusCancelled,
			UpdatedAt:              s.now(),
		}
		if err := s.repo.UpsertException(ctx, x); err != nil {
			return "", err
		}
		s.log.Info("occurrence cancelled", fields)
		return OutcomeCancelled, nil

	case ActionReschedule:
		start, end, err := s.parseReschedule(payload)
		if err != nil {
			return "", err
		}
		x := Exception{
			ID:                     uuid.NewString(),
			EventID:                e.ID,
			OriginalOccurrenceDate: date,
			Status:                 StatusRescheduled,
			NewStartDateTime:       &start,
			NewEndDateTime:         &end,
			UpdatedAt:              s.now(),
		}
		if err := s.repo.UpsertException(ctx, x); err != nil {
			return "", err
		}
		s.log.Info("occurrence rescheduled", fields)
		return OutcomeRescheduled, nil

	case ActionRestore:
		deleted, err := s.repo.DeleteException(ctx, e.ID, date)
		if err != nil {
			return "", err
		}
		if !deleted {
			return OutcomeNothingToRestore, nil
		}
		s.log.Info("occurrence restored", fields)
		return OutcomeRestored, nil
	}

	return "", ErrUnknownAction
}

func (s *Service) parseReschedule(p ReschedulePayload) (time.Time, time.Time, error) {
	if strings.TrimSpace(p.NewStart) == "" || strings.TrimSpace(p.NewEnd) == "" {
		return time.Time{}, time.Time{}, ErrMissingReschedule
	}

	start, err := ParseInstant(p.NewStart, s.Location())
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDatetime
	}
	end, err := ParseInstant(p.NewEnd, s.Location())
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDatetime
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: new end is before new start", ErrInvalidDatetime)
	}
	return start, end, nil
}
