package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"parish-calendar/internal/domain/events"
	"parish-calendar/internal/domain/ministries"
)

type eventRepo struct {
	mu sync.RWMutex

	// loc define en qué zona se toma la fecha de inicio de un evento ad-hoc.
	loc *time.Location

	byID map[string]events.Event

	// eventID -> YYYY-MM-DD -> excepción
	exceptions map[string]map[string]events.Exception

	// Para resolver nombres de ministerio y parroquia (join). Puede ser nil.
	directory ministries.Repository
}

func NewEventRepo(directory ministries.Repository, loc *time.Location) events.Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &eventRepo{
		loc:        loc,
		byID:       make(map[string]events.Event),
		exceptions: make(map[string]map[string]events.Exception),
		directory:  directory,
	}
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	r.mu.RLock()
	e, ok := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return r.withNames(ctx, e), nil
}

// Delete borra el evento y sus excepciones (cascade).
func (r *eventRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return events.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.exceptions, id)
	return nil
}

func (r *eventRepo) ListAdHocStartingBetween(ctx context.Context, from, to time.Time) ([]events.Event, error) {
	w := events.NewWindow(from, to)

	return r.list(ctx, func(e events.Event) bool {
		if e.IsRecurring || e.StartDateTime == nil {
			return false
		}
		return w.Contains(e.StartDateTime.In(r.loc))
	}), nil
}

func (r *eventRepo) ListRecurringActiveBetween(ctx context.Context, from, to time.Time) ([]events.Event, error) {
	from, to = events.DateOf(from), events.DateOf(to)

	return r.list(ctx, func(e events.Event) bool {
		if !e.IsRecurring {
			return false
		}
		// Sin fecha de inicio no se puede descartar: que lo diagnostique el expansor.
		if e.SeriesStartDate != nil && e.SeriesStartDate.After(to) {
			return false
		}
		if e.SeriesEndDate != nil && e.SeriesEndDate.Before(from) {
			return false
		}
		return true
	}), nil
}

func (r *eventRepo) ListRecurring(ctx context.Context) ([]events.Event, error) {
	return r.list(ctx, func(e events.Event) bool { return e.IsRecurring }), nil
}

func (r *eventRepo) list(ctx context.Context, keep func(events.Event) bool) []events.Event {
	r.mu.RLock()
	out := make([]events.Event, 0)
	for _, e := range r.byID {
		if keep(e) {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	for i := range out {
		out[i] = r.withNames(ctx, out[i])
	}
	return out
}

// withNames completa Ministry y Parish desde el directorio, si hay uno.
func (r *eventRepo) withNames(ctx context.Context, e events.Event) events.Event {
	if r.directory == nil || e.MinistryID == "" {
		return e
	}
	m, err := r.directory.GetByID(ctx, e.MinistryID)
	if err != nil {
		return e
	}
	e.Ministry = m.Name
	if p, err := r.directory.GetParish(ctx, m.ParishID); err == nil {
		e.Parish = p.Name
	}
	return e
}

func (r *eventRepo) ListExceptions(ctx context.Context, eventIDs []string, from, to time.Time) ([]events.Exception, error) {
	w := events.NewWindow(from, to)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.Exception, 0)
	for _, id := range eventIDs {
		for _, x := range r.exceptions[id] {
			if w.Contains(x.OriginalOccurrenceDate) {
				out = append(out, x)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].EventID != out[j].EventID {
			return out[i].EventID < out[j].EventID
		}
		return out[i].OriginalOccurrenceDate.Before(out[j].OriginalOccurrenceDate)
	})
	return out, nil
}

func (r *eventRepo) UpsertException(ctx context.Context, x events.Exception) error {
	if err := x.Validate(); err != nil {
		return err
	}
	x.OriginalOccurrenceDate = events.DateOf(x.OriginalOccurrenceDate)
	key := events.FormatDate(x.OriginalOccurrenceDate)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[x.EventID]; !ok {
		return events.ErrNotFound
	}

	byDate, ok := r.exceptions[x.EventID]
	if !ok {
		byDate = make(map[string]events.Exception)
		r.exceptions[x.EventID] = byDate
	}

	// La fila existente conserva su id; el resto se reemplaza completo.
	if prev, exists := byDate[key]; exists {
		x.ID = prev.ID
	}
	if x.Status == events.StatusCancelled {
		x.NewStartDateTime = nil
		x.NewEndDateTime = nil
	}
	byDate[key] = x
	return nil
}

func (r *eventRepo) DeleteException(ctx context.Context, eventID string, date time.Time) (bool, error) {
	key := events.FormatDate(events.DateOf(date))

	r.mu.Lock()
	defer r.mu.Unlock()

	byDate, ok := r.exceptions[eventID]
	if !ok {
		return false, nil
	}
	if _, ok := byDate[key]; !ok {
		return false, nil
	}
	delete(byDate, key)
	if len(byDate) == 0 {
		delete(r.exceptions, eventID)
	}
	return true, nil
}

func (r *eventRepo) GetException(ctx context.Context, eventID string, date time.Time) (events.Exception, error) {
	key := events.FormatDate(events.DateOf(date))

	r.mu.RLock()
	defer r.mu.RUnlock()

	x, ok := r.exceptions[eventID][key]
	if !ok {
		return events.Exception{}, events.ErrNotFound
	}
	return x, nil
}
