package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"parish-calendar/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB

	// tz es el nombre IANA con el que se toma la fecha de inicio de los ad-hoc.
	tz string
}

func NewEventsRepo(db *sql.DB, loc *time.Location) *EventsRepo {
	tz := "UTC"
	if loc != nil {
		tz = loc.String()
	}
	return &EventsRepo{db: db, tz: tz}
}

// Ministerio y parroquia van en el mismo SELECT para no hacer una consulta por evento.
const selectEvents = `
	SELECT
		e.id, e.ministry_id, m.name, p.name,
		e.title, e.description, e.location,
		e.is_recurring,
		e.start_datetime, e.end_datetime,
		e.series_start_date, e.series_end_date,
		to_char(e.start_time_of_day, 'HH24:MI:SS'),
		to_char(e.end_time_of_day, 'HH24:MI:SS'),
		e.recurrence_rule
	FROM events e
	JOIN ministries m ON m.id = e.ministry_id
	JOIN parishes p ON p.id = m.parish_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (events.Event, error) {
	var (
		e                      events.Event
		start, end             sql.NullTime
		seriesStart, seriesEnd sql.NullTime
		startTime, endTime     sql.NullString
	)

	if err := row.Scan(
		&e.ID,
		&e.MinistryID,
		&e.Ministry,
		&e.Parish,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.IsRecurring,
		&start,
		&end,
		&seriesStart,
		&seriesEnd,
		&startTime,
		&endTime,
		&e.RecurrenceRule,
	); err != nil {
		return events.Event{}, err
	}

	e.StartDateTime = ptrTime(start)
	e.EndDateTime = ptrTime(end)
	e.SeriesStartDate = ptrDate(seriesStart)
	e.SeriesEndDate = ptrDate(seriesEnd)
	e.StartTimeOfDay = ptrTimeOfDay(startTime)
	e.EndTimeOfDay = ptrTimeOfDay(endTime)

	return e, nil
}

func ptrDate(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	d := events.DateOf(n.Time)
	return &d
}

// Un valor ilegible queda como faltante; el expansor lo reporta como diagnóstico.
func ptrTimeOfDay(n sql.NullString) *events.TimeOfDay {
	if !n.Valid {
		return nil
	}
	t, err := events.ParseTimeOfDay(n.String)
	if err != nil {
		return nil
	}
	return &t
}

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	var startTime, endTime sql.NullString
	if e.StartTimeOfDay != nil {
		startTime = sql.NullString{String: e.StartTimeOfDay.String(), Valid: true}
	}
	if e.EndTimeOfDay != nil {
		endTime = sql.NullString{String: e.EndTimeOfDay.String(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (
			id, ministry_id,
			title, description, location,
			is_recurring,
			start_datetime, end_datetime,
			series_start_date, series_end_date,
			start_time_of_day, end_time_of_day,
			recurrence_rule
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::date,$10::date,$11::time,$12::time,$13)
	`,
		e.ID,
		e.MinistryID,
		e.Title,
		e.Description,
		e.Location,
		e.IsRecurring,
		nullTime(e.StartDateTime),
		nullTime(e.EndDateTime),
		nullDate(e.SeriesStartDate),
		nullDate(e.SeriesEndDate),
		startTime,
		endTime,
		e.RecurrenceRule,
	)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	e, err := scanEvent(r.db.QueryRowContext(ctx, selectEvents+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}
	return e, nil
}

// Delete borra el evento; las excepciones caen por ON DELETE CASCADE.
func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) ListAdHocStartingBetween(ctx context.Context, from, to time.Time) ([]events.Event, error) {
	return r.query(ctx, selectEvents+`
		WHERE NOT e.is_recurring
		  AND e.start_datetime IS NOT NULL
		  AND (e.start_datetime AT TIME ZONE $3)::date BETWEEN $1::date AND $2::date
		ORDER BY e.start_datetime, e.id
	`, events.FormatDate(from), events.FormatDate(to), r.tz)
}

func (r *EventsRepo) ListRecurringActiveBetween(ctx context.Context, from, to time.Time) ([]events.Event, error) {
	// series_start_date NULL pasa el filtro a propósito: el expansor lo diagnostica.
	return r.query(ctx, selectEvents+`
		WHERE e.is_recurring
		  AND (e.series_start_date IS NULL OR e.series_start_date <= $2::date)
		  AND (e.series_end_date IS NULL OR e.series_end_date >= $1::date)
		ORDER BY e.id
	`, events.FormatDate(from), events.FormatDate(to))
}

func (r *EventsRepo) ListRecurring(ctx context.Context) ([]events.Event, error) {
	return r.query(ctx, selectEvents+` WHERE e.is_recurring ORDER BY e.id`)
}

func (r *EventsRepo) query(ctx context.Context, q string, args ...any) ([]events.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventsRepo) ListExceptions(ctx context.Context, eventIDs []string, from, to time.Time) ([]events.Exception, error) {
	if len(eventIDs) == 0 {
		return []events.Exception{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, event_id, original_occurrence_date,
			status, new_start_datetime, new_end_datetime,
			updated_at
		FROM event_exceptions
		WHERE event_id = ANY($1)
		  AND original_occurrence_date BETWEEN $2::date AND $3::date
		ORDER BY event_id, original_occurrence_date
	`, eventIDs, events.FormatDate(from), events.FormatDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.Exception, 0)
	for rows.Next() {
		x, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

func scanException(row rowScanner) (events.Exception, error) {
	var (
		x          events.Exception
		status     string
		start, end sql.NullTime
	)
	if err := row.Scan(
		&x.ID,
		&x.EventID,
		&x.OriginalOccurrenceDate,
		&status,
		&start,
		&end,
		&x.UpdatedAt,
	); err != nil {
		return events.Exception{}, err
	}

	x.OriginalOccurrenceDate = events.DateOf(x.OriginalOccurrenceDate)
	x.Status = events.ExceptionStatus(status)
	x.NewStartDateTime = ptrTime(start)
	x.NewEndDateTime = ptrTime(end)
	return x, nil
}

// UpsertException es un único INSERT ... ON CONFLICT: atómico por (event_id, fecha).
// Con status cancelled las fechas nuevas quedan en NULL.
func (r *EventsRepo) UpsertException(ctx context.Context, x events.Exception) error {
	if err := x.Validate(); err != nil {
		return err
	}
	if x.Status == events.StatusCancelled {
		x.NewStartDateTime = nil
		x.NewEndDateTime = nil
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO event_exceptions (
			id, event_id, original_occurrence_date,
			status, new_start_datetime, new_end_datetime,
			updated_at
		) VALUES ($1,$2,$3::date,$4,$5,$6,$7)
		ON CONFLICT (event_id, original_occurrence_date) DO UPDATE SET
			status             = EXCLUDED.status,
			new_start_datetime = EXCLUDED.new_start_datetime,
			new_end_datetime   = EXCLUDED.new_end_datetime,
			updated_at         = EXCLUDED.updated_at
	`,
		x.ID,
		x.EventID,
		events.FormatDate(x.OriginalOccurrenceDate),
		string(x.Status),
		nullTime(x.NewStartDateTime),
		nullTime(x.NewEndDateTime),
		x.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) DeleteException(ctx context.Context, eventID string, date time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM event_exceptions
		WHERE event_id = $1 AND original_occurrence_date = $2::date
	`, eventID, events.FormatDate(date))
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *EventsRepo) GetException(ctx context.Context, eventID string, date time.Time) (events.Exception, error) {
	x, err := scanException(r.db.QueryRowContext(ctx, `
		SELECT
			id, event_id, original_occurrence_date,
			status, new_start_datetime, new_end_datetime,
			updated_at
		FROM event_exceptions
		WHERE event_id = $1 AND original_occurrence_date = $2::date
	`, eventID, events.FormatDate(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Exception{}, events.ErrNotFound
		}
		return events.Exception{}, err
	}
	return x, nil
}
