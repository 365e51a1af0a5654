package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema crea las tablas si no existen. Las excepciones se borran en cascada con su evento.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS parishes (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		address       TEXT NOT NULL DEFAULT '',
		website_url   TEXT NOT NULL DEFAULT '',
		phone_number  TEXT NOT NULL DEFAULT '',
		mass_schedule TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS ministries (
		id            TEXT PRIMARY KEY,
		parish_id     TEXT NOT NULL REFERENCES parishes(id) ON DELETE CASCADE,
		owner_user_id TEXT NOT NULL,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		contact_info  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id                TEXT PRIMARY KEY,
		ministry_id       TEXT NOT NULL REFERENCES ministries(id) ON DELETE CASCADE,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		location          TEXT NOT NULL DEFAULT '',
		is_recurring      BOOLEAN NOT NULL DEFAULT FALSE,
		start_datetime    TIMESTAMPTZ NULL,
		end_datetime      TIMESTAMPTZ NULL,
		series_start_date DATE NULL,
		series_end_date   DATE NULL,
		start_time_of_day TIME NULL,
		end_time_of_day   TIME NULL,
		recurrence_rule   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS events_adhoc_start_idx ON events (start_datetime) WHERE NOT is_recurring`,
	`CREATE INDEX IF NOT EXISTS events_series_idx ON events (series_start_date, series_end_date) WHERE is_recurring`,
	`CREATE TABLE IF NOT EXISTS event_exceptions (
		id                       TEXT PRIMARY KEY,
		event_id                 TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		original_occurrence_date DATE NOT NULL,
		status                   TEXT NOT NULL CHECK (status IN ('cancelled', 'rescheduled')),
		new_start_datetime       TIMESTAMPTZ NULL,
		new_end_datetime         TIMESTAMPTZ NULL,
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (event_id, original_occurrence_date)
	)`,
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
