package events

import (
	"errors"
	"strings"
)

// Validate aplica las reglas de la capa de escritura: el sub-modelo vigente
// tiene que estar completo. Devuelve un *EventError con el primer campo faltante.
func Validate(e Event) error {
	missing := func(field string) error {
		return &EventError{EventID: e.ID, Field: field, Err: errMissingField}
	}

	if !e.IsRecurring {
		switch {
		case e.StartDateTime == nil:
			return missing("start_datetime")
		case e.EndDateTime == nil:
			return missing("end_datetime")
		}
		return nil
	}

	switch {
	case e.SeriesStartDate == nil:
		return missing("series_start_date")
	case e.StartTimeOfDay == nil:
		return missing("start_time_of_day")
	case e.EndTimeOfDay == nil:
		return missing("end_time_of_day")
	case strings.TrimSpace(e.RecurrenceRule) == "":
		return missing("recurrence_rule")
	}
	return nil
}

// Validate exige ambas fechas nuevas cuando la excepción es una reprogramación.
func (x Exception) Validate() error {
	if !x.Status.Valid() {
		return errors.New("invalid exception status")
	}
	if x.Status == StatusRescheduled && (x.NewStartDateTime == nil || x.NewEndDateTime == nil) {
		return ErrMissingReschedule
	}
	return nil
}
