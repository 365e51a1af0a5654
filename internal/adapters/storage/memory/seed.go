package memory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"parish-calendar/internal/domain/events"
	"parish-calendar/internal/domain/ministries"
)

// Seed son datos de desarrollo para el storage en memoria. Se cargan a
// través de los services, así que pasan por las mismas validaciones que la API.
type Seed struct {
	Parishes   []SeedParish    `yaml:"parishes"`
	Ministries []SeedMinistry  `yaml:"ministries"`
	Events     []SeedEvent     `yaml:"events"`
	Exceptions []SeedException `yaml:"exceptions"`
}

type SeedParish struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Address      string `yaml:"address"`
	WebsiteURL   string `yaml:"website_url"`
	PhoneNumber  string `yaml:"phone_number"`
	MassSchedule string `yaml:"mass_schedule"`
}

type SeedMinistry struct {
	ID          string `yaml:"id"`
	ParishID    string `yaml:"parish_id"`
	OwnerUserID string `yaml:"owner_user_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ContactInfo string `yaml:"contact_info"`
}

// SeedEvent usa strings para fechas y horas; se parsean en Apply con la zona del servicio.
type SeedEvent struct {
	ID          string `yaml:"id"`
	MinistryID  string `yaml:"ministry_id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Location    string `yaml:"location"`

	Recurring bool `yaml:"recurring"`

	Start string `yaml:"start"`
	End   string `yaml:"end"`

	SeriesStart string `yaml:"series_start_date"`
	SeriesEnd   string `yaml:"series_end_date"`
	StartTime   string `yaml:"start_time"`
	EndTime     string `yaml:"end_time"`
	Rule        string `yaml:"rule"`
}

type SeedException struct {
	EventID  string `yaml:"event_id"`
	Date     string `yaml:"date"`
	Action   string `yaml:"action"`
	NewStart string `yaml:"new_start"`
	NewEnd   string `yaml:"new_end"`
}

func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}
	return ParseSeed(data)
}

// Apply crea parroquias, ministerios, eventos y excepciones en ese orden.
// Corta en el primer error indicando qué registro falló.
func (s Seed) Apply(ctx context.Context, dir *ministries.Service, evs *events.Service) error {
	for _, p := range s.Parishes {
		if _, err := dir.CreateParish(ctx, ministries.CreateParishInput{
			ID:           p.ID,
			Name:         p.Name,
			Address:      p.Address,
			WebsiteURL:   p.WebsiteURL,
			PhoneNumber:  p.PhoneNumber,
			MassSchedule: p.MassSchedule,
		}); err != nil {
			return fmt.Errorf("seed parish %q: %w", p.ID, err)
		}
	}

	for _, m := range s.Ministries {
		if _, err := dir.Create(ctx, ministries.CreateInput{
			ID:          m.ID,
			ParishID:    m.ParishID,
			OwnerUserID: m.OwnerUserID,
			Name:        m.Name,
			Description: m.Description,
			ContactInfo: m.ContactInfo,
		}); err != nil {
			return fmt.Errorf("seed ministry %q: %w", m.ID, err)
		}
	}

	for _, se := range s.Events {
		e, err := se.toEvent(evs)
		if err != nil {
			return fmt.Errorf("seed event %q: %w", se.ID, err)
		}
		if _, err := evs.Create(ctx, e); err != nil {
			return fmt.Errorf("seed event %q: %w", se.ID, err)
		}
	}

	for _, x := range s.Exceptions {
		date, err := events.ParseDate(strings.TrimSpace(x.Date))
		if err != nil {
			return fmt.Errorf("seed exception %s@%s: %w", x.EventID, x.Date, events.ErrInvalidDate)
		}
		if _, err := evs.SetOccurrenceAction(ctx, x.EventID, date, events.Action(x.Action), events.ReschedulePayload{
			NewStart: x.NewStart,
			NewEnd:   x.NewEnd,
		}); err != nil {
			return fmt.Errorf("seed exception %s@%s: %w", x.EventID, x.Date, err)
		}
	}
	return nil
}

func (se SeedEvent) toEvent(evs *events.Service) (events.Event, error) {
	e := events.Event{
		ID:             se.ID,
		MinistryID:     se.MinistryID,
		Title:          se.Title,
		Description:    se.Description,
		Location:       se.Location,
		IsRecurring:    se.Recurring,
		RecurrenceRule: se.Rule,
	}

	if !se.Recurring {
		var err error
		if e.StartDateTime, err = optInstant(se.Start, evs); err != nil {
			return events.Event{}, err
		}
		if e.EndDateTime, err = optInstant(se.End, evs); err != nil {
			return events.Event{}, err
		}
		return e, nil
	}

	var err error
	if e.SeriesStartDate, err = optDate(se.SeriesStart); err != nil {
		return events.Event{}, err
	}
	if e.SeriesEndDate, err = optDate(se.SeriesEnd); err != nil {
		return events.Event{}, err
	}
	if e.StartTimeOfDay, err = optTimeOfDay(se.StartTime); err != nil {
		return events.Event{}, err
	}
	if e.EndTimeOfDay, err = optTimeOfDay(se.EndTime); err != nil {
		return events.Event{}, err
	}
	return e, nil
}

func optInstant(s string, evs *events.Service) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := events.ParseInstant(s, evs.Location())
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := events.ParseDate(s)
	if err != nil {
		return nil, events.ErrInvalidDate
	}
	return &d, nil
}

func optTimeOfDay(s string) (*events.TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := events.ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
