package ministries

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParishInput struct {
	ID           string // opcional; si viene vacío se genera
	Name         string
	Address      string
	WebsiteURL   string
	PhoneNumber  string
	MassSchedule string
}

func (s *Service) CreateParish(ctx context.Context, in CreateParishInput) (Parish, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Parish{}, ErrInvalidInput
	}

	p := Parish{
		ID:           strings.TrimSpace(in.ID),
		Name:         strings.TrimSpace(in.Name),
		Address:      strings.TrimSpace(in.Address),
		WebsiteURL:   strings.TrimSpace(in.WebsiteURL),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		MassSchedule: strings.TrimSpace(in.MassSchedule),
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := s.repo.CreateParish(ctx, p); err != nil {
		return Parish{}, err
	}
	return p, nil
}

type CreateInput struct {
	ID          string // opcional; si viene vacío se genera
	ParishID    string
	OwnerUserID string
	Name        string
	Description string
	ContactInfo string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Ministry, error) {
	if strings.TrimSpace(in.ParishID) == "" || strings.TrimSpace(in.OwnerUserID) == "" {
		return Ministry{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Ministry{}, ErrInvalidInput
	}

	// La parroquia tiene que existir antes que sus ministerios.
	if _, err := s.repo.GetParish(ctx, in.ParishID); err != nil {
		return Ministry{}, err
	}

	m := Ministry{
		ID:          strings.TrimSpace(in.ID),
		ParishID:    strings.TrimSpace(in.ParishID),
		OwnerUserID: strings.TrimSpace(in.OwnerUserID),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		ContactInfo: strings.TrimSpace(in.ContactInfo),
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Ministry{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Ministry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Ministry{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}
