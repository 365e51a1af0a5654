package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"parish-calendar/internal/domain/ministries"
)

type ministryRepo struct {
	mu       sync.RWMutex
	parishes map[string]ministries.Parish
	byID     map[string]ministries.Ministry
}

func NewMinistryRepo() ministries.Repository {
	return &ministryRepo{
		parishes: make(map[string]ministries.Parish),
		byID:     make(map[string]ministries.Ministry),
	}
}

func (r *ministryRepo) CreateParish(ctx context.Context, p ministries.Parish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("parish id required")
	}
	if _, exists := r.parishes[p.ID]; exists {
		return errors.New("parish already exists")
	}
	r.parishes[p.ID] = p
	return nil
}

func (r *ministryRepo) GetParish(ctx context.Context, id string) (ministries.Parish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parishes[id]
	if !ok {
		return ministries.Parish{}, ministries.ErrNotFound
	}
	return p, nil
}

func (r *ministryRepo) Create(ctx context.Context, m ministries.Ministry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("ministry id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("ministry already exists")
	}
	if _, ok := r.parishes[m.ParishID]; !ok {
		return ministries.ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *ministryRepo) GetByID(ctx context.Context, id string) (ministries.Ministry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return ministries.Ministry{}, ministries.ErrNotFound
	}
	return m, nil
}
