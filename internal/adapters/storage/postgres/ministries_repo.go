package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"parish-calendar/internal/domain/ministries"
)

type MinistriesRepo struct {
	db *sql.DB
}

func NewMinistriesRepo(db *sql.DB) *MinistriesRepo {
	return &MinistriesRepo{db: db}
}

func (r *MinistriesRepo) CreateParish(ctx context.Context, p ministries.Parish) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parishes (id, name, address, website_url, phone_number, mass_schedule)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, p.ID, p.Name, p.Address, p.WebsiteURL, p.PhoneNumber, p.MassSchedule)
	return err
}

func (r *MinistriesRepo) GetParish(ctx context.Context, id string) (ministries.Parish, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ministries.Parish{}, ministries.ErrNotFound
	}

	var p ministries.Parish
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, website_url, phone_number, mass_schedule
		FROM parishes
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Address, &p.WebsiteURL, &p.PhoneNumber, &p.MassSchedule)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ministries.Parish{}, ministries.ErrNotFound
		}
		return ministries.Parish{}, err
	}
	return p, nil
}

func (r *MinistriesRepo) Create(ctx context.Context, m ministries.Ministry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ministries (id, parish_id, owner_user_id, name, description, contact_info)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, m.ID, m.ParishID, m.OwnerUserID, m.Name, m.Description, m.ContactInfo)
	return err
}

func (r *MinistriesRepo) GetByID(ctx context.Context, id string) (ministries.Ministry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ministries.Ministry{}, ministries.ErrNotFound
	}

	var m ministries.Ministry
	err := r.db.QueryRowContext(ctx, `
		SELECT id, parish_id, owner_user_id, name, description, contact_info
		FROM ministries
		WHERE id = $1
	`, id).Scan(&m.ID, &m.ParishID, &m.OwnerUserID, &m.Name, &m.Description, &m.ContactInfo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ministries.Ministry{}, ministries.ErrNotFound
		}
		return ministries.Ministry{}, err
	}
	return m, nil
}
