package ministries

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateParish(ctx context.Context, p Parish) error
	GetParish(ctx context.Context, id string) (Parish, error)

	Create(ctx context.Context, m Ministry) error
	GetByID(ctx context.Context, id string) (Ministry, error)
}
