package store

import (
	"context"

	"vigil-server/internal/models"
)

// AlertStore durably records alert records. The pipeline only emits;
// retention policy belongs to whoever reads the store.
type AlertStore interface {
	// Save persists one alert record.
	Save(ctx context.Context, record models.AlertRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]models.AlertRecord, error)

	// Purge erases everything the store holds, including its backing
	// file where applicable. Part of the self-destruct sequence.
	Purge(ctx context.Context) error

	Close() error
}

// Nop discards everything. Used when no store is configured.
type Nop struct{}

func (Nop) Save(context.Context, models.AlertRecord) error { return nil }

func (Nop) Recent(context.Context, int) ([]models.AlertRecord, error) { return nil, nil }

func (Nop) Purge(context.Context) error { return nil }

func (Nop) Close() error { return nil }
