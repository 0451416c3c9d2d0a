package repository

import (
	"context"
	"time"

	"informer/internal/mine"
)

// Entry is one cached mine value with its write time
type Entry struct {
	MinionID  string    `json:"minion_id" yaml:"minion_id"`
	Function  string    `json:"function" yaml:"function"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// MineCache defines the interface for cached mine data access
type MineCache interface {
	mine.Mine

	// Write operations
	Store(ctx context.Context, id, function string, value any) error
	Delete(ctx context.Context, id string) error

	// ListMinions returns every cached minion identity
	ListMinions(ctx context.Context) ([]string, error)
	// ListEntries returns what is cached, ordered by minion then function
	ListEntries(ctx context.Context) ([]Entry, error)

	// Close releases resources
	Close() error
}
