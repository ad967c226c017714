// Package store persists resolution run history.
package store

import (
	"context"
	"time"
)

// Run records the outcome of one resolution run.
type Run struct {
	ID           string    `json:"id"`
	Path         string    `json:"path"`
	ASIN         string    `json:"asin,omitempty"`
	ContentType  string    `json:"content_type"`
	Valid        bool      `json:"valid"`
	Completeness float64   `json:"completeness"`
	Errors       []string  `json:"errors,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	Record       string    `json:"record,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Path      string
	ASIN      string
	OnlyValid bool
	Limit     int
}

// Store is the resolution history backend.
type Store interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Close() error
}
