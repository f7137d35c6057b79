// Package store persists score reports: Postgres when configured, JSON
// files otherwise.
package store

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=repository.go Repository

import (
	"audit_workpaper/pkg/core/scoring"
	"context"
	"errors"
	"log"
)

// ErrNotFound is returned when no report matches.
var ErrNotFound = errors.New("score report not found")

// Repository stores and retrieves score reports.
type Repository interface {
	Save(ctx context.Context, r *scoring.Report) error
	Load(ctx context.Context, id string) (*scoring.Report, error)
	Latest(ctx context.Context, company string) (*scoring.Report, error)
}

// Open returns a Postgres repository when dbURL connects, otherwise a file
// repository under dir.
func Open(ctx context.Context, dbURL, dir string) Repository {
	if dbURL != "" {
		if err := InitDB(ctx, dbURL); err != nil {
			log.Printf("[Store] database unavailable, using file store %s: %v", dir, err)
		} else if err := EnsureSchema(ctx, GetPool()); err != nil {
			log.Printf("[Store] schema setup failed, using file store %s: %v", dir, err)
		} else {
			return NewReportRepo(GetPool())
		}
	}
	return NewFileRepo(dir)
}
