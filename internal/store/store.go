// Package store defines persistence for locations and their observation
// history. MemoryStore backs deployments without a database path; the sqlite
// subpackage provides the durable implementation.
package store

import (
	"context"
	"errors"

	"github.com/kamalsai369/EcoMind/internal/domain"
)

// ErrNotFound is returned when a location or observation is absent.
var ErrNotFound = errors.New("not found in store")

// Store persists locations and their synthesized observation history.
//
// CreateLocation is the concurrency guard for first requests: when two
// callers race on the same name, both receive the single committed row, so a
// location never ends up with more than one scale factor.
type Store interface {
	// CreateLocation commits a location if its name is free and returns the
	// stored row either way.
	CreateLocation(ctx context.Context, loc domain.Location) (domain.Location, error)

	// GetLocation returns a location by exact name, or ErrNotFound.
	GetLocation(ctx context.Context, name string) (domain.Location, error)

	// ListLocations returns every known location in alphabetical name order.
	ListLocations(ctx context.Context) ([]domain.Location, error)

	// SearchLocations returns locations whose name contains the query,
	// case-insensitively, in alphabetical order.
	SearchLocations(ctx context.Context, query string) ([]domain.Location, error)

	// SaveRecord appends an observation. Saving an ID that already exists is
	// a no-op, so re-synthesis within an hour cannot duplicate history.
	SaveRecord(ctx context.Context, rec domain.Record) error

	// LatestRecord returns the newest observation for a location, or ErrNotFound.
	LatestRecord(ctx context.Context, location string) (domain.Record, error)

	// CountRecords returns how many observations a location has accumulated.
	CountRecords(ctx context.Context, location string) (int, error)

	// Ping reports whether the store is usable. The readiness probe calls it.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
