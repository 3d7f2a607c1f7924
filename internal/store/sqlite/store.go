// Package sqlite provides the SQLite-backed Store implementation.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Store persists locations and observations in SQLite. Conflict handling
// leans on deterministic IDs: both tables insert with ON CONFLICT DO NOTHING,
// so duplicate writes are first-wins no-ops.
type Store struct {
	sqlDB *sql.DB
}

var _ store.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) a SQLite store at path and applies the
// embedded schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// CreateLocation inserts loc unless its name is taken and returns the stored
// row either way, so racing first requests all see one committed scale factor.
func (s *Store) CreateLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}
	if loc.Name == "" {
		return domain.Location{}, fmt.Errorf("location name is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO locations (name, id, scale_factor, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (name) DO NOTHING`,
		loc.Name,
		loc.ID,
		loc.ScaleFactor,
		toMillis(loc.CreatedAt),
	)
	if err != nil {
		return domain.Location{}, fmt.Errorf("create location: %w", err)
	}

	return s.GetLocation(ctx, loc.Name)
}

// GetLocation returns a location by exact name.
func (s *Store) GetLocation(ctx context.Context, name string) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT name, id, scale_factor, created_at
		   FROM locations
		  WHERE name = ?`,
		name,
	)

	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Location{}, store.ErrNotFound
		}
		return domain.Location{}, fmt.Errorf("get location: %w", err)
	}
	return loc, nil
}

// ListLocations returns every location in alphabetical name order.
func (s *Store) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.queryLocations(
		ctx,
		`SELECT name, id, scale_factor, created_at
		   FROM locations
		  ORDER BY name ASC`,
	)
}

// SearchLocations returns locations whose name contains query, ignoring case.
func (s *Store) SearchLocations(ctx context.Context, query string) ([]domain.Location, error) {
	return s.queryLocations(
		ctx,
		`SELECT name, id, scale_factor, created_at
		   FROM locations
		  WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'
		  ORDER BY name ASC`,
		query,
	)
}

// SaveRecord appends an observation; an already-saved ID is a no-op.
func (s *Store) SaveRecord(ctx context.Context, rec domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO observations (
		   id, location, location_id, timestamp, tree_count,
		   healthy, moderate, stressed, unhealthy,
		   health_score, carbon_tons
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID,
		rec.Location,
		rec.LocationID,
		toMillis(rec.Timestamp),
		rec.TreeCount,
		rec.Distribution.Healthy,
		rec.Distribution.Moderate,
		rec.Distribution.Stressed,
		rec.Distribution.Unhealthy,
		rec.HealthScore,
		rec.CarbonTons,
	)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// LatestRecord returns the newest observation for a location.
func (s *Store) LatestRecord(ctx context.Context, location string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, location, location_id, timestamp, tree_count,
		        healthy, moderate, stressed, unhealthy,
		        health_score, carbon_tons
		   FROM observations
		  WHERE location = ?
		  ORDER BY timestamp DESC, id DESC
		  LIMIT 1`,
		location,
	)

	var rec domain.Record
	var ts int64
	err := row.Scan(
		&rec.ID,
		&rec.Location,
		&rec.LocationID,
		&ts,
		&rec.TreeCount,
		&rec.Distribution.Healthy,
		&rec.Distribution.Moderate,
		&rec.Distribution.Stressed,
		&rec.Distribution.Unhealthy,
		&rec.HealthScore,
		&rec.CarbonTons,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Record{}, store.ErrNotFound
		}
		return domain.Record{}, fmt.Errorf("latest record: %w", err)
	}
	rec.Timestamp = fromMillis(ts)
	rec.Distribution.Total = rec.TreeCount
	return rec, nil
}

// CountRecords returns how many observations a location has accumulated.
func (s *Store) CountRecords(ctx context.Context, location string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM observations WHERE location = ?`,
		location,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func (s *Store) queryLocations(ctx context.Context, query string, args ...any) ([]domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Location, 0)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("query locations: %w", err)
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (domain.Location, error) {
	var loc domain.Location
	var createdAt int64
	if err := row.Scan(&loc.Name, &loc.ID, &loc.ScaleFactor, &createdAt); err != nil {
		return domain.Location{}, err
	}
	loc.CreatedAt = fromMillis(createdAt)
	return loc, nil
}
