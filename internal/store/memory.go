package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kamalsai369/EcoMind/internal/domain"
)

// MemoryStore is a concurrency-safe in-memory Store. It mirrors the SQLite
// conflict semantics: first writer wins for both location names and
// observation IDs.
type MemoryStore struct {
	mu sync.RWMutex

	// key: exact location name
	locations map[string]domain.Location

	// key: exact location name, value: time-ordered observations
	records map[string][]domain.Record

	// key: observation ID, for first-wins dedupe
	seen map[string]struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: make(map[string]domain.Location),
		records:   make(map[string][]domain.Record),
		seen:      make(map[string]struct{}),
	}
}

// CreateLocation commits loc under its name unless the name is already taken,
// and returns the stored row either way.
func (s *MemoryStore) CreateLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.locations[loc.Name]; ok {
		return existing, nil
	}
	s.locations[loc.Name] = loc
	return loc, nil
}

// GetLocation returns a location by exact name.
func (s *MemoryStore) GetLocation(ctx context.Context, name string) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.locations[name]
	if !ok {
		return domain.Location{}, ErrNotFound
	}
	return loc, nil
}

// ListLocations returns every location sorted by name.
func (s *MemoryStore) ListLocations(ctx context.Context) ([]domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Location, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SearchLocations returns locations whose name contains query, ignoring case.
func (s *MemoryStore) SearchLocations(ctx context.Context, query string) ([]domain.Location, error) {
	all, err := s.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	out := make([]domain.Location, 0, len(all))
	for _, loc := range all {
		if strings.Contains(strings.ToLower(loc.Name), needle) {
			out = append(out, loc)
		}
	}
	return out, nil
}

// SaveRecord appends an observation unless its ID was already saved.
func (s *MemoryStore) SaveRecord(ctx context.Context, rec domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[rec.ID]; ok {
		return nil
	}
	s.seen[rec.ID] = struct{}{}
	s.records[rec.Location] = append(s.records[rec.Location], rec)
	return nil
}

// LatestRecord returns the most recent observation for a location.
func (s *MemoryStore) LatestRecord(ctx context.Context, location string) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return domain.Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.records[location]
	if len(history) == 0 {
		return domain.Record{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// CountRecords returns how many observations a location has.
func (s *MemoryStore) CountRecords(ctx context.Context, location string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records[location]), nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
