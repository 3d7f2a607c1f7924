// Package forest is the service layer: every operation the public API
// serves, wired to the synthesizer, the store, and the optional adapters.
package forest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/observability"
	"github.com/kamalsai369/EcoMind/internal/store"
)

// ObservationPublisher delivers a persisted observation to the stream sink.
type ObservationPublisher interface {
	Publish(ctx context.Context, rec domain.Record) error
}

// Service wires the synthesizer to the store and the optional adapters.
// A nil publisher disables streaming; a nil vegetation source makes NDVI
// purely synthetic.
type Service struct {
	store      store.Store
	synth      *domain.Synthesizer
	publisher  ObservationPublisher
	vegetation domain.VegetationSource
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Service. publisher and vegetation may be nil.
func New(st store.Store, synth *domain.Synthesizer, publisher ObservationPublisher, vegetation domain.VegetationSource, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:      st,
		synth:      synth,
		publisher:  publisher,
		vegetation: vegetation,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once the store answers, or an error describing
// why the service cannot serve yet.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}

// GetOrCreateLocation resolves a location by exact name, deriving and
// committing its identity on first sight. Concurrent first requests converge
// on whichever row the store committed.
func (s *Service) GetOrCreateLocation(ctx context.Context, name string) (domain.Location, error) {
	name = strings.TrimSpace(name)
	loc, err := s.store.GetLocation(ctx, name)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.metrics.StoreErrors.Inc()
		return domain.Location{}, fmt.Errorf("lookup location: %w", err)
	}

	committed, err := s.store.CreateLocation(ctx, s.synth.DeriveLocation(name))
	if err != nil {
		s.metrics.StoreErrors.Inc()
		return domain.Location{}, fmt.Errorf("create location: %w", err)
	}
	s.metrics.LocationsCreated.Inc()
	s.logger.Info("location registered",
		"location", committed.Name,
		"location_id", committed.ID,
		"scale_factor", committed.ScaleFactor,
	)
	return committed, nil
}

// Health synthesizes the current snapshot for a location and appends it to
// history.
func (s *Service) Health(ctx context.Context, name string) (domain.HealthSnapshot, error) {
	_, snap, err := s.snapshot(ctx, name)
	return snap, err
}

// Add is the explicit registration path: get-or-create plus a first snapshot
// so the location immediately has history.
func (s *Service) Add(ctx context.Context, name string) (domain.Location, domain.HealthSnapshot, error) {
	return s.snapshot(ctx, name)
}

// snapshot runs the full observation path: resolve identity, synthesize,
// persist, publish.
func (s *Service) snapshot(ctx context.Context, name string) (domain.Location, domain.HealthSnapshot, error) {
	loc, err := s.GetOrCreateLocation(ctx, name)
	if err != nil {
		return domain.Location{}, domain.HealthSnapshot{}, err
	}

	start := time.Now()
	snap := s.synth.SynthesizeHealth(loc)
	s.metrics.SynthesisDuration.Observe(time.Since(start).Seconds())

	rec := domain.NewRecord(loc, snap)
	if err := s.store.SaveRecord(ctx, rec); err != nil {
		s.metrics.StoreErrors.Inc()
		return domain.Location{}, domain.HealthSnapshot{}, fmt.Errorf("save record: %w", err)
	}
	s.metrics.RecordsPersisted.Inc()

	s.publish(ctx, rec)
	return loc, snap, nil
}

// publish forwards a record to the observation stream. Failures are logged
// and counted, never returned: the request already succeeded.
func (s *Service) publish(ctx context.Context, rec domain.Record) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, rec); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("observation publish failed",
			"error", err,
			"record_id", rec.ID,
			"location", rec.Location,
		)
		return
	}
	s.metrics.ObservationsPublished.Inc()
}

// Carbon reports sequestration figures for a location. It synthesizes the
// same snapshot Health would but does not append to history.
func (s *Service) Carbon(ctx context.Context, name string) (domain.CarbonSnapshot, error) {
	loc, err := s.GetOrCreateLocation(ctx, name)
	if err != nil {
		return domain.CarbonSnapshot{}, err
	}
	return s.synth.SynthesizeCarbon(loc), nil
}

// Trends returns the daily series converging on the current snapshot.
func (s *Service) Trends(ctx context.Context, name string, days int) (domain.TrendSeries, error) {
	loc, err := s.GetOrCreateLocation(ctx, name)
	if err != nil {
		return domain.TrendSeries{}, err
	}
	return s.synth.SynthesizeTrend(loc, days), nil
}

// NDVI returns the vegetation-index summary, preferring measured indices
// when a source is configured and falling back to synthesis.
func (s *Service) NDVI(ctx context.Context, name string) (domain.NDVISummary, error) {
	loc, err := s.GetOrCreateLocation(ctx, name)
	if err != nil {
		return domain.NDVISummary{}, err
	}
	return s.synth.VegetationSummary(ctx, loc, s.vegetation, s.logger), nil
}

// Changes returns the detected-change feed for a location.
func (s *Service) Changes(ctx context.Context, name string) (domain.ChangeFeed, error) {
	loc, err := s.GetOrCreateLocation(ctx, name)
	if err != nil {
		return domain.ChangeFeed{}, err
	}
	return s.synth.SynthesizeChanges(loc), nil
}

// KnownLocations lists every registered location in alphabetical order.
func (s *Service) KnownLocations(ctx context.Context) ([]domain.Location, error) {
	locs, err := s.store.ListLocations(ctx)
	if err != nil {
		s.metrics.StoreErrors.Inc()
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

// Locations lists every registered location with its latest observation and
// accumulated history depth.
func (s *Service) Locations(ctx context.Context) ([]domain.LocationSummary, error) {
	locs, err := s.KnownLocations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.LocationSummary, 0, len(locs))
	for _, loc := range locs {
		summary := domain.LocationSummary{Location: loc.Name}

		rec, err := s.store.LatestRecord(ctx, loc.Name)
		switch {
		case err == nil:
			summary.TotalTrees = rec.TreeCount
			summary.Timestamp = rec.Timestamp
		case !errors.Is(err, store.ErrNotFound):
			s.metrics.StoreErrors.Inc()
			return nil, fmt.Errorf("latest record for %q: %w", loc.Name, err)
		}

		summary.DataPoints, err = s.store.CountRecords(ctx, loc.Name)
		if err != nil {
			s.metrics.StoreErrors.Inc()
			return nil, fmt.Errorf("count records for %q: %w", loc.Name, err)
		}
		out = append(out, summary)
	}
	return out, nil
}

// Search matches registered locations by case-insensitive substring. A query
// matching nothing registers itself as a new location, so searching is also
// the discovery path. The returned flag reports whether that happened.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Location, bool, error) {
	matches, err := s.store.SearchLocations(ctx, query)
	if err != nil {
		s.metrics.StoreErrors.Inc()
		return nil, false, fmt.Errorf("search locations: %w", err)
	}
	if len(matches) > 0 {
		return matches, false, nil
	}

	loc, err := s.GetOrCreateLocation(ctx, query)
	if err != nil {
		return nil, false, err
	}
	return []domain.Location{loc}, true, nil
}

// Overview aggregates the monitored estate. With a name it covers that
// location alone; with an empty name it sums across every registered
// location, weighting the health score by tree count.
func (s *Service) Overview(ctx context.Context, name string) (domain.Overview, error) {
	locs, err := s.KnownLocations(ctx)
	if err != nil {
		return domain.Overview{}, err
	}

	ov := domain.Overview{
		LocationsMonitored: len(locs),
		LastUpdated:        domain.Now(),
	}

	if name = strings.TrimSpace(name); name != "" {
		loc, err := s.GetOrCreateLocation(ctx, name)
		if err != nil {
			return domain.Overview{}, err
		}
		snap := s.synth.SynthesizeHealth(loc)
		ov.SelectedLocation = loc.Name
		if !containsLocation(locs, loc.Name) {
			ov.LocationsMonitored++
		}
		ov.TotalTrees = snap.Distribution.Total
		ov.ForestCoverageHectares = domain.ForestCoverageHectares(snap.Distribution.Total)
		ov.AnnualCO2CaptureTons = snap.CarbonSequestration
		ov.HealthScore = snap.HealthScore
		return ov, nil
	}

	ov.SelectedLocation = "all"
	var weighted float64
	for _, loc := range locs {
		snap := s.synth.SynthesizeHealth(loc)
		ov.TotalTrees += snap.Distribution.Total
		ov.AnnualCO2CaptureTons += snap.CarbonSequestration
		weighted += snap.HealthScore * float64(snap.Distribution.Total)
	}
	ov.ForestCoverageHectares = domain.ForestCoverageHectares(ov.TotalTrees)
	ov.AnnualCO2CaptureTons = math.Round(ov.AnnualCO2CaptureTons*100) / 100
	if ov.TotalTrees > 0 {
		ov.HealthScore = math.Round(weighted/float64(ov.TotalTrees)*10) / 10
	}
	return ov, nil
}

func containsLocation(locs []domain.Location, name string) bool {
	for _, loc := range locs {
		if loc.Name == name {
			return true
		}
	}
	return false
}
