package forest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/forest"
	"github.com/kamalsai369/EcoMind/internal/observability"
	"github.com/kamalsai369/EcoMind/internal/store"
)

// --- mocks ---

type mockPublisher struct {
	published []domain.Record
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, rec domain.Record) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, rec)
	return nil
}

type mockVegetationSource struct {
	indices domain.VegetationIndices
	err     error
	calls   int
}

func (m *mockVegetationSource) Indices(_ context.Context, _ string) (domain.VegetationIndices, error) {
	m.calls++
	if m.err != nil {
		return domain.VegetationIndices{}, m.err
	}
	return m.indices, nil
}

// faultStore wraps a working store and injects failures per operation.
type faultStore struct {
	store.Store
	saveErr error
	listErr error
}

func (f *faultStore) SaveRecord(ctx context.Context, rec domain.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Store.SaveRecord(ctx, rec)
}

func (f *faultStore) ListLocations(ctx context.Context) ([]domain.Location, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.ListLocations(ctx)
}

func newTestMetrics() *observability.Metrics {
	// Fresh registry to avoid "already registered" panics across tests.
	return observability.NewMetricsForTesting()
}

// --- helpers ---

func newTestService(t *testing.T, publisher forest.ObservationPublisher, vegetation domain.VegetationSource) (*forest.Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := forest.New(st, domain.NewSynthesizer(nil), publisher, vegetation, logger, newTestMetrics())
	return svc, st
}

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() {
		domain.SetClock(nil)
	})
}

// --- tests ---

func TestService_GetOrCreateLocation(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	t.Run("creates on first sight", func(t *testing.T) {
		loc, err := svc.GetOrCreateLocation(ctx, "Mumbai")
		require.NoError(t, err)
		assert.Equal(t, "Mumbai", loc.Name)
		assert.InDelta(t, 1.0, loc.ScaleFactor, 1e-9)
		assert.NotEmpty(t, loc.ID)
	})

	t.Run("returns the committed row on repeat", func(t *testing.T) {
		first, err := svc.GetOrCreateLocation(ctx, "Tokyo")
		require.NoError(t, err)
		second, err := svc.GetOrCreateLocation(ctx, "Tokyo")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		padded, err := svc.GetOrCreateLocation(ctx, "  Stockholm  ")
		require.NoError(t, err)
		bare, err := svc.GetOrCreateLocation(ctx, "Stockholm")
		require.NoError(t, err)
		assert.Equal(t, bare.ID, padded.ID)
	})
}

func TestService_Health(t *testing.T) {
	freezeClock(t, time.Date(2025, time.June, 10, 14, 20, 0, 0, time.UTC))
	pub := &mockPublisher{}
	svc, st := newTestService(t, pub, nil)
	ctx := context.Background()

	snap, err := svc.Health(ctx, "Seattle")
	require.NoError(t, err)

	assert.Equal(t, "Seattle", snap.Location)
	assert.Equal(t, snap.Distribution.Total,
		snap.Distribution.Healthy+snap.Distribution.Moderate+snap.Distribution.Stressed+snap.Distribution.Unhealthy)

	t.Run("appends an observation", func(t *testing.T) {
		rec, err := st.LatestRecord(ctx, "Seattle")
		require.NoError(t, err)
		assert.Equal(t, snap.Distribution.Total, rec.TreeCount)
		assert.InDelta(t, snap.HealthScore, rec.HealthScore, 1e-9)
	})

	t.Run("publishes the observation", func(t *testing.T) {
		require.Len(t, pub.published, 1)
		assert.Equal(t, "Seattle", pub.published[0].Location)
	})

	t.Run("same hour collapses to one data point", func(t *testing.T) {
		_, err := svc.Health(ctx, "Seattle")
		require.NoError(t, err)
		n, err := st.CountRecords(ctx, "Seattle")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestService_Health_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker down")}
	svc, st := newTestService(t, pub, nil)
	ctx := context.Background()

	_, err := svc.Health(ctx, "Portland")
	require.NoError(t, err)

	n, err := st.CountRecords(ctx, "Portland")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_Add(t *testing.T) {
	svc, st := newTestService(t, nil, nil)
	ctx := context.Background()

	loc, snap, err := svc.Add(ctx, "Nashik")
	require.NoError(t, err)

	assert.Equal(t, "Nashik", loc.Name)
	assert.GreaterOrEqual(t, loc.ScaleFactor, 0.1)
	assert.LessOrEqual(t, loc.ScaleFactor, 0.8)
	assert.Positive(t, snap.Distribution.Total)

	n, err := st.CountRecords(ctx, "Nashik")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_Carbon(t *testing.T) {
	freezeClock(t, time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC))
	svc, st := newTestService(t, nil, nil)
	ctx := context.Background()

	carbon, err := svc.Carbon(ctx, "Vancouver")
	require.NoError(t, err)

	health, err := svc.Health(ctx, "Vancouver")
	require.NoError(t, err)

	assert.Equal(t, "Vancouver", carbon.Location)
	assert.Equal(t, health.Distribution.Total, carbon.TreesMonitored)
	assert.InDelta(t, health.CarbonSequestration, carbon.AnnualSequestrationTons, 1e-9)

	t.Run("does not append history", func(t *testing.T) {
		// Only the Health call above persisted.
		n, err := st.CountRecords(ctx, "Vancouver")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestService_Trends(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	series, err := svc.Trends(ctx, "Munich", 14)
	require.NoError(t, err)

	assert.Equal(t, "Munich", series.Location)
	assert.Equal(t, 14, series.PeriodDays)
	assert.Len(t, series.Trends, 14)
}

func TestService_Locations(t *testing.T) {
	freezeClock(t, time.Date(2025, time.June, 10, 11, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.Health(ctx, "Pune")
	require.NoError(t, err)
	_, err = svc.Health(ctx, "Delhi")
	require.NoError(t, err)

	summaries, err := svc.Locations(ctx)
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "Delhi", summaries[0].Location)
	assert.Equal(t, "Pune", summaries[1].Location)
	for _, s := range summaries {
		assert.Positive(t, s.TotalTrees)
		assert.Equal(t, 1, s.DataPoints)
		assert.False(t, s.Timestamp.IsZero())
	}
}

func TestService_Locations_RegisteredWithoutHistory(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.GetOrCreateLocation(ctx, "Jaipur")
	require.NoError(t, err)

	summaries, err := svc.Locations(ctx)
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "Jaipur", summaries[0].Location)
	assert.Zero(t, summaries[0].TotalTrees)
	assert.Zero(t, summaries[0].DataPoints)
	assert.True(t, summaries[0].Timestamp.IsZero())
}

func TestService_Search(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.GetOrCreateLocation(ctx, "Bangalore")
	require.NoError(t, err)

	t.Run("substring match", func(t *testing.T) {
		matches, created, err := svc.Search(ctx, "banga")
		require.NoError(t, err)
		assert.False(t, created)
		require.Len(t, matches, 1)
		assert.Equal(t, "Bangalore", matches[0].Name)
	})

	t.Run("miss registers the query", func(t *testing.T) {
		matches, created, err := svc.Search(ctx, "Coimbatore")
		require.NoError(t, err)
		assert.True(t, created)
		require.Len(t, matches, 1)
		assert.Equal(t, "Coimbatore", matches[0].Name)

		// Now known, so the same query matches without creating.
		again, created, err := svc.Search(ctx, "coimb")
		require.NoError(t, err)
		assert.False(t, created)
		require.Len(t, again, 1)
	})
}

func TestService_Overview(t *testing.T) {
	freezeClock(t, time.Date(2025, time.June, 10, 16, 0, 0, 0, time.UTC))
	svc, _ := newTestService(t, nil, nil)
	ctx := context.Background()

	_, err := svc.GetOrCreateLocation(ctx, "Mumbai")
	require.NoError(t, err)
	_, err = svc.GetOrCreateLocation(ctx, "Kanpur")
	require.NoError(t, err)

	t.Run("single location", func(t *testing.T) {
		ov, err := svc.Overview(ctx, "Mumbai")
		require.NoError(t, err)

		snap, err := svc.Health(ctx, "Mumbai")
		require.NoError(t, err)

		assert.Equal(t, "Mumbai", ov.SelectedLocation)
		assert.Equal(t, 2, ov.LocationsMonitored)
		assert.Equal(t, snap.Distribution.Total, ov.TotalTrees)
		assert.InDelta(t, snap.HealthScore, ov.HealthScore, 1e-9)
		assert.InDelta(t, snap.CarbonSequestration, ov.AnnualCO2CaptureTons, 1e-9)
		assert.Positive(t, ov.ForestCoverageHectares)
	})

	t.Run("all locations", func(t *testing.T) {
		ov, err := svc.Overview(ctx, "")
		require.NoError(t, err)

		mumbai, err := svc.Health(ctx, "Mumbai")
		require.NoError(t, err)
		kanpur, err := svc.Health(ctx, "Kanpur")
		require.NoError(t, err)

		assert.Equal(t, "all", ov.SelectedLocation)
		assert.Equal(t, 2, ov.LocationsMonitored)
		assert.Equal(t, mumbai.Distribution.Total+kanpur.Distribution.Total, ov.TotalTrees)
		assert.Greater(t, ov.HealthScore, 0.0)
		assert.LessOrEqual(t, ov.HealthScore, 100.0)
		assert.InDelta(t, mumbai.CarbonSequestration+kanpur.CarbonSequestration, ov.AnnualCO2CaptureTons, 0.01)
	})

	t.Run("unknown selection still counts itself", func(t *testing.T) {
		ov, err := svc.Overview(ctx, "Rivendell")
		require.NoError(t, err)
		assert.Equal(t, "Rivendell", ov.SelectedLocation)
		assert.Equal(t, 3, ov.LocationsMonitored)
	})
}

func TestService_Overview_EmptyStore(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	ov, err := svc.Overview(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "all", ov.SelectedLocation)
	assert.Zero(t, ov.LocationsMonitored)
	assert.Zero(t, ov.TotalTrees)
	assert.Zero(t, ov.HealthScore)
	assert.False(t, ov.LastUpdated.IsZero())
}

func TestService_NDVI(t *testing.T) {
	t.Run("synthetic without a source", func(t *testing.T) {
		svc, _ := newTestService(t, nil, nil)

		summary, err := svc.NDVI(context.Background(), "Chennai")
		require.NoError(t, err)
		assert.Equal(t, "synthetic", summary.Source)
		assert.Equal(t, "Chennai", summary.Location)
	})

	t.Run("measured with a source", func(t *testing.T) {
		src := &mockVegetationSource{indices: domain.VegetationIndices{NDVIMean: 0.71, NDVIStdDev: 0.05}}
		svc, _ := newTestService(t, nil, src)

		summary, err := svc.NDVI(context.Background(), "Chennai")
		require.NoError(t, err)
		assert.Equal(t, "satellite", summary.Source)
		assert.InDelta(t, 0.71, summary.NDVIAverage, 1e-9)
		assert.Equal(t, "healthy", summary.Classification)
		assert.Equal(t, 1, src.calls)
	})

	t.Run("source failure degrades to synthesis", func(t *testing.T) {
		src := &mockVegetationSource{err: errors.New("upstream 503")}
		svc, _ := newTestService(t, nil, src)

		summary, err := svc.NDVI(context.Background(), "Chennai")
		require.NoError(t, err)
		assert.Equal(t, "synthetic", summary.Source)
	})
}

func TestService_Changes(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	feed, err := svc.Changes(context.Background(), "Hyderabad")
	require.NoError(t, err)

	assert.Equal(t, "Hyderabad", feed.Location)
	assert.Len(t, feed.AllChanges, 10)
	assert.Len(t, feed.RecentChanges, 5)
}

func TestService_TrainingStatus(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	status := svc.TrainingStatus()
	assert.Equal(t, "trained", status.ModelStatus)
	assert.Equal(t, "1.2.3", status.ModelVersion)
	assert.Len(t, status.PredictionCapabilities, 5)

	sum := status.FeatureImportance.AirQuality +
		status.FeatureImportance.Temperature +
		status.FeatureImportance.Humidity +
		status.FeatureImportance.Rainfall +
		status.FeatureImportance.SoilPH +
		status.FeatureImportance.CanopyCover +
		status.FeatureImportance.Biodiversity
	assert.InDelta(t, 1.0, sum, 1e-9)

	// Stable fixture: successive reads agree.
	assert.Equal(t, status, svc.TrainingStatus())
}

func TestService_CheckReadiness(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	assert.NoError(t, svc.CheckReadiness(context.Background()))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, svc.CheckReadiness(cancelled))
}

func TestService_StoreFailuresSurface(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("save failure fails the snapshot", func(t *testing.T) {
		fs := &faultStore{Store: store.NewMemoryStore(), saveErr: errors.New("disk full")}
		metrics := newTestMetrics()
		svc := forest.New(fs, domain.NewSynthesizer(nil), nil, nil, logger, metrics)

		_, err := svc.Health(context.Background(), "Lyon")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "save record")
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreErrors))
	})

	t.Run("list failure fails the summary", func(t *testing.T) {
		fs := &faultStore{Store: store.NewMemoryStore(), listErr: errors.New("connection reset")}
		metrics := newTestMetrics()
		svc := forest.New(fs, domain.NewSynthesizer(nil), nil, nil, logger, metrics)

		_, err := svc.Locations(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list locations")
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StoreErrors))
	})
}
