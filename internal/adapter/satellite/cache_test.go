package satellite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamalsai369/EcoMind/internal/domain"
)

// --- mocks ---

type mockSource struct {
	indices domain.VegetationIndices
	err     error
	calls   int
}

func (m *mockSource) Indices(_ context.Context, _ string) (domain.VegetationIndices, error) {
	m.calls++
	if m.err != nil {
		return domain.VegetationIndices{}, m.err
	}
	return m.indices, nil
}

// --- tests ---

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() {
		domain.SetClock(nil)
	})
}

func TestCachedSource_HitWithinHour(t *testing.T) {
	freezeClock(t, time.Date(2025, time.June, 10, 14, 5, 0, 0, time.UTC))

	inner := &mockSource{indices: domain.VegetationIndices{NDVIMean: 0.61}}
	cached := NewCachedSource(inner, 10, testMetrics())

	first, err := cached.Indices(context.Background(), "Seattle")
	require.NoError(t, err)
	second, err := cached.Indices(context.Background(), "Seattle")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSource_MissOnNewHour(t *testing.T) {
	start := time.Date(2025, time.June, 10, 14, 50, 0, 0, time.UTC)
	fake := clockwork.NewFakeClockAt(start)
	domain.SetClock(fake)
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	inner := &mockSource{indices: domain.VegetationIndices{NDVIMean: 0.61}}
	cached := NewCachedSource(inner, 10, testMetrics())

	_, err := cached.Indices(context.Background(), "Seattle")
	require.NoError(t, err)

	fake.Advance(20 * time.Minute) // crosses into 15:00

	_, err = cached.Indices(context.Background(), "Seattle")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_DistinctLocations(t *testing.T) {
	freezeClock(t, time.Date(2025, time.June, 10, 14, 5, 0, 0, time.UTC))

	inner := &mockSource{indices: domain.VegetationIndices{NDVIMean: 0.61}}
	cached := NewCachedSource(inner, 10, testMetrics())

	_, err := cached.Indices(context.Background(), "Seattle")
	require.NoError(t, err)
	_, err = cached.Indices(context.Background(), "Portland")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	freezeClock(t, time.Date(2025, time.June, 10, 14, 5, 0, 0, time.UTC))

	inner := &mockSource{err: errors.New("upstream 503")}
	cached := NewCachedSource(inner, 10, testMetrics())

	_, err := cached.Indices(context.Background(), "Seattle")
	require.Error(t, err)

	// Upstream recovers; the next lookup must reach it.
	inner.err = nil
	inner.indices = domain.VegetationIndices{NDVIMean: 0.58}

	idx, err := cached.Indices(context.Background(), "Seattle")
	require.NoError(t, err)
	assert.InDelta(t, 0.58, idx.NDVIMean, 1e-9)
	assert.Equal(t, 2, inner.calls)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := newLRUCache(2)

	cache.put("a", domain.VegetationIndices{NDVIMean: 0.1})
	cache.put("b", domain.VegetationIndices{NDVIMean: 0.2})

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", domain.VegetationIndices{NDVIMean: 0.3})

	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	cache := newLRUCache(2)

	cache.put("a", domain.VegetationIndices{NDVIMean: 0.1})
	cache.put("a", domain.VegetationIndices{NDVIMean: 0.9})

	idx, ok := cache.get("a")
	require.True(t, ok)
	assert.InDelta(t, 0.9, idx.NDVIMean, 1e-9)
}
