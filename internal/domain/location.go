package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// DefaultLocation is assumed when a request names no location at all.
const DefaultLocation = "Seattle"

// Scale factor range for locations absent from the override table. The stable
// hash of the exact name maps into [hashScaleMin, hashScaleMax).
const (
	hashScaleMin = 0.1
	hashScaleMax = 0.8
)

// DefaultScaleFactors maps normalized city names to population-derived scale
// factors. A larger factor means a bigger monitored canopy and, through the
// urban-stress model, a larger share of stressed trees. Keys are lowercase
// with spaces as underscores; lookups normalize the requested name the same
// way. The table is pluggable; NewSynthesizer accepts a replacement.
var DefaultScaleFactors = map[string]float64{
	"mumbai":    1.0,
	"delhi":     0.9,
	"bangalore": 0.7,
	"chennai":   0.6,
	"kolkata":   0.8,
	"hyderabad": 0.65,
	"pune":      0.5,
	"ahmedabad": 0.4,
	"jaipur":    0.3,
	"lucknow":   0.25,
	"kanpur":    0.2,
	"nagpur":    0.15,
	"seattle":   0.8,
	"portland":  0.6,
	"vancouver": 0.7,
	"tokyo":     0.9,
	"stockholm": 0.5,
	"munich":    0.6,
	"sao_paulo": 0.8,
}

// Location is a monitored region. Name is stored exactly as first requested
// (trimmed, case preserved); ScaleFactor is derived once at creation and never
// re-derived, so every later synthesis for the location stays consistent.
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"location"`
	ScaleFactor float64   `json:"scale_factor"`
	CreatedAt   time.Time `json:"created_at"`
}

// normalizeScaleKey lowercases a name and replaces spaces with underscores so
// "Sao Paulo" finds the "sao_paulo" table entry. Only the table lookup
// normalizes; stored names keep their original form.
func normalizeScaleKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// deriveScaleFactor resolves a location's scale factor: the override table for
// known cities, otherwise a stable hash of the exact name into the default
// range. Unknown names get the same factor on every call, so concurrent first
// requests cannot disagree.
func deriveScaleFactor(name string, factors map[string]float64) float64 {
	if f, ok := factors[normalizeScaleKey(name)]; ok {
		return f
	}
	return hashScaleMin + identityFraction("scale", name)*(hashScaleMax-hashScaleMin)
}

// identityFraction maps (purpose, name) to a uniform value in [0, 1) via a
// stable hash. Identity-derived quantities (scale factor, base population,
// per-tree carbon rate) must never drift between calls, so no clock or shared
// RNG state is involved.
func identityFraction(purpose, name string) float64 {
	hash := sha256.Sum256([]byte(purpose + "|" + name))
	bits := binary.BigEndian.Uint64(hash[:8])
	return float64(bits>>11) / (1 << 53)
}

// seedFor derives a PRNG seed from a purpose tag, a location name, and a
// pre-truncated time bucket. Snapshot noise buckets by hour, trend-point noise
// by day; the purpose tag keeps different metrics from replaying each other's
// draw sequences. The same inputs always yield the same seed.
func seedFor(purpose, name string, bucket time.Time) int64 {
	input := purpose + "|" + name + "|" + bucket.UTC().Format(time.RFC3339)
	hash := sha256.Sum256([]byte(input))
	return int64(binary.BigEndian.Uint64(hash[:8]) & (1<<63 - 1))
}

// generateLocationID produces a deterministic ID from the location name.
// Duplicate-create races collapse onto the same ID.
func generateLocationID(name string) string {
	hash := sha256.Sum256([]byte("location|" + name))
	return "loc-" + hex.EncodeToString(hash[:8])
}

// generateObservationID produces a deterministic ID from a location name and
// the hourly bucket an observation was synthesized in. Re-synthesizing within
// the same hour yields the same ID, which keeps persistence idempotent
// (ON CONFLICT DO NOTHING).
func generateObservationID(location string, bucket time.Time) string {
	input := fmt.Sprintf("%s|%s", location, bucket.UTC().Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	return "obs-" + hex.EncodeToString(hash[:8])
}

// deriveTimeBucket truncates a time to the hour in UTC.
// Returns zero time if the input is zero.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC().Truncate(time.Hour)
}

// deriveDayBucket truncates a time to midnight UTC.
func deriveDayBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC().Truncate(24 * time.Hour)
}
