// Command validate checks an exported observation fixture against the
// synthesis invariants: field ranges, exact bucket apportionment, identity
// stability across each location's history, and bit-for-bit reproducibility
// of every record under a re-run of the synthesizer at the record's own
// timestamp. Fixtures come from cmd/seed's -out flag. Records seeded with a
// custom scale-factor table will fail the reproducibility phase.
//
// Usage:
//
//	go run ./cmd/validate -records data/fixtures/seed_records.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/kamalsai369/EcoMind/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	records := flag.String("records", "", "path to a JSON fixture of observation records")
	flag.Parse()

	if *records == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*records); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Observation Fixture Validation ===")
	fmt.Println()

	records, err := loadJSON[domain.Record](path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load records: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateShape(records),
		validateDistributions(records),
		validateReproducibility(records),
		validateHistory(records),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d across %d locations\n", len(records), countLocations(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func countLocations(records []domain.Record) int {
	seen := map[string]bool{}
	for i := range records {
		seen[records[i].Location] = true
	}
	return len(seen)
}

// ── Phase 1: Record Shape ──
// Validates field presence and value ranges on every record.

func validateShape(records []domain.Record) *phase {
	p := &phase{name: "Phase 1: Record Shape (ranges)"}

	for i := range records {
		r := &records[i]
		if r.ID == "" {
			p.errorf("record %d: missing id", i)
		} else if !strings.HasPrefix(r.ID, "obs-") {
			p.errorf("record %d: id %q lacks obs- prefix", i, r.ID)
		}
		if r.LocationID == "" {
			p.errorf("record %d: missing location_id", i)
		} else if !strings.HasPrefix(r.LocationID, "loc-") {
			p.errorf("record %d: location_id %q lacks loc- prefix", i, r.LocationID)
		}
		if r.Location == "" {
			p.errorf("record %d: missing location", i)
		}
		if r.TreeCount <= 0 {
			p.errorf("record %d (%s): tree_count %d is not positive", i, r.Location, r.TreeCount)
		}
		if r.HealthScore < 0 || r.HealthScore > 100 {
			p.errorf("record %d (%s): health_score %g outside [0, 100]", i, r.Location, r.HealthScore)
		}
		if r.CarbonTons < 0 || math.IsNaN(r.CarbonTons) || math.IsInf(r.CarbonTons, 0) {
			p.errorf("record %d (%s): carbon_tons %g is not a non-negative finite value", i, r.Location, r.CarbonTons)
		}
		if r.Timestamp.IsZero() {
			p.errorf("record %d (%s): timestamp is zero", i, r.Location)
		}
	}
	return p
}

// ── Phase 2: Distribution Integrity ──
// Validates that buckets are exhaustive and the stored health score is the
// bucket-weighted average.

func validateDistributions(records []domain.Record) *phase {
	p := &phase{name: "Phase 2: Distribution Integrity"}

	for i := range records {
		r := &records[i]
		d := r.Distribution

		if d.Healthy < 0 || d.Moderate < 0 || d.Stressed < 0 || d.Unhealthy < 0 {
			p.errorf("record %d (%s): negative bucket in %+v", i, r.Location, d)
			continue
		}
		if sum := d.Healthy + d.Moderate + d.Stressed + d.Unhealthy; sum != d.Total {
			p.errorf("record %d (%s): buckets sum to %d, total is %d", i, r.Location, sum, d.Total)
		}
		if d.Total != r.TreeCount {
			p.errorf("record %d (%s): distribution total %d != tree_count %d", i, r.Location, d.Total, r.TreeCount)
		}

		want := math.Round(domain.HealthScore(d)*10) / 10
		if !floatEq(want, r.HealthScore) {
			p.errorf("record %d (%s): health_score %g, expected %g from buckets", i, r.Location, r.HealthScore, want)
		}
	}
	return p
}

// ── Phase 3: Reproducibility ──
// Re-runs the synthesizer at each record's timestamp and demands an identical
// record. This is the determinism contract end to end: identity-stable
// quantities plus bucketed noise leave nothing to drift.

func validateReproducibility(records []domain.Record) *phase {
	p := &phase{name: "Phase 3: Reproducibility (re-synthesis)"}
	defer domain.SetClock(nil)

	synth := domain.NewSynthesizer(nil)
	for i := range records {
		r := &records[i]
		if r.Location == "" || r.Timestamp.IsZero() {
			continue // already reported by phase 1
		}

		domain.SetClock(clockwork.NewFakeClockAt(r.Timestamp))
		loc := synth.DeriveLocation(r.Location)
		want := domain.NewRecord(loc, synth.SynthesizeHealth(loc))

		if want.ID != r.ID {
			p.errorf("record %d (%s): id %q, re-synthesis gives %q", i, r.Location, r.ID, want.ID)
		}
		if want.LocationID != r.LocationID {
			p.errorf("record %d (%s): location_id %q, re-synthesis gives %q", i, r.Location, r.LocationID, want.LocationID)
		}
		if want.TreeCount != r.TreeCount {
			p.errorf("record %d (%s): tree_count %d, re-synthesis gives %d", i, r.Location, r.TreeCount, want.TreeCount)
		}
		if want.Distribution != r.Distribution {
			p.errorf("record %d (%s): distribution %+v, re-synthesis gives %+v", i, r.Location, r.Distribution, want.Distribution)
		}
		if !floatEq(want.HealthScore, r.HealthScore) {
			p.errorf("record %d (%s): health_score %g, re-synthesis gives %g", i, r.Location, r.HealthScore, want.HealthScore)
		}
		if !floatEq(want.CarbonTons, r.CarbonTons) {
			p.errorf("record %d (%s): carbon_tons %g, re-synthesis gives %g", i, r.Location, r.CarbonTons, want.CarbonTons)
		}
		if !want.Timestamp.Equal(r.Timestamp) {
			p.errorf("record %d (%s): timestamp %s, re-synthesis gives %s",
				i, r.Location, r.Timestamp, want.Timestamp)
		}
	}
	return p
}

// ── Phase 4: History Consistency ──
// Validates invariants across each location's records: one location id, one
// population size, and at most one record per hourly bucket.

func validateHistory(records []domain.Record) *phase {
	p := &phase{name: "Phase 4: History Consistency"}

	seenIDs := map[string]int{}
	byLocation := map[string][]*domain.Record{}
	for i := range records {
		r := &records[i]
		if first, dup := seenIDs[r.ID]; dup {
			p.errorf("record %d (%s): id %q duplicates record %d", i, r.Location, r.ID, first)
		} else {
			seenIDs[r.ID] = i
		}
		byLocation[r.Location] = append(byLocation[r.Location], r)
	}

	names := make([]string, 0, len(byLocation))
	for name := range byLocation {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		recs := byLocation[name]
		for _, r := range recs[1:] {
			if r.LocationID != recs[0].LocationID {
				p.errorf("%s: location_id varies across history (%q vs %q)", name, recs[0].LocationID, r.LocationID)
			}
			if r.TreeCount != recs[0].TreeCount {
				p.errorf("%s: tree_count varies across history (%d vs %d)", name, recs[0].TreeCount, r.TreeCount)
			}
		}
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
