// Command seed preloads a store with the default city catalog and one
// observation per location. It runs the actual domain synthesis, so seeded
// rows are exactly what the API would have produced for a first request.
// Re-running against the same store within the hour is a no-op.
//
// Usage:
//
//	go run ./cmd/seed -store ecomind.db
//	go run ./cmd/seed -store ecomind.db \
//	  -at 2025-06-10T14:00:00Z \
//	  -locations "Oslo,Cape Town" \
//	  -out data/fixtures/seed_records.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/store/sqlite"
)

// defaultCities are the display names behind domain.DefaultScaleFactors.
var defaultCities = []string{
	"Mumbai", "Delhi", "Bangalore", "Chennai", "Kolkata", "Hyderabad",
	"Pune", "Ahmedabad", "Jaipur", "Lucknow", "Kanpur", "Nagpur",
	"Seattle", "Portland", "Vancouver", "Tokyo", "Stockholm", "Munich",
	"Sao Paulo",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	storePath := flag.String("store", "", "path to the sqlite store to seed")
	at := flag.String("at", "", "fixed RFC3339 timestamp for reproducible snapshots (default: current time)")
	extra := flag.String("locations", "", "comma-separated locations to seed in addition to the catalog")
	out := flag.String("out", "", "optional output path for a JSON fixture of the seeded records")
	flag.Parse()

	if *storePath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -store")
	}

	if *at != "" {
		fixed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parsing -at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(fixed))
		defer domain.SetClock(nil)
	}

	names := append([]string(nil), defaultCities...)
	for _, name := range strings.Split(*extra, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	st, err := sqlite.Open(*storePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	synth := domain.NewSynthesizer(nil)

	records := make([]domain.Record, 0, len(names))
	for _, name := range names {
		loc, err := st.CreateLocation(ctx, synth.DeriveLocation(name))
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}

		rec := domain.NewRecord(loc, synth.SynthesizeHealth(loc))
		if err := st.SaveRecord(ctx, rec); err != nil {
			return fmt.Errorf("saving record for %s: %w", name, err)
		}
		records = append(records, rec)

		log.Printf("%s: factor %.2f, %d trees, health %.1f",
			name, loc.ScaleFactor, rec.TreeCount, rec.HealthScore)
	}

	if *out != "" {
		if err := writeJSON(*out, records); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("wrote fixture: %s", *out)
	}

	printStats(records)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.Record) {
	var trees int
	var carbon, health float64
	for i := range records {
		trees += records[i].TreeCount
		carbon += records[i].CarbonTons
		health += records[i].HealthScore
	}

	fmt.Println("\n=== Seeded catalog ===")
	fmt.Printf("Locations: %d\n", len(records))
	fmt.Printf("Total trees: %d\n", trees)
	fmt.Printf("Annual CO2 capture: %.2f t\n", carbon)
	if len(records) > 0 {
		fmt.Printf("Mean health score: %.1f\n", health/float64(len(records)))
	}

	byTrees := append([]domain.Record(nil), records...)
	sort.Slice(byTrees, func(i, j int) bool { return byTrees[i].TreeCount > byTrees[j].TreeCount })
	fmt.Println("\nLargest canopies:")
	for _, rec := range byTrees[:min(5, len(byTrees))] {
		fmt.Printf("  %s: %d trees, %.2f t CO2/yr\n", rec.Location, rec.TreeCount, rec.CarbonTons)
	}
}
