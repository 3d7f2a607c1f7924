package domain

import "time"

// TreeDistribution splits a location's tree population into four exhaustive
// health buckets. The counts always sum to Total exactly; integer
// apportionment puts the rounding remainder in the healthy bucket.
type TreeDistribution struct {
	Healthy   int `json:"healthy"`
	Moderate  int `json:"moderate"`
	Stressed  int `json:"stressed"`
	Unhealthy int `json:"unhealthy"`
	Total     int `json:"total"`
}

// Record is one persisted observation for a location. Its ID hashes
// (location, hourly bucket), so repeated synthesis within an hour maps to a
// single row and the observation history grows at most once per hour per
// location.
type Record struct {
	ID           string           `json:"id"`
	LocationID   string           `json:"location_id"`
	Location     string           `json:"location"`
	TreeCount    int              `json:"tree_count"`
	Distribution TreeDistribution `json:"tree_distribution"`
	HealthScore  float64          `json:"health_score"`
	CarbonTons   float64          `json:"carbon_tons"`
	Timestamp    time.Time        `json:"timestamp"`
}

// HealthSnapshot is the forest-health payload for one location at one moment.
// HealthScore is the bucket-weighted average in [0, 100];
// CarbonSequestration is annual tons CO2 for the whole population.
type HealthSnapshot struct {
	Location            string           `json:"location"`
	Distribution        TreeDistribution `json:"tree_distribution"`
	HealthScore         float64          `json:"health_score"`
	CarbonSequestration float64          `json:"carbon_sequestration"`
	Timestamp           time.Time        `json:"timestamp"`
}

// CarbonSnapshot is the carbon-analysis payload. CO2EquivalentOffset is the
// number of passenger cars whose annual emissions the canopy offsets
// (4.6 t CO2 per car per year).
type CarbonSnapshot struct {
	Location                string    `json:"location"`
	AnnualSequestrationTons float64   `json:"annual_sequestration_tons"`
	MonthlyAverageTons      float64   `json:"monthly_average_tons"`
	DailyAverageTons        float64   `json:"daily_average_tons"`
	CarbonPerTreeTons       float64   `json:"carbon_per_tree_tons"`
	CO2EquivalentOffset     int       `json:"co2_equivalent_offset"`
	TreesMonitored          int       `json:"trees_monitored"`
	Timestamp               time.Time `json:"timestamp"`
}

// TrendPoint is one day in a trend series.
type TrendPoint struct {
	Date                time.Time `json:"date"`
	HealthScore         float64   `json:"health_score"`
	CarbonSequestration float64   `json:"carbon_sequestration"`
}

// TrendSeries is a chronological daily series ending at the current snapshot.
// The final point carries the exact current health score and carbon figure.
type TrendSeries struct {
	Location   string       `json:"location"`
	PeriodDays int          `json:"period_days"`
	Trends     []TrendPoint `json:"trends"`
}

// LocationSummary is one entry in the monitored-locations listing.
type LocationSummary struct {
	Location   string    `json:"location"`
	TotalTrees int       `json:"total_trees"`
	DataPoints int       `json:"data_points"`
	Timestamp  time.Time `json:"timestamp"`
}

// Overview aggregates the latest observation of every monitored location.
// Hectares assume 25 m2 of canopy per tree.
type Overview struct {
	SelectedLocation       string    `json:"selected_location"`
	LocationsMonitored     int       `json:"locations_monitored"`
	TotalTrees             int       `json:"total_trees"`
	ForestCoverageHectares float64   `json:"forest_coverage_hectares"`
	AnnualCO2CaptureTons   float64   `json:"annual_co2_capture_tons"`
	HealthScore            float64   `json:"health_score"`
	LastUpdated            time.Time `json:"last_updated"`
}

// NewRecord converts a health snapshot into its persisted observation form.
func NewRecord(loc Location, snap HealthSnapshot) Record {
	return Record{
		ID:           generateObservationID(loc.Name, deriveTimeBucket(snap.Timestamp)),
		LocationID:   loc.ID,
		Location:     loc.Name,
		TreeCount:    snap.Distribution.Total,
		Distribution: snap.Distribution,
		HealthScore:  snap.HealthScore,
		CarbonTons:   snap.CarbonSequestration,
		Timestamp:    snap.Timestamp,
	}
}
