package domain

import (
	"math"
	"math/rand"
	"time"
)

// Population and carbon constants.
const (
	baseTreeMin = 50_000.0
	baseTreeMax = 500_000.0

	carbonPerTreeMinKg = 10.0
	carbonPerTreeMaxKg = 15.0

	// Annual CO2 emissions of a typical passenger car (EPA figure, tons).
	carTonsPerYear = 4.6

	// Canopy area assumed per monitored tree.
	treeCanopyM2 = 25.0
	m2PerHectare = 10_000.0

	// Days over which a trend series ramps from its historical baseline up to
	// the current snapshot.
	trendRampDays = 90.0
)

// Health-score weights per bucket. A fully healthy canopy scores 100, a fully
// unhealthy one scores 0.
const (
	weightHealthy   = 1.0
	weightModerate  = 0.6
	weightStressed  = 0.3
	weightUnhealthy = 0.0
)

// Synthesizer produces deterministic forest metrics from a location's identity
// and the current clock. It is stateless apart from the scale-factor table and
// safe for concurrent use.
type Synthesizer struct {
	factors map[string]float64
}

// NewSynthesizer builds a Synthesizer. A nil factors map selects
// DefaultScaleFactors.
func NewSynthesizer(factors map[string]float64) *Synthesizer {
	if factors == nil {
		factors = DefaultScaleFactors
	}
	return &Synthesizer{factors: factors}
}

// DeriveLocation builds the Location record committed to the store on a
// location's first request. The scale factor derived here is the one the
// location keeps for life.
func (s *Synthesizer) DeriveLocation(name string) Location {
	return Location{
		ID:          generateLocationID(name),
		Name:        name,
		ScaleFactor: deriveScaleFactor(name, s.factors),
		CreatedAt:   clock.Now().UTC(),
	}
}

// SynthesizeHealth produces the current health snapshot for a location.
// Within one hourly bucket repeated calls return identical metrics.
func (s *Synthesizer) SynthesizeHealth(loc Location) HealthSnapshot {
	now := clock.Now().UTC()
	total := TreeCount(loc)
	dist := apportion(loc, total, now)
	score := roundTo(HealthScore(dist), 1)

	return HealthSnapshot{
		Location:            loc.Name,
		Distribution:        dist,
		HealthScore:         score,
		CarbonSequestration: roundTo(CarbonTons(loc, total, score), 2),
		Timestamp:           now,
	}
}

// SynthesizeCarbon produces the carbon-analysis snapshot for a location,
// derived from the same health synthesis the health endpoint serves.
func (s *Synthesizer) SynthesizeCarbon(loc Location) CarbonSnapshot {
	snap := s.SynthesizeHealth(loc)
	annual := snap.CarbonSequestration

	return CarbonSnapshot{
		Location:                loc.Name,
		AnnualSequestrationTons: annual,
		MonthlyAverageTons:      roundTo(annual/12, 2),
		DailyAverageTons:        roundTo(annual/365, 3),
		CarbonPerTreeTons:       roundTo(carbonPerTreeTons(loc.Name), 4),
		CO2EquivalentOffset:     int(math.Round(annual / carTonsPerYear)),
		TreesMonitored:          snap.Distribution.Total,
		Timestamp:               snap.Timestamp,
	}
}

// SynthesizeTrend produces a daily series of exactly days points ending at the
// current snapshot. Each historical point sits below today by a deficit that
// shrinks linearly with its age over trendRampDays, plus bounded noise seeded
// by its own calendar date. A point's value therefore depends only on the
// location and the date, never on the window length, so the visible history
// stays put as the window slides forward. The final point carries the current
// health score and carbon figure unchanged.
func (s *Synthesizer) SynthesizeTrend(loc Location, days int) TrendSeries {
	if days < 1 {
		days = 1
	}
	current := s.SynthesizeHealth(loc)

	healthSpan := 4 + identityFraction("trend-health", loc.Name)*8
	carbonSpan := 0.05 + identityFraction("trend-carbon", loc.Name)*0.10

	points := make([]TrendPoint, 0, days)
	for i := 0; i < days-1; i++ {
		ageDays := days - 1 - i
		date := current.Timestamp.AddDate(0, 0, -ageDays)
		deficit := math.Min(1, float64(ageDays)/trendRampDays)
		r := rand.New(rand.NewSource(seedFor("trend", loc.Name, deriveDayBucket(date))))

		health := current.HealthScore - healthSpan*deficit + noise(r, 2.5)
		carbon := current.CarbonSequestration*(1-carbonSpan*deficit) +
			noise(r, 0.02*current.CarbonSequestration)

		points = append(points, TrendPoint{
			Date:                date,
			HealthScore:         roundTo(clamp(health, 0, 100), 1),
			CarbonSequestration: roundTo(math.Max(0, carbon), 2),
		})
	}
	points = append(points, TrendPoint{
		Date:                current.Timestamp,
		HealthScore:         current.HealthScore,
		CarbonSequestration: current.CarbonSequestration,
	})

	return TrendSeries{Location: loc.Name, PeriodDays: days, Trends: points}
}

// TreeCount sizes a location's monitored population: an identity-stable base
// in [50k, 500k) scaled by the location's scale factor. No time component, so
// the population never jumps between requests.
func TreeCount(loc Location) int {
	base := baseTreeMin + identityFraction("population", loc.Name)*(baseTreeMax-baseTreeMin)
	return int(base * loc.ScaleFactor)
}

// HealthScore computes the bucket-weighted health average in [0, 100].
func HealthScore(d TreeDistribution) float64 {
	if d.Total == 0 {
		return 0
	}
	weighted := float64(d.Healthy)*weightHealthy +
		float64(d.Moderate)*weightModerate +
		float64(d.Stressed)*weightStressed +
		float64(d.Unhealthy)*weightUnhealthy
	return weighted / float64(d.Total) * 100
}

// CarbonTons returns annual sequestration in tons CO2 for a population at a
// health score: count x identity-stable per-tree rate x score / 100.
// Zero at score 0, non-decreasing in score.
func CarbonTons(loc Location, treeCount int, healthScore float64) float64 {
	return float64(treeCount) * carbonPerTreeTons(loc.Name) * healthScore / 100
}

// ForestCoverageHectares estimates canopy area from a tree count.
func ForestCoverageHectares(treeCount int) float64 {
	return roundTo(float64(treeCount)*treeCanopyM2/m2PerHectare, 1)
}

// apportion splits a population into health buckets using the urban-stress
// model: denser cities (higher scale factor, lower stress) keep more healthy
// canopy. Fractions are floored per bucket, then normalized, then truncated to
// counts with the remainder added to healthy so the sum is exact.
func apportion(loc Location, total int, at time.Time) TreeDistribution {
	stress := 1 - loc.ScaleFactor
	r := rand.New(rand.NewSource(seedFor("health", loc.Name, deriveTimeBucket(at))))

	healthy := math.Max(0.40, 0.80-stress*0.30+noise(r, 0.10))
	moderate := math.Max(0.10, 0.15+stress*0.10+noise(r, 0.05))
	stressed := math.Max(0.05, 0.03+stress*0.15+noise(r, 0.02))
	unhealthy := math.Max(0.01, 1-healthy-moderate-stressed)

	sum := healthy + moderate + stressed + unhealthy
	d := TreeDistribution{
		Healthy:   int(float64(total) * healthy / sum),
		Moderate:  int(float64(total) * moderate / sum),
		Stressed:  int(float64(total) * stressed / sum),
		Unhealthy: int(float64(total) * unhealthy / sum),
		Total:     total,
	}
	d.Healthy += total - (d.Healthy + d.Moderate + d.Stressed + d.Unhealthy)
	return d
}

func carbonPerTreeTons(name string) float64 {
	kg := carbonPerTreeMinKg + identityFraction("carbon", name)*(carbonPerTreeMaxKg-carbonPerTreeMinKg)
	return kg / 1000
}

// noise draws a uniform value in [-amplitude, amplitude].
func noise(r *rand.Rand, amplitude float64) float64 {
	return (r.Float64()*2 - 1) * amplitude
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
