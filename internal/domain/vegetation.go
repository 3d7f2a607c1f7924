package domain

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// NDVI classification thresholds, the standard remote-sensing bands.
const (
	ndviHealthyAbove  = 0.6
	ndviModerateAbove = 0.4
	ndviStressedAbove = 0.2
)

// VegetationIndices holds measured vegetation statistics for a region as
// returned by a satellite provider.
type VegetationIndices struct {
	NDVIMean   float64
	NDVIStdDev float64
	NDVIMin    float64
	NDVIMax    float64
	EVIMean    float64
}

// VegetationSource supplies measured vegetation indices for a location.
type VegetationSource interface {
	Indices(ctx context.Context, location string) (VegetationIndices, error)
}

// NDVISummary is the vegetation-index payload for one location. Source
// records whether the NDVI statistics were measured ("satellite") or derived
// from the health synthesis ("synthetic"); the bucket percentages always come
// from the current distribution.
type NDVISummary struct {
	Location            string    `json:"location"`
	NDVIAverage         float64   `json:"current_ndvi_average"`
	NDVIStdDev          float64   `json:"ndvi_std_dev,omitempty"`
	Classification      string    `json:"classification"`
	HealthyPercentage   float64   `json:"healthy_percentage"`
	ModeratePercentage  float64   `json:"moderate_percentage"`
	StressedPercentage  float64   `json:"stressed_percentage"`
	UnhealthyPercentage float64   `json:"unhealthy_percentage"`
	Source              string    `json:"source"` // "satellite" or "synthetic"
	Timestamp           time.Time `json:"timestamp"`
}

// ClassifyNDVI maps a mean NDVI value onto the four health classes.
func ClassifyNDVI(mean float64) string {
	switch {
	case mean > ndviHealthyAbove:
		return "healthy"
	case mean > ndviModerateAbove:
		return "moderate"
	case mean > ndviStressedAbove:
		return "stressed"
	default:
		return "unhealthy"
	}
}

// VegetationSummary resolves the NDVI summary for a location. If source is
// nil or fails, the summary falls back to synthesis (graceful degradation);
// measured indices replace only the NDVI statistics, never the bucket
// percentages.
func (s *Synthesizer) VegetationSummary(ctx context.Context, loc Location, source VegetationSource, logger *slog.Logger) NDVISummary {
	if source == nil {
		return s.SynthesizeNDVI(loc)
	}

	idx, err := source.Indices(ctx, loc.Name)
	if err != nil {
		logger.Warn("satellite indices unavailable, synthesizing",
			"location", loc.Name,
			"error", err,
		)
		return s.SynthesizeNDVI(loc)
	}

	snap := s.SynthesizeHealth(loc)
	return NDVISummaryFromIndices(loc.Name, idx, snap.Distribution, snap.Timestamp)
}

// SynthesizeNDVI produces a vegetation summary without a satellite provider.
// The mean NDVI derives from the current health score (score 0 maps to 0.2,
// score 100 to 0.75) plus bounded hourly noise.
func (s *Synthesizer) SynthesizeNDVI(loc Location) NDVISummary {
	snap := s.SynthesizeHealth(loc)
	r := rand.New(rand.NewSource(seedFor("ndvi", loc.Name, deriveTimeBucket(snap.Timestamp))))
	mean := clamp(0.2+snap.HealthScore/100*0.55+noise(r, 0.03), 0, 1)

	out := NDVISummaryFromIndices(loc.Name, VegetationIndices{NDVIMean: mean}, snap.Distribution, snap.Timestamp)
	out.Source = "synthetic"
	return out
}

// NDVISummaryFromIndices folds vegetation indices into the summary payload
// using the current distribution for bucket percentages.
func NDVISummaryFromIndices(location string, idx VegetationIndices, dist TreeDistribution, at time.Time) NDVISummary {
	return NDVISummary{
		Location:            location,
		NDVIAverage:         roundTo(idx.NDVIMean, 3),
		NDVIStdDev:          roundTo(idx.NDVIStdDev, 3),
		Classification:      ClassifyNDVI(idx.NDVIMean),
		HealthyPercentage:   bucketPercent(dist.Healthy, dist.Total),
		ModeratePercentage:  bucketPercent(dist.Moderate, dist.Total),
		StressedPercentage:  bucketPercent(dist.Stressed, dist.Total),
		UnhealthyPercentage: bucketPercent(dist.Unhealthy, dist.Total),
		Source:              "satellite",
		Timestamp:           at.UTC(),
	}
}

func bucketPercent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo(float64(count)/float64(total)*100, 1)
}
