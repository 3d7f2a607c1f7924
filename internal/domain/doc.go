// Package domain models synthesized forest-monitoring data for the EcoMind API.
//
// # Synthesis Model
//
// Every metric served by the API derives deterministically from a location's
// identity (its free-text name, case-sensitive, never normalized for storage)
// and the request time. There is no upstream telemetry feed; the service
// produces plausible, internally consistent values on demand and accumulates
// them as observation history.
//
// Two seed classes keep the output stable where it must be stable and varied
// where variation is wanted:
//
//	identity values:  pure hash of the location name. Drive the scale factor,
//	                  the base tree population, and the per-tree carbon rate.
//	                  Identical on every call for the life of the location.
//	time noise:       hash of (name, hourly time bucket) for snapshots and
//	                  (name, daily bucket) for trend points. Reproducible for
//	                  the same inputs, drifts between buckets.
//
// # Scale Factors
//
// A location's scale factor sizes all of its metrics. Known cities come from a
// pluggable table ([DefaultScaleFactors], roughly tracking metro population);
// any other name maps through a stable hash into [0.1, 0.8]. Once a scale
// factor is committed to the store it is never re-derived, so concurrent first
// requests converge on a single value.
//
// # Health Buckets
//
// The tree population splits into four exhaustive buckets: healthy, moderate,
// stressed, unhealthy. Target fractions follow an urban-stress model
// (stress = 1 - scale factor; denser cities carry more stressed canopy) with
// bounded seeded noise, then normalize. Integer apportionment truncates each
// bucket and adds the rounding remainder to the healthy bucket so the bucket
// sum always equals the tree count exactly.
//
// The health score is a weighted average over buckets:
//
//	healthy x 1.0 + moderate x 0.6 + stressed x 0.3 + unhealthy x 0.0
//
// normalized to [0, 100].
//
// # Carbon
//
// Annual sequestration = tree count x per-tree rate x health score / 100.
// The per-tree rate is an identity-stable draw from 10-15 kg CO2/year,
// expressed in tons. Car equivalence divides by 4.6 t CO2 per car per year.
//
// # NDVI Classification
//
// Vegetation-index summaries classify the mean NDVI with the standard
// remote-sensing thresholds:
//
//	healthy   > 0.6
//	moderate  0.4 - 0.6
//	stressed  0.2 - 0.4
//	unhealthy <= 0.2
//
// When a satellite provider is configured its measured indices replace the
// synthesized mean; the bucket percentages always come from the location's
// current distribution.
//
// # ID Generation
//
// Location and observation IDs are deterministic SHA-256 hashes ("loc-" and
// "obs-" prefixed). Observation IDs hash (location, hourly bucket), so
// re-synthesizing within the same hour produces the same ID and persistence
// stays idempotent (ON CONFLICT DO NOTHING).
package domain
