// Package detection implements the behavioral anomaly detection engine for
// the word-game study: suspicious interval reconstruction, population-derived
// speed thresholds, per-word rule classification, confession reconciliation
// and session aggregation.
//
// Every function in this package is a pure transformation of its inputs.
// Ordering and concurrency belong to the pipeline package; nothing here
// carries state between calls or mutates an argument.
package detection

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Params holds the empirical tuning knobs of the engine. The numeric
// defaults were tuned informally against pilot cohorts; they are not
// theoretically justified and experimenters are expected to adjust them
// through configuration rather than code.
type Params struct {
	// FastPercentile is the low percentile (as a fraction, e.g. 0.10) of the
	// pooled creation-time distribution used as the "implausibly fast"
	// threshold per (phase, length) group.
	FastPercentile float64 `json:"fastPercentile"`
	// MinGroupSamples is the minimum number of pooled creation times a
	// (phase, length) group needs before its own percentile is trusted.
	// Smaller groups fall back to the nearest length group, then to the
	// phase-wide percentile.
	MinGroupSamples int `json:"minGroupSamples"`
	// TopBandMinLength is the minimum word length for the position rule:
	// a word this long appearing right after an away-period is suspicious.
	TopBandMinLength int `json:"topBandMinLength"`
	// MidBandMinLength is the minimum word length counted as "high
	// performance" by the majority-length rule.
	MidBandMinLength int `json:"midBandMinLength"`
	// PostIntervalWords is how many words after an interval end count as
	// "right after" for the position rule.
	PostIntervalWords int `json:"postIntervalWords"`
	// MergeGapSeconds is the largest gap between two same-kind intervals
	// that still merges them into one.
	MergeGapSeconds float64 `json:"mergeGapSeconds"`
}

// DefaultParams returns the parameter set used by the study unless the
// configuration overrides it.
func DefaultParams() Params {
	return Params{
		FastPercentile:    0.10,
		MinGroupSamples:   5,
		TopBandMinLength:  7,
		MidBandMinLength:  6,
		PostIntervalWords: 2,
		MergeGapSeconds:   1.0,
	}
}

var (
	// ErrDataQuality marks per-participant input that failed normalization.
	// It is recorded, never fatal to the run.
	ErrDataQuality = errors.New("data quality issue")

	// ErrInsufficientSamples is returned when a (phase, length) group is too
	// small for its own percentile. The threshold estimator always recovers
	// from it via the fallback chain.
	ErrInsufficientSamples = errors.New("insufficient samples for percentile")

	// ErrNoThresholdSeed is the only run-level failure: no valid
	// participant contributed a single usable creation time, so
	// classification cannot proceed.
	ErrNoThresholdSeed = errors.New("no valid participants available to seed the threshold table")
)

// DataQualityError describes why one participant's events were unusable.
// The participant is excluded from the threshold pool but still reported.
type DataQualityError struct {
	ParticipantID string
	Reason        string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("participant %s: %s", e.ParticipantID, e.Reason)
}

func (e *DataQualityError) Unwrap() error { return ErrDataQuality }

// percentileOf computes the p-th percentile (p in 0-100) of values using
// linear interpolation between the two nearest ranks. The input slice is not
// modified.
func percentileOf(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// NormalizeWord canonicalizes a word for set comparisons. Confessions are
// typed by participants, so case and stray whitespace must not matter.
func NormalizeWord(w string) string {
	return strings.ToUpper(strings.TrimSpace(w))
}
