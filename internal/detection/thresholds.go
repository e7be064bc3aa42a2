package detection

import (
	"sort"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// ThresholdSource records how a threshold was obtained, so every verdict
// stays explainable in the audit artifacts.
type ThresholdSource string

const (
	ThresholdDirect        ThresholdSource = "direct"
	ThresholdNearestLength ThresholdSource = "nearest_length"
	ThresholdGlobalPhase   ThresholdSource = "global_phase"
)

// ThresholdEntry is one resolved "implausibly fast" cutoff.
type ThresholdEntry struct {
	Phase      models.Phase    `json:"phase"`
	Length     int             `json:"length"`
	Seconds    float64         `json:"seconds"`
	Source     ThresholdSource `json:"source"`
	SampleSize int             `json:"sampleSize"`
}

type thresholdKey struct {
	phase  models.Phase
	length int
}

// ThresholdTable maps (phase, word length) to the population-derived fast
// creation cutoff. It is built once per run, after every participant's words
// have been collected, and is immutable afterwards: the classification stage
// shares it across workers without locking.
type ThresholdTable struct {
	direct  map[thresholdKey]ThresholdEntry
	lengths map[models.Phase][]int // ascending lengths having direct entries
	phases  []models.Phase         // phases with any pooled data, in rank order
	global  map[models.Phase]ThresholdEntry
}

// BuildThresholdTable derives the table from the pooled word records of all
// participants without a data-quality issue. Only dictionary-valid words
// with a positive creation time contribute; zero or negative gaps are clock
// artifacts, not human performance, and would drag the low percentile down.
//
// Groups smaller than MinGroupSamples get no direct entry; Lookup resolves
// them through the fallback chain. An entirely empty pool aborts the run
// with ErrNoThresholdSeed since classification cannot proceed.
func BuildThresholdTable(pool []models.WordRecord, p Params) (*ThresholdTable, error) {
	groups := make(map[thresholdKey][]float64)
	phaseValues := make(map[models.Phase][]float64)
	var keys []thresholdKey
	var phases []models.Phase

	for _, w := range pool {
		if !w.IsValidDictionaryWord || w.CreationSeconds <= 0 {
			continue
		}
		key := thresholdKey{phase: w.Phase, length: w.Length}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], w.CreationSeconds)
		if _, ok := phaseValues[w.Phase]; !ok {
			phases = append(phases, w.Phase)
		}
		phaseValues[w.Phase] = append(phaseValues[w.Phase], w.CreationSeconds)
	}

	if len(phases) == 0 {
		return nil, ErrNoThresholdSeed
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.phase != b.phase {
			if ra, rb := phaseRank(a.phase), phaseRank(b.phase); ra != rb {
				return ra < rb
			}
			return a.phase < b.phase
		}
		return a.length < b.length
	})
	sort.Slice(phases, func(i, j int) bool {
		if ra, rb := phaseRank(phases[i]), phaseRank(phases[j]); ra != rb {
			return ra < rb
		}
		return phases[i] < phases[j]
	})

	table := &ThresholdTable{
		direct:  make(map[thresholdKey]ThresholdEntry),
		lengths: make(map[models.Phase][]int),
		phases:  phases,
		global:  make(map[models.Phase]ThresholdEntry),
	}
	pct := p.FastPercentile * 100

	for _, key := range keys {
		values := groups[key]
		seconds, err := groupPercentile(values, pct, p.MinGroupSamples)
		if err != nil {
			// too small for its own percentile; resolved at Lookup time
			continue
		}
		table.direct[key] = ThresholdEntry{
			Phase:      key.phase,
			Length:     key.length,
			Seconds:    seconds,
			Source:     ThresholdDirect,
			SampleSize: len(values),
		}
		table.lengths[key.phase] = append(table.lengths[key.phase], key.length)
	}

	for _, phase := range phases {
		values := phaseValues[phase]
		table.global[phase] = ThresholdEntry{
			Phase:      phase,
			Seconds:    percentileOf(values, pct),
			Source:     ThresholdGlobalPhase,
			SampleSize: len(values),
		}
	}

	return table, nil
}

// groupPercentile guards a single group's percentile behind the minimum
// sample count.
func groupPercentile(values []float64, pct float64, minSamples int) (float64, error) {
	if len(values) < minSamples {
		return 0, ErrInsufficientSamples
	}
	return percentileOf(values, pct), nil
}

// Lookup resolves the threshold for a (phase, length) pair: the group's own
// percentile when it had enough samples, otherwise the nearest length group
// in the same phase (ties go to the longer length, which keeps the fallback
// conservative toward detection), otherwise the phase-wide percentile. The
// boolean is false only when the phase contributed no data at all.
func (t *ThresholdTable) Lookup(phase models.Phase, length int) (ThresholdEntry, bool) {
	if entry, ok := t.direct[thresholdKey{phase: phase, length: length}]; ok {
		return entry, true
	}

	if lengths := t.lengths[phase]; len(lengths) > 0 {
		best := lengths[0]
		for _, l := range lengths[1:] {
			dBest := absInt(best - length)
			dCur := absInt(l - length)
			if dCur < dBest || (dCur == dBest && l > best) {
				best = l
			}
		}
		src := t.direct[thresholdKey{phase: phase, length: best}]
		return ThresholdEntry{
			Phase:      phase,
			Length:     length,
			Seconds:    src.Seconds,
			Source:     ThresholdNearestLength,
			SampleSize: src.SampleSize,
		}, true
	}

	if g, ok := t.global[phase]; ok {
		return ThresholdEntry{
			Phase:      phase,
			Length:     length,
			Seconds:    g.Seconds,
			Source:     ThresholdGlobalPhase,
			SampleSize: g.SampleSize,
		}, true
	}

	return ThresholdEntry{}, false
}

// Entries returns the direct entries in deterministic order, for the run
// manifest.
func (t *ThresholdTable) Entries() []ThresholdEntry {
	var out []ThresholdEntry
	for _, phase := range t.phases {
		for _, length := range t.lengths[phase] {
			out = append(out, t.direct[thresholdKey{phase: phase, length: length}])
		}
	}
	return out
}

// Globals returns the per-phase fallback entries in deterministic order.
func (t *ThresholdTable) Globals() []ThresholdEntry {
	var out []ThresholdEntry
	for _, phase := range t.phases {
		out = append(out, t.global[phase])
	}
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
