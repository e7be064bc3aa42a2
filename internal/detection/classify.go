package detection

import (
	"time"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// Rule identifies one classification rule in the audit output.
type Rule string

const (
	// RulePosition: the word is among the first PostIntervalWords words
	// validated after a suspicious interval ended, with a top-band length.
	RulePosition Rule = "position"
	// RuleMajorityLength: the words validated after away-periods in this
	// phase are mostly mid-band or longer, sustained high performance that
	// is suspicious even without RulePosition's immediacy.
	RuleMajorityLength Rule = "majority_length"
	// RuleSpeed: creation time below the population-derived threshold for
	// this phase and word length.
	RuleSpeed Rule = "speed"
)

// WordVerdict is the classification result for one word record. It carries
// the full set of triggered rules, not just a boolean, so experimenters can
// re-weight or ablate rules downstream without re-deriving intervals or
// thresholds. The threshold that was compared against is recorded for
// auditability.
type WordVerdict struct {
	ParticipantID    string          `json:"participantId"`
	Phase            models.Phase    `json:"phase"`
	Word             string          `json:"word"`
	Length           int             `json:"length"`
	CreationSeconds  float64         `json:"creationSeconds"`
	ThresholdSeconds float64         `json:"thresholdSeconds,omitempty"`
	ThresholdSource  ThresholdSource `json:"thresholdSource,omitempty"`
	TriggeredRules   []Rule          `json:"triggeredRules"`
	Flagged          bool            `json:"flagged"`
}

// Has reports whether the given rule triggered for this verdict.
func (v WordVerdict) Has(r Rule) bool {
	for _, rule := range v.TriggeredRules {
		if rule == r {
			return true
		}
	}
	return false
}

// ClassifyWords evaluates the rule set for every word record of one
// participant against their merged suspicious intervals and the shared
// threshold table. Words must be in validation order within each phase
// (ExtractWords produces them that way); verdicts[i] corresponds to
// words[i].
//
// The rules are evaluated independently and OR-combined: any trigger flags
// the word. That is deliberately conservative toward detection rather than
// toward accusation, and must stay that way for comparability of cheating
// rates across cohorts.
func ClassifyWords(words []models.WordRecord, intervals []models.SuspiciousInterval, table *ThresholdTable, p Params) []WordVerdict {
	verdicts := make([]WordVerdict, len(words))

	for _, phase := range analysisPhases {
		var idx []int
		for i, w := range words {
			if w.Phase == phase {
				idx = append(idx, i)
			}
		}
		if len(idx) == 0 {
			continue
		}

		// Interval ends of either kind count: a mouse-inactive gap is as
		// much of an away-period as a page leave.
		var ends []time.Time
		for _, iv := range intervals {
			if iv.Phase == phase {
				ends = append(ends, iv.End)
			}
		}

		// For each interval end, the first PostIntervalWords words validated
		// strictly after it are position candidates; every word validated
		// after at least one end belongs to the post-interval population.
		positionCandidate := make(map[int]bool)
		postInterval := make(map[int]bool)
		for _, end := range ends {
			taken := 0
			for _, i := range idx {
				if !words[i].ValidatedAt.After(end) {
					continue
				}
				postInterval[i] = true
				if taken < p.PostIntervalWords {
					positionCandidate[i] = true
					taken++
				}
			}
		}

		highLength := 0
		for i := range postInterval {
			if words[i].Length >= p.MidBandMinLength {
				highLength++
			}
		}
		majorityHolds := len(postInterval) > 0 && highLength*2 > len(postInterval)

		for _, i := range idx {
			w := words[i]
			v := WordVerdict{
				ParticipantID:   w.ParticipantID,
				Phase:           w.Phase,
				Word:            w.Word,
				Length:          w.Length,
				CreationSeconds: w.CreationSeconds,
			}

			entry, hasThreshold := table.Lookup(phase, w.Length)
			if hasThreshold {
				v.ThresholdSeconds = entry.Seconds
				v.ThresholdSource = entry.Source
			}

			if positionCandidate[i] && w.Length >= p.TopBandMinLength {
				v.TriggeredRules = append(v.TriggeredRules, RulePosition)
			}
			if majorityHolds && postInterval[i] {
				v.TriggeredRules = append(v.TriggeredRules, RuleMajorityLength)
			}
			if hasThreshold && w.CreationSeconds < entry.Seconds {
				v.TriggeredRules = append(v.TriggeredRules, RuleSpeed)
			}

			v.Flagged = len(v.TriggeredRules) > 0
			verdicts[i] = v
		}
	}

	// Words outside the known phases still get a bare verdict so the
	// verdict slice stays parallel to the input.
	for i, w := range words {
		if phaseRank(w.Phase) >= len(analysisPhases) {
			verdicts[i] = WordVerdict{
				ParticipantID:   w.ParticipantID,
				Phase:           w.Phase,
				Word:            w.Word,
				Length:          w.Length,
				CreationSeconds: w.CreationSeconds,
			}
		}
	}

	return verdicts
}
