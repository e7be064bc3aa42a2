package detection

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// ExtractConfession recovers a confession from the event stream itself, for
// participants the externally supplied confession set does not cover. When a
// participant somehow recorded several confession events, the latest one
// wins.
func ExtractConfession(events []models.Event) *models.ConfessionRecord {
	var out *models.ConfessionRecord
	for _, ev := range events {
		if ev.Type != models.EventConfession {
			continue
		}
		var cp models.ConfessionPayload
		if err := json.Unmarshal(ev.Payload, &cp); err != nil {
			continue
		}
		out = &models.ConfessionRecord{
			ParticipantID:         ev.ParticipantID,
			ConfessedWords:        cp.ConfessedWords,
			UsedExternalResources: cp.UsedExternalResources,
		}
	}
	return out
}

// ReconciliationRow marks one word of the flagged/confessed union.
type ReconciliationRow struct {
	Word      string `json:"word"`
	Flagged   bool   `json:"flagged"`
	Confessed bool   `json:"confessed"`
}

// Reconciliation is the outcome of crossing a participant's verdicts with
// their self-reported confession. Notes record mismatches (a confessed word
// that was never flagged, or that does not match any of the participant's
// words); they are data observations, not errors, and never block
// aggregation.
type Reconciliation struct {
	LyingRate    float64             `json:"lyingRate"`
	HasConfessed bool                `json:"hasConfessed"`
	Rows         []ReconciliationRow `json:"rows,omitempty"`
	Notes        []string            `json:"notes,omitempty"`
}

// ReconcileConfession computes the under-reporting measure
//
//	lyingRate = |flagged − confessed| / |flagged|
//
// defined as exactly 0 when no words were flagged. Word comparison is
// case-insensitive since confessions are typed by participants. A nil
// confession means the participant reported nothing: every flagged word
// counts as unconfessed.
func ReconcileConfession(verdicts []WordVerdict, confession *models.ConfessionRecord) Reconciliation {
	flagged := make(map[string]bool)
	validated := make(map[string]bool)
	for _, v := range verdicts {
		w := NormalizeWord(v.Word)
		validated[w] = true
		if v.Flagged {
			flagged[w] = true
		}
	}

	confessed := make(map[string]bool)
	var rec Reconciliation
	if confession != nil {
		for _, cw := range confession.ConfessedWords {
			if norm := NormalizeWord(cw); norm != "" {
				confessed[norm] = true
			}
		}
		rec.HasConfessed = confession.UsedExternalResources || len(confessed) > 0
	}

	if len(flagged) > 0 {
		unconfessed := 0
		for w := range flagged {
			if !confessed[w] {
				unconfessed++
			}
		}
		rec.LyingRate = float64(unconfessed) / float64(len(flagged))
	}

	union := make(map[string]bool, len(flagged)+len(confessed))
	for w := range flagged {
		union[w] = true
	}
	for w := range confessed {
		union[w] = true
	}
	words := make([]string, 0, len(union))
	for w := range union {
		words = append(words, w)
	}
	sort.Strings(words)

	for _, w := range words {
		rec.Rows = append(rec.Rows, ReconciliationRow{
			Word:      w,
			Flagged:   flagged[w],
			Confessed: confessed[w],
		})
		if !confessed[w] {
			continue
		}
		if !validated[w] {
			rec.Notes = append(rec.Notes, fmt.Sprintf("confessed word %q does not match any word this participant validated", w))
		} else if !flagged[w] {
			rec.Notes = append(rec.Notes, fmt.Sprintf("confessed word %q was never flagged", w))
		}
	}

	return rec
}
