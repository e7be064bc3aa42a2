package detection

import (
	"encoding/json"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// ExtractWords builds the WordRecord list for one participant from their
// normalized events. Creation time is the distance between consecutive
// word_validation events (phase start for the first word), regardless of
// whether the earlier word turned out to be a valid dictionary word.
//
// word_submission and word_removal events are matched to the most recent
// record for the same word; a removed word keeps its record (the timing
// signal stays classifiable) but is excluded from performance scoring.
// The study definition supplies the reward when the event payload omits it.
func ExtractWords(events []models.Event, study *models.Study) []models.WordRecord {
	var all []models.WordRecord
	for _, phase := range analysisPhases {
		var phaseEvents []models.Event
		for _, ev := range events {
			if ev.Phase == phase {
				phaseEvents = append(phaseEvents, ev)
			}
		}
		if len(phaseEvents) == 0 {
			continue
		}

		prev := phaseEvents[0].Timestamp // phase start
		var records []models.WordRecord

		for _, ev := range phaseEvents {
			switch ev.Type {
			case models.EventWordValidation:
				wp, ok := decodeWordPayload(ev.Payload)
				if !ok {
					continue
				}
				length := wp.Length
				if length <= 0 {
					length = len([]rune(wp.Word))
				}
				reward := wp.Reward
				if reward == 0 && study != nil {
					reward = study.RewardForLength(length)
				}
				records = append(records, models.WordRecord{
					ParticipantID:         ev.ParticipantID,
					Phase:                 phase,
					Word:                  wp.Word,
					Length:                length,
					IsValidDictionaryWord: wp.Valid,
					ValidatedAt:           ev.Timestamp,
					RewardIfValid:         reward,
					CreationSeconds:       ev.Timestamp.Sub(prev).Seconds(),
				})
				prev = ev.Timestamp

			case models.EventWordSubmission:
				wp, ok := decodeWordPayload(ev.Payload)
				if !ok {
					break
				}
				for i := len(records) - 1; i >= 0; i-- {
					if records[i].SubmittedAt == nil && sameWord(records[i].Word, wp.Word) {
						t := ev.Timestamp
						records[i].SubmittedAt = &t
						break
					}
				}

			case models.EventWordRemoval:
				wp, ok := decodeWordPayload(ev.Payload)
				if !ok {
					break
				}
				for i := len(records) - 1; i >= 0; i-- {
					if !records[i].Removed && sameWord(records[i].Word, wp.Word) {
						records[i].Removed = true
						break
					}
				}
			}
		}
		all = append(all, records...)
	}
	return all
}

func decodeWordPayload(payload json.RawMessage) (models.WordPayload, bool) {
	var wp models.WordPayload
	if len(payload) == 0 {
		return wp, false
	}
	if err := json.Unmarshal(payload, &wp); err != nil || wp.Word == "" {
		return wp, false
	}
	return wp, true
}

func sameWord(a, b string) bool {
	return NormalizeWord(a) == NormalizeWord(b)
}
