package detection

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// timestampLayouts are the ISO-8601 forms the ingestion service is known to
// emit. Bare local times are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// NormalizeEvents turns one participant's raw event records into a single
// canonical, time-ascending sequence. Client batching and retries mean the
// input may contain duplicates and out-of-order timestamps; this is the one
// place in the engine where that is repaired, so everything downstream can
// assume ordered, deduplicated input.
//
// Duplicates are dropped by (type, timestamp, payload hash). A missing
// participantId, type or timestamp, or an unparsable timestamp, fails the
// whole participant with a DataQualityError: their metrics row is still
// reported, but their timings are not trusted to seed the threshold pool.
// Unknown event types are preserved; downstream stages ignore them.
func NormalizeEvents(participantID string, raw []models.RawEvent) ([]models.Event, error) {
	type dedupKey struct {
		eventType string
		unixNano  int64
		payload   string
	}
	type hashedEvent struct {
		event models.Event
		hash  string
	}

	hashed := make([]hashedEvent, 0, len(raw))
	seen := make(map[dedupKey]struct{}, len(raw))

	for i, r := range raw {
		if r.ParticipantID == "" || r.ParticipantID != participantID {
			return nil, &DataQualityError{
				ParticipantID: participantID,
				Reason:        fmt.Sprintf("event %d has a missing or conflicting participantId", i),
			}
		}
		if r.Type == "" {
			return nil, &DataQualityError{
				ParticipantID: participantID,
				Reason:        fmt.Sprintf("event %d has no type", i),
			}
		}
		if r.Timestamp == "" {
			return nil, &DataQualityError{
				ParticipantID: participantID,
				Reason:        fmt.Sprintf("event %d has no timestamp", i),
			}
		}

		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			return nil, &DataQualityError{
				ParticipantID: participantID,
				Reason:        fmt.Sprintf("event %d has unparsable timestamp %q", i, r.Timestamp),
			}
		}

		hash := payloadHash(r.Payload)
		key := dedupKey{eventType: r.Type, unixNano: ts.UnixNano(), payload: hash}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		hashed = append(hashed, hashedEvent{
			event: models.Event{
				ParticipantID: r.ParticipantID,
				Phase:         models.Phase(r.SessionPhase),
				Type:          models.EventType(r.Type),
				Timestamp:     ts,
				Payload:       r.Payload,
			},
			hash: hash,
		})
	}

	// Client timestamps are untrusted, so the secondary keys matter: they
	// make tie order deterministic across runs and input orderings.
	sort.SliceStable(hashed, func(i, j int) bool {
		a, b := hashed[i], hashed[j]
		if !a.event.Timestamp.Equal(b.event.Timestamp) {
			return a.event.Timestamp.Before(b.event.Timestamp)
		}
		if a.event.Type != b.event.Type {
			return a.event.Type < b.event.Type
		}
		return a.hash < b.hash
	})

	events := make([]models.Event, len(hashed))
	for i, h := range hashed {
		events[i] = h.event
	}
	return events, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", s)
}

func payloadHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
