// Package repository mediates between the analysis pipeline and the study
// database: it reads the ingestion service's event stream and persists run
// results.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/svdpmukherjee/wordgame-analysis/internal/database"
	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// LoadRawEvents reads the full captured event stream grouped by
// participant. Ordering within a participant is left to the normalizer,
// which sorts canonically anyway; the query orders rows only to keep the
// scan cache-friendly and deterministic.
func LoadRawEvents(ctx context.Context) (map[string][]models.RawEvent, error) {
	var stored []models.StoredEvent
	err := database.DB.WithContext(ctx).
		Order("participant_id, timestamp, id").
		Find(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	grouped := make(map[string][]models.RawEvent)
	for _, se := range stored {
		grouped[se.ParticipantID] = append(grouped[se.ParticipantID], models.RawEvent{
			ParticipantID: se.ParticipantID,
			SessionPhase:  se.SessionPhase,
			Type:          se.EventType,
			Timestamp:     se.Timestamp.UTC().Format(time.RFC3339Nano),
			Payload:       json.RawMessage(se.Payload),
		})
	}
	return grouped, nil
}
