// Package snapshot loads the immutable input for one analysis run from the
// JSON exports produced by the ingestion service, validating the wire format
// before anything downstream touches it.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
	"github.com/svdpmukherjee/wordgame-analysis/internal/pipeline"
)

// LoadEvents reads an events export: either a single JSON array file or a
// directory of *.json array files (one per export batch). Every file must
// pass schema validation; a malformed file fails the load as a whole, since
// a half-read snapshot would silently skew the threshold pool.
func LoadEvents(path string) ([]models.RawEvent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("events input: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("events input: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("events input: no *.json files in %s", path)
		}
		sort.Strings(matches)
		files = matches
	}

	var all []models.RawEvent
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading events file: %w", err)
		}
		if findings := ValidateEventsBytes(data); len(findings) > 0 {
			return nil, fmt.Errorf("events file %s failed schema validation: %s",
				filepath.Base(f), strings.Join(findings, "; "))
		}
		var events []models.RawEvent
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("decoding events file %s: %w", filepath.Base(f), err)
		}
		all = append(all, events...)
	}
	return all, nil
}

// LoadConfessions reads the confession set export. An empty path is fine:
// confession events in the stream then cover whoever recorded one.
func LoadConfessions(path string) ([]models.ConfessionRecord, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading confessions file: %w", err)
	}
	if findings := ValidateConfessionsBytes(data); len(findings) > 0 {
		return nil, fmt.Errorf("confessions file %s failed schema validation: %s",
			filepath.Base(path), strings.Join(findings, "; "))
	}
	var confessions []models.ConfessionRecord
	if err := json.Unmarshal(data, &confessions); err != nil {
		return nil, fmt.Errorf("decoding confessions file: %w", err)
	}
	return confessions, nil
}

// GroupByParticipant buckets raw events by participantId without reordering
// them; ordering is the normalizer's job. Events with an empty participantId
// land in the "" bucket, which normalization then reports as a data-quality
// row rather than dropping the events silently.
func GroupByParticipant(events []models.RawEvent) map[string][]models.RawEvent {
	grouped := make(map[string][]models.RawEvent)
	for _, ev := range events {
		grouped[ev.ParticipantID] = append(grouped[ev.ParticipantID], ev)
	}
	return grouped
}

// BuildInput assembles the full pipeline input from the export files. When
// the same participant appears twice in the confession set, the later entry
// wins; the set is keyed per participant at the source, so this only
// happens with hand-edited files.
func BuildInput(eventsPath, confessionsPath string, study *models.Study) (*pipeline.Input, error) {
	events, err := LoadEvents(eventsPath)
	if err != nil {
		return nil, err
	}
	confessions, err := LoadConfessions(confessionsPath)
	if err != nil {
		return nil, err
	}

	confMap := make(map[string]*models.ConfessionRecord, len(confessions))
	for i := range confessions {
		confMap[confessions[i].ParticipantID] = &confessions[i]
	}

	return &pipeline.Input{
		Events:      GroupByParticipant(events),
		Confessions: confMap,
		Study:       study,
	}, nil
}
