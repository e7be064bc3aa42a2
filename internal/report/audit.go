package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/svdpmukherjee/wordgame-analysis/internal/detection"
	"github.com/svdpmukherjee/wordgame-analysis/internal/pipeline"
)

const (
	auditDirName     = "audit"
	manifestFileName = "manifest.json"
)

// Manifest summarizes a run for later forensics: identity, parameters, the
// published threshold table and headline counts.
type Manifest struct {
	RunID               string                     `json:"runId"`
	StartedAt           time.Time                  `json:"startedAt"`
	FinishedAt          time.Time                  `json:"finishedAt"`
	Params              detection.Params           `json:"params"`
	Participants        int                        `json:"participants"`
	DataQualityIssues   int                        `json:"dataQualityIssues"`
	FlaggedParticipants int                        `json:"flaggedParticipants"`
	Thresholds          []detection.ThresholdEntry `json:"thresholds"`
	PhaseFallbacks      []detection.ThresholdEntry `json:"phaseFallbacks"`
}

// WriteAuditArtifacts writes one JSON file per participant under dir/audit
// plus the run manifest. Together they keep every flagged word traceable to
// the rules and threshold that flagged it.
func WriteAuditArtifacts(dir string, res *pipeline.Result) error {
	auditDir := filepath.Join(dir, auditDirName)
	if err := os.MkdirAll(auditDir, 0755); err != nil {
		return fmt.Errorf("can't create audit directory: %w", err)
	}

	for i := range res.Participants {
		pr := &res.Participants[i]
		data, err := json.MarshalIndent(pr, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode audit for %s: %w", pr.ParticipantID, err)
		}
		path := filepath.Join(auditDir, participantFileName(pr.ParticipantID))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write audit for %s: %w", pr.ParticipantID, err)
		}
	}

	return writeManifest(dir, res)
}

func writeManifest(dir string, res *pipeline.Result) error {
	man := Manifest{
		RunID:        res.RunID,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		Params:       res.Params,
		Participants: len(res.Participants),
	}
	if res.Thresholds != nil {
		man.Thresholds = res.Thresholds.Entries()
		man.PhaseFallbacks = res.Thresholds.Globals()
	}
	for _, pr := range res.Participants {
		if pr.Metrics.DataQualityIssue {
			man.DataQualityIssues++
		}
		for _, v := range pr.Verdicts {
			if v.Flagged {
				man.FlaggedParticipants++
				break
			}
		}
	}

	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	path := filepath.Join(dir, manifestFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// participantFileName makes a participant ID safe to use as a file name.
// IDs arrive in client-submitted payloads and are not trusted; the empty
// bucket collects events that carried no ID at all.
func participantFileName(id string) string {
	if id == "" {
		return "unknown-participant.json"
	}
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".json"
}
