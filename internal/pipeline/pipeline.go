// Package pipeline orchestrates one analysis run as a two-phase batch job:
// a parallel collection stage (normalize, intervals, words) per participant,
// a single barrier where the shared threshold table is built, then a
// parallel classification stage against the immutable table. Keeping the
// barrier explicit is what makes the one cross-participant dependency
// visible and testable.
package pipeline

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/svdpmukherjee/wordgame-analysis/internal/detection"
	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// Input is the immutable snapshot one run works from: raw events grouped by
// participant, the externally supplied confession set, and the study
// definition. The pipeline never writes into it.
type Input struct {
	Events      map[string][]models.RawEvent
	Confessions map[string]*models.ConfessionRecord
	Study       *models.Study
}

// ParticipantResult bundles everything derived for one participant. All of
// it goes into the audit artifact; Metrics alone feeds the tabular output.
type ParticipantResult struct {
	ParticipantID     string                      `json:"participantId"`
	DataQualityReason string                      `json:"dataQualityReason,omitempty"`
	Intervals         []models.SuspiciousInterval `json:"intervals,omitempty"`
	Words             []models.WordRecord         `json:"words,omitempty"`
	Verdicts          []detection.WordVerdict     `json:"verdicts,omitempty"`
	Confession        *models.ConfessionRecord    `json:"confession,omitempty"`
	Reconciliation    detection.Reconciliation    `json:"reconciliation"`
	Metrics           models.SessionMetrics       `json:"metrics"`
}

// Result is the outcome of one full run. Participants are ordered by ID so
// every emitted artifact is byte-stable across reruns on the same input.
type Result struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Params       detection.Params
	Thresholds   *detection.ThresholdTable
	Participants []ParticipantResult
}

// SessionMetrics returns the terminal rows in participant order.
func (r *Result) SessionMetrics() []models.SessionMetrics {
	out := make([]models.SessionMetrics, len(r.Participants))
	for i, pr := range r.Participants {
		out[i] = pr.Metrics
	}
	return out
}

// Pipeline runs the batch analysis. It holds no per-run state; one value
// can serve many runs.
type Pipeline struct {
	log     *zap.Logger
	params  detection.Params
	workers int
}

// New returns a pipeline with the given parameters. workers <= 0 means one
// worker per CPU.
func New(log *zap.Logger, params detection.Params, workers int) *Pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pipeline{log: log, params: params, workers: workers}
}

// Run executes the two-phase batch over the input snapshot. Per-participant
// data quality failures are recorded, never fatal; the only run-level
// failure is detection.ErrNoThresholdSeed, when not a single valid
// creation time exists to seed the threshold table.
func (p *Pipeline) Run(ctx context.Context, in *Input) (*Result, error) {
	started := time.Now().UTC()
	runID := uuid.NewString()

	ids := make([]string, 0, len(in.Events))
	for id := range in.Events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	p.log.Info("Analysis run starting",
		zap.String("run_id", runID),
		zap.Int("participants", len(ids)),
		zap.Int("workers", p.workers),
	)

	results := make([]ParticipantResult, len(ids))

	// Stage 1: collect. Participants are independent here, so this is
	// embarrassingly parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.collectParticipant(id, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Barrier: every participant's words are in; build the one shared,
	// read-only table before any classification starts.
	var pool []models.WordRecord
	clean := 0
	for _, pr := range results {
		if pr.DataQualityReason == "" {
			pool = append(pool, pr.Words...)
			clean++
		}
	}
	p.log.Info("Collection stage complete",
		zap.Int("clean_participants", clean),
		zap.Int("excluded_participants", len(ids)-clean),
		zap.Int("pooled_words", len(pool)),
	)

	table, err := detection.BuildThresholdTable(pool, p.params)
	if err != nil {
		return nil, err
	}
	p.log.Info("Threshold table built",
		zap.Int("direct_entries", len(table.Entries())),
		zap.Int("phases", len(table.Globals())),
	)

	// Stage 2: classify, reconcile, aggregate against the immutable table.
	g2, g2ctx := errgroup.WithContext(ctx)
	g2.SetLimit(p.workers)
	for i := range results {
		g2.Go(func() error {
			if err := g2ctx.Err(); err != nil {
				return err
			}
			p.finishParticipant(&results[i], table)
			return nil
		})
	}
	if err := g2.Wait(); err != nil {
		return nil, err
	}

	finished := time.Now().UTC()
	p.log.Info("Analysis run complete",
		zap.String("run_id", runID),
		zap.Duration("elapsed", finished.Sub(started)),
	)

	return &Result{
		RunID:        runID,
		StartedAt:    started,
		FinishedAt:   finished,
		Params:       p.params,
		Thresholds:   table,
		Participants: results,
	}, nil
}

func (p *Pipeline) collectParticipant(id string, in *Input) ParticipantResult {
	pr := ParticipantResult{ParticipantID: id}

	events, err := detection.NormalizeEvents(id, in.Events[id])
	if err != nil {
		pr.DataQualityReason = dataQualityReason(err)
		p.log.Warn("Participant excluded from threshold pool",
			zap.String("participant", id),
			zap.String("reason", pr.DataQualityReason),
		)
		return pr
	}

	pr.Intervals = detection.DetectIntervals(events, p.params)
	pr.Words = detection.ExtractWords(events, in.Study)
	if pr.Confession = in.Confessions[id]; pr.Confession == nil {
		pr.Confession = detection.ExtractConfession(events)
	}

	p.log.Debug("Participant collected",
		zap.String("participant", id),
		zap.Int("events", len(events)),
		zap.Int("intervals", len(pr.Intervals)),
		zap.Int("words", len(pr.Words)),
	)
	return pr
}

func (p *Pipeline) finishParticipant(pr *ParticipantResult, table *detection.ThresholdTable) {
	if pr.DataQualityReason != "" {
		pr.Metrics = detection.DataQualityMetrics(pr.ParticipantID)
		return
	}
	pr.Verdicts = detection.ClassifyWords(pr.Words, pr.Intervals, table, p.params)
	pr.Reconciliation = detection.ReconcileConfession(pr.Verdicts, pr.Confession)
	pr.Metrics = detection.AggregateSession(pr.ParticipantID, pr.Words, pr.Verdicts, pr.Intervals, pr.Reconciliation, p.params)
}

func dataQualityReason(err error) string {
	var dq *detection.DataQualityError
	if errors.As(err, &dq) {
		return dq.Reason
	}
	return err.Error()
}
