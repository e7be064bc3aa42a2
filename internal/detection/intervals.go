package detection

import (
	"sort"
	"time"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
)

// analysisPhases fixes the phase universe and its iteration order. Events
// carrying any other phase value are left out of interval and word analysis.
var analysisPhases = []models.Phase{models.PhaseTutorial, models.PhaseMain}

func phaseRank(p models.Phase) int {
	for i, known := range analysisPhases {
		if p == known {
			return i
		}
	}
	return len(analysisPhases)
}

// DetectIntervals reconstructs the merged suspicious intervals (page-away
// and mouse-inactive) for one participant from their normalized event
// sequence. Pairing runs per phase: an open event with nothing open starts
// an interval, a matching close event ends it, a duplicate open while one is
// already open is a no-op, and a close with nothing open is ignored. An
// interval still open when the phase's last event passes is closed at that
// boundary and marked truncated.
func DetectIntervals(events []models.Event, p Params) []models.SuspiciousInterval {
	var all []models.SuspiciousInterval
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
		phaseEnd := phaseEvents[len(phaseEvents)-1].Timestamp
		all = append(all, pairIntervals(phaseEvents, models.IntervalPage, models.EventPageLeave, models.EventPageReturn, phaseEnd)...)
		all = append(all, pairIntervals(phaseEvents, models.IntervalMouse, models.EventMouseInactiveStart, models.EventMouseActive, phaseEnd)...)
	}
	return MergeIntervals(all, p.MergeGapSeconds)
}

func pairIntervals(events []models.Event, kind models.IntervalKind, opens, closes models.EventType, phaseEnd time.Time) []models.SuspiciousInterval {
	var out []models.SuspiciousInterval
	var openedAt *time.Time

	closeInterval := func(ev models.Event, end time.Time, truncated bool) {
		out = append(out, models.SuspiciousInterval{
			ParticipantID:   ev.ParticipantID,
			Phase:           ev.Phase,
			Kind:            kind,
			Start:           *openedAt,
			End:             end,
			DurationSeconds: end.Sub(*openedAt).Seconds(),
			Truncated:       truncated,
		})
		openedAt = nil
	}

	for _, ev := range events {
		switch ev.Type {
		case opens:
			if openedAt == nil {
				t := ev.Timestamp
				openedAt = &t
			}
			// an open while already open is a duplicate client event
		case closes:
			if openedAt != nil {
				closeInterval(ev, ev.Timestamp, false)
			}
			// a close with nothing open is ignored
		}
	}

	if openedAt != nil {
		last := events[len(events)-1]
		closeInterval(last, phaseEnd, true)
	}
	return out
}

// MergeIntervals merges same-kind intervals within a phase whose gap is
// smaller than gapSeconds (overlap included), taking the union of their time
// ranges so total away time is never double counted. The operation is
// idempotent: merging an already-merged list returns it unchanged.
func MergeIntervals(intervals []models.SuspiciousInterval, gapSeconds float64) []models.SuspiciousInterval {
	sorted := make([]models.SuspiciousInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Phase != b.Phase {
			return phaseRank(a.Phase) < phaseRank(b.Phase)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.End.Before(b.End)
	})

	var merged []models.SuspiciousInterval
	for _, iv := range sorted {
		if len(merged) > 0 {
			prev := &merged[len(merged)-1]
			sameGroup := prev.Phase == iv.Phase && prev.Kind == iv.Kind
			if sameGroup && iv.Start.Sub(prev.End).Seconds() < gapSeconds {
				if iv.End.After(prev.End) {
					prev.End = iv.End
				}
				prev.DurationSeconds = prev.End.Sub(prev.Start).Seconds()
				prev.Truncated = prev.Truncated || iv.Truncated
				continue
			}
		}
		iv.DurationSeconds = iv.End.Sub(iv.Start).Seconds()
		merged = append(merged, iv)
	}

	// Present intervals chronologically, not grouped by kind.
	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Phase != b.Phase {
			return phaseRank(a.Phase) < phaseRank(b.Phase)
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Kind < b.Kind
	})
	return merged
}

// SumDurations totals the merged durations of one interval kind across all
// phases.
func SumDurations(intervals []models.SuspiciousInterval, kind models.IntervalKind) float64 {
	var total float64
	for _, iv := range intervals {
		if iv.Kind == kind {
			total += iv.DurationSeconds
		}
	}
	return total
}
