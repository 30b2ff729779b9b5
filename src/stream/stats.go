package stream

import (
	"math"

	"dqs-sentinel/src/contracts"
)

// StatsAggregator keeps O(1) running counts per disposition plus the running
// average score. It has a single writer, the dispatcher loop; nothing else
// may touch it.
type StatsAggregator struct {
	total    int
	safe     int
	review   int
	escalate int
	rejected int
	scoreSum float64
}

// NewStatsAggregator returns an empty aggregator.
func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{}
}

// Record tallies one classified event. Unknown actions are the caller's
// problem; the dispatcher drops them before they get here.
func (a *StatsAggregator) Record(action contracts.Action, score float64) {
	switch action {
	case contracts.ActionSafe:
		a.safe++
	case contracts.ActionReview:
		a.review++
	case contracts.ActionEscalate:
		a.escalate++
	case contracts.ActionNone:
		a.rejected++
	default:
		return
	}
	a.total++
	a.scoreSum += score
}

// Restore overwrites the tallies with a server-side snapshot. Used once per
// connection, when the start ack delivers the initial stats.
func (a *StatsAggregator) Restore(s contracts.StatsSnapshot) {
	a.total = s.Total
	a.safe = s.Safe
	a.review = s.Review
	a.escalate = s.Escalate
	a.rejected = s.Rejected
	a.scoreSum = s.AvgDQS * float64(s.Total)
}

// Reset zeroes all counters.
func (a *StatsAggregator) Reset() {
	*a = StatsAggregator{}
}

// Snapshot returns the current tallies. The average is rounded to one
// decimal, matching the backend's own stats.
func (a *StatsAggregator) Snapshot() contracts.StatsSnapshot {
	avg := 0.0
	if a.total > 0 {
		avg = round1(a.scoreSum / float64(a.total))
	}
	return contracts.StatsSnapshot{
		Total:    a.total,
		Safe:     a.safe,
		Review:   a.review,
		Escalate: a.escalate,
		Rejected: a.rejected,
		AvgDQS:   avg,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
