package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dqs-sentinel/src/contracts"
)

func TestStatsRecordAndSnapshot(t *testing.T) {
	a := NewStatsAggregator()
	a.Record(contracts.ActionSafe, 90.0)
	a.Record(contracts.ActionReview, 70.0)
	a.Record(contracts.ActionEscalate, 20.0)
	a.Record(contracts.ActionNone, 50.0)
	a.Record("BOGUS", 99.0)

	snap := a.Snapshot()
	require.Equal(t, 4, snap.Total)
	require.Equal(t, 1, snap.Safe)
	require.Equal(t, 1, snap.Review)
	require.Equal(t, 1, snap.Escalate)
	require.Equal(t, 1, snap.Rejected)
	require.Equal(t, 57.5, snap.AvgDQS)
}

func TestStatsAverageRounding(t *testing.T) {
	a := NewStatsAggregator()
	a.Record(contracts.ActionSafe, 33.33)
	a.Record(contracts.ActionSafe, 33.33)
	a.Record(contracts.ActionSafe, 33.35)

	require.Equal(t, 33.3, a.Snapshot().AvgDQS)
}

func TestStatsRestoreThenRecord(t *testing.T) {
	a := NewStatsAggregator()
	a.Restore(contracts.StatsSnapshot{
		Total: 10, Safe: 5, Review: 3, Escalate: 1, Rejected: 1, AvgDQS: 72.4,
	})
	a.Record(contracts.ActionSafe, 80.0)

	snap := a.Snapshot()
	require.Equal(t, 11, snap.Total)
	require.Equal(t, 6, snap.Safe)
	require.Equal(t, 73.1, snap.AvgDQS)
}

func TestStatsReset(t *testing.T) {
	a := NewStatsAggregator()
	a.Record(contracts.ActionSafe, 90.0)
	a.Reset()

	require.Equal(t, contracts.StatsSnapshot{}, a.Snapshot())
}
