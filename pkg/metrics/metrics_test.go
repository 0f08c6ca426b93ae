package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersStartAtZero(t *testing.T) {
	r := New()
	snap := r.TakeSnapshot()

	require.Zero(t, snap.WritesTotal)
	require.Zero(t, snap.ReadsTotal)
	require.Zero(t, snap.FlushesTotal)
	require.Zero(t, snap.CompactionsTotal)
}

func TestRegistry_TakeSnapshotReflectsIncrements(t *testing.T) {
	r := New()
	r.WritesTotal.Inc()
	r.WritesTotal.Inc()
	r.BytesWritten.Add(42)

	snap := r.TakeSnapshot()
	require.EqualValues(t, 2, snap.WritesTotal)
	require.EqualValues(t, 42, snap.BytesWritten)
}

func TestRegistry_IndependentInstancesDoNotShareState(t *testing.T) {
	a, b := New(), New()
	a.WritesTotal.Inc()

	require.EqualValues(t, 1, a.TakeSnapshot().WritesTotal)
	require.EqualValues(t, 0, b.TakeSnapshot().WritesTotal)
}

func TestRegistry_GathererExposesRegisteredMetrics(t *testing.T) {
	r := New()
	r.WritesTotal.Inc()

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}
