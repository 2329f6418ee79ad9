package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/buildlog/pkg/emergelog"
	"github.com/bascanada/buildlog/pkg/predict"
)

func TestInFlightPendingReportsOnlyUnmatchedStart(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, 0, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 60, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStart, 60, "sys-apps/bar", "2.0", "1"),
	}

	tracker := predict.NewTracker(10)
	pending := inFlightPending(events, tracker)

	require.Len(t, pending, 1)
	assert.Equal(t, "sys-apps/bar", pending[0].Pkg)
	assert.Equal(t, "2.0", pending[0].Version)
}

func TestInFlightPendingFeedsTrackerForCompletedDurations(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, 0, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 60, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStart, 60, "dev-libs/foo", "1.1", "1"),
	}

	tracker := predict.NewTracker(10)
	pending := inFlightPending(events, tracker)
	require.Len(t, pending, 1)

	estimates, total := tracker.Predict(pending)
	require.Len(t, estimates, 1)
	assert.True(t, estimates[0].Known)
	assert.Equal(t, float64(60), estimates[0].Seconds)
	assert.Equal(t, float64(60), total)
}

func TestInFlightPendingEmptyWhenNothingInProgress(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, 0, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 60, "dev-libs/foo", "1.0", "1"),
	}
	assert.Empty(t, inFlightPending(events, predict.NewTracker(10)))
}
