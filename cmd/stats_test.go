package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/buildlog/pkg/bucket"
	"github.com/bascanada/buildlog/pkg/emergelog"
)

func TestComputeStatsNoGroupingAggregatesAcrossWholeStream(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, 0, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 60, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStart, 60, "dev-libs/foo", "1.1", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 180, "dev-libs/foo", "1.1", "1"),
	}

	rows := computeStats(events, nil, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, "dev-libs/foo", rows[0].Pkg)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, int64(180), rows[0].TotalSec)
	assert.Equal(t, int64(90), rows[0].AvgSec)
}

func TestComputeStatsGroupsByDayBoundary(t *testing.T) {
	day0 := int64(0)
	day1 := int64(100000)

	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, day0, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, day0+60, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStart, day1, "dev-libs/foo", "2.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, day1+30, "dev-libs/foo", "2.0", "1"),
	}

	span := bucket.Day
	rows := computeStats(events, &span, 0)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(60), rows[0].TotalSec)
	assert.Equal(t, int64(30), rows[1].TotalSec)
	assert.NotEqual(t, rows[0].Bucket, rows[1].Bucket)
}

func TestComputeStatsDiscardsUnmatchedStop(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, 0, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 60, "dev-libs/foo", "2.0", "1"),
	}
	assert.Empty(t, computeStats(events, nil, 0))
}

func TestComputeStatsInterruptedStartDiscardedOnNewStart(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, 0, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStart, 30, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 90, "dev-libs/foo", "1.0", "1"),
	}
	rows := computeStats(events, nil, 0)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(60), rows[0].TotalSec)
}

func TestComputeStatsAggregatesSyncUnderPseudoPackage(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewSyncEvent(emergelog.SyncStart, 0),
		emergelog.NewSyncEvent(emergelog.SyncStop, 45),
		emergelog.NewMergeEvent(emergelog.MergeStart, 45, "dev-libs/foo", "1.0", "1"),
		emergelog.NewMergeEvent(emergelog.MergeStop, 105, "dev-libs/foo", "1.0", "1"),
	}

	rows := computeStats(events, nil, 0)
	require.Len(t, rows, 2)

	var syncRow, pkgRow statsRow
	for _, r := range rows {
		if r.Pkg == syncPkgLabel {
			syncRow = r
		} else {
			pkgRow = r
		}
	}
	assert.Equal(t, 1, syncRow.Count)
	assert.Equal(t, int64(45), syncRow.TotalSec)
	assert.Equal(t, "dev-libs/foo", pkgRow.Pkg)
	assert.Equal(t, int64(60), pkgRow.TotalSec)
}

func TestComputeStatsDiscardsUnmatchedSyncStop(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewSyncEvent(emergelog.SyncStop, 45),
	}
	assert.Empty(t, computeStats(events, nil, 0))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "45s", formatSeconds(45))
	assert.Equal(t, "2m05s", formatSeconds(125))
	assert.Equal(t, "1h00m01s", formatSeconds(3601))
}
