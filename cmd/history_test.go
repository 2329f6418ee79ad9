package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/buildlog/pkg/emergelog"
)

func TestToHistoryRowsProjectsAccessorMethods(t *testing.T) {
	events := []emergelog.Event{
		emergelog.NewMergeEvent(emergelog.MergeStart, 1517609348, "dev-libs/foo", "1.2.3", "1"),
		emergelog.NewSyncEvent(emergelog.SyncStop, 1517609400),
	}

	rows := toHistoryRows(events)
	require.Len(t, rows, 2)

	assert.Equal(t, "MergeStart", rows[0].Kind)
	assert.Equal(t, int64(1517609348), rows[0].TS)
	assert.Equal(t, "dev-libs/foo", rows[0].Pkg)
	assert.Equal(t, "1.2.3", rows[0].Version)

	assert.Equal(t, "SyncStop", rows[1].Kind)
	assert.Empty(t, rows[1].Pkg)
}
