package emergelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShowEmptyDefaultsToAll(t *testing.T) {
	s, err := ParseShow("")
	require.NoError(t, err)
	assert.Equal(t, ShowAll, s)
}

func TestParseShowSingleLetters(t *testing.T) {
	s, err := ParseShow("m,u,s")
	require.NoError(t, err)
	assert.Equal(t, ShowMerge|ShowUnmerge|ShowSync, s)
}

func TestParseShowLongForms(t *testing.T) {
	s, err := ParseShow("merge, sync")
	require.NoError(t, err)
	assert.Equal(t, ShowMerge|ShowSync, s)
}

func TestParseShowPkgAndTotImplyMergeUnmerge(t *testing.T) {
	s, err := ParseShow("p")
	require.NoError(t, err)
	assert.True(t, s.mergeEnabled())
	assert.True(t, s.unmergeEnabled())
	assert.False(t, s.syncEnabled())

	s, err = ParseShow("t")
	require.NoError(t, err)
	assert.True(t, s.mergeEnabled())
	assert.True(t, s.unmergeEnabled())
}

func TestParseShowAllToken(t *testing.T) {
	s, err := ParseShow("a")
	require.NoError(t, err)
	assert.Equal(t, ShowAll, s)
}

func TestParseShowUnknownToken(t *testing.T) {
	_, err := ParseShow("x")
	assert.Error(t, err)
}
