package pretend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMatchesEbuildLines(t *testing.T) {
	input := strings.Join([]string{
		"[ebuild   R   ] dev-libs/foo-1.2.3  USE=\"static-libs\" 0 KiB",
		"[ebuild  N     ] sys-apps/bar-2-3_r1  123 KiB",
		"Total: 2 packages",
		"",
	}, "\n")

	got := Read(strings.NewReader(input), "pretend", nil)
	require.Len(t, got, 2)
	assert.Equal(t, Pending{Pkg: "dev-libs/foo", Version: "1.2.3"}, got[0])
	assert.Equal(t, Pending{Pkg: "sys-apps/bar", Version: "2-3_r1"}, got[1])
}

func TestReadSkipsNonMatchingLines(t *testing.T) {
	input := "These are the packages that would be merged, in order:\n\nTotal: 0 packages\n"
	got := Read(strings.NewReader(input), "pretend", nil)
	assert.Empty(t, got)
}

func TestReadEmptyInput(t *testing.T) {
	got := Read(strings.NewReader(""), "pretend", nil)
	assert.Empty(t, got)
}
