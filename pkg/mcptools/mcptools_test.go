package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bascanada/buildlog/pkg/config"
	_ "github.com/bascanada/buildlog/pkg/source/local"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureLog = `1517609348: Started emerge on ; -vet dev-libs/foo-1.2.3
1517609348:  >>> emerge (1 of 1) dev-libs/foo-1.2.3 to /
1517609408:  ::: completed emerge (1 of 1) dev-libs/foo-1.2.3 to /
1517609500:  >>> emerge (1 of 1) dev-libs/bar-2.0 to /
`

func testDeps(t *testing.T) Deps {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emerge.log")
	require.NoError(t, os.WriteFile(path, []byte(fixtureLog), 0o600))

	cfg := &config.Config{
		DefaultSource: "local",
		DefaultWindow: 10,
		Sources: config.Sources{
			"local": {Type: "local", Options: map[string]string{"path": path}},
		},
	}
	return Deps{Config: cfg}
}

func req(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func TestHistoryHandlerReturnsAllEvents(t *testing.T) {
	deps := testDeps(t)
	result, err := historyHandler(deps)(context.Background(), req(nil))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "dev-libs/foo")
	assert.Contains(t, text, "MergeStart")
	assert.Contains(t, text, "MergeStop")
}

func TestHistoryHandlerFiltersByPkg(t *testing.T) {
	deps := testDeps(t)
	result, err := historyHandler(deps)(context.Background(), req(map[string]any{"pkg": "bar"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "dev-libs/bar")
	assert.NotContains(t, text, "dev-libs/foo")
}

func TestHistoryHandlerFiltersByShow(t *testing.T) {
	deps := testDeps(t)
	result, err := historyHandler(deps)(context.Background(), req(map[string]any{"show": "u"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Equal(t, "[]", text)
}

func TestHistoryHandlerRejectsUnknownShowToken(t *testing.T) {
	deps := testDeps(t)
	result, err := historyHandler(deps)(context.Background(), req(map[string]any{"show": "bogus"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestCurrentBuildsHandlerReportsOnlyUnmatchedStart(t *testing.T) {
	deps := testDeps(t)
	result, err := currentBuildsHandler(deps)(context.Background(), req(nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "dev-libs/bar")
	assert.NotContains(t, text, "dev-libs/foo")
}

func TestPredictHandlerEstimatesPendingFromHistory(t *testing.T) {
	deps := testDeps(t)
	result, err := predictHandler(deps)(context.Background(), req(nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "dev-libs/bar")
	assert.Contains(t, text, "totalEtaSeconds")
}

func TestHistoryHandlerUnknownSourceErrors(t *testing.T) {
	deps := testDeps(t)
	result, err := historyHandler(deps)(context.Background(), req(map[string]any{"source": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}
