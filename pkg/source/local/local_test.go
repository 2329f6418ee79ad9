package local

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emerge.log")
	require.NoError(t, os.WriteFile(path, []byte("1517609348: Started emerge\n"), 0o600))

	s := localSource{path: path}
	rc, err := s.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Started emerge")
}

func TestOpenMissingPathAndCmdErrors(t *testing.T) {
	s := localSource{}
	_, err := s.Open(context.Background())
	assert.Error(t, err)
}

func TestOpenCmdStreamsStdout(t *testing.T) {
	s := localSource{cmd: "echo hello-from-cmd"}
	rc, err := s.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello-from-cmd")
}

func TestOpenFollowDeliversAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emerge.log")
	require.NoError(t, os.WriteFile(path, []byte("1517609348: Started emerge on\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := localSource{path: path, follow: true}
	rc, err := s.Open(ctx)
	require.NoError(t, err)
	defer rc.Close()

	r := bufio.NewReader(rc)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "Started emerge on")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("1517609408:  >>> emerge (1 of 1) dev-libs/foo-1.2.3 to /\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := r.ReadString('\n')
		done <- result{line, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Contains(t, res.line, "dev-libs/foo-1.2.3")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for appended line to be followed")
	}
}
