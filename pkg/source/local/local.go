// Package local implements a source.Source that reads a local emerge.log
// file directly, or runs a configured shell command and streams its stdout
// (e.g. "tail -F /var/log/emerge.log" for a live-following read).
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/fsnotify/fsnotify"

	"github.com/bascanada/buildlog/pkg/applog"
	"github.com/bascanada/buildlog/pkg/source"
)

const (
	optionPath   = "path"
	optionCmd    = "cmd"
	optionFollow = "follow"
)

type localSource struct {
	path   string
	cmd    string
	follow bool
}

func init() {
	source.Register("local", func(opts map[string]string) (source.Source, error) {
		return localSource{
			path:   opts[optionPath],
			cmd:    opts[optionCmd],
			follow: opts[optionFollow] == "true",
		}, nil
	})
}

func (s localSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.path != "" {
		if s.follow {
			return followFile(ctx, s.path)
		}
		return os.Open(s.path)
	}
	if s.cmd == "" {
		return nil, errors.New("local source needs either a 'path' or a 'cmd' option")
	}

	rendered, err := renderCmd(s.cmd)
	if err != nil {
		return nil, err
	}

	shellName, shellArgs := shell()
	ecmd := exec.CommandContext(ctx, shellName, append(shellArgs, rendered)...)
	stdout, err := ecmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("local source stdout pipe: %w", err)
	}
	if err := ecmd.Start(); err != nil {
		return nil, fmt.Errorf("local source start: %w", err)
	}
	return &cmdReader{ReadCloser: stdout, cmd: ecmd}, nil
}

func renderCmd(cmdTplStr string) (string, error) {
	tmpl, err := template.New("cmd").Parse(cmdTplStr)
	if err != nil {
		return "", fmt.Errorf("parsing command template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("executing command template: %w", err)
	}
	return buf.String(), nil
}

func shell() (string, []string) {
	if runtime.GOOS == "windows" {
		return "powershell", []string{"-Command"}
	}
	return "sh", []string{"-c"}
}

// cmdReader waits for the spawned process when it is closed, so callers
// never leak a zombie.
type cmdReader struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (c *cmdReader) Close() error {
	closeErr := c.ReadCloser.Close()
	waitErr := c.cmd.Wait()
	if closeErr != nil {
		return closeErr
	}
	return waitErr
}

// followFile opens path and keeps delivering bytes appended to it after EOF,
// like "tail -F", watching the containing directory with fsnotify rather
// than polling. Used by "buildlog watch" against a local emerge.log.
func followFile(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("local source: starting watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		f.Close()
		watcher.Close()
		return nil, fmt.Errorf("local source: watching %s: %w", filepath.Dir(path), err)
	}

	pr, pw := io.Pipe()
	go followLoop(ctx, f, watcher, path, pw)

	return pr, nil
}

func followLoop(ctx context.Context, f *os.File, watcher *fsnotify.Watcher, path string, pw *io.PipeWriter) {
	defer f.Close()
	defer watcher.Close()

	drain := func() bool {
		if _, err := io.Copy(pw, f); err != nil {
			pw.CloseWithError(err)
			return false
		}
		return true
	}

	if !drain() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			pw.Close()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				pw.Close()
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !drain() {
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				pw.Close()
				return
			}
			applog.Warn("local source: watch error on %s: %v", path, err)
		}
	}
}
