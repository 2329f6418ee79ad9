// Package source supplies the io.Reader that the historical event stream
// (pkg/emergelog) tokenizes, regardless of where the build log actually
// lives: a local file, a remote host over SSH, a Kubernetes pod, a Docker
// container, or a CloudWatch Logs group/stream.
package source

import (
	"context"
	"fmt"
	"io"

	"github.com/bascanada/buildlog/pkg/config"
)

// Source opens a fresh reader of newline-delimited emerge-log lines. Callers
// must Close the returned ReadCloser once done.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Factory constructs a Source from a config.Source's Options map.
type Factory func(opts map[string]string) (Source, error)

var registry = map[string]Factory{}

// Register adds a backend factory under name. Called from each backend
// package's init().
func Register(name string, f Factory) {
	registry[name] = f
}

// New looks up src.Type in the registry and constructs a Source from its
// Options.
func New(src config.Source) (Source, error) {
	f, ok := registry[src.Type]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
	return f(src.Options)
}
