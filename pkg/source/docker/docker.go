// Package docker implements a source.Source that streams a build
// container's log, demultiplexing Docker's stdout/stderr framing.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bascanada/buildlog/pkg/source"
	"github.com/docker/cli/cli/connhelper"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const (
	optionHost      = "host"
	optionContainer = "container"
)

type dockerSource struct {
	host      string
	container string
}

func init() {
	source.Register("docker", func(opts map[string]string) (source.Source, error) {
		return newSource(opts)
	})
}

func newSource(opts map[string]string) (dockerSource, error) {
	s := dockerSource{host: opts[optionHost], container: opts[optionContainer]}
	if s.container == "" {
		return dockerSource{}, errors.New("docker source: container is required")
	}
	if s.host == "" {
		s.host = "unix:///var/run/docker.sock"
	}
	return s, nil
}

func (s dockerSource) Open(ctx context.Context) (io.ReadCloser, error) {
	apiClient, err := s.client()
	if err != nil {
		return nil, err
	}

	out, err := apiClient.ContainerLogs(ctx, s.container, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       "all",
	})
	if err != nil {
		return nil, fmt.Errorf("docker container logs: %w", err)
	}

	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, out)
		_ = pw.CloseWithError(err)
		_ = out.Close()
	}()
	return pr, nil
}

func (s dockerSource) client() (*client.Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithHost(s.host)}

	helper, err := connhelper.GetConnectionHelper(s.host)
	if err != nil {
		return nil, fmt.Errorf("docker connection helper: %w", err)
	}
	if helper != nil {
		opts = append(opts, client.WithDialContext(helper.Dialer))
	}
	opts = append(opts, client.WithAPIVersionNegotiation())

	return client.NewClientWithOpts(opts...)
}
