package docker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceRequiresContainer(t *testing.T) {
	_, err := newSource(map[string]string{optionHost: "unix:///var/run/docker.sock"})
	assert.Error(t, err)
}

func TestNewSourceDefaultsHost(t *testing.T) {
	s, err := newSource(map[string]string{optionContainer: "builder"})
	require.NoError(t, err)
	assert.Equal(t, "unix:///var/run/docker.sock", s.host)
}

func TestNewSourceExplicitHost(t *testing.T) {
	s, err := newSource(map[string]string{optionContainer: "builder", optionHost: "ssh://ci-box"})
	require.NoError(t, err)
	assert.Equal(t, "ssh://ci-box", s.host)
}
