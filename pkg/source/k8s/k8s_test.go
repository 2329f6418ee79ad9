package k8s

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceRequiresPod(t *testing.T) {
	_, err := newSource(map[string]string{optionNamespace: "default"})
	assert.Error(t, err)
}

func TestNewSourceOK(t *testing.T) {
	s, err := newSource(map[string]string{
		optionNamespace: "ci",
		optionPod:       "builder-0",
		optionContainer: "emerge",
	})
	require.NoError(t, err)
	assert.Equal(t, "ci", s.namespace)
	assert.Equal(t, "builder-0", s.pod)
	assert.Equal(t, "emerge", s.container)
}
