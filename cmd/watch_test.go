package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/buildlog/pkg/config"
)

func TestFollowingSourceConfigForcesFollowOnLocal(t *testing.T) {
	cfg := &config.Config{
		Sources: config.Sources{
			"laptop": config.Source{Type: "local", Options: map[string]string{"path": "/var/log/emerge.log"}},
		},
	}

	srcCfg, err := followingSourceConfig(cfg, "laptop")
	require.NoError(t, err)
	assert.Equal(t, "true", srcCfg.Options["follow"])
	assert.Equal(t, "/var/log/emerge.log", srcCfg.Options["path"])

	// the original config is untouched; only the returned copy is mutated.
	_, hasFollow := cfg.Sources["laptop"].Options["follow"]
	assert.False(t, hasFollow)
}

func TestFollowingSourceConfigLeavesNonLocalUntouched(t *testing.T) {
	cfg := &config.Config{
		Sources: config.Sources{
			"build-server": config.Source{Type: "ssh", Options: map[string]string{"addr": "host:22", "cmd": "tail -F /var/log/emerge.log"}},
		},
	}

	srcCfg, err := followingSourceConfig(cfg, "build-server")
	require.NoError(t, err)
	_, hasFollow := srcCfg.Options["follow"]
	assert.False(t, hasFollow)
}

func TestFollowingSourceConfigUnknownName(t *testing.T) {
	cfg := &config.Config{Sources: config.Sources{}}
	_, err := followingSourceConfig(cfg, "missing")
	assert.Error(t, err)
}
