package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cfg.yaml", `
defaultSource: remote1
defaultWindow: 5
timezone: utc
sources:
  remote1:
    type: ssh
    options:
      addr: ${BUILDLOG_TEST_ADDR:-builder.local:22}
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "remote1", cfg.DefaultSource)
	assert.Equal(t, 5, cfg.DefaultWindow)
	assert.Equal(t, "utc", cfg.Timezone)
	assert.Equal(t, "ssh", cfg.Sources["remote1"].Type)
	assert.Equal(t, "builder.local:22", cfg.Sources["remote1"].Options["addr"])
}

func TestLoadExplicitPathMissingErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadNoConfigDefaultsToLocal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.DefaultSource)
	assert.Equal(t, 10, cfg.DefaultWindow)
	assert.Contains(t, cfg.Sources, "local")
}

func TestLoadMergesDropInDirectoryLastWins(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, DefaultConfigDir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))

	writeConfig(t, dir, DefaultConfigFile, "defaultSource: local\n")
	writeConfig(t, filepath.Join(dir, "configs"), "extra.yaml", `
defaultSource: remote1
sources:
  remote1:
    type: docker
    options:
      host: unix:///var/run/docker.sock
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "remote1", cfg.DefaultSource)
	assert.Equal(t, "docker", cfg.Sources["remote1"].Type)
}

func TestLoadEnvColonSeparatedList(t *testing.T) {
	dir := t.TempDir()
	a := writeConfig(t, dir, "a.yaml", "defaultWindow: 3\n")
	b := writeConfig(t, dir, "b.yaml", "defaultSource: remote1\nsources:\n  remote1:\n    type: k8s\n    options:\n      namespace: ci\n")

	t.Setenv(EnvConfigPath, a+string(os.PathListSeparator)+b)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DefaultWindow)
	assert.Equal(t, "remote1", cfg.DefaultSource)
	assert.Equal(t, "k8s", cfg.Sources["remote1"].Type)
}

func TestResolveSourceVarsTakePrecedenceOverEnv(t *testing.T) {
	t.Setenv("HOSTNAME_VAR", "env-host")
	src := Source{Type: "ssh", Options: map[string]string{"addr": "${HOSTNAME_VAR}"}}
	resolved := resolveSource(src, map[string]string{"HOSTNAME_VAR": "runtime-host"})
	assert.Equal(t, "runtime-host", resolved.Options["addr"])
}
