// Package config loads and merges the YAML files that configure buildlog's
// default source, tail window, timezone mode and named remote source
// profiles.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bascanada/buildlog/pkg/resolve"
)

// EnvConfigPath is the environment variable used to override the config
// search path. May name a colon-separated list of files.
const EnvConfigPath = "BUILDLOG_CONFIG"

// DefaultConfigDir is the directory under the user's home where the config
// file and drop-in directory are expected when no explicit path is given.
const DefaultConfigDir = ".buildlog"

// DefaultConfigFile is the config filename looked for inside DefaultConfigDir.
const DefaultConfigFile = "config.yaml"

// ErrNoSources is returned when a merged config ends up with no source
// profiles at all, not even the implicit "local" default.
var ErrNoSources = errors.New("no sources found in config file")

// Source is one named remote (or local) log source profile. Options holds
// backend-specific parameters (e.g. ssh addr, k8s namespace/pod) and string
// values may reference "${VAR}"/"${VAR:-default}", resolved at load time.
type Source struct {
	Type    string            `yaml:"type"`
	Options map[string]string `yaml:"options"`
}

// Sources is a map of named source profiles.
type Sources map[string]Source

// Config is the top-level configuration structure.
type Config struct {
	DefaultSource string  `yaml:"defaultSource"`
	DefaultWindow int     `yaml:"defaultWindow"`
	Timezone      string  `yaml:"timezone"` // "utc" or "local"
	Sources       Sources `yaml:"sources"`
}

// ResolvePaths determines which config files to load, in precedence order:
// explicit path, then EnvConfigPath (colon-separated), then the default
// directory's main file plus its configs/ drop-in directory.
func ResolvePaths(explicitPath string) ([]string, error) {
	if strings.TrimSpace(explicitPath) != "" {
		return []string{explicitPath}, nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return strings.Split(env, string(os.PathListSeparator)), nil
	}

	var files []string
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil
	}
	dir := filepath.Join(home, DefaultConfigDir)

	main := filepath.Join(dir, DefaultConfigFile)
	if _, err := os.Stat(main); err == nil {
		files = append(files, main)
	}

	dropIns := filepath.Join(dir, "configs")
	entries, err := os.ReadDir(dropIns)
	if err != nil {
		return files, nil
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			files = append(files, filepath.Join(dropIns, e.Name()))
		}
	}
	return files, nil
}

// Load resolves the config search path, reads and merges every file found
// (later files win on key collision), resolves "${VAR}" references in
// source options against vars/the environment, and ensures a "local"
// source exists by default.
func Load(explicitPath string, vars map[string]string) (*Config, error) {
	files, err := ResolvePaths(explicitPath)
	if err != nil {
		return nil, err
	}

	merged := &Config{
		DefaultSource: "local",
		DefaultWindow: 10,
		Timezone:      "local",
		Sources:       Sources{},
	}

	explicit := explicitPath != "" || os.Getenv(EnvConfigPath) != ""
	loaded := 0
	for _, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if explicit {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			continue
		}

		partial, err := loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}

		if partial.DefaultSource != "" {
			merged.DefaultSource = partial.DefaultSource
		}
		if partial.DefaultWindow != 0 {
			merged.DefaultWindow = partial.DefaultWindow
		}
		if partial.Timezone != "" {
			merged.Timezone = partial.Timezone
		}
		for name, src := range partial.Sources {
			merged.Sources[name] = resolveSource(src, vars)
		}
		loaded++
	}

	if explicit && loaded == 0 {
		return nil, fmt.Errorf("config file not found")
	}

	if len(merged.Sources) == 0 {
		merged.Sources["local"] = Source{Type: "local", Options: map[string]string{}}
	}

	return merged, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

func resolveSource(src Source, vars map[string]string) Source {
	resolved := make(map[string]string, len(src.Options))
	for k, v := range src.Options {
		resolved[k] = resolve.Resolve(v, vars)
	}
	return Source{Type: src.Type, Options: resolved}
}
