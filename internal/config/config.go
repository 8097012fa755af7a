// Package config holds the REPL's settings: defaults, an optional TOML
// file, and the command-line overrides layered on top by the caller.
package config

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	pkgerrors "github.com/pkg/errors"
)

// Logging selects which pipeline areas log and at what minimum priority.
type Logging struct {
	Areas    []string `toml:"areas"`
	Priority string   `toml:"priority"`
}

type Config struct {
	// Playground gives inputs script semantics: redefining an existing
	// symbol is rejected instead of replacing it.
	Playground bool `toml:"playground"`

	HistoryFile string `toml:"history_file"`

	// ModuleCachePath is where per-module disassembly listings land. Empty
	// disables the cache.
	ModuleCachePath string `toml:"module_cache_path"`

	// ExitTokens are inputs that end the session.
	ExitTokens []string `toml:"exit_tokens"`

	// SearchPaths are the directories tried when resolving a source file.
	SearchPaths []string `toml:"search_paths"`

	Logging Logging `toml:"logging"`
}

func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Config{
		HistoryFile:     filepath.Join(home, ".ember_history"),
		ModuleCachePath: TempModuleCache(),
		ExitTokens:      []string{"e", "exit"},
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, pkgerrors.Wrapf(err, "reading %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// TempModuleCache returns a fresh per-process module cache directory.
func TempModuleCache() string {
	return filepath.Join(os.TempDir(), "ember-modules-"+uuid.NewString())
}

// ResolveFile finds a source file, trying the path itself and then each
// search path in order.
func (c *Config) ResolveFile(path string) (string, bool) {
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	for _, dir := range c.SearchPaths {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}
