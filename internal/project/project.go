package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/assetd/internal/scope"
)

// FileName is the project configuration file name.
const FileName = "project.toml"

// Common errors.
var (
	ErrNotFound       = errors.New("project.toml not found")
	ErrInvalidTOML    = errors.New("invalid project.toml")
	ErrMissingProject = errors.New("project.toml has no project name")
)

// Config is the parsed project configuration.
type Config struct {
	// Project is the project name. Required.
	Project string `toml:"project"`

	// DevAssets is the optional dev-assets read override.
	DevAssets DevAssets `toml:"dev-assets"`
}

// DevAssets redirects reads of non-production runs to a shared branch.
type DevAssets struct {
	// Branch is the raw label of the branch to read from. Empty disables
	// the override.
	Branch string `toml:"branch"`
}

// Load reads and validates the project file at path.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat project file: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTOML, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Find walks upward from dir looking for a project.toml and loads the
// first one it encounters. It returns the loaded config and the directory
// containing it.
func Find(dir string) (*Config, string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		candidate := filepath.Join(current, FileName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			if err != nil {
				return nil, "", err
			}
			return cfg, current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, "", fmt.Errorf("%w: searched upward from %s", ErrNotFound, dir)
		}
		current = parent
	}
}

// Validate checks that the configuration names a project.
func (c *Config) Validate() error {
	if c.Project == "" {
		return ErrMissingProject
	}
	return nil
}

// DevAssetsBranch returns the configured read override, or "" when the
// override is absent.
func (c *Config) DevAssetsBranch() string {
	return c.DevAssets.Branch
}

// Scope converts the configuration into the resolver's input form.
func (c *Config) Scope() scope.ProjectConfig {
	return scope.ProjectConfig{
		Project:         c.Project,
		DevAssetsBranch: c.DevAssets.Branch,
	}
}
