// Package manifest loads the per-asset configuration files that declare
// which assets a project registers.
//
// Layout:
//
//	<project root>/
//	  data/<asset_id>/asset_config.toml
//	  models/<asset_id>/asset_config.toml
//
// A manifest declares an asset's identity and its static annotations.
// Dynamic annotations supplied at registration time are merged on top of
// the static ones.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fyrsmithlabs/assetd/internal/sanitize"
)

// FileName is the per-asset manifest file name.
const FileName = "asset_config.toml"

// Kind distinguishes the two asset trees.
type Kind string

const (
	// KindData marks assets under data/.
	KindData Kind = "data"
	// KindModel marks assets under models/.
	KindModel Kind = "model"
)

// Dir returns the directory name holding manifests of this kind.
func (k Kind) Dir() string {
	if k == KindModel {
		return "models"
	}
	return "data"
}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindData):
		return KindData, nil
	case string(KindModel):
		return KindModel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Common errors.
var (
	ErrInvalidKind     = errors.New("invalid asset kind")
	ErrInvalidManifest = errors.New("invalid asset manifest")
	ErrInvalidID       = errors.New("invalid asset ID")
	ErrNotFound        = errors.New("asset manifest not found")
)

// Manifest is a parsed asset_config.toml.
type Manifest struct {
	// ID is the asset identifier. Defaults to the manifest's directory
	// name when the file does not set it. Must be storage-safe.
	ID string `toml:"id"`

	// Name is the human-readable asset name.
	Name string `toml:"name"`

	// Description explains what the asset holds.
	Description string `toml:"description"`

	// Annotations are static key/value pairs attached to every version
	// registered for this asset.
	Annotations map[string]string `toml:"annotations"`

	// Kind is derived from the directory tree, not the file.
	Kind Kind `toml:"-"`
}

// Load reads the manifest at path. The kind and the fallback ID come from
// the path's position in the asset tree.
func Load(path string, kind Kind) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}

	m.Kind = kind
	if m.ID == "" {
		m.ID = filepath.Base(filepath.Dir(path))
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Validate checks the manifest's identity fields.
func (m *Manifest) Validate() error {
	if m.Kind != KindData && m.Kind != KindModel {
		return fmt.Errorf("%w: %q", ErrInvalidKind, m.Kind)
	}
	if !sanitize.Valid(m.ID) {
		return fmt.Errorf("%w: %q must match [a-z0-9_-]+", ErrInvalidID, m.ID)
	}
	return nil
}
