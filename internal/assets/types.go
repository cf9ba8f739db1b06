package assets

import (
	"errors"
	"time"

	"github.com/fyrsmithlabs/assetd/internal/manifest"
	"github.com/fyrsmithlabs/assetd/internal/scope"
)

// LatestVersion selects the newest registered version of an asset.
const LatestVersion = "latest"

var (
	// ErrInvalidProject indicates a project name that is not storage-safe.
	ErrInvalidProject = errors.New("project name is not storage-safe")

	// ErrInvalidAssetID indicates an asset ID that is not storage-safe.
	ErrInvalidAssetID = errors.New("asset ID is not storage-safe")

	// ErrUnknownAsset indicates an asset ID with no manifest in the catalog.
	ErrUnknownAsset = errors.New("asset is not declared in the catalog")

	// ErrAssetNotFound indicates an asset with no registered versions on
	// the resolved branch.
	ErrAssetNotFound = errors.New("asset has no registered versions")

	// ErrVersionNotFound indicates a version ID that does not exist.
	ErrVersionNotFound = errors.New("asset version not found")

	// ErrPayloadTooLarge indicates a payload over the configured size cap.
	ErrPayloadTooLarge = errors.New("payload exceeds size limit")
)

// Version records one registered asset version.
type Version struct {
	// ID is the unique identifier for this version.
	ID string `json:"id"`

	// AssetID is the asset this version belongs to.
	AssetID string `json:"asset_id"`

	// Kind is the asset kind (data or model).
	Kind manifest.Kind `json:"kind"`

	// Project is the owning project.
	Project string `json:"project"`

	// Branch is the sanitized branch this version was written to.
	Branch string `json:"branch"`

	// Sequence is the 1-based registration order within the asset's branch.
	Sequence int `json:"sequence"`

	// RunID identifies the producing run, when known.
	RunID string `json:"run_id,omitempty"`

	// Pathspec locates the producing step, when known.
	Pathspec string `json:"pathspec,omitempty"`

	// Annotations are the merged static and dynamic key/value pairs.
	Annotations map[string]string `json:"annotations,omitempty"`

	// CreatedAt is when this version was registered.
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest represents parameters for registering a new version.
// The asset kind comes from the method called, not the request.
type RegisterRequest struct {
	Project     string
	AssetID     string
	WriteBranch string // raw branch label, sanitized before storage
	Payload     []byte
	Annotations map[string]string
	RunID       string
	Pathspec    string
}

// GetRequest represents parameters for retrieving a version.
type GetRequest struct {
	Project         string
	DevAssetsBranch string                // read override, "" for none
	Deployment      *scope.DeploymentSpec // nil for local runs
	AssetID         string
	WriteBranch     string // fallback read target, raw label
	Version         string // version ID, or empty/LatestVersion for latest
}

// ListRequest represents parameters for listing an asset's versions.
type ListRequest struct {
	Project string
	Branch  string // raw branch label
	Kind    manifest.Kind
	AssetID string
}
