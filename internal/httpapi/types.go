package httpapi

import (
	"github.com/fyrsmithlabs/assetd/internal/assets"
	"github.com/fyrsmithlabs/assetd/internal/scope"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Status  string       `json:"status"`
	Version string       `json:"version,omitempty"`
	Catalog CatalogCount `json:"catalog"`
}

// CatalogCount reports how many assets the manifest catalog declares.
// Both counts are -1 when the daemon runs without a catalog.
type CatalogCount struct {
	DataAssets  int `json:"data_assets"`
	ModelAssets int `json:"model_assets"`
}

// DeploymentSpec mirrors scope.DeploymentSpec on the wire. A null
// deployment field in a request marks the run as local.
type DeploymentSpec struct {
	Branch         string `json:"branch,omitempty"`
	MetaflowBranch string `json:"metaflow_branch,omitempty"`
}

func (d *DeploymentSpec) toScope() *scope.DeploymentSpec {
	if d == nil {
		return nil
	}
	return &scope.DeploymentSpec{
		Branch:         d.Branch,
		MetaflowBranch: d.MetaflowBranch,
	}
}

// ResolveScopeRequest is the request body for POST /api/v1/scope/resolve.
type ResolveScopeRequest struct {
	Project         string          `json:"project"`
	DevAssetsBranch string          `json:"dev_assets_branch,omitempty"`
	Deployment      *DeploymentSpec `json:"deployment,omitempty"`
}

// ResolveScopeResponse is the response body for POST /api/v1/scope/resolve.
// An empty ReadBranch means reads target the run's own write branch.
type ResolveScopeResponse struct {
	Project              string `json:"project"`
	ReadBranch           string `json:"read_branch,omitempty"`
	Class                string `json:"class"`
	ReadsFromWriteBranch bool   `json:"reads_from_write_branch"`
}

// SanitizeRequest is the request body for POST /api/v1/branch/sanitize.
type SanitizeRequest struct {
	Branch string `json:"branch"`
}

// SanitizeResponse is the response body for POST /api/v1/branch/sanitize.
type SanitizeResponse struct {
	Branch    string `json:"branch"`
	Sanitized string `json:"sanitized"`
}

// RegisterAssetRequest is the request body for
// POST /api/v1/assets/:kind/register. Payload is base64 in JSON.
type RegisterAssetRequest struct {
	Project     string            `json:"project"`
	AssetID     string            `json:"asset_id"`
	WriteBranch string            `json:"write_branch"`
	Payload     []byte            `json:"payload,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	RunID       string            `json:"run_id,omitempty"`
	Pathspec    string            `json:"pathspec,omitempty"`
}

// GetAssetRequest is the request body for POST /api/v1/assets/:kind/get.
// The read branch is resolved server-side from the project override and
// the deployment context; WriteBranch is the fallback read target.
type GetAssetRequest struct {
	Project         string          `json:"project"`
	DevAssetsBranch string          `json:"dev_assets_branch,omitempty"`
	Deployment      *DeploymentSpec `json:"deployment,omitempty"`
	AssetID         string          `json:"asset_id"`
	WriteBranch     string          `json:"write_branch"`
	Version         string          `json:"version,omitempty"`
}

// GetAssetResponse is the response body for POST /api/v1/assets/:kind/get.
type GetAssetResponse struct {
	Version *assets.Version `json:"version"`
	Payload []byte          `json:"payload,omitempty"`
}

// ListVersionsResponse is the response body for
// GET /api/v1/assets/:kind/:id/versions.
type ListVersionsResponse struct {
	Versions []*assets.Version `json:"versions"`
}
