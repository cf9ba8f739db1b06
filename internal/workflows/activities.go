package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/assetd/internal/assets"
	"github.com/fyrsmithlabs/assetd/internal/deployment"
	"github.com/fyrsmithlabs/assetd/internal/manifest"
)

// Activities bundles the registry-backed activities the producer and
// consumer workflows execute. Workflows stay deterministic; every
// registry call, run ID mint, and branch lookup happens here.
type Activities struct {
	service assets.Service
}

// registryActivities is a nil receiver used only to name activity
// methods in workflow code. Workers register a real instance.
var registryActivities *Activities

// NewActivities creates the activity bundle backed by a registry service.
func NewActivities(service assets.Service) (*Activities, error) {
	if service == nil {
		return nil, errors.New("asset service cannot be nil")
	}
	return &Activities{service: service}, nil
}

// StartRun mints a run identity and resolves the branch it writes to.
func (a *Activities) StartRun(ctx context.Context, input StartRunInput) (*RunInfo, error) {
	start := time.Now()

	run := deployment.NewRun(input.Flow)
	branch := deployment.WriteBranch(deploymentSpec(input.Branch, input.MetaflowBranch))

	recordActivity(ctx, "StartRun", start, nil)
	return &RunInfo{RunID: run.ID, WriteBranch: branch}, nil
}

// RegisterAsset registers one asset version through the registry service.
func (a *Activities) RegisterAsset(ctx context.Context, input RegisterAssetInput) (*RegisterAssetResult, error) {
	start := time.Now()

	req := &assets.RegisterRequest{
		Project:     input.Project,
		AssetID:     input.AssetID,
		WriteBranch: input.WriteBranch,
		Payload:     input.Payload,
		Annotations: input.Annotations,
		RunID:       input.RunID,
		Pathspec:    input.Pathspec,
	}

	var (
		version *assets.Version
		err     error
	)
	switch input.Kind {
	case manifest.KindData:
		version, err = a.service.RegisterData(ctx, req)
	case manifest.KindModel:
		version, err = a.service.RegisterModel(ctx, req)
	default:
		err = fmt.Errorf("%w: %q", manifest.ErrInvalidKind, input.Kind)
	}
	recordActivity(ctx, "RegisterAsset", start, err)
	if err != nil {
		return nil, fmt.Errorf("registering %s asset %s: %w", input.Kind, input.AssetID, err)
	}

	return &RegisterAssetResult{
		VersionID: version.ID,
		Branch:    version.Branch,
		Sequence:  version.Sequence,
	}, nil
}

// GetAsset retrieves one asset version and its payload.
func (a *Activities) GetAsset(ctx context.Context, input GetAssetInput) (*GetAssetResult, error) {
	start := time.Now()

	req := &assets.GetRequest{
		Project:         input.Project,
		DevAssetsBranch: input.DevAssetsBranch,
		Deployment:      deploymentSpec(input.Branch, input.MetaflowBranch).Scope(),
		AssetID:         input.AssetID,
		WriteBranch:     input.WriteBranch,
		Version:         input.Version,
	}

	var (
		version *assets.Version
		payload []byte
		err     error
	)
	switch input.Kind {
	case manifest.KindData:
		version, payload, err = a.service.GetData(ctx, req)
	case manifest.KindModel:
		version, payload, err = a.service.GetModel(ctx, req)
	default:
		err = fmt.Errorf("%w: %q", manifest.ErrInvalidKind, input.Kind)
	}
	recordActivity(ctx, "GetAsset", start, err)
	if err != nil {
		return nil, fmt.Errorf("retrieving %s asset %s: %w", input.Kind, input.AssetID, err)
	}

	return &GetAssetResult{
		VersionID:   version.ID,
		Branch:      version.Branch,
		Sequence:    version.Sequence,
		Annotations: version.Annotations,
		Payload:     payload,
	}, nil
}

// deploymentSpec rebuilds the deployment context from its flattened
// activity-input form. Both fields empty means a local run.
func deploymentSpec(branch, scopeBranch string) *deployment.Spec {
	if branch == "" && scopeBranch == "" {
		return nil
	}
	spec := &deployment.Spec{Branch: branch}
	if scopeBranch != "" {
		spec.Annotations = map[string]string{deployment.BranchAnnotation: scopeBranch}
	}
	return spec
}
