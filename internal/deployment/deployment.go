// Package deployment describes the context a run executes in.
//
// Deployed runs carry a Spec naming the branch they were deployed under,
// either through the scope-label annotation or the legacy branch field.
// Local runs carry no Spec at all and write to a per-user branch derived
// from the developer's identity.
package deployment

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/assetd/internal/scope"
)

// BranchAnnotation is the annotation key carrying the fully qualified
// scope label ("prod", "prod.<suffix>", "test.<name>", "user.<name>").
const BranchAnnotation = "metaflow_branch"

// Environment keys consulted by FromEnvironment.
const (
	EnvBranch         = "ASSETD_DEPLOYMENT_BRANCH"
	EnvMetaflowBranch = "ASSETD_METAFLOW_BRANCH"
)

// Spec is the deployment context supplied by the orchestrator that
// launched a run. A nil *Spec means the run is local.
type Spec struct {
	// Branch is the legacy deployment branch field.
	Branch string `json:"branch,omitempty"`

	// Annotations carries orchestrator-provided metadata. The
	// BranchAnnotation entry, when present, is authoritative for scope
	// resolution.
	Annotations map[string]string `json:"spec,omitempty"`
}

// ScopeBranch returns the scope-label annotation, or "" when absent.
func (s *Spec) ScopeBranch() string {
	if s == nil {
		return ""
	}
	return s.Annotations[BranchAnnotation]
}

// Scope converts the deployment context into the resolver's input form.
// A nil Spec converts to nil.
func (s *Spec) Scope() *scope.DeploymentSpec {
	if s == nil {
		return nil
	}
	return &scope.DeploymentSpec{
		Branch:         s.Branch,
		MetaflowBranch: s.ScopeBranch(),
	}
}

// FromEnvironment builds the deployment spec from the environment the
// orchestrator injects into workers. It returns nil when no deployment
// variables are set, which marks the run as local.
func FromEnvironment() *Spec {
	branch := os.Getenv(EnvBranch)
	scopeBranch := os.Getenv(EnvMetaflowBranch)
	if branch == "" && scopeBranch == "" {
		return nil
	}

	spec := &Spec{Branch: branch}
	if scopeBranch != "" {
		spec.Annotations = map[string]string{BranchAnnotation: scopeBranch}
	}
	return spec
}

// WriteBranch returns the raw branch label a run writes to. Deployed runs
// write their effective deployment branch; local runs write the per-user
// branch.
func WriteBranch(spec *Spec) string {
	if branch := spec.Scope().EffectiveBranch(); branch != "" {
		return branch
	}
	return DefaultUserBranch()
}

// Run identifies a single workflow execution.
type Run struct {
	// Flow is the workflow name.
	Flow string `json:"flow"`

	// ID is the unique run identifier.
	ID string `json:"id"`
}

// NewRun creates a run descriptor with a generated ID.
func NewRun(flow string) Run {
	return Run{Flow: flow, ID: uuid.New().String()}
}

// Pathspec identifies a step execution within the run.
// Format: {flow}/{run_id}/{step}
func (r Run) Pathspec(step string) string {
	return fmt.Sprintf("%s/%s/%s", r.Flow, r.ID, step)
}
