// Package scope resolves which storage branch a run reads assets from.
//
// Every run writes new asset versions to its own branch. Reads may be
// redirected: production deployments always read the branch they write,
// while test, user, and local runs may be pointed at a shared branch
// (typically production) through the project's dev-assets override. The
// resolver implements that policy as a pure function over the project
// configuration and the run's deployment spec.
package scope

import (
	"errors"
	"strings"
)

// Class is the deployment classification derived from a branch label.
type Class string

const (
	// ClassProduction indicates a production deployment ("prod" or "prod.<suffix>").
	ClassProduction Class = "production"
	// ClassTest indicates a test deployment ("test.<name>").
	ClassTest Class = "test"
	// ClassUser indicates a per-user deployment ("user.<name>").
	ClassUser Class = "user"
	// ClassLocal indicates a local run with no deployment spec.
	ClassLocal Class = "local"
	// ClassOther covers labels outside the recognized hierarchy, such as
	// raw git branch names supplied through the legacy branch field.
	ClassOther Class = "other"
)

// ProductionBranch is the root label of the production branch hierarchy.
// Classification is case-sensitive and exact: "production" is not
// production, and neither is "prodX".
const ProductionBranch = "prod"

// Common errors.
var (
	// ErrInvalidConfiguration indicates a project configuration without a
	// project name.
	ErrInvalidConfiguration = errors.New("project configuration has no project name")
	// ErrInvalidDeploymentSpec indicates a deployment spec that carries
	// neither a scope label nor a legacy branch.
	ErrInvalidDeploymentSpec = errors.New("deployment spec carries no branch")
)

// ProjectConfig is the subset of project configuration the resolver reads.
type ProjectConfig struct {
	// Project is the project name. Required.
	Project string
	// DevAssetsBranch redirects reads of non-production runs to the named
	// branch. Empty means no override.
	DevAssetsBranch string
}

// DeploymentSpec describes the deployment context of a run. A nil
// *DeploymentSpec means the run is local.
type DeploymentSpec struct {
	// Branch is the legacy deployment branch field.
	Branch string
	// MetaflowBranch is the fully qualified scope label ("prod",
	// "prod.<suffix>", "test.<name>", "user.<name>"). Authoritative when
	// non-empty.
	MetaflowBranch string
}

// EffectiveBranch returns the branch label that governs classification:
// the scope label when set, otherwise the legacy branch.
func (s *DeploymentSpec) EffectiveBranch() string {
	if s == nil {
		return ""
	}
	if s.MetaflowBranch != "" {
		return s.MetaflowBranch
	}
	return s.Branch
}

// Result is the outcome of scope resolution.
type Result struct {
	// Project is the project name, passed through unchanged.
	Project string
	// ReadBranch is the branch reads should target. Empty means reads go
	// to the run's own write branch.
	ReadBranch string
	// Class is the deployment classification of the effective branch.
	Class Class
}

// ReadsFromWriteBranch reports whether reads fall through to the run's
// own write branch.
func (r Result) ReadsFromWriteBranch() bool {
	return r.ReadBranch == ""
}

// Classify derives the deployment class from a branch label. The empty
// label classifies as ClassLocal.
func Classify(branch string) Class {
	switch {
	case branch == "":
		return ClassLocal
	case branch == ProductionBranch || strings.HasPrefix(branch, ProductionBranch+"."):
		return ClassProduction
	case strings.HasPrefix(branch, "test."):
		return ClassTest
	case strings.HasPrefix(branch, "user."):
		return ClassUser
	default:
		return ClassOther
	}
}

// Resolve determines the read branch for a run.
//
// Production deployments are hermetic: they read the branch they write,
// and the dev-assets override is ignored. Every other run reads the
// override branch when one is configured, and otherwise falls through to
// its own write branch.
//
// Resolve never returns a write branch; writes always target the branch
// the run itself owns.
func Resolve(cfg ProjectConfig, spec *DeploymentSpec) (Result, error) {
	if cfg.Project == "" {
		return Result{}, ErrInvalidConfiguration
	}
	if spec != nil && spec.Branch == "" && spec.MetaflowBranch == "" {
		return Result{}, ErrInvalidDeploymentSpec
	}

	effective := spec.EffectiveBranch()
	class := Classify(effective)

	result := Result{Project: cfg.Project, Class: class}

	if class == ClassProduction {
		result.ReadBranch = effective
		return result, nil
	}

	if cfg.DevAssetsBranch != "" {
		result.ReadBranch = cfg.DevAssetsBranch
	}
	return result, nil
}
