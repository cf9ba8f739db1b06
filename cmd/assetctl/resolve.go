package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/assetd/internal/project"
)

var (
	rsProject        string
	rsDevAssets      string
	rsBranch         string
	rsMetaflowBranch string
	rsJSON           bool
)

// ResolveScopeRequest matches internal/httpapi ResolveScopeRequest.
type ResolveScopeRequest struct {
	Project         string          `json:"project"`
	DevAssetsBranch string          `json:"dev_assets_branch,omitempty"`
	Deployment      *DeploymentSpec `json:"deployment,omitempty"`
}

// ResolveScopeResponse matches internal/httpapi ResolveScopeResponse.
type ResolveScopeResponse struct {
	Project              string `json:"project"`
	ReadBranch           string `json:"read_branch,omitempty"`
	Class                string `json:"class"`
	ReadsFromWriteBranch bool   `json:"reads_from_write_branch"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the asset read scope for a run",
	Long: `Resolve which branch a run reads assets from.

Omitting both --branch and --metaflow-branch marks the run as local.
Production runs ignore the dev-assets override and read their own branch.

Without --project, the project name and dev-assets override are taken
from the nearest project.toml, searching upward from the current
directory.

Examples:
  # Resolve using the project.toml of the current checkout
  assetctl resolve

  # Local run with a dev-assets override
  assetctl resolve --project demo --dev-assets prod

  # Deployed test run
  assetctl resolve --project demo --branch main --metaflow-branch test.ci --dev-assets prod

  # Production run (override is ignored)
  assetctl resolve --project demo --metaflow-branch prod`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&rsProject, "project", "", "project name (default: nearest project.toml)")
	resolveCmd.Flags().StringVar(&rsDevAssets, "dev-assets", "", "dev-assets read override branch")
	resolveCmd.Flags().StringVar(&rsBranch, "branch", "", "legacy deployment branch field")
	resolveCmd.Flags().StringVar(&rsMetaflowBranch, "metaflow-branch", "", "deployment branch annotation")
	resolveCmd.Flags().BoolVar(&rsJSON, "json", false, "output raw JSON")
	rootCmd.AddCommand(resolveCmd)
}

// projectDefaults fills the project name and dev-assets override from the
// nearest project.toml when no --project flag was given. Explicit flags
// always win.
func projectDefaults(req *ResolveScopeRequest, dir string) error {
	if req.Project != "" {
		return nil
	}

	cfg, _, err := project.Find(dir)
	if err != nil {
		return fmt.Errorf("--project not set: %w", err)
	}

	req.Project = cfg.Project
	if req.DevAssetsBranch == "" {
		req.DevAssetsBranch = cfg.DevAssetsBranch()
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	req := ResolveScopeRequest{
		Project:         rsProject,
		DevAssetsBranch: rsDevAssets,
		Deployment:      buildDeployment(rsBranch, rsMetaflowBranch),
	}
	if err := projectDefaults(&req, "."); err != nil {
		return err
	}

	var result ResolveScopeResponse
	if err := postJSON("/api/v1/scope/resolve", req, &result); err != nil {
		return err
	}

	if rsJSON {
		return printJSON(result)
	}

	fmt.Printf("Project:     %s\n", result.Project)
	fmt.Printf("Class:       %s\n", result.Class)
	if result.ReadsFromWriteBranch {
		fmt.Printf("Read branch: (own write branch)\n")
	} else {
		fmt.Printf("Read branch: %s\n", result.ReadBranch)
	}
	return nil
}
