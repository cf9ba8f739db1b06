package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	getProject        string
	getWriteBranch    string
	getVersion        string
	getDevAssets      string
	getBranch         string
	getMetaflowBranch string
	getOutput         string
	getJSONOut        bool
)

// GetAssetRequest matches internal/httpapi GetAssetRequest.
type GetAssetRequest struct {
	Project         string          `json:"project"`
	DevAssetsBranch string          `json:"dev_assets_branch,omitempty"`
	Deployment      *DeploymentSpec `json:"deployment,omitempty"`
	AssetID         string          `json:"asset_id"`
	WriteBranch     string          `json:"write_branch"`
	Version         string          `json:"version,omitempty"`
}

// GetAssetResponse matches internal/httpapi GetAssetResponse.
type GetAssetResponse struct {
	Version *VersionInfo `json:"version"`
	Payload []byte       `json:"payload,omitempty"`
}

var getCmd = &cobra.Command{
	Use:   "get KIND ASSET_ID",
	Short: "Retrieve an asset version through scope resolution",
	Long: `Retrieve an asset version, resolving the read branch from the run
context the same way pipeline clients do.

The payload is written to stdout, or to --output when set. Version
metadata goes to stderr so payloads stay pipe-clean.

Examples:
  # Local run reading its own write branch
  assetctl get data sample_data --project demo --write-branch user.alice

  # Local run with a dev-assets override
  assetctl get data sample_data --project demo --write-branch user.alice --dev-assets prod -o data.json

  # Pin an exact version
  assetctl get model sample_model --project demo --write-branch prod --version 0198f0a2-...`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getProject, "project", "", "project name (required)")
	getCmd.Flags().StringVar(&getWriteBranch, "write-branch", "", "write branch of the requesting run (required)")
	getCmd.Flags().StringVar(&getVersion, "version", "", "exact version ID, or latest when omitted")
	getCmd.Flags().StringVar(&getDevAssets, "dev-assets", "", "dev-assets read override branch")
	getCmd.Flags().StringVar(&getBranch, "branch", "", "legacy deployment branch field")
	getCmd.Flags().StringVar(&getMetaflowBranch, "metaflow-branch", "", "deployment branch annotation")
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "write the payload to a file instead of stdout")
	getCmd.Flags().BoolVar(&getJSONOut, "json", false, "output raw JSON (metadata and payload)")
	_ = getCmd.MarkFlagRequired("project")
	_ = getCmd.MarkFlagRequired("write-branch")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	kind, assetID := args[0], args[1]

	req := GetAssetRequest{
		Project:         getProject,
		DevAssetsBranch: getDevAssets,
		Deployment:      buildDeployment(getBranch, getMetaflowBranch),
		AssetID:         assetID,
		WriteBranch:     getWriteBranch,
		Version:         getVersion,
	}

	var result GetAssetResponse
	if err := postJSON(fmt.Sprintf("/api/v1/assets/%s/get", kind), req, &result); err != nil {
		return err
	}

	if getJSONOut {
		return printJSON(result)
	}

	if result.Version != nil {
		fmt.Fprintf(os.Stderr, "Retrieved %s asset %s version %s from branch %s (%d bytes)\n",
			result.Version.Kind, result.Version.AssetID, result.Version.ID, result.Version.Branch, len(result.Payload))
	}

	if getOutput != "" {
		if err := os.WriteFile(getOutput, result.Payload, 0o644); err != nil {
			return fmt.Errorf("failed to write payload to %s: %w", getOutput, err)
		}
		return nil
	}

	if _, err := os.Stdout.Write(result.Payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}
