package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	regProject     string
	regWriteBranch string
	regAnnotations []string
	regRunID       string
	regPathspec    string
	regJSON        bool
)

// RegisterAssetRequest matches internal/httpapi RegisterAssetRequest.
// Payload is base64-encoded on the wire by encoding/json.
type RegisterAssetRequest struct {
	Project     string            `json:"project"`
	AssetID     string            `json:"asset_id"`
	WriteBranch string            `json:"write_branch"`
	Payload     []byte            `json:"payload,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	RunID       string            `json:"run_id,omitempty"`
	Pathspec    string            `json:"pathspec,omitempty"`
}

var registerCmd = &cobra.Command{
	Use:   "register KIND ASSET_ID [FILE]",
	Short: "Register a new asset version",
	Long: `Register a new version of an asset on a write branch.

KIND is "data" or "model". The payload is read from FILE, or from stdin
when FILE is omitted or "-".

Examples:
  assetctl register data sample_data payload.json --project demo --write-branch user.alice
  cat model.bin | assetctl register model sample_model --project demo --write-branch test.ci \
    --annotation accuracy=0.95 --annotation framework=sklearn`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&regProject, "project", "", "project name (required)")
	registerCmd.Flags().StringVar(&regWriteBranch, "write-branch", "", "branch to register the version on (required)")
	registerCmd.Flags().StringArrayVar(&regAnnotations, "annotation", nil, "annotation as key=value (repeatable)")
	registerCmd.Flags().StringVar(&regRunID, "run-id", "", "run identifier to record on the version")
	registerCmd.Flags().StringVar(&regPathspec, "pathspec", "", "producing step pathspec to record on the version")
	registerCmd.Flags().BoolVar(&regJSON, "json", false, "output raw JSON")
	_ = registerCmd.MarkFlagRequired("project")
	_ = registerCmd.MarkFlagRequired("write-branch")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	kind, assetID := args[0], args[1]

	payload, err := readPayload(args)
	if err != nil {
		return err
	}

	annotations, err := parseAnnotations(regAnnotations)
	if err != nil {
		return err
	}

	req := RegisterAssetRequest{
		Project:     regProject,
		AssetID:     assetID,
		WriteBranch: regWriteBranch,
		Payload:     payload,
		Annotations: annotations,
		RunID:       regRunID,
		Pathspec:    regPathspec,
	}

	var result VersionInfo
	if err := postJSON(fmt.Sprintf("/api/v1/assets/%s/register", kind), req, &result); err != nil {
		return err
	}

	if regJSON {
		return printJSON(result)
	}

	fmt.Printf("Registered %s asset %s\n", result.Kind, result.AssetID)
	fmt.Printf("  Version:  %s\n", result.ID)
	fmt.Printf("  Branch:   %s\n", result.Branch)
	fmt.Printf("  Sequence: %d\n", result.Sequence)
	return nil
}

// readPayload loads the asset payload from the FILE argument, falling
// back to stdin when it is omitted or "-".
func readPayload(args []string) ([]byte, error) {
	if len(args) < 3 || args[2] == "-" {
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return payload, nil
	}

	payload, err := os.ReadFile(args[2])
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	return payload, nil
}

// parseAnnotations converts repeated key=value flags into a map.
func parseAnnotations(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	annotations := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid annotation %q: expected key=value", pair)
		}
		annotations[key] = value
	}
	return annotations, nil
}
