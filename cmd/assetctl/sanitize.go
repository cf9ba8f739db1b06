package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sanJSON bool

// SanitizeRequest matches internal/httpapi SanitizeRequest.
type SanitizeRequest struct {
	Branch string `json:"branch"`
}

// SanitizeResponse matches internal/httpapi SanitizeResponse.
type SanitizeResponse struct {
	Branch    string `json:"branch"`
	Sanitized string `json:"sanitized"`
}

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize BRANCH",
	Short: "Sanitize a branch name into storage-safe form",
	Long: `Sanitize a raw branch name into the storage-safe form assetd uses
for keys and paths.

Examples:
  assetctl sanitize user.alice@company.com
  assetctl sanitize feature/new-model`,
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

func init() {
	sanitizeCmd.Flags().BoolVar(&sanJSON, "json", false, "output raw JSON")
	rootCmd.AddCommand(sanitizeCmd)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	req := SanitizeRequest{Branch: args[0]}

	var result SanitizeResponse
	if err := postJSON("/api/v1/branch/sanitize", req, &result); err != nil {
		return err
	}

	if sanJSON {
		return printJSON(result)
	}

	fmt.Println(result.Sanitized)
	return nil
}
