package main

import (
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	verProject string
	verBranch  string
	verJSON    bool
)

// ListVersionsResponse matches internal/httpapi ListVersionsResponse.
type ListVersionsResponse struct {
	Versions []*VersionInfo `json:"versions"`
}

var versionsCmd = &cobra.Command{
	Use:   "versions KIND ASSET_ID",
	Short: "List registered versions of an asset",
	Long: `List the registered versions of an asset in registration order.

Examples:
  assetctl versions data sample_data --project demo --branch user.alice
  assetctl versions model sample_model --project demo --branch prod --json`,
	Args: cobra.ExactArgs(2),
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().StringVar(&verProject, "project", "", "project name (required)")
	versionsCmd.Flags().StringVar(&verBranch, "branch", "", "branch to list versions from (required)")
	versionsCmd.Flags().BoolVar(&verJSON, "json", false, "output raw JSON")
	_ = versionsCmd.MarkFlagRequired("project")
	_ = versionsCmd.MarkFlagRequired("branch")
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	kind, assetID := args[0], args[1]

	query := url.Values{}
	query.Set("project", verProject)
	query.Set("branch", verBranch)
	path := fmt.Sprintf("/api/v1/assets/%s/%s/versions?%s", kind, url.PathEscape(assetID), query.Encode())

	var result ListVersionsResponse
	if err := getJSON(path, &result); err != nil {
		return err
	}

	if verJSON {
		return printJSON(result)
	}

	if len(result.Versions) == 0 {
		fmt.Println("No versions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tVERSION\tBRANCH\tRUN\tCREATED")
	for _, v := range result.Versions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			v.Sequence,
			truncate(v.ID, 16),
			truncate(v.Branch, 24),
			truncate(v.RunID, 12),
			v.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
