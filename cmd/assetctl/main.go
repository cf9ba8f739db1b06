// Package main implements the assetctl CLI for manual operations against
// the assetd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the assetd HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "assetctl",
	Short: "CLI for assetd asset registry operations",
	Long: `assetctl is a command-line interface for interacting with the assetd server.
It provides commands for registering and retrieving branch-scoped assets,
resolving read scopes, and sanitizing branch names.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "assetd server URL")
}

// VersionInfo matches the version JSON emitted by internal/httpapi.
type VersionInfo struct {
	ID          string            `json:"id"`
	AssetID     string            `json:"asset_id"`
	Kind        string            `json:"kind"`
	Project     string            `json:"project"`
	Branch      string            `json:"branch"`
	Sequence    int               `json:"sequence"`
	RunID       string            `json:"run_id,omitempty"`
	Pathspec    string            `json:"pathspec,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// DeploymentSpec matches internal/httpapi DeploymentSpec. A null
// deployment in a request marks the run as local.
type DeploymentSpec struct {
	Branch         string `json:"branch,omitempty"`
	MetaflowBranch string `json:"metaflow_branch,omitempty"`
}

// buildDeployment assembles the deployment context from CLI flags.
// Neither branch flag set means a local run, sent as a null deployment.
func buildDeployment(branch, metaflowBranch string) *DeploymentSpec {
	if branch == "" && metaflowBranch == "" {
		return nil
	}
	return &DeploymentSpec{Branch: branch, MetaflowBranch: metaflowBranch}
}

// postJSON sends a JSON POST to the server and decodes the response into
// out when it is non-nil.
func postJSON(path string, reqBody, out any) error {
	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s%s", serverURL, path)
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK, http.StatusCreated); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getJSON issues a GET against the server and decodes the response.
func getJSON(path string, out any) error {
	url := fmt.Sprintf("%s%s", serverURL, path)

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatus validates the response code, surfacing the server's error
// body when it does not match.
func checkStatus(resp *http.Response, want ...int) error {
	for _, code := range want {
		if resp.StatusCode == code {
			return nil
		}
	}
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
	}
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
}

// printJSON renders a value as indented JSON on stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
