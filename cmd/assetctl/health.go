package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// HealthResponse matches internal/httpapi HealthResponse.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse matches internal/httpapi StatusResponse.
type StatusResponse struct {
	Status  string       `json:"status"`
	Version string       `json:"version,omitempty"`
	Catalog CatalogCount `json:"catalog"`
}

// CatalogCount matches internal/httpapi CatalogCount. Counts are -1
// when the server runs without a manifest catalog.
type CatalogCount struct {
	DataAssets  int `json:"data_assets"`
	ModelAssets int `json:"model_assets"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check assetd server health",
	RunE:  runHealth,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show assetd server status and catalog counts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statusCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/health", serverURL)

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server at %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server is %s\n", health.Status)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	var status StatusResponse
	if err := getJSON("/api/v1/status", &status); err != nil {
		return err
	}

	fmt.Printf("Status:  %s\n", status.Status)
	if status.Version != "" {
		fmt.Printf("Version: %s\n", status.Version)
	}
	if status.Catalog.DataAssets >= 0 {
		fmt.Printf("Catalog: %d data assets, %d model assets\n", status.Catalog.DataAssets, status.Catalog.ModelAssets)
	} else {
		fmt.Printf("Catalog: not configured\n")
	}
	return nil
}
