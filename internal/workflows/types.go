// Package workflows provides Temporal workflow definitions for asset
// pipelines: a producer that registers data and model assets for a run,
// and a consumer that retrieves them from another run's branch.
//
// This file contains the shared config, result, and activity types.
package workflows

import (
	"fmt"

	"github.com/fyrsmithlabs/assetd/internal/manifest"
)

// Producer types

// ProducerConfig configures the producer workflow.
type ProducerConfig struct {
	Project          string            // Owning project name
	Flow             string            // Flow name, used for run IDs and pathspecs
	Branch           string            // Deployment branch label, "" for local runs
	MetaflowBranch   string            // Scope-label annotation, authoritative when set
	DataAssetID      string            // Data asset to register
	ModelAssetID     string            // Model asset to register
	DataPayload      []byte            // Data artifact bytes
	ModelPayload     []byte            // Model artifact bytes
	DataAnnotations  map[string]string // Dynamic annotations for the data asset
	ModelAnnotations map[string]string // Dynamic annotations for the model asset
}

// Validate checks that all required fields are set.
func (c *ProducerConfig) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("Project is required")
	}
	if c.Flow == "" {
		return fmt.Errorf("Flow is required")
	}
	if c.DataAssetID == "" {
		return fmt.Errorf("DataAssetID is required")
	}
	if c.ModelAssetID == "" {
		return fmt.Errorf("ModelAssetID is required")
	}
	if len(c.DataPayload) == 0 {
		return fmt.Errorf("DataPayload is required")
	}
	if len(c.ModelPayload) == 0 {
		return fmt.Errorf("ModelPayload is required")
	}
	return nil
}

// ProducerResult contains the outcome of one producer run.
type ProducerResult struct {
	RunID          string   // Generated run identifier
	WriteBranch    string   // Raw branch label the run wrote to
	DataVersionID  string   // Registered data version ID
	ModelVersionID string   // Registered model version ID
	DataVerified   bool     // Whether the data asset read back after registration
	ModelVerified  bool     // Whether the model asset read back after registration
	Report         string   // Markdown run report
	Errors         []string // Any errors encountered
}

// Consumer types

// ConsumerConfig configures the consumer workflow.
type ConsumerConfig struct {
	Project         string // Owning project name
	Flow            string // Flow name, used for run IDs and pathspecs
	Branch          string // Deployment branch label, "" for local runs
	MetaflowBranch  string // Scope-label annotation, authoritative when set
	DevAssetsBranch string // Read override from project config, "" for none
	DataAssetID     string // Data asset to retrieve
	ModelAssetID    string // Model asset to retrieve
}

// Validate checks that all required fields are set.
func (c *ConsumerConfig) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("Project is required")
	}
	if c.Flow == "" {
		return fmt.Errorf("Flow is required")
	}
	if c.DataAssetID == "" {
		return fmt.Errorf("DataAssetID is required")
	}
	if c.ModelAssetID == "" {
		return fmt.Errorf("ModelAssetID is required")
	}
	return nil
}

// ConsumerResult contains the outcome of one consumer run.
type ConsumerResult struct {
	RunID          string   // Generated run identifier
	DataRetrieved  bool     // Whether the data asset was found
	ModelRetrieved bool     // Whether the model asset was found
	DataVersionID  string   // Retrieved data version ID
	ModelVersionID string   // Retrieved model version ID
	DataBranch     string   // Branch the data version was read from
	ModelBranch    string   // Branch the model version was read from
	DataBytes      int      // Size of the data payload
	ModelBytes     int      // Size of the model payload
	Report         string   // Markdown run report
	Errors         []string // Any errors encountered
}

// Activity inputs and results

// StartRunInput identifies the flow a run belongs to and the deployment
// context it executes under.
type StartRunInput struct {
	Flow           string // Flow name
	Branch         string // Deployment branch label, "" for local runs
	MetaflowBranch string // Scope-label annotation
}

// RunInfo describes a started run.
type RunInfo struct {
	RunID       string // Generated run identifier
	WriteBranch string // Raw branch label the run writes to
}

// RegisterAssetInput defines parameters for registering one asset version.
type RegisterAssetInput struct {
	Kind        manifest.Kind     // data or model
	Project     string            // Owning project
	AssetID     string            // Asset to register
	WriteBranch string            // Raw branch label
	Payload     []byte            // Artifact bytes
	Annotations map[string]string // Dynamic annotations
	RunID       string            // Producing run
	Pathspec    string            // Producing step
}

// RegisterAssetResult describes the registered version.
type RegisterAssetResult struct {
	VersionID string // Registered version ID
	Branch    string // Sanitized branch the version was written to
	Sequence  int    // Registration order within the branch
}

// GetAssetInput defines parameters for retrieving an asset version.
type GetAssetInput struct {
	Kind            manifest.Kind // data or model
	Project         string        // Owning project
	AssetID         string        // Asset to retrieve
	DevAssetsBranch string        // Read override, "" for none
	Branch          string        // Deployment branch label, "" for local runs
	MetaflowBranch  string        // Scope-label annotation
	WriteBranch     string        // Fallback read target, raw label
	Version         string        // Version ID, "" for latest
}

// GetAssetResult carries a retrieved version and its payload.
//
// The payload travels through workflow history, which caps its practical
// size; flows moving large artifacts should exchange references instead.
type GetAssetResult struct {
	VersionID   string            // Retrieved version ID
	Branch      string            // Branch the version was read from
	Sequence    int               // Registration order within the branch
	Annotations map[string]string // Merged annotations
	Payload     []byte            // Artifact bytes
}
