package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/fyrsmithlabs/assetd/internal/manifest"
)

// ConsumerWorkflow retrieves the data and model assets another run
// registered and summarizes what it read.
//
// This workflow:
// 1. Starts a run and resolves its write branch
// 2. Retrieves the data asset
// 3. Retrieves the model asset
// 4. Builds a markdown report of the run
//
// Retrieval failures are recorded per asset and the workflow keeps
// going, so the report covers both assets either way.
func ConsumerWorkflow(ctx workflow.Context, config ConsumerConfig) (*ConsumerResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting consumer run",
		"project", config.Project,
		"flow", config.Flow)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Configure activity options
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	result := &ConsumerResult{}

	// Step 1: Start the run
	var run RunInfo
	err := workflow.ExecuteActivity(ctx, registryActivities.StartRun, StartRunInput{
		Flow:           config.Flow,
		Branch:         config.Branch,
		MetaflowBranch: config.MetaflowBranch,
	}).Get(ctx, &run)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to start run: %v", err))
		return result, err
	}
	result.RunID = run.RunID

	// Step 2: Retrieve the data asset
	logger.Info("Retrieving data asset", "asset_id", config.DataAssetID)
	var dataGet GetAssetResult
	err = workflow.ExecuteActivity(ctx, registryActivities.GetAsset, GetAssetInput{
		Kind:            manifest.KindData,
		Project:         config.Project,
		AssetID:         config.DataAssetID,
		DevAssetsBranch: config.DevAssetsBranch,
		Branch:          config.Branch,
		MetaflowBranch:  config.MetaflowBranch,
		WriteBranch:     run.WriteBranch,
	}).Get(ctx, &dataGet)
	if err != nil {
		logger.Error("Data asset retrieval failed",
			"asset_id", config.DataAssetID,
			"error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to retrieve data asset %s: %v", config.DataAssetID, err))
	} else {
		result.DataRetrieved = true
		result.DataVersionID = dataGet.VersionID
		result.DataBranch = dataGet.Branch
		result.DataBytes = len(dataGet.Payload)
	}

	// Step 3: Retrieve the model asset
	logger.Info("Retrieving model asset", "asset_id", config.ModelAssetID)
	var modelGet GetAssetResult
	err = workflow.ExecuteActivity(ctx, registryActivities.GetAsset, GetAssetInput{
		Kind:            manifest.KindModel,
		Project:         config.Project,
		AssetID:         config.ModelAssetID,
		DevAssetsBranch: config.DevAssetsBranch,
		Branch:          config.Branch,
		MetaflowBranch:  config.MetaflowBranch,
		WriteBranch:     run.WriteBranch,
	}).Get(ctx, &modelGet)
	if err != nil {
		logger.Error("Model asset retrieval failed",
			"asset_id", config.ModelAssetID,
			"error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to retrieve model asset %s: %v", config.ModelAssetID, err))
	} else {
		result.ModelRetrieved = true
		result.ModelVersionID = modelGet.VersionID
		result.ModelBranch = modelGet.Branch
		result.ModelBytes = len(modelGet.Payload)
	}

	// Step 4: Build the run report
	result.Report = buildConsumerReport(config, result)

	logger.Info("Consumer run complete",
		"run_id", result.RunID,
		"data_retrieved", result.DataRetrieved,
		"model_retrieved", result.ModelRetrieved)

	return result, nil
}
