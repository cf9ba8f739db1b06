package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/fyrsmithlabs/assetd/internal/deployment"
	"github.com/fyrsmithlabs/assetd/internal/manifest"
)

// ProducerWorkflow registers a data and a model asset for one run and
// verifies both read back from the run's branch.
//
// This workflow:
// 1. Starts a run and resolves its write branch
// 2. Registers the data artifact as a data asset
// 3. Registers the model artifact as a model asset
// 4. Reads both assets back to verify retrieval
// 5. Builds a markdown report of the run
func ProducerWorkflow(ctx workflow.Context, config ProducerConfig) (*ProducerResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting producer run",
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

	// Registration is not idempotent: a retried register would mint a
	// second version. Registrations get a single attempt.
	regCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	result := &ProducerResult{}

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
	result.WriteBranch = run.WriteBranch
	pathspec := deployment.Run{Flow: config.Flow, ID: run.RunID}

	logger.Info("Run started",
		"run_id", run.RunID,
		"write_branch", run.WriteBranch)

	// Step 2: Register the data asset
	logger.Info("Registering data asset", "asset_id", config.DataAssetID)
	var dataReg RegisterAssetResult
	err = workflow.ExecuteActivity(regCtx, registryActivities.RegisterAsset, RegisterAssetInput{
		Kind:        manifest.KindData,
		Project:     config.Project,
		AssetID:     config.DataAssetID,
		WriteBranch: run.WriteBranch,
		Payload:     config.DataPayload,
		Annotations: config.DataAnnotations,
		RunID:       run.RunID,
		Pathspec:    pathspec.Pathspec("start"),
	}).Get(ctx, &dataReg)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to register data asset: %v", err))
		return result, err
	}
	result.DataVersionID = dataReg.VersionID

	// Step 3: Register the model asset
	logger.Info("Registering model asset", "asset_id", config.ModelAssetID)
	var modelReg RegisterAssetResult
	err = workflow.ExecuteActivity(regCtx, registryActivities.RegisterAsset, RegisterAssetInput{
		Kind:        manifest.KindModel,
		Project:     config.Project,
		AssetID:     config.ModelAssetID,
		WriteBranch: run.WriteBranch,
		Payload:     config.ModelPayload,
		Annotations: config.ModelAnnotations,
		RunID:       run.RunID,
		Pathspec:    pathspec.Pathspec("register_model"),
	}).Get(ctx, &modelReg)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to register model asset: %v", err))
		return result, err
	}
	result.ModelVersionID = modelReg.VersionID

	// Step 4: Read both assets back from the run's own branch. Failures
	// here are recorded, not fatal; the report covers both outcomes.
	logger.Info("Verifying asset retrieval")
	var dataGet GetAssetResult
	err = workflow.ExecuteActivity(ctx, registryActivities.GetAsset, GetAssetInput{
		Kind:           manifest.KindData,
		Project:        config.Project,
		AssetID:        config.DataAssetID,
		Branch:         config.Branch,
		MetaflowBranch: config.MetaflowBranch,
		WriteBranch:    run.WriteBranch,
	}).Get(ctx, &dataGet)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to verify data asset: %v", err))
	} else {
		result.DataVerified = true
	}

	var modelGet GetAssetResult
	err = workflow.ExecuteActivity(ctx, registryActivities.GetAsset, GetAssetInput{
		Kind:           manifest.KindModel,
		Project:        config.Project,
		AssetID:        config.ModelAssetID,
		Branch:         config.Branch,
		MetaflowBranch: config.MetaflowBranch,
		WriteBranch:    run.WriteBranch,
	}).Get(ctx, &modelGet)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to verify model asset: %v", err))
	} else {
		result.ModelVerified = true
	}

	// Step 5: Build the run report
	result.Report = buildProducerReport(config, result)

	logger.Info("Producer run complete",
		"run_id", result.RunID,
		"data_verified", result.DataVerified,
		"model_verified", result.ModelVerified)

	return result, nil
}
