package workflows

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/fyrsmithlabs/assetd/internal/manifest"
)

// TestConsumerWorkflow tests the cross-run retrieval pipeline.
func TestConsumerWorkflow(t *testing.T) {
	t.Run("retrieves both assets through the read override", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()

		env.RegisterWorkflow(ConsumerWorkflow)

		acts := &Activities{}

		env.OnActivity(acts.StartRun, mock.Anything, StartRunInput{
			Flow:           "consumer_flow",
			Branch:         "test.ci",
			MetaflowBranch: "test.ci",
		}).Return(&RunInfo{RunID: "run-9", WriteBranch: "test.ci"}, nil)

		// dev-assets points the reads at prod while the run itself
		// writes to test.ci.
		env.OnActivity(acts.GetAsset, mock.Anything, GetAssetInput{
			Kind:            manifest.KindData,
			Project:         "demo",
			AssetID:         "sample_data",
			DevAssetsBranch: "prod",
			Branch:          "test.ci",
			MetaflowBranch:  "test.ci",
			WriteBranch:     "test.ci",
		}).Return(&GetAssetResult{VersionID: "v-data", Branch: "prod", Sequence: 3, Payload: []byte(`{"values":[1,2,3]}`)}, nil)

		env.OnActivity(acts.GetAsset, mock.Anything, GetAssetInput{
			Kind:            manifest.KindModel,
			Project:         "demo",
			AssetID:         "sample_model",
			DevAssetsBranch: "prod",
			Branch:          "test.ci",
			MetaflowBranch:  "test.ci",
			WriteBranch:     "test.ci",
		}).Return(&GetAssetResult{VersionID: "v-model", Branch: "prod", Sequence: 2, Payload: []byte(`{"accuracy":0.95}`)}, nil)

		config := ConsumerConfig{
			Project:         "demo",
			Flow:            "consumer_flow",
			Branch:          "test.ci",
			MetaflowBranch:  "test.ci",
			DevAssetsBranch: "prod",
			DataAssetID:     "sample_data",
			ModelAssetID:    "sample_model",
		}
		env.ExecuteWorkflow(ConsumerWorkflow, config)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var result ConsumerResult
		require.NoError(t, env.GetWorkflowResult(&result))
		assert.Equal(t, "run-9", result.RunID)
		assert.True(t, result.DataRetrieved)
		assert.True(t, result.ModelRetrieved)
		assert.Equal(t, "v-data", result.DataVersionID)
		assert.Equal(t, "v-model", result.ModelVersionID)
		assert.Equal(t, "prod", result.DataBranch)
		assert.Equal(t, "prod", result.ModelBranch)
		assert.Equal(t, len(`{"values":[1,2,3]}`), result.DataBytes)
		assert.Empty(t, result.Errors)
		assert.Contains(t, result.Report, "All asset retrievals succeeded.")
	})

	t.Run("records missing data asset and keeps going", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()

		env.RegisterWorkflow(ConsumerWorkflow)

		acts := &Activities{}

		env.OnActivity(acts.StartRun, mock.Anything, mock.Anything).
			Return(&RunInfo{RunID: "run-10", WriteBranch: "user.bob"}, nil)

		env.OnActivity(acts.GetAsset, mock.Anything, GetAssetInput{
			Kind:        manifest.KindData,
			Project:     "demo",
			AssetID:     "sample_data",
			WriteBranch: "user.bob",
		}).Return(nil, errors.New("asset has no registered versions"))

		env.OnActivity(acts.GetAsset, mock.Anything, GetAssetInput{
			Kind:        manifest.KindModel,
			Project:     "demo",
			AssetID:     "sample_model",
			WriteBranch: "user.bob",
		}).Return(&GetAssetResult{VersionID: "v-model", Branch: "user_bob", Sequence: 1, Payload: []byte(`{}`)}, nil)

		config := ConsumerConfig{
			Project:      "demo",
			Flow:         "consumer_flow",
			DataAssetID:  "sample_data",
			ModelAssetID: "sample_model",
		}
		env.ExecuteWorkflow(ConsumerWorkflow, config)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var result ConsumerResult
		require.NoError(t, env.GetWorkflowResult(&result))
		assert.False(t, result.DataRetrieved)
		assert.True(t, result.ModelRetrieved)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "failed to retrieve data asset sample_data")
		assert.Contains(t, result.Report, "Some asset retrievals failed.")
		assert.Contains(t, result.Report, "not found")
	})

	t.Run("rejects incomplete config", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()

		env.RegisterWorkflow(ConsumerWorkflow)

		config := ConsumerConfig{
			Project:      "demo",
			Flow:         "consumer_flow",
			ModelAssetID: "sample_model",
		}
		env.ExecuteWorkflow(ConsumerWorkflow, config)

		require.True(t, env.IsWorkflowCompleted())
		err := env.GetWorkflowError()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DataAssetID is required")
	})
}

// TestConsumerConfigValidate tests config validation.
func TestConsumerConfigValidate(t *testing.T) {
	valid := ConsumerConfig{
		Project:      "demo",
		Flow:         "consumer_flow",
		DataAssetID:  "sample_data",
		ModelAssetID: "sample_model",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(c *ConsumerConfig)
		wantErr string
	}{
		{"missing project", func(c *ConsumerConfig) { c.Project = "" }, "Project is required"},
		{"missing flow", func(c *ConsumerConfig) { c.Flow = "" }, "Flow is required"},
		{"missing data asset", func(c *ConsumerConfig) { c.DataAssetID = "" }, "DataAssetID is required"},
		{"missing model asset", func(c *ConsumerConfig) { c.ModelAssetID = "" }, "ModelAssetID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
