package types_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskFunc(t *testing.T) {
	var got string
	var task types.Task = types.TaskFunc(func(_ context.Context, releasePath string) error {
		got = releasePath
		return nil
	})

	require.NoError(t, task.Execute(context.Background(), "/srv/app/releases/abc"))
	assert.Equal(t, "/srv/app/releases/abc", got)
}

func TestStagesOrder(t *testing.T) {
	assert.Equal(t, []types.Stage{
		types.StageBeforeMigrate,
		types.StageBeforeSymlink,
		types.StageBeforeRestart,
		types.StageAfterRestart,
	}, types.Stages)
}

func TestParseStage(t *testing.T) {
	stage, err := types.ParseStage("before_restart")
	require.NoError(t, err)
	assert.Equal(t, types.StageBeforeRestart, stage)

	_, err = types.ParseStage("after_migrate")
	assert.Error(t, err)
}
