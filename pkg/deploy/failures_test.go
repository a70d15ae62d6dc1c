// pkg/deploy/failures_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem in t.TempDir, mock collaborators
// PURPOSE: Test that every failing stage aborts the deployment with its code
// and stage, and leaves the filesystem as the completed stages left it

package deploy_test

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deployrev/pkg/deploy"
	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/testutil"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertFailure(t *testing.T, err error, code errors.ErrorCode, stage string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, code), "want %s, got %v", code, err)
	assert.Equal(t, stage, errors.GetStage(err))
}

func TestDeploy_ResolutionFailure(t *testing.T) {
	h := newHarness(t, "app")

	out, err := h.deploy(t, "no-such-branch", false)
	assert.Nil(t, out)
	assertFailure(t, err, errors.ErrResolution, deploy.StageResolve)
	assert.Equal(t, "no-such-branch", errors.GetErrorDetails(err)["spec"])

	testutil.AssertNotExists(t, h.env.Root)
	assert.Empty(t, h.Events())
	assert.Empty(t, h.checkout.Checkouts())
}

func TestDeploy_UnusableRevision(t *testing.T) {
	h := newHarness(t, "app")
	h.cfg.Provider = &testutil.MockCheckoutProvider{
		ResolveFunc: func(context.Context, string) (string, error) { return "../evil", nil },
	}

	_, err := h.deploy(t, "main", false)
	assertFailure(t, err, errors.ErrResolution, deploy.StageResolve)
	testutil.AssertNotExists(t, h.env.Root)
}

func TestDeploy_CheckoutFailureLeavesPartialRelease(t *testing.T) {
	h := newHarness(t)
	h.cfg.Provider = &testutil.MockCheckoutProvider{
		CheckoutFunc: func(_ context.Context, _ string, dest string) error {
			require.NoError(t, os.MkdirAll(dest, 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dest, "half"), nil, 0644))
			return stderrors.New("connection reset")
		},
	}

	_, err := h.deploy(t, "ccc333", false)
	assertFailure(t, err, errors.ErrCheckout, deploy.StageRelease)

	testutil.AssertDir(t, h.env.Layout.ReleasePath("ccc333"))
	testutil.AssertNotExists(t, h.env.Layout.CurrentPath())
	assert.Empty(t, h.Events())
}

func TestDeploy_LinkConflict(t *testing.T) {
	h := newHarness(t)
	h.checkout.Trees["ccc333"] = map[string]string{"log/development.log": "noise"}

	_, err := h.deploy(t, "ccc333", false)
	assertFailure(t, err, errors.ErrLinkConflict, deploy.StagePostSwitchLink)
	assert.Equal(t, filepath.Join(h.env.Layout.ReleasePath("ccc333"), "log"), errors.GetErrorDetails(err)["path"])

	testutil.AssertNotExists(t, h.env.Layout.CurrentPath())
	assert.Equal(t, []string{"before_migrate", "before_symlink"}, h.Events())
}

func TestDeploy_PurgeResolvesConflict(t *testing.T) {
	h := newHarness(t)
	h.checkout.Trees["ccc333"] = map[string]string{"log/development.log": "noise"}
	h.cfg.PurgeBeforeSymlink = []string{"log", "tmp/pids", "public/system"}

	out, err := h.deploy(t, "ccc333", false)
	require.NoError(t, err)
	assert.True(t, out.Updated)
	testutil.AssertSymlinkTo(t, filepath.Join(out.ReleasePath, "log"), h.env.Layout.SharedPath("log"))
}

func TestDeploy_CallbackFailureAbortsPipeline(t *testing.T) {
	h := newHarness(t)
	_, err := h.deploy(t, "aaa111", false)
	require.NoError(t, err)
	h.reset()

	h.hooks.Bind(types.StageBeforeSymlink, types.TaskFunc(func(context.Context, string) error {
		return stderrors.New("assets failed to compile")
	}))

	_, err = h.deploy(t, "bbb222", false)
	assertFailure(t, err, errors.ErrCallback, "before_symlink")

	// the new release stays on disk, current still points at the old one
	testutil.AssertDir(t, h.env.Layout.ReleasePath("bbb222"))
	testutil.AssertSymlinkTo(t, h.env.Layout.CurrentPath(), h.env.Layout.ReleasePath("aaa111"))
	assert.Equal(t, []string{"before_migrate"}, h.Events())
	assert.Equal(t, 1, h.exec.Count(restartCommand))

	// re-running after the fix picks the partial release up again
	h.hooks.Bind(types.StageBeforeSymlink, nil)
	out, err := h.deploy(t, "bbb222", false)
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, []string{"aaa111", "bbb222"}, h.checkout.Checkouts())
}

func TestDeploy_MigrationFailure(t *testing.T) {
	h := newHarness(t)
	h.cfg.Migrate = true
	h.cfg.MigrationCommand = "bin/migrate"
	h.cfg.Executor = testutil.NewRecordingExecutor(&testutil.MockExecutor{
		RunFunc: func(_ context.Context, command, _ string) error {
			if command == "bin/migrate" {
				return stderrors.New("exit status 1")
			}
			return nil
		},
	})

	_, err := h.deploy(t, "aaa111", false)
	assertFailure(t, err, errors.ErrMigration, deploy.StageMigrate)
	testutil.AssertNotExists(t, h.env.Layout.CurrentPath())
	assert.Equal(t, []string{"before_migrate"}, h.Events())
}

// renameFailingFS refuses to rename anything, which makes the pointer swap fail
type renameFailingFS struct {
	types.FS
}

func (renameFailingFS) Rename(oldpath, newpath string) error {
	return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: fs.ErrPermission}
}

func TestDeploy_SwitchFailureKeepsOldTarget(t *testing.T) {
	h := newHarness(t)
	_, err := h.deploy(t, "aaa111", false)
	require.NoError(t, err)
	h.reset()

	h.cfg.FS = renameFailingFS{h.env.FS}
	_, err = h.deploy(t, "bbb222", false)
	assertFailure(t, err, errors.ErrSwitch, deploy.StageSwitch)

	testutil.AssertSymlinkTo(t, h.env.Layout.CurrentPath(), h.env.Layout.ReleasePath("aaa111"))
	assert.Equal(t, []string{"before_migrate", "before_symlink"}, h.Events())
}

func TestDeploy_RestartFailureAfterSwitch(t *testing.T) {
	h := newHarness(t)
	h.cfg.Executor = testutil.NewRecordingExecutor(&testutil.MockExecutor{
		RunFunc: func(context.Context, string, string) error {
			return stderrors.New("exit status 3")
		},
	})

	_, err := h.deploy(t, "aaa111", false)
	assertFailure(t, err, errors.ErrRestart, deploy.StageRestart)

	// the release is live even though its restart failed
	testutil.AssertSymlinkTo(t, h.env.Layout.CurrentPath(), h.env.Layout.ReleasePath("aaa111"))
	assert.Equal(t, []string{"before_migrate", "before_symlink", "before_restart"}, h.Events())
}

func TestDeploy_CurrentNotASymlink(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.MkdirAll(h.env.Layout.CurrentPath(), 0755))

	_, err := h.deploy(t, "aaa111", false)
	assertFailure(t, err, errors.ErrSwitch, deploy.StageCheckIdempotent)
	assert.Empty(t, h.checkout.Checkouts())
}
