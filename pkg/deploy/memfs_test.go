// pkg/deploy/memfs_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: In-memory afero filesystem, fake checkout provider
// PURPOSE: Test that a deployment performs every filesystem change through
// the configured filesystem, skeleton directories included

package deploy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deployrev/pkg/deploy"
	"github.com/arthur-debert/deployrev/pkg/filesystem"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploy_InMemoryFilesystem(t *testing.T) {
	base := t.TempDir()
	layout, err := paths.New(filepath.Join(base, "srv", "app"))
	require.NoError(t, err)

	mem := filesystem.NewMemoryFS()
	checkout := testutil.NewFakeCheckout(map[string]map[string]string{
		"aaa111": {"app.rb": "puts 'A'"},
		"bbb222": {"app.rb": "puts 'B'"},
	})
	checkout.FS = mem
	checkout.Refs["v1"] = "aaa111"
	checkout.Refs["main"] = "bbb222"

	d, err := deploy.New(deploy.Config{
		Layout:       layout,
		FS:           mem,
		Provider:     checkout,
		Symlinks:     defaultLinks,
		SkeletonDirs: defaultSkeleton,
	})
	require.NoError(t, err)

	run := func(spec string) *deploy.Outcome {
		t.Helper()
		out, err := d.Deploy(context.Background(), deploy.Options{RevisionSpec: spec})
		require.NoError(t, err, spec)
		return out
	}

	out := run("v1")
	assert.True(t, out.Updated)
	assert.True(t, out.Created)

	release := layout.ReleasePath("aaa111")
	for _, dir := range defaultSkeleton {
		info, err := mem.Stat(filepath.Join(release, dir))
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}
	for _, dir := range []string{"tmp", "public", "config"} {
		info, err := mem.Lstat(filepath.Join(release, dir))
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), "%s must be a plain directory", dir)
	}
	info, err := mem.Lstat(filepath.Join(release, "tmp", "pids"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	target, err := mem.Readlink(layout.CurrentPath())
	require.NoError(t, err)
	assert.Equal(t, release, target)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be written to the real filesystem")

	out = run("main")
	assert.True(t, out.Updated)
	assert.Equal(t, "aaa111", out.Previous)

	out = run("v1")
	assert.True(t, out.Updated)
	assert.False(t, out.Created)

	out = run("v1")
	assert.False(t, out.Updated)
	assert.Equal(t, []string{"aaa111", "bbb222"}, checkout.Checkouts())
}
