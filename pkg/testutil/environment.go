package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deployrev/pkg/filesystem"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/types"
)

// DeployEnv is an isolated deploy root on the real filesystem
type DeployEnv struct {
	Layout paths.Layout
	FS     types.FS
	Root   string
}

// NewDeployEnv creates a deploy root path under t.TempDir. The directory
// itself is not created; subdirs are appended to the temp dir so callers can
// exercise bootstrap of missing ancestors.
func NewDeployEnv(t *testing.T, subdirs ...string) *DeployEnv {
	t.Helper()

	root := filepath.Join(append([]string{t.TempDir()}, subdirs...)...)
	layout, err := paths.New(root)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}

	return &DeployEnv{
		Layout: layout,
		FS:     filesystem.NewOS(),
		Root:   layout.DeployRoot(),
	}
}

// Path joins elems onto the deploy root
func (e *DeployEnv) Path(elems ...string) string {
	return filepath.Join(append([]string{e.Root}, elems...)...)
}
