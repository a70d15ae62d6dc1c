package paths

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/types"
)

// Environment variable names
const (
	// EnvDeployTo names the deploy root when no explicit one is given
	EnvDeployTo = "DEPLOYREV_DEPLOY_TO"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Directory and file names inside a deploy root.
// IMPORTANT: these define the on-disk convention other tools expect and are
// NOT user-configurable.
const (
	ReleasesDirName = "releases"
	SharedDirName   = "shared"
	CurrentLinkName = "current"

	// ConfigFileName is looked up in the deploy root when no --config is given
	ConfigFileName = "deployrev.toml"
)

// Layout describes the directory skeleton of a single deploy root
type Layout interface {
	DeployRoot() string
	ReleasesDir() string
	SharedDir() string
	CurrentPath() string
	ReleasePath(revision string) string
	SharedPath(name string) string
	ConfigPath() string
}

type layout struct {
	deployRoot string
}

// New creates a Layout for deployRoot. An empty deployRoot falls back to
// DEPLOYREV_DEPLOY_TO. The root does not need to exist yet.
func New(deployRoot string) (Layout, error) {
	if deployRoot == "" {
		deployRoot = os.Getenv(EnvDeployTo)
	}
	if deployRoot == "" {
		return nil, errors.New(errors.ErrInvalidInput, "deploy root is not set")
	}
	if err := ValidatePath(deployRoot); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(expandHome(deployRoot))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for deploy root %s", deployRoot)
	}

	return &layout{deployRoot: absRoot}, nil
}

// DeployRoot returns the absolute deploy root
func (l *layout) DeployRoot() string {
	return l.deployRoot
}

// ReleasesDir returns the directory holding one subdirectory per revision
func (l *layout) ReleasesDir() string {
	return filepath.Join(l.deployRoot, ReleasesDirName)
}

// SharedDir returns the directory for state shared across releases
func (l *layout) SharedDir() string {
	return filepath.Join(l.deployRoot, SharedDirName)
}

// CurrentPath returns the path of the current pointer symlink
func (l *layout) CurrentPath() string {
	return filepath.Join(l.deployRoot, CurrentLinkName)
}

// ReleasePath returns the release directory for revision
func (l *layout) ReleasePath(revision string) string {
	return filepath.Join(l.ReleasesDir(), revision)
}

// SharedPath resolves name inside the shared directory. Absolute names are
// returned unchanged.
func (l *layout) SharedPath(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(l.SharedDir(), name)
}

// ConfigPath returns the default configuration file location
func (l *layout) ConfigPath() string {
	return filepath.Join(l.deployRoot, ConfigFileName)
}

// EnsureLayout creates the deploy root, including any missing ancestors,
// plus releases/ and shared/. Existing directories are left alone.
func EnsureLayout(fs types.FS, l Layout) error {
	for _, dir := range []string{l.DeployRoot(), l.ReleasesDir(), l.SharedDir()} {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
		}
	}
	return nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}
