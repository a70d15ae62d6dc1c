package synthfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

// DirExecutor creates directory trees inside a release through a synthfs
// pipeline
type DirExecutor struct {
	logger     zerolog.Logger
	dryRun     bool
	fs         types.FS
	filesystem synthfs.FileSystem
	mode       fs.FileMode
}

// NewDirExecutor creates a synthfs-based directory executor working on fsys,
// the same filesystem the rest of the deployment uses
func NewDirExecutor(fsys types.FS, dryRun bool) *DirExecutor {
	return &DirExecutor{
		logger:     logging.GetLogger("core.synthfs"),
		dryRun:     dryRun,
		fs:         fsys,
		filesystem: newFSAdapter(fsys),
		mode:       0755,
	}
}

// EnsureDirs creates every relative directory in rels under root, parents
// first. Directories that already exist are left alone. It returns the
// absolute paths it created, or would create in dry-run mode.
func (e *DirExecutor) EnsureDirs(ctx context.Context, root string, rels []string) ([]string, error) {
	missing, err := e.missingDirs(root, rels)
	if err != nil {
		return nil, err
	}

	if len(missing) == 0 {
		e.logger.Debug().Str("root", root).Msg("No directories to create")
		return nil, nil
	}

	if e.dryRun {
		for _, dir := range missing {
			e.logger.Info().Str("target", dir).Msg("Would create directory")
		}
		return missing, nil
	}

	pipeline := synthfs.NewMemPipeline()
	for _, dir := range missing {
		op, err := e.createDirOperation(dir)
		if err != nil {
			return nil, err
		}
		if err := pipeline.Add(op); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate,
				"failed to add operation to pipeline")
		}
	}

	executor := synthfs.NewExecutor()

	e.logger.Debug().Int("operationCount", len(missing)).Str("root", root).Msg("Executing operations")

	result := executor.Run(ctx, pipeline, e.filesystem)
	if result.GetError() != nil {
		e.logger.Error().Err(result.GetError()).Msg("Pipeline execution failed")
		return nil, errors.Wrapf(result.GetError(), errors.ErrDirCreate,
			"failed to create directories under %s", root)
	}

	return missing, nil
}

// missingDirs expands rels into the ordered list of absolute directories
// that do not exist yet, each parent before its children
func (e *DirExecutor) missingDirs(root string, rels []string) ([]string, error) {
	seen := make(map[string]bool)
	var missing []string

	for _, rel := range rels {
		if err := paths.ValidateRelativeTarget(rel); err != nil {
			return nil, err
		}

		// walk from the outermost component inwards
		var chain []string
		for p := filepath.Clean(rel); p != "." && p != string(filepath.Separator); p = filepath.Dir(p) {
			chain = append(chain, p)
		}
		for i := len(chain) - 1; i >= 0; i-- {
			abs := filepath.Join(root, chain[i])
			if seen[abs] {
				continue
			}
			seen[abs] = true

			info, err := e.fs.Lstat(abs)
			switch {
			case err == nil && info.IsDir():
				continue
			case err == nil:
				return nil, errors.Newf(errors.ErrDirCreate,
					"%s exists and is not a directory", abs).WithDetail("path", abs)
			case !os.IsNotExist(err):
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", abs)
			}
			missing = append(missing, abs)
		}
	}

	// Shorter paths first keeps parents ahead of their children even when
	// rels arrive in arbitrary order
	sort.SliceStable(missing, func(i, j int) bool {
		return strings.Count(missing[i], string(filepath.Separator)) <
			strings.Count(missing[j], string(filepath.Separator))
	})

	return missing, nil
}

// createDirOperation converts an absolute directory into a synthfs operation
func (e *DirExecutor) createDirOperation(target string) (synthfs.Operation, error) {
	e.logger.Debug().
		Str("target", target).
		Str("mode", e.mode.String()).
		Msg("Creating directory operation")

	// Convert absolute path to relative for synthfs
	relPath, err := filepath.Rel("/", target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"failed to convert path: %s", target)
	}

	opID := core.OperationID(fmt.Sprintf("create-dir-%s", target))
	createOp := operations.NewCreateDirectoryOperation(opID, relPath)

	createOp.SetItem(&directoryItem{
		path: relPath,
		mode: e.mode,
	})

	return synthfs.NewOperationsPackageAdapter(createOp), nil
}

// directoryItem implements the interface needed for directory operations
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
