package linker

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/rs/zerolog"
)

// DirEnsurer creates relative directory trees under a root, skipping those
// that exist
type DirEnsurer interface {
	EnsureDirs(ctx context.Context, root string, rels []string) ([]string, error)
}

// Options controls how existing targets are treated
type Options struct {
	// Purge lists release paths that may be removed when they block a link
	Purge []string
	// Overwrite permits removing any blocking target
	Overwrite bool
}

// Linker applies shared-resource mappings to a release directory
type Linker struct {
	fs     types.FS
	layout paths.Layout
	dirs   DirEnsurer
	opts   Options
	purge  map[string]bool
	logger zerolog.Logger
}

// New creates a Linker. dirs creates skeleton directories.
func New(fs types.FS, layout paths.Layout, dirs DirEnsurer, opts Options) *Linker {
	purge := make(map[string]bool, len(opts.Purge))
	for _, p := range opts.Purge {
		purge[filepath.Clean(p)] = true
	}
	return &Linker{
		fs:     fs,
		layout: layout,
		dirs:   dirs,
		opts:   opts,
		purge:  purge,
		logger: logging.GetLogger("linker"),
	}
}

// LinkBeforeMigrate creates the pre-migrate links inside release
func (l *Linker) LinkBeforeMigrate(ctx context.Context, release string, links []Link) error {
	for _, link := range links {
		if err := l.link(release, link); err != nil {
			return err
		}
	}
	return nil
}

// LinkAfterSwitch prepares release for the switch: shared source directories
// of links are created when missing, skeleton directories not provided by a
// link are created as plain directories, then links are created.
func (l *Linker) LinkAfterSwitch(ctx context.Context, release string, links []Link, skeletonDirs []string) error {
	for _, link := range links {
		if err := l.ensureSharedSource(link); err != nil {
			return err
		}
	}

	dirs := UncoveredDirs(skeletonDirs, links)
	if len(dirs) > 0 {
		if err := l.clearForDirs(release, dirs); err != nil {
			return err
		}
		created, err := l.dirs.EnsureDirs(ctx, release, dirs)
		if err != nil {
			return err
		}
		if len(created) > 0 {
			l.logger.Debug().Strs("dirs", created).Msg("Created skeleton directories")
		}
	}

	for _, link := range links {
		if err := l.link(release, link); err != nil {
			return err
		}
	}
	return nil
}

// UncoveredDirs returns the skeleton directories that neither equal a link
// target nor lie beneath one
func UncoveredDirs(skeletonDirs []string, links []Link) []string {
	var out []string
	for _, dir := range skeletonDirs {
		covered := false
		for _, link := range links {
			if paths.ContainsPath(filepath.Clean(link.Target), filepath.Clean(dir)) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, dir)
		}
	}
	return out
}

// SourcePath resolves the absolute source of link
func (l *Linker) SourcePath(link Link) string {
	return l.layout.SharedPath(link.Source)
}

func (l *Linker) link(release string, link Link) error {
	if err := link.Validate(); err != nil {
		return err
	}

	source := l.SourcePath(link)
	target := filepath.Join(release, link.Target)

	done, err := l.prepareTarget(link.Target, target, source)
	if err != nil || done {
		return err
	}

	if err := l.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", target).
			WithDetail("path", target)
	}
	if err := l.fs.Symlink(source, target); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s to %s", target, source).
			WithDetail("path", target)
	}

	l.logger.Debug().
		Str("source", source).
		Str("target", target).
		Msg("Linked shared resource")
	return nil
}

// prepareTarget inspects target. It reports done when target already links
// to source, removes it when removal is permitted and fails with a link
// conflict otherwise.
func (l *Linker) prepareTarget(rel, target, source string) (bool, error) {
	info, err := l.fs.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", target)
	}

	if info.Mode()&os.ModeSymlink != 0 && l.pointsTo(target, source) {
		l.logger.Debug().Str("target", target).Msg("Link already in place")
		return true, nil
	}

	if !l.removable(rel) {
		return false, errors.Newf(errors.ErrLinkConflict,
			"%s already exists and is not a link to %s", target, source).
			WithDetail("path", target)
	}

	l.logger.Info().Str("target", target).Msg("Removing existing path to make room for link")
	if err := l.fs.RemoveAll(target); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", target).
			WithDetail("path", target)
	}
	return false, nil
}

// clearForDirs removes purgeable non-directories sitting where a skeleton
// directory goes. Anything else is left for EnsureDirs to report.
func (l *Linker) clearForDirs(release string, dirs []string) error {
	for _, dir := range dirs {
		path := filepath.Join(release, dir)
		info, err := l.fs.Lstat(path)
		if err != nil || info.IsDir() || !l.removable(dir) {
			continue
		}
		if err := l.fs.Remove(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", path).
				WithDetail("path", path)
		}
	}
	return nil
}

func (l *Linker) removable(rel string) bool {
	return l.opts.Overwrite || l.purge[filepath.Clean(rel)]
}

func (l *Linker) pointsTo(link, source string) bool {
	dest, err := l.fs.Readlink(link)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	return filepath.Clean(dest) == filepath.Clean(source)
}

// ensureSharedSource creates the shared directory a post-switch link points
// at when nothing exists there yet
func (l *Linker) ensureSharedSource(link Link) error {
	source := l.SourcePath(link)
	if _, err := l.fs.Lstat(source); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", source)
	}

	if err := l.fs.MkdirAll(source, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create shared directory %s", source).
			WithDetail("path", source)
	}
	l.logger.Info().Str("path", source).Msg("Created shared directory")
	return nil
}
