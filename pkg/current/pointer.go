package current

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tempPrefix names the staging link created next to current before the rename
const tempPrefix = ".current-"

// Pointer manages the current symlink of a deploy root
type Pointer struct {
	fs     types.FS
	layout paths.Layout
	logger zerolog.Logger
}

// NewPointer creates a Pointer for layout
func NewPointer(fs types.FS, layout paths.Layout) *Pointer {
	return &Pointer{
		fs:     fs,
		layout: layout,
		logger: logging.GetLogger("current"),
	}
}

// Target returns the raw link target of current, with ok=false when current
// does not exist. A current that is not a symlink is an error.
func (p *Pointer) Target() (string, bool, error) {
	link := p.layout.CurrentPath()

	info, err := p.fs.Lstat(link)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, errors.ErrSwitch, "failed to inspect %s", link)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", false, errors.Newf(errors.ErrSwitch, "%s exists but is not a symlink", link).
			WithDetail("path", link)
	}

	target, err := p.fs.Readlink(link)
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrSwitch, "failed to read %s", link)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	return filepath.Clean(target), true, nil
}

// Read returns the revision current designates. ok is false when nothing is
// deployed yet, or when current points somewhere other than a directory
// directly under releases/ (no revision can be derived from it then).
func (p *Pointer) Read() (string, bool, error) {
	target, ok, err := p.Target()
	if err != nil || !ok {
		return "", false, err
	}

	if filepath.Dir(target) != p.layout.ReleasesDir() {
		p.logger.Warn().
			Str("target", target).
			Msg("current points outside the releases directory")
		return "", false, nil
	}

	return filepath.Base(target), true, nil
}

// Swap atomically repoints current at releasePath. A new link is created
// under a temporary name in the deploy root and renamed over current, so
// readers see either the old or the new target. If the rename fails current
// still references its previous target.
func (p *Pointer) Swap(releasePath string) error {
	link := p.layout.CurrentPath()
	tmp := filepath.Join(filepath.Dir(link), tempPrefix+uuid.NewString())

	if err := p.fs.Symlink(releasePath, tmp); err != nil {
		return errors.Wrapf(err, errors.ErrSwitch, "failed to create staging link %s", tmp).
			WithDetail("path", tmp)
	}

	if err := p.fs.Rename(tmp, link); err != nil {
		if rmErr := p.fs.Remove(tmp); rmErr != nil {
			p.logger.Warn().Err(rmErr).Str("path", tmp).Msg("Failed to remove staging link")
		}
		return errors.Wrapf(err, errors.ErrSwitch, "failed to move %s into place", link).
			WithDetail("path", link)
	}

	p.logger.Info().
		Str("current", link).
		Str("release", releasePath).
		Msg("Switched current release")

	return nil
}
