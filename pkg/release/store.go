package release

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/rs/zerolog"
)

// Release is a directory under releases/ holding one revision's tree
type Release struct {
	Revision string    `json:"revision" yaml:"revision"`
	Path     string    `json:"path" yaml:"path"`
	ModTime  time.Time `json:"modified" yaml:"modified"`
	Active   bool      `json:"active" yaml:"active"`
}

// Store maps revisions to release directories
type Store struct {
	fs       types.FS
	layout   paths.Layout
	provider types.CheckoutProvider
	logger   zerolog.Logger
}

// NewStore creates a release store for layout. provider may be nil for
// read-only use (listing, pruning).
func NewStore(fs types.FS, layout paths.Layout, provider types.CheckoutProvider) *Store {
	return &Store{
		fs:       fs,
		layout:   layout,
		provider: provider,
		logger:   logging.GetLogger("release"),
	}
}

// Exists reports whether a release directory for revision is on disk
func (s *Store) Exists(revision string) (bool, error) {
	if err := paths.ValidateRevision(revision); err != nil {
		return false, err
	}
	info, err := s.fs.Stat(s.layout.ReleasePath(revision))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect release %s", revision)
	}
	if !info.IsDir() {
		return false, errors.Newf(errors.ErrFileAccess,
			"release path %s exists but is not a directory", s.layout.ReleasePath(revision))
	}
	return true, nil
}

// ResolveOrCreate returns the release directory for revision. An existing
// directory is returned as is with created=false and nothing inside it is
// touched. Otherwise the checkout provider materializes it.
func (s *Store) ResolveOrCreate(ctx context.Context, revision string) (string, bool, error) {
	releasePath := s.layout.ReleasePath(revision)

	exists, err := s.Exists(revision)
	if err != nil {
		return "", false, err
	}
	if exists {
		s.logger.Info().
			Str("revision", revision).
			Str("path", releasePath).
			Msg("Reusing existing release")
		return releasePath, false, nil
	}

	if s.provider == nil {
		return "", false, errors.New(errors.ErrInternal, "release store has no checkout provider")
	}

	s.logger.Info().
		Str("revision", revision).
		Str("path", releasePath).
		Msg("Checking out new release")

	if err := s.provider.Checkout(ctx, revision, releasePath); err != nil {
		if errors.IsErrorCode(err, errors.ErrCheckout) {
			return "", false, err
		}
		return "", false, errors.Wrapf(err, errors.ErrCheckout, "failed to check out %s", revision).
			WithDetail("release", releasePath)
	}

	// Providers must leave a directory behind; anything else is a failed checkout.
	if exists, err := s.Exists(revision); err != nil || !exists {
		return "", false, errors.Newf(errors.ErrCheckout,
			"checkout of %s did not produce %s", revision, releasePath)
	}

	return releasePath, true, nil
}

// List returns every release on disk, oldest first. active names the revision
// the current pointer designates and may be empty.
func (s *Store) List(active string) ([]Release, error) {
	entries, err := s.fs.ReadDir(s.layout.ReleasesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []Release{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", s.layout.ReleasesDir())
	}

	releases := make([]Release, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect release %s", entry.Name())
		}
		releases = append(releases, Release{
			Revision: entry.Name(),
			Path:     s.layout.ReleasePath(entry.Name()),
			ModTime:  info.ModTime(),
			Active:   entry.Name() == active,
		})
	}

	sort.SliceStable(releases, func(i, j int) bool {
		if releases[i].ModTime.Equal(releases[j].ModTime) {
			return releases[i].Revision < releases[j].Revision
		}
		return releases[i].ModTime.Before(releases[j].ModTime)
	})

	return releases, nil
}

// Prune deletes the oldest releases so that at most keep remain. The active
// release is never deleted and always counts towards keep. It returns the
// removed releases.
func (s *Store) Prune(keep int, active string) ([]Release, error) {
	if keep < 1 {
		return nil, errors.Newf(errors.ErrInvalidInput, "keep must be at least 1, got %d", keep)
	}

	releases, err := s.List(active)
	if err != nil {
		return nil, err
	}

	excess := len(releases) - keep
	var removed []Release
	for _, r := range releases {
		if excess <= 0 {
			break
		}
		if r.Active {
			continue
		}
		s.logger.Info().
			Str("revision", r.Revision).
			Str("path", r.Path).
			Msg("Removing old release")
		if err := s.fs.RemoveAll(r.Path); err != nil {
			return removed, errors.Wrapf(err, errors.ErrFileAccess, "failed to remove release %s", r.Revision)
		}
		removed = append(removed, r)
		excess--
	}

	return removed, nil
}
