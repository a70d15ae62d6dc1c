package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deployrev/pkg/errors"
)

// ValidatePath performs basic validation on a path.
// It checks for:
// - Empty paths
// - Null bytes
// - Excessive path length
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Common filesystem limit
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ValidateRevision ensures a resolved revision identifier can name a release
// directory. Revisions must:
// - Not be empty
// - Not contain path separators
// - Not be reserved names (. or ..)
// - Not contain control characters
func ValidateRevision(revision string) error {
	if revision == "" {
		return errors.New(errors.ErrInvalidInput, "revision cannot be empty")
	}

	if strings.ContainsAny(revision, "/\\") {
		return errors.Newf(errors.ErrInvalidInput, "revision %q cannot contain path separators", revision)
	}

	if revision == "." || revision == ".." {
		return errors.New(errors.ErrInvalidInput, "revision cannot be '.' or '..'")
	}

	for _, r := range revision {
		if r < 32 || r == 127 {
			return errors.Newf(errors.ErrInvalidInput, "revision %q contains control characters", revision)
		}
	}

	return nil
}

// ValidateRelativeTarget checks a path meant to live inside a release: it must
// be relative and must not climb out of the release with "..".
func ValidateRelativeTarget(target string) error {
	if err := ValidatePath(target); err != nil {
		return err
	}

	if filepath.IsAbs(target) {
		return errors.Newf(errors.ErrInvalidInput, "target %q must be relative to the release", target)
	}

	cleaned := filepath.Clean(target)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return errors.Newf(errors.ErrInvalidInput, "target %q escapes the release directory", target)
	}

	return nil
}

// ContainsPath checks if child is contained within parent.
// Both paths are cleaned before comparison.
func ContainsPath(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
