package testutil

import (
	"os"
	"testing"
)

// AssertSymlinkTo checks that path is a symlink whose target is exactly want
func AssertSymlinkTo(t *testing.T, path, want string) {
	t.Helper()

	info, err := os.Lstat(path)
	if err != nil {
		t.Errorf("Expected symlink at %s: %v", path, err)
		return
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("Expected %s to be a symlink, mode is %v", path, info.Mode())
		return
	}
	got, err := os.Readlink(path)
	if err != nil {
		t.Errorf("Failed to read link %s: %v", path, err)
		return
	}
	if got != want {
		t.Errorf("Symlink %s points to %s, want %s", path, got, want)
	}
}

// AssertDir checks that path is a real directory, not a symlink to one
func AssertDir(t *testing.T, path string) {
	t.Helper()

	info, err := os.Lstat(path)
	if err != nil {
		t.Errorf("Expected directory at %s: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory, mode is %v", path, info.Mode())
	}
}

// AssertNotExists checks that nothing, not even a dangling link, is at path
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Lstat(path); err == nil {
		t.Errorf("Expected %s not to exist", path)
	} else if !os.IsNotExist(err) {
		t.Errorf("Unexpected error checking %s: %v", path, err)
	}
}

// ReadFile returns the content of path or fails the test
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(content)
}
