package types

import (
	"context"
	"io/fs"
)

// FS defines the filesystem operations the deployer needs
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// Lstat must not follow symlinks; the current pointer and shared links
	// are inspected through it.
	Lstat(name string) (fs.FileInfo, error)
}

// CheckoutProvider turns revision specifiers into canonical revision
// identifiers and materializes a revision's tree on disk.
type CheckoutProvider interface {
	// Resolve returns the canonical identifier for spec (a branch, tag,
	// symbolic ref or full revision id). It must not touch the filesystem.
	Resolve(ctx context.Context, spec string) (string, error)

	// Checkout writes the tree of revision into dest, which does not exist yet.
	Checkout(ctx context.Context, revision, dest string) error
}

// CommandExecutor runs a shell command with a release as working directory.
// A non-zero exit is reported as an error.
type CommandExecutor interface {
	Run(ctx context.Context, command, workingDir string) error
}
