package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/deployrev/pkg/types"
)

// osFS is the host filesystem. The deployer hands it absolute paths built
// from the deploy root.
type osFS struct{}

// NewOS returns the host filesystem
func NewOS() types.FS {
	return osFS{}
}

func (osFS) Stat(name string) (fs.FileInfo, error)  { return os.Stat(name) }
func (osFS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }
func (osFS) ReadFile(name string) ([]byte, error)   { return os.ReadFile(name) }
func (osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (osFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (osFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (osFS) Symlink(oldname, newname string) error { return os.Symlink(oldname, newname) }
func (osFS) Readlink(name string) (string, error)  { return os.Readlink(name) }
func (osFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (osFS) Remove(name string) error              { return os.Remove(name) }

func (osFS) RemoveAll(path string) error {
	if err := checkRemoveAll(path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}

// checkRemoveAll rejects recursive removal of the empty path, the working
// directory and a filesystem root. Pruning and link preparation only ever
// remove paths inside a deploy root.
func checkRemoveAll(path string) error {
	clean := filepath.Clean(path)
	if path == "" || clean == "." || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return &fs.PathError{Op: "removeall", Path: path, Err: fs.ErrInvalid}
	}
	return nil
}
