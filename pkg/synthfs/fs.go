package synthfs

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
)

// fsAdapter presents a types.FS to the synthfs executor. synthfs hands out
// slash-separated names relative to the filesystem root; they are mapped back
// to absolute paths before reaching the wrapped FS.
type fsAdapter struct {
	fs types.FS
}

var _ synthfs.FileSystem = (*fsAdapter)(nil)

func newFSAdapter(fsys types.FS) *fsAdapter {
	return &fsAdapter{fs: fsys}
}

func (a *fsAdapter) abs(name string) string {
	return filepath.Join(string(filepath.Separator), filepath.FromSlash(name))
}

// Open is not supported: directory pipelines never read file contents.
func (a *fsAdapter) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
}

func (a *fsAdapter) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(a.abs(name))
}

func (a *fsAdapter) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return a.fs.WriteFile(a.abs(name), data, perm)
}

func (a *fsAdapter) MkdirAll(path string, perm fs.FileMode) error {
	return a.fs.MkdirAll(a.abs(path), perm)
}

func (a *fsAdapter) Remove(name string) error {
	return a.fs.Remove(a.abs(name))
}

func (a *fsAdapter) RemoveAll(name string) error {
	return a.fs.RemoveAll(a.abs(name))
}

func (a *fsAdapter) Symlink(oldname, newname string) error {
	return a.fs.Symlink(oldname, a.abs(newname))
}

func (a *fsAdapter) Readlink(name string) (string, error) {
	return a.fs.Readlink(a.abs(name))
}

func (a *fsAdapter) Rename(oldpath, newpath string) error {
	return a.fs.Rename(a.abs(oldpath), a.abs(newpath))
}
