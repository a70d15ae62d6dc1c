package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/spf13/afero"
)

// maxLinkDepth bounds link chains the emulation follows, like the kernel's
// ELOOP limit
const maxLinkDepth = 40

// aferoFS implements types.FS using afero
type aferoFS struct {
	fs afero.Fs

	// links holds emulated symlinks by cleaned path when fs has no native
	// support. Each link also leaves a placeholder file so directory
	// listings and removals see it.
	mu    sync.RWMutex
	links map[string]string
}

// NewAferoFS creates a new afero filesystem implementation.
// Symlink support is taken from the underlying afero.Fs when it provides it
// (OsFs, BasePathFs over OsFs); otherwise links are emulated: Lstat reports
// them as symlinks, Stat and path lookups follow them.
func NewAferoFS(fs afero.Fs) types.FS {
	a := &aferoFS{fs: fs}
	if _, ok := fs.(afero.Linker); !ok {
		a.links = make(map[string]string)
	}
	return a
}

// NewMemoryFS returns an in-memory filesystem
func NewMemoryFS() types.FS {
	return NewAferoFS(afero.NewMemMapFs())
}

func (a *aferoFS) emulated() bool {
	return a.links != nil
}

// resolve maps name onto the underlying filesystem by substituting emulated
// links along it. The last element is followed only when follow is set.
func (a *aferoFS) resolve(name string, follow bool) (string, error) {
	if !a.emulated() {
		return name, nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolveLocked(name, follow, 0)
}

func (a *aferoFS) resolveLocked(name string, follow bool, depth int) (string, error) {
	if depth > maxLinkDepth {
		return "", &fs.PathError{Op: "lstat", Path: name, Err: syscall.ELOOP}
	}

	parts := strings.Split(filepath.Clean(name), string(filepath.Separator))
	cur := ""
	if filepath.IsAbs(name) {
		cur = string(filepath.Separator)
	}
	for i, part := range parts {
		if part == "" {
			continue
		}
		cur = filepath.Join(cur, part)
		if i == len(parts)-1 && !follow {
			break
		}
		target, ok := a.links[cur]
		if !ok {
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(cur), target)
		}
		resolved, err := a.resolveLocked(target, true, depth+1)
		if err != nil {
			return "", err
		}
		cur = resolved
	}
	if cur == "" {
		cur = "."
	}
	return cur, nil
}

func (a *aferoFS) Stat(name string) (fs.FileInfo, error) {
	path, err := a.resolve(name, true)
	if err != nil {
		return nil, err
	}
	return a.fs.Stat(path)
}

func (a *aferoFS) ReadFile(name string) ([]byte, error) {
	path, err := a.resolve(name, true)
	if err != nil {
		return nil, err
	}
	info, err := a.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return afero.ReadFile(a.fs, path)
}

func (a *aferoFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	path, err := a.resolve(name, true)
	if err != nil {
		return err
	}
	return afero.WriteFile(a.fs, path, data, perm)
}

func (a *aferoFS) MkdirAll(path string, perm fs.FileMode) error {
	resolved, err := a.resolve(path, true)
	if err != nil {
		return err
	}
	return a.fs.MkdirAll(resolved, perm)
}

func (a *aferoFS) Symlink(oldname, newname string) error {
	if !a.emulated() {
		return a.fs.(afero.Linker).SymlinkIfPossible(oldname, newname)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path, err := a.resolveLocked(newname, false, 0)
	if err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: err}
	}
	if _, ok := a.links[path]; ok {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: fs.ErrExist}
	}
	if _, err := a.fs.Stat(path); err == nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: fs.ErrExist}
	}
	if err := afero.WriteFile(a.fs, path, []byte(oldname), 0777); err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: err}
	}
	a.links[path] = oldname
	return nil
}

func (a *aferoFS) Readlink(name string) (string, error) {
	if !a.emulated() {
		if reader, ok := a.fs.(afero.LinkReader); ok {
			return reader.ReadlinkIfPossible(name)
		}
		return "", &fs.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	path, err := a.resolveLocked(name, false, 0)
	if err != nil {
		return "", err
	}
	if target, ok := a.links[path]; ok {
		return target, nil
	}
	if _, err := a.fs.Stat(path); err != nil {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrNotExist}
	}
	return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
}

func (a *aferoFS) Remove(name string) error {
	if !a.emulated() {
		return a.fs.Remove(name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	path, err := a.resolveLocked(name, false, 0)
	if err != nil {
		return err
	}
	if err := a.fs.Remove(path); err != nil {
		return err
	}
	delete(a.links, path)
	return nil
}

func (a *aferoFS) RemoveAll(path string) error {
	if err := checkRemoveAll(path); err != nil {
		return err
	}
	if !a.emulated() {
		return a.fs.RemoveAll(path)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	resolved, err := a.resolveLocked(path, false, 0)
	if err != nil {
		return err
	}
	if err := a.fs.RemoveAll(resolved); err != nil {
		return err
	}
	for link := range a.links {
		if link == resolved || strings.HasPrefix(link, resolved+string(filepath.Separator)) {
			delete(a.links, link)
		}
	}
	return nil
}

func (a *aferoFS) Rename(oldpath, newpath string) error {
	if !a.emulated() {
		return a.fs.Rename(oldpath, newpath)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	from, err := a.resolveLocked(oldpath, false, 0)
	if err != nil {
		return err
	}
	to, err := a.resolveLocked(newpath, false, 0)
	if err != nil {
		return err
	}
	if err := a.fs.Rename(from, to); err != nil {
		return err
	}

	delete(a.links, to)
	moved := make(map[string]string)
	for link, target := range a.links {
		switch {
		case link == from:
			moved[to] = target
		case strings.HasPrefix(link, from+string(filepath.Separator)):
			moved[to+strings.TrimPrefix(link, from)] = target
		default:
			continue
		}
		delete(a.links, link)
	}
	for link, target := range moved {
		a.links[link] = target
	}
	return nil
}

func (a *aferoFS) Lstat(name string) (fs.FileInfo, error) {
	if !a.emulated() {
		if lstater, ok := a.fs.(afero.Lstater); ok {
			info, _, err := lstater.LstatIfPossible(name)
			return info, err
		}
		return a.fs.Stat(name)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	path, err := a.resolveLocked(name, false, 0)
	if err != nil {
		return nil, err
	}
	if target, ok := a.links[path]; ok {
		return &linkInfo{name: filepath.Base(path), size: int64(len(target))}, nil
	}
	return a.fs.Stat(path)
}

func (a *aferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	dir, err := a.resolve(name, true)
	if err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(a.fs, dir)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	dirEntries := make([]fs.DirEntry, len(entries))
	for i, entry := range entries {
		if target, ok := a.links[filepath.Join(dir, entry.Name())]; ok {
			dirEntries[i] = fs.FileInfoToDirEntry(&linkInfo{name: entry.Name(), size: int64(len(target))})
			continue
		}
		dirEntries[i] = fs.FileInfoToDirEntry(entry)
	}
	return dirEntries, nil
}

// linkInfo describes an emulated symlink
type linkInfo struct {
	name string
	size int64
}

func (l *linkInfo) Name() string       { return l.name }
func (l *linkInfo) Size() int64        { return l.size }
func (l *linkInfo) Mode() fs.FileMode  { return fs.ModeSymlink | 0777 }
func (l *linkInfo) ModTime() time.Time { return time.Time{} }
func (l *linkInfo) IsDir() bool        { return false }
func (l *linkInfo) Sys() any           { return nil }
