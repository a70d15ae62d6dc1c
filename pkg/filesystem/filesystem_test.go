// pkg/filesystem/filesystem_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem in t.TempDir, afero
// PURPOSE: Test both types.FS implementations, symlink handling in particular

package filesystem

import (
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fs := NewOS()
	assert.NotNil(t, fs)

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("hello world")

	require.NoError(t, fs.WriteFile(testFile, testContent, 0644))

	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())

	content, err := fs.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, testContent, content)

	require.NoError(t, fs.MkdirAll(filepath.Join(tmpDir, "sub", "dir"), 0755))

	entries, err := fs.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, fs.Remove(testFile))
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))
}

func TestSymlinkRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	implementations := map[string]types.FS{
		"os":         NewOS(),
		"afero_osfs": NewAferoFS(afero.NewOsFs()),
	}

	for name, fs := range implementations {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(tmpDir, name)
			target := filepath.Join(dir, "releases", "abc")
			link := filepath.Join(dir, "current")
			require.NoError(t, fs.MkdirAll(target, 0755))

			require.NoError(t, fs.Symlink(target, link))

			got, err := fs.Readlink(link)
			require.NoError(t, err)
			assert.Equal(t, target, got)

			info, err := fs.Lstat(link)
			require.NoError(t, err)
			assert.NotZero(t, info.Mode()&os.ModeSymlink, "Lstat must not follow the link")

			info, err = fs.Stat(link)
			require.NoError(t, err)
			assert.True(t, info.IsDir(), "Stat follows the link to the release")
		})
	}
}

func TestMemoryFSSimulatesSymlinks(t *testing.T) {
	fs := NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/srv/app/releases/abc", 0755))
	require.NoError(t, fs.WriteFile("/srv/app/releases/abc/app.rb", []byte("puts 1"), 0644))

	require.NoError(t, fs.Symlink("/srv/app/releases/abc", "/srv/app/current"))

	got, err := fs.Readlink("/srv/app/current")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app/releases/abc", got)

	info, err := fs.Lstat("/srv/app/current")
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "Lstat must report the link")

	info, err = fs.Stat("/srv/app/current")
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "Stat follows the link")

	content, err := fs.ReadFile("/srv/app/current/app.rb")
	require.NoError(t, err)
	assert.Equal(t, "puts 1", string(content))

	err = fs.Symlink("/srv/app/releases/other", "/srv/app/current")
	assert.Error(t, err, "an existing path must not be silently replaced")

	_, err = fs.Readlink("/srv/app/releases/abc")
	assert.Error(t, err, "a directory is not a link")
}

func TestMemoryFSRenameAndRemoveLinks(t *testing.T) {
	fs := NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/srv/app/releases/abc", 0755))
	require.NoError(t, fs.MkdirAll("/srv/app/releases/def", 0755))
	require.NoError(t, fs.Symlink("/srv/app/releases/abc", "/srv/app/current"))

	// staged link renamed over the live one
	require.NoError(t, fs.Symlink("/srv/app/releases/def", "/srv/app/.current-tmp"))
	require.NoError(t, fs.Rename("/srv/app/.current-tmp", "/srv/app/current"))

	got, err := fs.Readlink("/srv/app/current")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app/releases/def", got)

	_, err = fs.Lstat("/srv/app/.current-tmp")
	assert.True(t, os.IsNotExist(err))

	entries, err := fs.ReadDir("/srv/app")
	require.NoError(t, err)
	modes := map[string]os.FileMode{}
	for _, e := range entries {
		modes[e.Name()] = e.Type()
	}
	assert.Equal(t, os.ModeSymlink, modes["current"])
	assert.True(t, modes["releases"].IsDir())

	require.NoError(t, fs.Remove("/srv/app/current"))
	_, err = fs.Lstat("/srv/app/current")
	assert.True(t, os.IsNotExist(err))
	_, err = fs.Readlink("/srv/app/current")
	assert.Error(t, err)

	require.NoError(t, fs.Symlink("/srv/app/releases/abc", "/srv/app/releases/def/link"))
	require.NoError(t, fs.RemoveAll("/srv/app/releases/def"))
	_, err = fs.Lstat("/srv/app/releases/def/link")
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveAll_RefusesRoots(t *testing.T) {
	implementations := map[string]types.FS{
		"os":     NewOS(),
		"memory": NewMemoryFS(),
	}

	for name, fs := range implementations {
		t.Run(name, func(t *testing.T) {
			for _, path := range []string{"", ".", "/", "/srv/.."} {
				err := fs.RemoveAll(path)
				require.Error(t, err, "%q", path)
				assert.ErrorIs(t, err, iofs.ErrInvalid)
			}

			dir := filepath.Join(t.TempDir(), "releases", "abc")
			if name == "memory" {
				dir = "/srv/app/releases/abc"
			}
			require.NoError(t, fs.MkdirAll(dir, 0755))
			require.NoError(t, fs.RemoveAll(dir))
			_, err := fs.Lstat(dir)
			assert.True(t, os.IsNotExist(err))
		})
	}
}
