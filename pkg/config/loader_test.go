// pkg/config/loader_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem in t.TempDir, environment via t.Setenv
// PURPOSE: Test layered configuration loading, decoding and validation

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/linker"
	"github.com/arthur-debert/deployrev/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deployrev.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []linker.Link{
		{Source: "system", Target: "public/system"},
		{Source: "pids", Target: "tmp/pids"},
		{Source: "log", Target: "log"},
	}, cfg.Symlinks)
	assert.Equal(t, []string{"tmp", "public", "config", "log", "tmp/pids", "public/system"}, cfg.CreateDirsBeforeSymlink)
	assert.Equal(t, []string{"log", "tmp/pids", "public/system"}, cfg.PurgeBeforeSymlink)
	assert.Empty(t, cfg.SymlinkBeforeMigrate)
	assert.Equal(t, 5, cfg.KeepReleases)
	assert.Equal(t, "HEAD", cfg.Revision)
	assert.Equal(t, "sh", cfg.Shell)
	assert.False(t, cfg.Migrate)
	assert.Empty(t, cfg.Callbacks.Commands())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
deploy_to = "/srv/shop"
repository = "https://example.com/shop.git"
symlinks = ["log:log"]
symlink_before_migrate = [{ source = "database.yml", target = "config/database.yml" }]
restart_command = "touch tmp/restart.txt"
keep_releases = 3

[callbacks]
before_restart = "bin/assets"
`)

	cfg, err := Load(LoadOptions{File: path, SkipEnv: true})
	require.NoError(t, err)

	assert.Equal(t, "/srv/shop", cfg.DeployTo)
	assert.Equal(t, "https://example.com/shop.git", cfg.Repository)
	assert.Equal(t, []linker.Link{{Source: "log", Target: "log"}}, cfg.Symlinks, "lists replace defaults")
	assert.Equal(t, []linker.Link{{Source: "database.yml", Target: "config/database.yml"}}, cfg.SymlinkBeforeMigrate)
	assert.Equal(t, "touch tmp/restart.txt", cfg.RestartCommand)
	assert.Equal(t, 3, cfg.KeepReleases)
	assert.Equal(t, map[types.Stage]string{types.StageBeforeRestart: "bin/assets"}, cfg.Callbacks.Commands())

	// untouched keys keep their defaults
	assert.Equal(t, []string{"log", "tmp/pids", "public/system"}, cfg.PurgeBeforeSymlink)
}

func TestLoad_EnvAndOverrides(t *testing.T) {
	path := writeConfig(t, `restart_command = "from-file"`)
	t.Setenv("DEPLOYREV_RESTART_COMMAND", "from-env")
	t.Setenv("DEPLOYREV_KEEP_RELEASES", "7")
	t.Setenv("DEPLOYREV_SYMLINKS", "pids:tmp/pids,log")
	t.Setenv("DEPLOYREV_CALLBACKS__AFTER_RESTART", "bin/notify")
	t.Setenv("DEPLOYREV_DEPLOY_TO", "/from/env")

	cfg, err := Load(LoadOptions{
		File:      path,
		Overrides: map[string]interface{}{"deploy_to": "/from/flag"},
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.RestartCommand)
	assert.Equal(t, 7, cfg.KeepReleases)
	assert.Equal(t, []linker.Link{
		{Source: "pids", Target: "tmp/pids"},
		{Source: "log", Target: "log"},
	}, cfg.Symlinks)
	assert.Equal(t, "bin/notify", cfg.Callbacks.AfterRestart)
	assert.Equal(t, "/from/flag", cfg.DeployTo)
}

func TestLoad_EnvLinkLists(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []linker.Link
	}{
		{
			name:  "single mapping",
			value: "pids:tmp/pids",
			want:  []linker.Link{{Source: "pids", Target: "tmp/pids"}},
		},
		{
			name:  "mixed entries",
			value: "system:public/system, log ,pids:tmp/pids",
			want: []linker.Link{
				{Source: "system", Target: "public/system"},
				{Source: "log", Target: "log"},
				{Source: "pids", Target: "tmp/pids"},
			},
		},
		{
			name:  "empty clears the list",
			value: "",
			want:  []linker.Link{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEPLOYREV_SYMLINK_BEFORE_MIGRATE", tt.value)
			t.Setenv("DEPLOYREV_PURGE_BEFORE_SYMLINK", "log,tmp/pids")

			cfg, err := Load(LoadOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.SymlinkBeforeMigrate)
			assert.Equal(t, []string{"log", "tmp/pids"}, cfg.PurgeBeforeSymlink)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	_, err := Load(LoadOptions{File: missing, SkipEnv: true})
	require.NoError(t, err, "optional file may be absent")

	_, err = Load(LoadOptions{File: missing, Required: true, SkipEnv: true})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{name: "broken toml", content: `symlinks = [`, code: errors.ErrConfigParse},
		{name: "bad link", content: `symlinks = ["log:/var/log"]`, code: errors.ErrConfigParse},
		{name: "bad table link", content: `symlinks = [{ source = "log", target = "../log" }]`, code: errors.ErrConfigValid},
		{name: "keep zero", content: `keep_releases = 0`, code: errors.ErrConfigValid},
		{name: "migrate without command", content: `migrate = true`, code: errors.ErrConfigValid},
		{name: "escaping skeleton", content: `create_dirs_before_symlink = ["../x"]`, code: errors.ErrConfigValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(LoadOptions{File: writeConfig(t, tt.content), SkipEnv: true})
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestGenerateConfigContent(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	cfg.DeployTo = "/srv/shop"
	cfg.RestartCommand = "bin/restart"

	content, err := GenerateConfigContent(cfg)
	require.NoError(t, err)
	assert.Contains(t, content, "# deployrev configuration")

	var raw map[string]interface{}
	require.NoError(t, toml.Unmarshal([]byte(content), &raw))
	assert.Equal(t, "/srv/shop", raw["deploy_to"])
	assert.Equal(t, []interface{}{"system:public/system", "pids:tmp/pids", "log:log"}, raw["symlinks"])

	// and it loads back to the same configuration
	loaded, err := Load(LoadOptions{File: writeConfig(t, content), Required: true, SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestCommentOutConfigValues(t *testing.T) {
	in := "# header\n\nkeep_releases = 5\n[callbacks]\nbefore_migrate = \"\""
	want := "# header\n\n# keep_releases = 5\n[callbacks]\n# before_migrate = \"\""
	assert.Equal(t, want, commentOutConfigValues(in))

	// commented defaults decode to an empty document
	var raw map[string]interface{}
	require.NoError(t, toml.Unmarshal([]byte(GenerateCommentedDefaults()), &raw))
	assert.Equal(t, map[string]interface{}{"callbacks": map[string]interface{}{}}, raw)
}
