package config

import (
	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/linker"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/types"
)

// Config is the deployment configuration of one deploy root
type Config struct {
	DeployTo   string `koanf:"deploy_to" toml:"deploy_to" yaml:"deploy_to"`
	Repository string `koanf:"repository" toml:"repository" yaml:"repository"`
	Revision   string `koanf:"revision" toml:"revision" yaml:"revision"`

	SymlinkBeforeMigrate    []linker.Link `koanf:"symlink_before_migrate" toml:"symlink_before_migrate" yaml:"symlink_before_migrate"`
	Symlinks                []linker.Link `koanf:"symlinks" toml:"symlinks" yaml:"symlinks"`
	CreateDirsBeforeSymlink []string      `koanf:"create_dirs_before_symlink" toml:"create_dirs_before_symlink" yaml:"create_dirs_before_symlink"`
	PurgeBeforeSymlink      []string      `koanf:"purge_before_symlink" toml:"purge_before_symlink" yaml:"purge_before_symlink"`

	RestartCommand   string `koanf:"restart_command" toml:"restart_command" yaml:"restart_command"`
	Migrate          bool   `koanf:"migrate" toml:"migrate" yaml:"migrate"`
	MigrationCommand string `koanf:"migration_command" toml:"migration_command" yaml:"migration_command"`
	KeepReleases     int    `koanf:"keep_releases" toml:"keep_releases" yaml:"keep_releases"`
	Shell            string `koanf:"shell" toml:"shell" yaml:"shell"`

	Callbacks Callbacks `koanf:"callbacks" toml:"callbacks" yaml:"callbacks"`
}

// Callbacks binds shell commands to callback stages
type Callbacks struct {
	BeforeMigrate string `koanf:"before_migrate" toml:"before_migrate" yaml:"before_migrate"`
	BeforeSymlink string `koanf:"before_symlink" toml:"before_symlink" yaml:"before_symlink"`
	BeforeRestart string `koanf:"before_restart" toml:"before_restart" yaml:"before_restart"`
	AfterRestart  string `koanf:"after_restart" toml:"after_restart" yaml:"after_restart"`
}

// Commands returns the configured command per stage, skipping empty ones
func (c Callbacks) Commands() map[types.Stage]string {
	all := map[types.Stage]string{
		types.StageBeforeMigrate: c.BeforeMigrate,
		types.StageBeforeSymlink: c.BeforeSymlink,
		types.StageBeforeRestart: c.BeforeRestart,
		types.StageAfterRestart:  c.AfterRestart,
	}
	for stage, cmd := range all {
		if cmd == "" {
			delete(all, stage)
		}
	}
	return all
}

// Validate checks values that decoding alone cannot catch
func (c *Config) Validate() error {
	if c.KeepReleases < 1 {
		return errors.Newf(errors.ErrConfigValid, "keep_releases must be at least 1, got %d", c.KeepReleases)
	}
	if c.Migrate && c.MigrationCommand == "" {
		return errors.New(errors.ErrConfigValid, "migrate is enabled but migration_command is empty")
	}

	for _, group := range [][]linker.Link{c.SymlinkBeforeMigrate, c.Symlinks} {
		for _, link := range group {
			if err := link.Validate(); err != nil {
				return errors.Wrap(err, errors.ErrConfigValid, "invalid link")
			}
		}
	}

	for _, list := range []struct {
		key     string
		entries []string
	}{
		{"create_dirs_before_symlink", c.CreateDirsBeforeSymlink},
		{"purge_before_symlink", c.PurgeBeforeSymlink},
	} {
		for _, entry := range list.entries {
			if err := paths.ValidateRelativeTarget(entry); err != nil {
				return errors.Wrapf(err, errors.ErrConfigValid, "invalid %s entry", list.key).
					WithDetail("key", list.key)
			}
		}
	}

	return nil
}
