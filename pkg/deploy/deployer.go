package deploy

import (
	"context"
	stderrors "errors"

	"github.com/arthur-debert/deployrev/pkg/callbacks"
	"github.com/arthur-debert/deployrev/pkg/current"
	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/linker"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/release"
	"github.com/arthur-debert/deployrev/pkg/synthfs"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/rs/zerolog"
)

// Stage names recorded on failures. Callback stages use their own names.
const (
	StageResolve         = "resolve"
	StageCheckIdempotent = "check_idempotent"
	StageLayout          = "layout"
	StageRelease         = "release"
	StagePreMigrateLink  = "pre_migrate_link"
	StageMigrate         = "migrate"
	StagePostSwitchLink  = "post_switch_link"
	StageSwitch          = "switch"
	StageRestart         = "restart"
)

// Config wires a Deployer to its collaborators and deployment settings
type Config struct {
	Layout   paths.Layout
	FS       types.FS
	Provider types.CheckoutProvider
	// Executor runs the restart and migration commands
	Executor types.CommandExecutor
	// Callbacks holds the stage hooks, an empty pipeline when nil
	Callbacks *callbacks.Pipeline
	// Dirs creates skeleton directories, the synthfs executor when nil
	Dirs linker.DirEnsurer

	SymlinkBeforeMigrate []linker.Link
	Symlinks             []linker.Link
	SkeletonDirs         []string
	PurgeBeforeSymlink   []string
	// OverwriteLinks lets any existing path be replaced by a link
	OverwriteLinks bool

	RestartCommand   string
	Migrate          bool
	MigrationCommand string
}

// Options are the per-invocation inputs
type Options struct {
	RevisionSpec string
	Force        bool
}

// Outcome describes a finished deployment
type Outcome struct {
	Updated     bool   `json:"updated" yaml:"updated"`
	Revision    string `json:"revision" yaml:"revision"`
	ReleasePath string `json:"release_path" yaml:"release_path"`
	Created     bool   `json:"created" yaml:"created"`
	Previous    string `json:"previous,omitempty" yaml:"previous,omitempty"`
	Forced      bool   `json:"forced" yaml:"forced"`
}

// Deployer runs deployments against one deploy root. A Deployer does not
// serialize concurrent calls; callers must not deploy to the same root from
// two places at once.
type Deployer struct {
	cfg     Config
	store   *release.Store
	pointer *current.Pointer
	linker  *linker.Linker
	hooks   *callbacks.Pipeline
	logger  zerolog.Logger
}

// New validates cfg and creates a Deployer
func New(cfg Config) (*Deployer, error) {
	if cfg.Layout == nil {
		return nil, errors.New(errors.ErrInvalidInput, "deployer requires a layout")
	}
	if cfg.FS == nil {
		return nil, errors.New(errors.ErrInvalidInput, "deployer requires a filesystem")
	}
	if cfg.Provider == nil {
		return nil, errors.New(errors.ErrInvalidInput, "deployer requires a checkout provider")
	}
	if cfg.Executor == nil && (cfg.RestartCommand != "" || cfg.Migrate) {
		return nil, errors.New(errors.ErrInvalidInput, "deployer requires a command executor to run commands")
	}
	for _, link := range append(append([]linker.Link{}, cfg.SymlinkBeforeMigrate...), cfg.Symlinks...) {
		if err := link.Validate(); err != nil {
			return nil, err
		}
	}
	for _, dir := range cfg.SkeletonDirs {
		if err := paths.ValidateRelativeTarget(dir); err != nil {
			return nil, err
		}
	}

	if cfg.Dirs == nil {
		cfg.Dirs = synthfs.NewDirExecutor(cfg.FS, false)
	}
	hooks := cfg.Callbacks
	if hooks == nil {
		hooks = callbacks.NewPipeline(callbacks.Options{Executor: cfg.Executor, FS: cfg.FS})
	}

	return &Deployer{
		cfg:     cfg,
		store:   release.NewStore(cfg.FS, cfg.Layout, cfg.Provider),
		pointer: current.NewPointer(cfg.FS, cfg.Layout),
		linker: linker.New(cfg.FS, cfg.Layout, cfg.Dirs, linker.Options{
			Purge:     cfg.PurgeBeforeSymlink,
			Overwrite: cfg.OverwriteLinks,
		}),
		hooks:  hooks,
		logger: logging.GetLogger("deploy"),
	}, nil
}

// Deploy brings the deploy root to opts.RevisionSpec. When that revision is
// already live and opts.Force is unset nothing is touched and the outcome
// reports Updated=false. A current pointing at a release directory that no
// longer exists is not live. Otherwise the release is reused or checked out, the
// callbacks and restart run around the switch, and Updated=true.
//
// Failures abort the run and carry the stage in their details. Nothing done
// by earlier stages is undone.
func (d *Deployer) Deploy(ctx context.Context, opts Options) (*Outcome, error) {
	done := logging.LogOperationStart(d.logger, "deploy")
	defer done()

	revision, err := d.resolve(ctx, opts.RevisionSpec)
	if err != nil {
		return nil, err
	}

	active, _, err := d.pointer.Read()
	if err != nil {
		return nil, stageError(err, errors.ErrSwitch, StageCheckIdempotent)
	}

	outcome := &Outcome{
		Revision:    revision,
		ReleasePath: d.cfg.Layout.ReleasePath(revision),
		Previous:    active,
		Forced:      opts.Force,
	}

	live, err := d.live(active, revision)
	if err != nil {
		return nil, err
	}
	if live && !opts.Force {
		d.logger.Info().
			Str("revision", revision).
			Msg("Revision already deployed, nothing to do")
		return outcome, nil
	}

	if err := d.step(StageLayout, func() error {
		return paths.EnsureLayout(d.cfg.FS, d.cfg.Layout)
	}); err != nil {
		return nil, stageError(err, errors.ErrDirCreate, StageLayout)
	}

	releasePath, created, err := d.store.ResolveOrCreate(ctx, revision)
	if err != nil {
		return nil, stageError(err, errors.ErrCheckout, StageRelease)
	}
	outcome.ReleasePath = releasePath
	outcome.Created = created

	d.logger.Info().
		Str("revision", revision).
		Str("previous", active).
		Bool("created", created).
		Bool("force", opts.Force).
		Msg("Deploying release")

	if err := d.step(StagePreMigrateLink, func() error {
		return d.linker.LinkBeforeMigrate(ctx, releasePath, d.cfg.SymlinkBeforeMigrate)
	}); err != nil {
		return nil, stageError(err, linkCode(err, errors.ErrSymlinkCreate), StagePreMigrateLink)
	}

	if err := d.hooks.Run(ctx, types.StageBeforeMigrate, releasePath); err != nil {
		return nil, err
	}

	if err := d.step(StageMigrate, func() error {
		return d.migrate(ctx, releasePath)
	}); err != nil {
		return nil, stageError(err, errors.ErrMigration, StageMigrate)
	}

	if err := d.hooks.Run(ctx, types.StageBeforeSymlink, releasePath); err != nil {
		return nil, err
	}

	if err := d.step(StagePostSwitchLink, func() error {
		return d.linker.LinkAfterSwitch(ctx, releasePath, d.cfg.Symlinks, d.cfg.SkeletonDirs)
	}); err != nil {
		return nil, stageError(err, linkCode(err, errors.ErrSwitch), StagePostSwitchLink)
	}

	if err := d.step(StageSwitch, func() error {
		return d.pointer.Swap(releasePath)
	}); err != nil {
		return nil, stageError(err, errors.ErrSwitch, StageSwitch)
	}

	if err := d.hooks.Run(ctx, types.StageBeforeRestart, releasePath); err != nil {
		return nil, err
	}

	if err := d.step(StageRestart, func() error {
		return d.restart(ctx, releasePath)
	}); err != nil {
		return nil, stageError(err, errors.ErrRestart, StageRestart)
	}

	if err := d.hooks.Run(ctx, types.StageAfterRestart, releasePath); err != nil {
		return nil, err
	}

	outcome.Updated = true
	d.logger.Info().
		Str("revision", revision).
		Str("release", releasePath).
		Msg("Deployment complete")
	return outcome, nil
}

// Active returns the revision current points at, if any
func (d *Deployer) Active() (string, bool, error) {
	return d.pointer.Read()
}

// Store exposes the release store for listing and pruning
func (d *Deployer) Store() *release.Store {
	return d.store
}

// live reports whether revision is the active one and its release directory
// is still on disk
func (d *Deployer) live(active, revision string) (bool, error) {
	if active != revision {
		return false, nil
	}
	exists, err := d.store.Exists(revision)
	if err != nil {
		return false, stageError(err, errors.ErrFileAccess, StageCheckIdempotent)
	}
	if !exists {
		d.logger.Warn().
			Str("revision", revision).
			Str("release", d.cfg.Layout.ReleasePath(revision)).
			Msg("current points at a missing release, deploying it again")
	}
	return exists, nil
}

func (d *Deployer) resolve(ctx context.Context, spec string) (string, error) {
	done := logging.LogOperationStart(d.logger, StageResolve)
	defer done()

	revision, err := d.cfg.Provider.Resolve(ctx, spec)
	if err != nil {
		return "", stageError(errors.Wrapf(err, errors.ErrResolution, "failed to resolve %q", spec).
			WithDetail("spec", spec), errors.ErrResolution, StageResolve)
	}
	if err := paths.ValidateRevision(revision); err != nil {
		return "", stageError(errors.Wrapf(err, errors.ErrResolution,
			"provider resolved %q to unusable revision %q", spec, revision), errors.ErrResolution, StageResolve)
	}

	d.logger.Debug().Str("spec", spec).Str("revision", revision).Msg("Resolved revision")
	return revision, nil
}

func (d *Deployer) migrate(ctx context.Context, releasePath string) error {
	if !d.cfg.Migrate || d.cfg.MigrationCommand == "" {
		return nil
	}
	d.logger.Info().Str("command", d.cfg.MigrationCommand).Msg("Running migration")
	return d.cfg.Executor.Run(ctx, d.cfg.MigrationCommand, releasePath)
}

func (d *Deployer) restart(ctx context.Context, releasePath string) error {
	if d.cfg.RestartCommand == "" {
		d.logger.Debug().Msg("No restart command configured")
		return nil
	}
	d.logger.Info().Str("command", d.cfg.RestartCommand).Msg("Restarting")
	return d.cfg.Executor.Run(ctx, d.cfg.RestartCommand, releasePath)
}

func (d *Deployer) step(name string, fn func() error) error {
	done := logging.LogOperationStart(d.logger, name)
	defer done()
	return fn()
}

// stageError makes sure err carries code and the stage it failed in. An error
// whose outermost code already matches only gains the stage detail.
func stageError(err error, code errors.ErrorCode, stage string) error {
	var deployErr *errors.DeployError
	if stderrors.As(err, &deployErr) && deployErr.Code == code {
		deployErr.WithDetail(errors.DetailStage, stage)
		return err
	}
	return errors.Wrapf(err, code, "%s failed", stage).
		WithDetail(errors.DetailStage, stage)
}

// linkCode keeps conflicts distinct from other linking failures
func linkCode(err error, fallback errors.ErrorCode) errors.ErrorCode {
	if errors.IsErrorCode(err, errors.ErrLinkConflict) {
		return errors.ErrLinkConflict
	}
	return fallback
}
