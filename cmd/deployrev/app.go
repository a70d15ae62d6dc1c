package deployrev

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/deployrev/pkg/callbacks"
	"github.com/arthur-debert/deployrev/pkg/checkout"
	"github.com/arthur-debert/deployrev/pkg/command"
	"github.com/arthur-debert/deployrev/pkg/config"
	"github.com/arthur-debert/deployrev/pkg/deploy"
	"github.com/arthur-debert/deployrev/pkg/filesystem"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/arthur-debert/deployrev/pkg/style"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/rs/zerolog/log"
)

// rootOptions holds the global flags shared by every command
type rootOptions struct {
	verbosity  int
	configFile string
	deployTo   string
	output     string

	// newProvider builds the checkout provider, checkout.NewGit when nil
	newProvider func(repository string) types.CheckoutProvider
}

// loadConfig merges defaults, config file, environment and flags. Without
// --config the deploy root's deployrev.toml is read when it exists.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	opts := config.LoadOptions{
		File:     o.configFile,
		Required: o.configFile != "",
	}
	if o.deployTo != "" {
		opts.Overrides = map[string]interface{}{"deploy_to": o.deployTo}
	}

	if opts.File == "" {
		root := o.deployTo
		if root == "" {
			root = os.Getenv(paths.EnvDeployTo)
		}
		if root != "" {
			if layout, err := paths.New(root); err == nil {
				opts.File = layout.ConfigPath()
			}
		}
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

// setup loads the configuration and wires a Deployer for it. Command output
// goes to stderr so stdout only carries the rendered result.
func (o *rootOptions) setup(stderr io.Writer) (*deploy.Deployer, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	layout, err := paths.New(cfg.DeployTo)
	if err != nil {
		return nil, nil, fmt.Errorf(MsgErrInitPaths, err)
	}
	log.Debug().Str("deployRoot", layout.DeployRoot()).Msg("Using deploy root")

	fs := filesystem.NewOS()
	executor := command.NewExecutor(command.Options{
		Shell:  cfg.Shell,
		Stdout: stderr,
		Stderr: stderr,
	})

	hooks := callbacks.NewPipeline(callbacks.Options{Executor: executor, FS: fs})
	for stage, cmdline := range cfg.Callbacks.Commands() {
		hooks.Bind(stage, callbacks.CommandTask{Command: cmdline, Executor: executor})
	}

	newProvider := o.newProvider
	if newProvider == nil {
		newProvider = func(repository string) types.CheckoutProvider {
			return checkout.NewGit(repository)
		}
	}

	deployer, err := deploy.New(deploy.Config{
		Layout:               layout,
		FS:                   fs,
		Provider:             newProvider(cfg.Repository),
		Executor:             executor,
		Callbacks:            hooks,
		SymlinkBeforeMigrate: cfg.SymlinkBeforeMigrate,
		Symlinks:             cfg.Symlinks,
		SkeletonDirs:         cfg.CreateDirsBeforeSymlink,
		PurgeBeforeSymlink:   cfg.PurgeBeforeSymlink,
		RestartCommand:       cfg.RestartCommand,
		Migrate:              cfg.Migrate,
		MigrationCommand:     cfg.MigrationCommand,
	})
	if err != nil {
		return nil, nil, fmt.Errorf(MsgErrSetup, err)
	}
	return deployer, cfg, nil
}

// renderer builds the output renderer for --output. Only a real file can be
// detected as a terminal; anything else renders auto as text.
func (o *rootOptions) renderer(out io.Writer) (*style.Renderer, error) {
	format, err := style.ParseFormat(o.output)
	if err != nil {
		return nil, err
	}
	file, ok := out.(*os.File)
	if !ok && format == style.FormatAuto {
		format = style.FormatText
	}
	return style.NewRenderer(out, style.Resolve(format, file)), nil
}

// styledHelp reports whether help topics render as styled markdown: --output
// term forces it, auto follows whether stdout is a color terminal
func (o *rootOptions) styledHelp() bool {
	format, err := style.ParseFormat(o.output)
	if err != nil {
		return false
	}
	if format == style.FormatAuto {
		format = style.DetectFormat(os.Stdout)
	}
	return format == style.FormatTerminal
}
