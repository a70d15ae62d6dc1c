package deployrev

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/deployrev/internal/version"
	"github.com/arthur-debert/deployrev/pkg/config"
	"github.com/arthur-debert/deployrev/pkg/deploy"
	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/paths"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newDeployCmd(opts *rootOptions) *cobra.Command {
	var (
		force  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "deploy [revision]",
		Short:   MsgDeployShort,
		Long:    MsgDeployLong,
		Example: MsgDeployExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			deployer, cfg, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			spec := cfg.Revision
			if len(args) == 1 {
				spec = args[0]
			}
			deployOpts := deploy.Options{RevisionSpec: spec, Force: force}

			log.Info().
				Str("revision", spec).
				Bool("force", force).
				Bool("dryRun", dryRun).
				Msg("Deploy command")

			if dryRun {
				plan, err := deployer.Plan(cmd.Context(), deployOpts)
				if err != nil {
					return fmt.Errorf(MsgErrPlan, err)
				}
				return renderer.Plan(plan)
			}

			outcome, err := deployer.Deploy(cmd.Context(), deployOpts)
			if err != nil {
				return fmt.Errorf(MsgErrDeploy, err)
			}
			return renderer.Outcome(outcome)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			deployer, _, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			status, err := deployer.Status()
			if err != nil {
				return fmt.Errorf(MsgErrStatus, err)
			}
			return renderer.Status(status)
		},
	}
}

func newReleasesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "releases",
		Aliases: []string{"ls"},
		Short:   MsgReleasesShort,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			deployer, _, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			status, err := deployer.Status()
			if err != nil {
				return fmt.Errorf(MsgErrListReleases, err)
			}
			return renderer.Releases(status.Releases)
		},
	}
}

func newPruneCmd(opts *rootOptions) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:     "prune",
		Short:   MsgPruneShort,
		Long:    MsgPruneLong,
		Args:    cobra.NoArgs,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			deployer, cfg, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			renderer, err := opts.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("keep") {
				keep = cfg.KeepReleases
			}
			removed, err := deployer.Prune(keep)
			if err != nil {
				return fmt.Errorf(MsgErrPrune, err)
			}
			return renderer.Pruned(removed)
		},
	}

	cmd.Flags().IntVarP(&keep, "keep", "k", 0, MsgFlagKeep)
	return cmd
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		commented bool
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		Args:    cobra.NoArgs,
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := opts.configFile
			// The file is being created, so loading must not require it
			loadOpts := *opts
			loadOpts.configFile = ""

			cfg, err := loadOpts.loadConfig()
			if err != nil {
				return err
			}
			if target == "" {
				layout, err := paths.New(cfg.DeployTo)
				if err != nil {
					return fmt.Errorf(MsgErrInitPaths, err)
				}
				target = layout.ConfigPath()
			}

			if _, err := os.Stat(target); err == nil && !overwrite {
				return fmt.Errorf(MsgErrConfigExists, target)
			}

			content := config.GenerateCommentedDefaults()
			if !commented {
				if content, err = config.GenerateConfigContent(cfg); err != nil {
					return fmt.Errorf(MsgErrWriteConfig, err)
				}
			}

			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf(MsgErrWriteConfig, err)
			}
			if err := os.WriteFile(target, []byte(content), 0644); err != nil {
				return fmt.Errorf(MsgErrWriteConfig, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&commented, "commented", false, MsgFlagCommented)
	cmd.Flags().BoolVarP(&overwrite, "force", "f", false, MsgFlagOverwrite)
	return cmd
}

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		Long:    MsgTopicsLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Delegate to "help topics"
			helpCmd, _, err := cmd.Root().Find([]string{"help"})
			if err != nil || helpCmd == nil || helpCmd.Name() != "help" || helpCmd.Run == nil {
				return errors.New(errors.ErrNotFound, MsgErrNoTopics)
			}
			helpCmd.SetOut(cmd.OutOrStdout())
			helpCmd.Run(helpCmd, []string{"topics"})
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
