package deployrev

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/arthur-debert/deployrev/internal/version"
	"github.com/arthur-debert/deployrev/pkg/cobrax/topics"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd(&rootOptions{})
	return cmd
}

// Execute runs the CLI with the process arguments and returns the exit code.
// Errors are rendered in the --output format on stderr.
func Execute() int {
	opts := &rootOptions{}
	rootCmd, _ := newRootCmd(opts)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	renderer, rerr := opts.renderer(rootCmd.ErrOrStderr())
	if rerr != nil {
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	_ = renderer.Error(err)
	return 1
}

func newRootCmd(opts *rootOptions) (*cobra.Command, *topics.TopicManager) {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "deployrev",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Short(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&opts.deployTo, "deploy-to", "d", "", MsgFlagDeployTo)
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "auto", MsgFlagOutput)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "config",
		Title: "CONFIGURATION:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newDeployCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newReleasesCmd(opts))
	rootCmd.AddCommand(newPruneCmd(opts))
	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	// Initialize topic-based help system from the embedded topics
	source, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return rootCmd, nil
	}
	tm, err := topics.InitializeWithOptions(rootCmd, source, topics.Options{
		Extensions: []string{".md", ".txt"},
		Renderer:   topics.NewMarkdownRenderer(opts.styledHelp),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
		return rootCmd, nil
	}
	return rootCmd, tm
}
