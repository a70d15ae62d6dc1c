package deployrev

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Symlink-switching release deployments"
	MsgDeployShort     = "Deploy a revision"
	MsgStatusShort     = "Show the live revision and the releases on disk"
	MsgReleasesShort   = "List release directories"
	MsgPruneShort      = "Remove old releases"
	MsgInitShort       = "Write a deployrev.toml"
	MsgTopicsShort     = "Display available documentation topics"
	MsgTopicsLong      = "Display a list of all available help topics that provide additional documentation beyond command help."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgConfigWritten = "Wrote %s\n"
	MsgVersionFormat = "deployrev version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrLoadConfig   = "failed to load configuration: %w"
	MsgErrInitPaths    = "failed to initialize paths: %w"
	MsgErrSetup        = "failed to set up deployer: %w"
	MsgErrDeploy       = "failed to deploy: %w"
	MsgErrPlan         = "failed to plan deploy: %w"
	MsgErrStatus       = "failed to get status: %w"
	MsgErrListReleases = "failed to list releases: %w"
	MsgErrPrune        = "failed to prune releases: %w"
	MsgErrWriteConfig  = "failed to write configuration: %w"
	MsgErrConfigExists = "%s already exists, use --force to replace it"
	MsgErrNoTopics     = "help command not found"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig    = "Config file (default: <deploy_to>/deployrev.toml)"
	MsgFlagDeployTo  = "Deploy root (overrides deploy_to)"
	MsgFlagOutput    = "Output format: auto, text, json or yaml"
	MsgFlagDryRun    = "Preview the deploy without changing anything"
	MsgFlagForce     = "Run the full pipeline even if the revision is already live"
	MsgFlagKeep      = "Number of releases to keep (default: keep_releases)"
	MsgFlagCommented = "Write the defaults with every value commented out"
	MsgFlagOverwrite = "Replace an existing config file"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/deploy-long.txt
	msgDeployLongRaw string
	MsgDeployLong    = strings.TrimSpace(msgDeployLongRaw)

	//go:embed msgs/deploy-example.txt
	msgDeployExampleRaw string
	MsgDeployExample    = strings.TrimRight(msgDeployExampleRaw, "\n")

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/prune-long.txt
	msgPruneLongRaw string
	MsgPruneLong    = strings.TrimSpace(msgPruneLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
