package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/rs/zerolog"
)

// Environment variables exported to every command
const (
	EnvReleasePath = "DEPLOYREV_RELEASE_PATH"
	EnvRevision    = "DEPLOYREV_RELEASE_REVISION"
)

// Options configures an Executor
type Options struct {
	// Shell used to interpret command strings, "sh" when empty
	Shell string
	// Stdout and Stderr receive the command output as it runs. Output is
	// always captured for logging as well.
	Stdout io.Writer
	Stderr io.Writer
	// Env is appended to the current process environment
	Env    map[string]string
	DryRun bool
}

// Executor runs shell command strings inside a release directory
type Executor struct {
	logger zerolog.Logger
	opts   Options
}

// Result represents the result of a command execution
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// NewExecutor creates a new command executor
func NewExecutor(opts Options) *Executor {
	if opts.Shell == "" {
		opts.Shell = "sh"
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Executor{
		logger: logging.GetLogger("command"),
		opts:   opts,
	}
}

// Run executes command with workingDir as its working directory. An empty
// command does nothing. A non-zero exit status is returned as an error.
func (e *Executor) Run(ctx context.Context, command, workingDir string) error {
	_, err := e.RunWithResult(ctx, command, workingDir)
	return err
}

// RunWithResult executes command and returns its captured output
func (e *Executor) RunWithResult(ctx context.Context, command, workingDir string) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{}, nil
	}

	e.logger.Info().
		Str("command", command).
		Str("workingDir", workingDir).
		Msg("Executing command")

	if e.opts.DryRun {
		e.logger.Info().Msg("Dry run mode - command would be executed")
		return Result{}, nil
	}

	cmd := exec.CommandContext(ctx, e.opts.Shell, "-c", command)

	if workingDir != "" {
		if _, err := os.Stat(workingDir); err != nil {
			return Result{}, errors.Wrapf(err, errors.ErrFileAccess,
				"working directory does not exist: %s", workingDir)
		}
		cmd.Dir = workingDir
	}

	cmd.Env = os.Environ()
	for key, value := range e.opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}
	if workingDir != "" {
		cmd.Env = append(cmd.Env,
			fmt.Sprintf("%s=%s", EnvReleasePath, workingDir),
			fmt.Sprintf("%s=%s", EnvRevision, filepath.Base(workingDir)))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, e.opts.Stdout)
	cmd.Stderr = io.MultiWriter(&stderr, e.opts.Stderr)

	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if stdout.Len() > 0 {
		e.logger.Debug().Str("output", result.Stdout).Msg("Command stdout")
	}
	if stderr.Len() > 0 {
		e.logger.Debug().Str("output", result.Stderr).Msg("Command stderr")
	}

	if err != nil {
		e.logger.Error().
			Err(err).
			Str("command", command).
			Int("exitCode", result.ExitCode).
			Str("stderr", result.Stderr).
			Msg("Command execution failed")

		return result, errors.Wrapf(err, errors.ErrInternal,
			"command %q exited with status %d", command, result.ExitCode).
			WithDetail("stderr", strings.TrimSpace(result.Stderr)).
			WithDetail("exitCode", result.ExitCode)
	}

	e.logger.Debug().
		Str("command", command).
		Msg("Command executed successfully")

	return result, nil
}
