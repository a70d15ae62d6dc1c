package callbacks

import (
	"context"
	"os"
	"path/filepath"
	"reflect"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/logging"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultScriptDir is the release-relative directory searched for stage scripts
const DefaultScriptDir = "deploy"

// Runner executes a task against a release
type Runner interface {
	Run(ctx context.Context, task types.Task, releasePath string) error
}

// LoggingRunner invokes tasks directly and logs around them
type LoggingRunner struct {
	logger zerolog.Logger
}

// NewLoggingRunner creates the default Runner
func NewLoggingRunner() *LoggingRunner {
	return &LoggingRunner{logger: logging.GetLogger("callbacks.runner")}
}

// Run implements Runner
func (r *LoggingRunner) Run(ctx context.Context, task types.Task, releasePath string) error {
	done := logging.LogOperationStart(r.logger, "task")
	defer done()
	return task.Execute(ctx, releasePath)
}

// Options configures a Pipeline
type Options struct {
	// Runner executes bound tasks, a LoggingRunner when nil
	Runner Runner
	// Executor runs in-release stage scripts. Scripts are ignored when nil.
	Executor types.CommandExecutor
	// FS is used to look for stage scripts
	FS types.FS
	// ScriptDir is searched for <stage> or <stage>.sh, DefaultScriptDir when empty
	ScriptDir string
}

// Pipeline holds at most one task per stage
type Pipeline struct {
	hooks  map[types.Stage]types.Task
	opts   Options
	logger zerolog.Logger
}

// NewPipeline creates an empty Pipeline
func NewPipeline(opts Options) *Pipeline {
	if opts.Runner == nil {
		opts.Runner = NewLoggingRunner()
	}
	if opts.ScriptDir == "" {
		opts.ScriptDir = DefaultScriptDir
	}
	return &Pipeline{
		hooks:  make(map[types.Stage]types.Task),
		opts:   opts,
		logger: logging.GetLogger("callbacks"),
	}
}

// Bind sets the task for stage, replacing any earlier binding. A nil task,
// including a typed nil such as types.TaskFunc(nil), clears the stage.
func (p *Pipeline) Bind(stage types.Stage, task types.Task) *Pipeline {
	if isNil(task) {
		delete(p.hooks, stage)
		return p
	}
	p.hooks[stage] = task
	return p
}

func isNil(task types.Task) bool {
	if task == nil {
		return true
	}
	v := reflect.ValueOf(task)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Bound reports whether a task is bound to stage
func (p *Pipeline) Bound(stage types.Stage) bool {
	_, ok := p.hooks[stage]
	return ok
}

// Run fires stage against releasePath. The bound task runs if there is one,
// otherwise a stage script shipped in the release. With neither the stage is
// a no-op. Failures are CALLBACK errors carrying the stage.
func (p *Pipeline) Run(ctx context.Context, stage types.Stage, releasePath string) error {
	logger := p.logger.With().Str("stage", stage.String()).Logger()

	task, ok := p.hooks[stage]
	if !ok {
		script, found := p.findScript(stage, releasePath)
		if !found {
			logger.Debug().Msg("No callback for stage")
			return nil
		}
		logger.Info().Str("script", script).Msg("Running stage script")
		task = ScriptTask(p.opts.Executor, script)
	}

	if err := p.opts.Runner.Run(ctx, task, releasePath); err != nil {
		logger.Error().Err(err).Msg("Callback failed")
		return errors.Wrapf(err, errors.ErrCallback, "%s callback failed", stage).
			WithDetail(errors.DetailStage, stage.String())
	}
	return nil
}

// findScript returns the release-relative script for stage, if present
func (p *Pipeline) findScript(stage types.Stage, releasePath string) (string, bool) {
	if p.opts.Executor == nil || p.opts.FS == nil {
		return "", false
	}
	for _, name := range []string{stage.String(), stage.String() + ".sh"} {
		rel := filepath.Join(p.opts.ScriptDir, name)
		info, err := p.opts.FS.Stat(filepath.Join(releasePath, rel))
		if err == nil && info.Mode().IsRegular() {
			return rel, true
		}
		if err != nil && !os.IsNotExist(err) {
			p.logger.Warn().Err(err).Str("script", rel).Msg("Failed to inspect stage script")
		}
	}
	return "", false
}
