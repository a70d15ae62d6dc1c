package deploy

import (
	"context"

	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/types"
)

// Action is what a deployment would do with its release
type Action string

const (
	// ActionNoop means the revision is live and nothing would run
	ActionNoop Action = "noop"
	// ActionReuse means an existing release would be switched to
	ActionReuse Action = "reuse"
	// ActionCreate means the revision would be checked out first
	ActionCreate Action = "create"
)

// Plan describes a deployment without performing it
type Plan struct {
	Action      Action   `json:"action" yaml:"action"`
	Revision    string   `json:"revision" yaml:"revision"`
	ReleasePath string   `json:"release_path" yaml:"release_path"`
	Previous    string   `json:"previous,omitempty" yaml:"previous,omitempty"`
	Forced      bool     `json:"forced" yaml:"forced"`
	Steps       []string `json:"steps" yaml:"steps"`
}

// Plan resolves the revision and reports what Deploy would do. It reads the
// current pointer and the releases directory but changes nothing.
func (d *Deployer) Plan(ctx context.Context, opts Options) (*Plan, error) {
	revision, err := d.resolve(ctx, opts.RevisionSpec)
	if err != nil {
		return nil, err
	}

	active, _, err := d.pointer.Read()
	if err != nil {
		return nil, stageError(err, errors.ErrSwitch, StageCheckIdempotent)
	}

	plan := &Plan{
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
		plan.Action = ActionNoop
		return plan, nil
	}

	exists, err := d.store.Exists(revision)
	if err != nil {
		return nil, stageError(err, errors.ErrCheckout, StageRelease)
	}
	plan.Action = ActionReuse
	if !exists {
		plan.Action = ActionCreate
	}
	plan.Steps = d.steps(plan.Action)
	return plan, nil
}

// steps lists the stages a deployment with action would go through
func (d *Deployer) steps(action Action) []string {
	steps := []string{StageLayout}
	if action == ActionCreate {
		steps = append(steps, "checkout")
	}
	if len(d.cfg.SymlinkBeforeMigrate) > 0 {
		steps = append(steps, StagePreMigrateLink)
	}
	steps = append(steps, d.hookStep(types.StageBeforeMigrate)...)
	if d.cfg.Migrate && d.cfg.MigrationCommand != "" {
		steps = append(steps, StageMigrate)
	}
	steps = append(steps, d.hookStep(types.StageBeforeSymlink)...)
	steps = append(steps, StagePostSwitchLink, StageSwitch)
	steps = append(steps, d.hookStep(types.StageBeforeRestart)...)
	if d.cfg.RestartCommand != "" {
		steps = append(steps, StageRestart)
	}
	steps = append(steps, d.hookStep(types.StageAfterRestart)...)
	return steps
}

func (d *Deployer) hookStep(stage types.Stage) []string {
	if d.hooks.Bound(stage) {
		return []string{stage.String()}
	}
	return nil
}
