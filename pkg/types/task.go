package types

import (
	"context"
	"fmt"
)

// Task is an opaque unit of work bound to a release directory at execution
// time. Callbacks are supplied to the deployer as Tasks.
type Task interface {
	Execute(ctx context.Context, releasePath string) error
}

// TaskFunc adapts an ordinary function to the Task interface
type TaskFunc func(ctx context.Context, releasePath string) error

// Execute calls f(ctx, releasePath)
func (f TaskFunc) Execute(ctx context.Context, releasePath string) error {
	return f(ctx, releasePath)
}

// Stage names a callback hook point
type Stage string

const (
	StageBeforeMigrate Stage = "before_migrate"
	StageBeforeSymlink Stage = "before_symlink"
	StageBeforeRestart Stage = "before_restart"
	StageAfterRestart  Stage = "after_restart"
)

// Stages lists the callback stages in the order a deployment fires them
var Stages = []Stage{
	StageBeforeMigrate,
	StageBeforeSymlink,
	StageBeforeRestart,
	StageAfterRestart,
}

// ParseStage converts a stage name into a Stage
func ParseStage(name string) (Stage, error) {
	for _, s := range Stages {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown callback stage %q", name)
}

// String implements fmt.Stringer
func (s Stage) String() string {
	return string(s)
}
