package testutil

import (
	"context"
	"sync"

	"github.com/arthur-debert/deployrev/pkg/types"
)

// Invocation is one recorded command run
type Invocation struct {
	Command    string
	WorkingDir string
}

// RecordingExecutor records every command and optionally delegates to a real
// executor
type RecordingExecutor struct {
	Delegate types.CommandExecutor

	mu    sync.Mutex
	calls []Invocation
}

// NewRecordingExecutor wraps delegate, which may be nil
func NewRecordingExecutor(delegate types.CommandExecutor) *RecordingExecutor {
	return &RecordingExecutor{Delegate: delegate}
}

// Run implements types.CommandExecutor
func (r *RecordingExecutor) Run(ctx context.Context, command, workingDir string) error {
	r.mu.Lock()
	r.calls = append(r.calls, Invocation{Command: command, WorkingDir: workingDir})
	r.mu.Unlock()

	if r.Delegate == nil {
		return nil
	}
	return r.Delegate.Run(ctx, command, workingDir)
}

// Calls returns the recorded invocations
func (r *RecordingExecutor) Calls() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.calls...)
}

// Count returns how many times command ran
func (r *RecordingExecutor) Count(command string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Command == command {
			n++
		}
	}
	return n
}

// MockExecutor is a func-field mock of types.CommandExecutor
type MockExecutor struct {
	RunFunc func(ctx context.Context, command, workingDir string) error
}

// Run runs RunFunc, succeeding when unset
func (m *MockExecutor) Run(ctx context.Context, command, workingDir string) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, command, workingDir)
	}
	return nil
}
