package callbacks

import (
	"context"
	"fmt"

	"github.com/arthur-debert/deployrev/pkg/types"
)

// CommandTask runs a shell command string in the release directory
type CommandTask struct {
	Command  string
	Executor types.CommandExecutor
}

// Execute implements types.Task
func (c CommandTask) Execute(ctx context.Context, releasePath string) error {
	if c.Executor == nil {
		return fmt.Errorf("no executor for command %q", c.Command)
	}
	return c.Executor.Run(ctx, c.Command, releasePath)
}

// ScriptTask runs a release-relative script through sh
func ScriptTask(executor types.CommandExecutor, script string) types.Task {
	return CommandTask{
		Command:  fmt.Sprintf("sh %s", shellQuote(script)),
		Executor: executor,
	}
}

func shellQuote(s string) string {
	out := []byte{'\''}
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, []byte(`'\''`)...)
			continue
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}
