package deploy_test

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/arthur-debert/deployrev/pkg/callbacks"
	"github.com/arthur-debert/deployrev/pkg/deploy"
	"github.com/arthur-debert/deployrev/pkg/linker"
	"github.com/arthur-debert/deployrev/pkg/testutil"
	"github.com/arthur-debert/deployrev/pkg/types"
	"github.com/stretchr/testify/require"
)

const restartCommand = "bin/restart"

var (
	defaultLinks = []linker.Link{
		{Source: "system", Target: "public/system"},
		{Source: "pids", Target: "tmp/pids"},
		{Source: "log", Target: "log"},
	}
	defaultSkeleton = []string{"tmp", "public", "config", "log", "tmp/pids", "public/system"}
)

// harness is a deploy root plus fakes recording what a deployment did
type harness struct {
	env      *testutil.DeployEnv
	checkout *testutil.FakeCheckout
	exec     *testutil.RecordingExecutor
	hooks    *callbacks.Pipeline
	cfg      deploy.Config

	mu       sync.Mutex
	events   []string
	restarts int
}

func newHarness(t *testing.T, subdirs ...string) *harness {
	t.Helper()

	h := &harness{
		env: testutil.NewDeployEnv(t, subdirs...),
		checkout: testutil.NewFakeCheckout(map[string]map[string]string{
			"aaa111": {"app.rb": "puts 'A'", "config/app.yml": "version: a"},
			"bbb222": {"app.rb": "puts 'B'", "config/app.yml": "version: b"},
		}),
	}
	h.checkout.Refs["main"] = "bbb222"
	h.checkout.Refs["v1"] = "aaa111"

	// The restart command appends its sequence number to restart.txt in the
	// release, leaving a trace that must survive rollback.
	h.exec = testutil.NewRecordingExecutor(&testutil.MockExecutor{
		RunFunc: func(_ context.Context, command, workingDir string) error {
			h.record(command)
			if command != restartCommand {
				return nil
			}
			h.mu.Lock()
			h.restarts++
			n := h.restarts
			h.mu.Unlock()
			f, err := os.OpenFile(filepath.Join(workingDir, "restart.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			_, err = fmt.Fprintf(f, "%d\n", n)
			return err
		},
	})

	h.hooks = callbacks.NewPipeline(callbacks.Options{Executor: h.exec, FS: h.env.FS})
	for _, stage := range types.Stages {
		stage := stage
		h.hooks.Bind(stage, types.TaskFunc(func(context.Context, string) error {
			h.record(stage.String())
			return nil
		}))
	}

	h.cfg = deploy.Config{
		Layout:         h.env.Layout,
		FS:             h.env.FS,
		Provider:       h.checkout,
		Executor:       h.exec,
		Callbacks:      h.hooks,
		Symlinks:       defaultLinks,
		SkeletonDirs:   defaultSkeleton,
		RestartCommand: restartCommand,
	}
	return h
}

func (h *harness) record(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *harness) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func (h *harness) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
}

func (h *harness) deployer(t *testing.T) *deploy.Deployer {
	t.Helper()
	d, err := deploy.New(h.cfg)
	require.NoError(t, err)
	return d
}

func (h *harness) deploy(t *testing.T, spec string, force bool) (*deploy.Outcome, error) {
	t.Helper()
	return h.deployer(t).Deploy(context.Background(), deploy.Options{RevisionSpec: spec, Force: force})
}

// snapshot records every path under root with its type, target and mtime
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf("%v %d", info.Mode(), info.ModTime().UnixNano())
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			desc += " -> " + target
		} else if info.Mode().IsRegular() {
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			desc += " " + string(content)
		}
		out[path] = desc
		return nil
	})
	require.NoError(t, err)
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
