package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/deployrev/pkg/filesystem"
	"github.com/arthur-debert/deployrev/pkg/types"
)

// FakeCheckout is a checkout provider backed by in-memory trees.
// Specs resolve through Refs first and are otherwise used as the revision
// itself when a tree with that name exists.
type FakeCheckout struct {
	// Refs maps revision specifiers (branches, tags) to revisions
	Refs map[string]string
	// Trees maps revisions to relative file paths and contents
	Trees map[string]map[string]string
	// FS receives checked out files, the OS filesystem when nil
	FS types.FS

	mu        sync.Mutex
	checkouts []string
	resolves  []string
}

// NewFakeCheckout creates a provider knowing trees
func NewFakeCheckout(trees map[string]map[string]string) *FakeCheckout {
	return &FakeCheckout{
		Refs:  map[string]string{},
		Trees: trees,
	}
}

// Resolve implements types.CheckoutProvider
func (f *FakeCheckout) Resolve(_ context.Context, spec string) (string, error) {
	f.mu.Lock()
	f.resolves = append(f.resolves, spec)
	f.mu.Unlock()

	if rev, ok := f.Refs[spec]; ok {
		return rev, nil
	}
	if _, ok := f.Trees[spec]; ok {
		return spec, nil
	}
	return "", fmt.Errorf("unknown revision %q", spec)
}

// Checkout implements types.CheckoutProvider
func (f *FakeCheckout) Checkout(_ context.Context, revision, dest string) error {
	f.mu.Lock()
	f.checkouts = append(f.checkouts, revision)
	f.mu.Unlock()

	tree, ok := f.Trees[revision]
	if !ok {
		return fmt.Errorf("no tree for revision %q", revision)
	}

	fs := f.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	if err := fs.MkdirAll(dest, 0755); err != nil {
		return err
	}
	for rel, content := range tree {
		path := filepath.Join(dest, rel)
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := fs.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// Checkouts returns the revisions checked out so far, in order
func (f *FakeCheckout) Checkouts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.checkouts...)
}

// Resolves returns the specs resolved so far, in order
func (f *FakeCheckout) Resolves() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.resolves...)
}

// MockCheckoutProvider is a func-field mock of types.CheckoutProvider
type MockCheckoutProvider struct {
	ResolveFunc  func(ctx context.Context, spec string) (string, error)
	CheckoutFunc func(ctx context.Context, revision, dest string) error
}

// Resolve runs ResolveFunc, echoing spec when unset
func (m *MockCheckoutProvider) Resolve(ctx context.Context, spec string) (string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, spec)
	}
	return spec, nil
}

// Checkout runs CheckoutFunc, creating an empty dest when unset
func (m *MockCheckoutProvider) Checkout(ctx context.Context, revision, dest string) error {
	if m.CheckoutFunc != nil {
		return m.CheckoutFunc(ctx, revision, dest)
	}
	return filesystem.NewOS().MkdirAll(dest, 0755)
}
