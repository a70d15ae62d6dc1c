// Package testutil provides utilities for testing deployrev components.
//
// Key components:
//   - DeployEnv: a throwaway deploy root under t.TempDir with its layout
//   - FakeCheckout: a checkout provider that writes in-memory trees and
//     counts checkouts
//   - MockCheckoutProvider / MockExecutor: func-field mocks for error paths
//   - RecordingExecutor: command executor that records every invocation
//   - Assert* helpers for symlink and directory expectations
//
// Usage guidelines:
//   - Tests touching symlinks use the real filesystem inside t.TempDir
//   - Each test builds its own environment; nothing is shared between tests
package testutil
