// Package filesystem provides implementations of types.FS: the real OS
// filesystem used by the deployer and an afero-backed one for tests.
package filesystem
