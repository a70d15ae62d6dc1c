// Package types defines the core types and interfaces shared by the deployer:
// the filesystem abstraction, the external collaborators (checkout provider,
// command executor), callback stages and the Task abstraction hooks are
// expressed with.
package types
