// Package callbacks runs the four lifecycle hooks of a deployment.
//
// Each stage holds zero or one task. Tasks are opaque: the pipeline hands
// them the release path and reports their failure as a CALLBACK error naming
// the stage. A release may also ship its own hooks as shell scripts under
// deploy/, which run when no task is bound for the stage.
package callbacks
