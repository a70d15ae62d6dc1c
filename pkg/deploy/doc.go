// Package deploy is the deployment state machine.
//
// A deployment resolves the requested revision, compares it with the
// revision the current pointer designates and stops there when they match
// (unless forced). Otherwise it reuses or checks out the release, applies
// pre-migrate links, fires before_migrate, runs the optional migration,
// fires before_symlink, puts post-switch links and skeleton directories in
// place, swaps the current pointer, fires before_restart, runs the restart
// command and fires after_restart.
//
// Stages run strictly in sequence. A failing stage aborts the deployment and
// leaves the filesystem as the completed stages left it; re-running the same
// revision picks the release up again.
package deploy
