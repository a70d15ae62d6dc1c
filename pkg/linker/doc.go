// Package linker links persistent resources from the shared directory into a
// release and lays down the release's skeleton directories.
//
// Two mappings are applied at different points of a deployment. Pre-migrate
// links go in before any callback runs, typically configuration files the
// migration needs. Post-switch links and skeleton directories are put in
// place right before the current pointer moves, so they are resolvable the
// moment the release goes live.
package linker
