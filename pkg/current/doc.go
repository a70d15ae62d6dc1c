// Package current manages the current pointer: the symlink in the deploy root
// whose target is the live release. The pointer is the only record of what is
// deployed; the active revision is always derived from its target.
package current
