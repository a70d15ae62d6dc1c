// Package release implements the release store: one directory per revision
// under releases/, created through the checkout provider on first use and
// reused untouched on every later deploy of the same revision.
package release
