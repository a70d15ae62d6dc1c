// Package style renders command results for terminals, plain text, JSON and
// YAML.
package style
