// Package config handles configuration management for deployrev.
// It supports loading configuration from multiple sources including
// the embedded defaults, TOML files, environment variables, and command-line flags.
package config
