// Package config loads, normalizes, and validates the TOML configuration
// file shared by the daemon and the CLI.
package config
