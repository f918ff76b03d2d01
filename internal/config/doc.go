// Package config loads, validates, and normalizes crate configuration.
//
// Configuration is read from a TOML file (default ~/.config/crate/config.toml
// or ./crate.toml), with credentials optionally supplied through environment
// variables so the file can be committed without secrets.
package config
