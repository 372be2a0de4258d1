// Package config loads trimcast settings from built-in defaults, an
// optional TOML file, and provider API keys in the environment.
//
// Command flags are applied by the CLI on top of the loaded value.
package config
