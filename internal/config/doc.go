// Package config loads vitrina's TOML configuration.
package config
