// Package config loads, normalizes, and validates descant's TOML
// configuration.
//
// Load resolves the config path (explicit flag, ~/.config/descant/config.toml,
// or ./descant.toml), decodes it over Default(), expands tilde paths, pulls
// secrets from the environment, and validates the result. Components receive
// plain values from the resolved Config rather than reading ambient state.
package config
