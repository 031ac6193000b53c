// Package config loads, normalizes, and validates maskctl configuration.
//
// Settings come from a TOML file (~/.config/maskctl/config.toml, ./maskctl.toml,
// or an explicit --config path), then environment fallbacks fill whatever the
// file leaves empty. A .env file in the working directory is read first so
// FASTMAIL_API_TOKEN can live next to a checkout instead of in the shell.
package config
