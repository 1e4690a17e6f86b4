// Package config loads, validates, and normalizes JellyJams configuration.
//
// Configuration is a TOML file (default ~/.config/jellyjams/config.toml, or a
// jellyjams.toml in the working directory). Defaults cover every field;
// credentials can come from the environment so the file never has to hold
// secrets. Path fields are tilde-expanded and made absolute during load.
package config
