// Package logging builds slog loggers for JellyJams.
//
// Two output formats are supported: a human-oriented console format used for
// interactive runs, and JSON for container deployments. Standardized field
// keys (component, pass_id, playlist, user) keep generation passes traceable
// across components, and context helpers lift correlation identifiers from a
// context.Context into log attributes.
package logging
