// Package daemon runs the long-lived generation service: a single-instance
// lock, the pass scheduler, and a small HTTP API for triggering passes and
// inspecting history.
package daemon
