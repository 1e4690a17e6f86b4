// Package history persists generation pass records and the playlists each
// pass produced, backed by SQLite. The daemon and CLI read it to report
// what the last runs did without re-querying the media server.
package history
