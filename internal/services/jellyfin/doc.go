// Package jellyfin wraps the Jellyfin REST API surface the generator needs:
// library enumeration, user listing, per-user listening signals and playlist
// lifecycle. Authentication uses the X-Emby-Token header throughout.
//
// The playback statistics endpoint comes from the optional Playback Reporting
// plugin; its absence is reported as empty data, not an error.
package jellyfin
