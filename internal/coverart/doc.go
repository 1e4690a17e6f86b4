// Package coverart resolves artwork for generated playlists. Resolution is a
// fixed chain of sources tried in order: an operator-supplied image named
// after the playlist, a per-type fallback image, decade and genre specific
// artwork, Spotify's editorial playlist cover, and finally an overlay
// rendered from the artist's own folder image. Steps that do not apply to a
// playlist's type are skipped, and a playlist that exhausts the chain simply
// ships without a cover.
package coverart
