// Command jellyjams generates and curates media server playlists with cover
// art, either as a one-shot run or as a scheduled daemon.
package main
