// Package generator orchestrates one full playlist generation pass: fetch the
// library snapshot, bucket it by genre group, decade and artist, apply the
// diversity policy, build per-user personal mixes, publish every surviving
// playlist to the media server, and resolve cover art for each one.
//
// A pass keeps going through partial failures. Only total catalog
// unavailability aborts it; a failed bucket, user or cover step is logged and
// skipped.
package generator
