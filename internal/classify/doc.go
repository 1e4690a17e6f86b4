// Package classify buckets library tracks into playlist candidates by genre,
// decade and artist, and scores similarity for discovery mixes. It is pure
// computation over catalog values; eligibility thresholds live in the
// diversity package.
package classify
