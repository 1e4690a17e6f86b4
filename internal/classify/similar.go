package classify

import (
	"sort"

	"jellyjams/internal/catalog"
)

// ScoredTrack pairs a track with its similarity to a reference set.
type ScoredTrack struct {
	Track catalog.Track
	Score float64
}

// SimilarByGenre ranks library tracks by raw-tag overlap with the reference
// set. Score is overlapping tags divided by the reference tag count. Reference
// tracks themselves never appear in the result. Ties keep library order, so
// rankings are stable across passes.
func SimilarByGenre(reference, library []catalog.Track, limit int) []ScoredTrack {
	if len(reference) == 0 || limit <= 0 {
		return nil
	}
	refGenres := make(map[string]struct{})
	refIDs := make(map[string]struct{}, len(reference))
	for _, t := range reference {
		refIDs[t.ID] = struct{}{}
		for _, g := range t.Genres {
			refGenres[g] = struct{}{}
		}
	}
	if len(refGenres) == 0 {
		return nil
	}

	scored := make([]ScoredTrack, 0, limit)
	for _, t := range library {
		if _, own := refIDs[t.ID]; own {
			continue
		}
		overlap := 0
		for _, g := range t.Genres {
			if _, ok := refGenres[g]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		scored = append(scored, ScoredTrack{Track: t, Score: float64(overlap) / float64(len(refGenres))})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// Tracks strips the scores off a ranked slice.
func Tracks(scored []ScoredTrack) []catalog.Track {
	out := make([]catalog.Track, len(scored))
	for i, s := range scored {
		out[i] = s.Track
	}
	return out
}

// TopGenres returns the n most frequent raw genre tags across the given
// tracks, most frequent first. Ties resolve to the tag seen earlier.
func TopGenres(tracks []catalog.Track, n int) []string {
	if n <= 0 {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	for _, t := range tracks {
		for _, g := range t.Genres {
			if counts[g] == 0 {
				order = append(order, g)
			}
			counts[g]++
		}
	}
	// Stable sort keeps first-seen order on equal counts.
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// MergeReferences concatenates track lists and drops duplicate IDs, keeping
// first occurrence.
func MergeReferences(lists ...[]catalog.Track) []catalog.Track {
	var out []catalog.Track
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, t := range list {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
