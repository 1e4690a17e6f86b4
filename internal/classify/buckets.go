package classify

import (
	"fmt"
	"sort"
	"strings"

	"jellyjams/internal/catalog"
	"jellyjams/internal/genre"
)

// MinDecadeYear is the oldest production year considered for decade playlists.
// Earlier years are almost always tagging mistakes.
const MinDecadeYear = 1950

// Options controls bucketing behavior.
type Options struct {
	// Mapper consolidates genre tags into groups. Nil leaves tags untouched.
	Mapper *genre.Mapper
	// ExcludedGenres are raw tags dropped before mapping.
	ExcludedGenres []string
	// ExcludedArtists removes a track from genre and decade buckets when any
	// credited artist matches, and suppresses the artist's own bucket.
	ExcludedArtists []string
}

// Bucket is one playlist candidate: all tracks sharing a genre group, decade
// or artist, in library order.
type Bucket struct {
	Key    string
	Tracks []catalog.Track
}

// UniqueArtists counts distinct credited artists across the bucket.
func (b Bucket) UniqueArtists() int {
	seen := make(map[string]struct{})
	for _, t := range b.Tracks {
		for _, a := range t.Artists {
			seen[a] = struct{}{}
		}
	}
	return len(seen)
}

// UniqueAlbums counts distinct album titles across the bucket.
func (b Bucket) UniqueAlbums() int {
	seen := make(map[string]struct{})
	for _, t := range b.Tracks {
		if album := cleanAlbum(t.Album); album != "" {
			seen[album] = struct{}{}
		}
	}
	return len(seen)
}

// ByGenre groups tracks by genre. Raw tags are checked against the exclusion
// list first, then mapped; a track lands in every group its tags resolve to.
// Buckets come back sorted by key.
func ByGenre(tracks []catalog.Track, opts Options) []Bucket {
	excludedGenres := toSet(opts.ExcludedGenres)
	excludedArtists := toSet(opts.ExcludedArtists)

	buckets := make(map[string]*Bucket)
	for _, track := range tracks {
		if len(track.Genres) == 0 {
			continue
		}
		if hasExcludedArtist(track, excludedArtists) {
			continue
		}
		seen := make(map[string]struct{}, len(track.Genres))
		for _, tag := range track.Genres {
			if _, off := excludedGenres[tag]; off {
				continue
			}
			key := tag
			if opts.Mapper != nil {
				key = opts.Mapper.Map(tag)
			}
			if key == "" {
				continue
			}
			// A track whose tags map to the same group goes in once.
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			appendToBucket(buckets, key, track)
		}
	}
	return sortedBuckets(buckets)
}

// ByDecade groups tracks by release decade under keys like "1980s". Tracks
// older than MinDecadeYear or without a year are skipped.
func ByDecade(tracks []catalog.Track, opts Options) []Bucket {
	excludedArtists := toSet(opts.ExcludedArtists)

	buckets := make(map[string]*Bucket)
	for _, track := range tracks {
		if track.ProductionYear < MinDecadeYear {
			continue
		}
		if hasExcludedArtist(track, excludedArtists) {
			continue
		}
		decade, _ := track.Decade()
		appendToBucket(buckets, fmt.Sprintf("%ds", decade), track)
	}
	return sortedBuckets(buckets)
}

// ByArtist groups tracks per credited artist. Multi-artist tracks appear in
// each artist's bucket. Excluded artists get no bucket of their own.
func ByArtist(tracks []catalog.Track, opts Options) []Bucket {
	excludedArtists := toSet(opts.ExcludedArtists)

	buckets := make(map[string]*Bucket)
	for _, track := range tracks {
		for _, artist := range track.Artists {
			if _, off := excludedArtists[artist]; off {
				continue
			}
			appendToBucket(buckets, artist, track)
		}
	}
	return sortedBuckets(buckets)
}

func appendToBucket(buckets map[string]*Bucket, key string, track catalog.Track) {
	b, ok := buckets[key]
	if !ok {
		b = &Bucket{Key: key}
		buckets[key] = b
	}
	b.Tracks = append(b.Tracks, track)
}

func sortedBuckets(buckets map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func hasExcludedArtist(track catalog.Track, excluded map[string]struct{}) bool {
	if len(excluded) == 0 {
		return false
	}
	for _, a := range track.Artists {
		if _, off := excluded[a]; off {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func cleanAlbum(album string) string {
	return strings.TrimSpace(strings.ReplaceAll(album, "\x00", ""))
}
