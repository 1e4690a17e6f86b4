// Package diversity decides which playlist candidates are worth creating and
// keeps discovery mixes from being dominated by a single album or artist.
package diversity

import (
	"fmt"

	"jellyjams/internal/catalog"
	"jellyjams/internal/classify"
)

// Reason classifies why a candidate bucket was rejected.
type Reason string

const (
	ReasonTooFewTracks  Reason = "too few tracks"
	ReasonTooFewArtists Reason = "too few artists"
	ReasonTooFewAlbums  Reason = "too few albums"
)

// Rejection records one skipped candidate. Rejections are informational, not
// errors; a pass continues past them.
type Rejection struct {
	Key    string
	Reason Reason
	Have   int
	Want   int
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s (%d, need %d)", r.Key, r.Reason, r.Have, r.Want)
}

// Policy holds the minimum content thresholds a candidate must clear.
type Policy struct {
	MinTracks          int
	MinArtistDiversity int
	MinAlbumsPerArtist int
	MinAlbumsPerDecade int
}

// FilterGenre keeps genre buckets with enough tracks and enough distinct
// artists.
func (p Policy) FilterGenre(buckets []classify.Bucket) ([]classify.Bucket, []Rejection) {
	return p.filter(buckets, func(b classify.Bucket) *Rejection {
		if r := p.checkTracks(b); r != nil {
			return r
		}
		return p.checkArtists(b)
	})
}

// FilterDecade keeps decade buckets with enough tracks, enough distinct
// albums and enough distinct artists.
func (p Policy) FilterDecade(buckets []classify.Bucket) ([]classify.Bucket, []Rejection) {
	return p.filter(buckets, func(b classify.Bucket) *Rejection {
		if r := p.checkTracks(b); r != nil {
			return r
		}
		if albums := b.UniqueAlbums(); albums < p.MinAlbumsPerDecade {
			return &Rejection{Key: b.Key, Reason: ReasonTooFewAlbums, Have: albums, Want: p.MinAlbumsPerDecade}
		}
		return p.checkArtists(b)
	})
}

// FilterArtist keeps artist buckets with enough tracks spread over enough
// albums. Artists with one big album should not get a "This is" playlist.
func (p Policy) FilterArtist(buckets []classify.Bucket) ([]classify.Bucket, []Rejection) {
	return p.filter(buckets, func(b classify.Bucket) *Rejection {
		if r := p.checkTracks(b); r != nil {
			return r
		}
		if albums := b.UniqueAlbums(); albums < p.MinAlbumsPerArtist {
			return &Rejection{Key: b.Key, Reason: ReasonTooFewAlbums, Have: albums, Want: p.MinAlbumsPerArtist}
		}
		return nil
	})
}

// MeetsMinTracks reports whether a flat track list clears the track floor.
func (p Policy) MeetsMinTracks(tracks []catalog.Track) bool {
	return len(tracks) >= p.MinTracks
}

func (p Policy) filter(buckets []classify.Bucket, check func(classify.Bucket) *Rejection) ([]classify.Bucket, []Rejection) {
	kept := make([]classify.Bucket, 0, len(buckets))
	var rejected []Rejection
	for _, b := range buckets {
		if r := check(b); r != nil {
			rejected = append(rejected, *r)
			continue
		}
		kept = append(kept, b)
	}
	return kept, rejected
}

func (p Policy) checkTracks(b classify.Bucket) *Rejection {
	if len(b.Tracks) < p.MinTracks {
		return &Rejection{Key: b.Key, Reason: ReasonTooFewTracks, Have: len(b.Tracks), Want: p.MinTracks}
	}
	return nil
}

func (p Policy) checkArtists(b classify.Bucket) *Rejection {
	if artists := b.UniqueArtists(); artists < p.MinArtistDiversity {
		return &Rejection{Key: b.Key, Reason: ReasonTooFewArtists, Have: artists, Want: p.MinArtistDiversity}
	}
	return nil
}

// Caps bounds how many discovery tracks a single album or artist may
// contribute.
type Caps struct {
	MaxSongsPerAlbum  int
	MaxSongsPerArtist int
}

// Apply walks tracks in order and keeps each one only while its album and
// every credited artist are under their caps. Earlier tracks therefore win
// over later ones regardless of how the caps are set.
func (c Caps) Apply(tracks []catalog.Track) []catalog.Track {
	albumCounts := make(map[string]int)
	artistCounts := make(map[string]int)
	kept := make([]catalog.Track, 0, len(tracks))

	for _, track := range tracks {
		if c.MaxSongsPerAlbum > 0 && albumCounts[track.Album] >= c.MaxSongsPerAlbum {
			continue
		}
		over := false
		if c.MaxSongsPerArtist > 0 {
			for _, artist := range track.Artists {
				if artistCounts[artist] >= c.MaxSongsPerArtist {
					over = true
					break
				}
			}
		}
		if over {
			continue
		}
		kept = append(kept, track)
		albumCounts[track.Album]++
		for _, artist := range track.Artists {
			artistCounts[artist]++
		}
	}
	return kept
}
