package diversity_test

import (
	"strings"
	"testing"

	"jellyjams/internal/catalog"
	"jellyjams/internal/classify"
	"jellyjams/internal/diversity"
)

func bucket(key string, tracks ...catalog.Track) classify.Bucket {
	return classify.Bucket{Key: key, Tracks: tracks}
}

func track(id, artist, album string) catalog.Track {
	return catalog.Track{ID: id, Artists: []string{artist}, Album: album}
}

func TestFilterGenreRejectsThinBuckets(t *testing.T) {
	policy := diversity.Policy{MinTracks: 2, MinArtistDiversity: 2}
	buckets := []classify.Bucket{
		bucket("Rock", track("1", "A", "x"), track("2", "B", "y")),
		bucket("Polka", track("3", "C", "z")),
		bucket("Drone", track("4", "D", "w"), track("5", "D", "w")),
	}
	kept, rejected := policy.FilterGenre(buckets)
	if len(kept) != 1 || kept[0].Key != "Rock" {
		t.Fatalf("kept = %+v", kept)
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected = %+v", rejected)
	}
	if rejected[0].Key != "Polka" || rejected[0].Reason != diversity.ReasonTooFewTracks {
		t.Fatalf("first rejection = %+v", rejected[0])
	}
	if rejected[1].Key != "Drone" || rejected[1].Reason != diversity.ReasonTooFewArtists {
		t.Fatalf("second rejection = %+v", rejected[1])
	}
}

func TestFilterDecadeRequiresAlbumSpread(t *testing.T) {
	policy := diversity.Policy{MinTracks: 1, MinArtistDiversity: 1, MinAlbumsPerDecade: 2}
	buckets := []classify.Bucket{
		bucket("1980s", track("1", "A", "Album One"), track("2", "B", "Album Two")),
		bucket("1990s", track("3", "C", "Only Album"), track("4", "D", "Only Album")),
	}
	kept, rejected := policy.FilterDecade(buckets)
	if len(kept) != 1 || kept[0].Key != "1980s" {
		t.Fatalf("kept = %+v", kept)
	}
	if len(rejected) != 1 || rejected[0].Reason != diversity.ReasonTooFewAlbums {
		t.Fatalf("rejected = %+v", rejected)
	}
}

func TestFilterArtistRequiresMultipleAlbums(t *testing.T) {
	policy := diversity.Policy{MinTracks: 2, MinAlbumsPerArtist: 2}
	buckets := []classify.Bucket{
		bucket("Alice", track("1", "Alice", "First"), track("2", "Alice", "Second")),
		bucket("Bob", track("3", "Bob", "Debut"), track("4", "Bob", "Debut")),
	}
	kept, rejected := policy.FilterArtist(buckets)
	if len(kept) != 1 || kept[0].Key != "Alice" {
		t.Fatalf("kept = %+v", kept)
	}
	if len(rejected) != 1 || rejected[0].Key != "Bob" || rejected[0].Have != 1 {
		t.Fatalf("rejected = %+v", rejected)
	}
}

func TestCapsApplyFirstSeenWins(t *testing.T) {
	caps := diversity.Caps{MaxSongsPerAlbum: 1, MaxSongsPerArtist: 2}
	tracks := []catalog.Track{
		track("1", "A", "X"),
		track("2", "A", "X"), // same album, over album cap
		track("3", "A", "Y"),
		track("4", "A", "Z"), // artist A already at 2
		track("5", "B", "X"), // album X already at 1
		track("6", "B", "W"),
	}
	got := caps.Apply(tracks)
	wantIDs := []string{"1", "3", "6"}
	if len(got) != len(wantIDs) {
		t.Fatalf("kept %d tracks, want %d (%+v)", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("kept IDs = %+v, want %v", got, wantIDs)
		}
	}
}

func TestCapsApplyMultiArtistTrackBlocksWhenAnyArtistIsOver(t *testing.T) {
	caps := diversity.Caps{MaxSongsPerArtist: 1}
	tracks := []catalog.Track{
		{ID: "1", Artists: []string{"A"}, Album: "x"},
		{ID: "2", Artists: []string{"B", "A"}, Album: "y"},
		{ID: "3", Artists: []string{"B"}, Album: "z"},
	}
	got := caps.Apply(tracks)
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("kept = %+v", got)
	}
}

func TestCapsZeroValuesDisableLimits(t *testing.T) {
	var caps diversity.Caps
	tracks := []catalog.Track{track("1", "A", "X"), track("2", "A", "X"), track("3", "A", "X")}
	if got := caps.Apply(tracks); len(got) != 3 {
		t.Fatalf("kept %d tracks, want 3", len(got))
	}
}

func TestCapsApplyOutputNeverGrows(t *testing.T) {
	caps := diversity.Caps{MaxSongsPerAlbum: 2, MaxSongsPerArtist: 3}
	tracks := []catalog.Track{
		track("1", "A", "X"), track("2", "A", "X"), track("3", "A", "Y"),
		track("4", "B", "X"), track("5", "B", "Y"), track("6", "C", "Z"),
	}
	got := caps.Apply(tracks)
	if len(got) > len(tracks) {
		t.Fatalf("output grew: %d > %d", len(got), len(tracks))
	}
	counts := map[string]int{}
	for _, tr := range got {
		counts["album:"+tr.Album]++
		for _, a := range tr.Artists {
			counts["artist:"+a]++
		}
	}
	for key, n := range counts {
		switch {
		case strings.HasPrefix(key, "album:") && n > caps.MaxSongsPerAlbum:
			t.Fatalf("album cap violated: %s = %d", key, n)
		case strings.HasPrefix(key, "artist:") && n > caps.MaxSongsPerArtist:
			t.Fatalf("artist cap violated: %s = %d", key, n)
		}
	}
}
