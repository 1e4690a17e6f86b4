package assemble_test

import (
	"math/rand/v2"
	"testing"

	"jellyjams/internal/assemble"
	"jellyjams/internal/catalog"
)

func tracks(ids ...string) []catalog.Track {
	out := make([]catalog.Track, len(ids))
	for i, id := range ids {
		out[i] = catalog.Track{ID: id}
	}
	return out
}

func TestNames(t *testing.T) {
	if got := assemble.GenreName("Rock"); got != "Rock Radio" {
		t.Fatalf("GenreName = %q", got)
	}
	if got := assemble.DecadeName("1980s"); got != "Back to the 1980s" {
		t.Fatalf("DecadeName = %q", got)
	}
	if got := assemble.ArtistName("Old Mervs"); got != "This is Old Mervs!" {
		t.Fatalf("ArtistName = %q", got)
	}
	if got := assemble.PersonalName(assemble.KindDiscovery, "alice"); got != "Discovery Mix - alice" {
		t.Fatalf("PersonalName = %q", got)
	}
}

func TestPublicVisibility(t *testing.T) {
	for _, typ := range []assemble.Type{assemble.TypeGenre, assemble.TypeDecade, assemble.TypeArtist} {
		if !assemble.New(typ, "x", nil).Public() {
			t.Fatalf("%s playlist should be public", typ)
		}
	}
	personal := assemble.NewPersonal(assemble.KindTopTracks, catalog.User{ID: "u1", Name: "alice"}, nil)
	if personal.Public() {
		t.Fatal("personal playlist should be private")
	}
	if personal.Name != "Top Tracks - alice" {
		t.Fatalf("personal name = %q", personal.Name)
	}
	if personal.Owner.ID != "u1" {
		t.Fatalf("owner = %+v", personal.Owner)
	}
}

func TestNewNormalizesName(t *testing.T) {
	p := assemble.New(assemble.TypeArtist, "This is Guns N’ Roses!", nil)
	if p.Name != "This is Guns N' Roses!" {
		t.Fatalf("name = %q", p.Name)
	}
}

func TestDirNameSanitizesHostileCharacters(t *testing.T) {
	p := assemble.New(assemble.TypeArtist, "This is AC/DC!", nil)
	if p.Name != "This is AC/DC!" {
		t.Fatalf("display name altered: %q", p.Name)
	}
	if p.DirName() != "This is AC_DC!" {
		t.Fatalf("DirName = %q", p.DirName())
	}
}

func TestTrackIDsPreserveOrder(t *testing.T) {
	p := assemble.New(assemble.TypeGenre, "Rock Radio", tracks("a", "b", "c"))
	ids := p.TrackIDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("TrackIDs = %v", ids)
	}
}

func TestSequenceTruncatesBeforeShuffling(t *testing.T) {
	seq := assemble.Sequencer{MaxTracks: 3, Shuffle: true, Rand: rand.New(rand.NewPCG(1, 2))}
	in := tracks("a", "b", "c", "d", "e")
	got := seq.Sequence(in)
	if len(got) != 3 {
		t.Fatalf("got %d tracks, want 3", len(got))
	}
	// Membership comes from the prefix even though order is shuffled.
	want := map[string]bool{"a": true, "b": true, "c": true}
	for _, tr := range got {
		if !want[tr.ID] {
			t.Fatalf("unexpected track %q in %v", tr.ID, got)
		}
	}
	// Input untouched.
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		if in[i].ID != id {
			t.Fatalf("input mutated: %v", in)
		}
	}
}

func TestRankedWithoutShuffleKeepsTopRanked(t *testing.T) {
	seq := assemble.Sequencer{MaxTracks: 2}
	got := seq.Ranked(tracks("best", "good", "ok", "meh"))
	if len(got) != 2 || got[0].ID != "best" || got[1].ID != "good" {
		t.Fatalf("got %v", got)
	}
}

func TestRankedShuffleSamplesWholeSet(t *testing.T) {
	seq := assemble.Sequencer{MaxTracks: 2, Shuffle: true, Rand: rand.New(rand.NewPCG(7, 11))}
	in := tracks("a", "b", "c", "d")
	got := seq.Ranked(in)
	if len(got) != 2 {
		t.Fatalf("got %d tracks, want 2", len(got))
	}
	seen := map[string]bool{}
	for _, tr := range in {
		seen[tr.ID] = true
	}
	for _, tr := range got {
		if !seen[tr.ID] {
			t.Fatalf("unknown track %q", tr.ID)
		}
	}
}

func TestSequencerZeroMaxKeepsAll(t *testing.T) {
	var seq assemble.Sequencer
	got := seq.Sequence(tracks("a", "b"))
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("got %v", got)
	}
}
