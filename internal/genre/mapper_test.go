package genre_test

import (
	"os"
	"path/filepath"
	"testing"

	"jellyjams/internal/genre"
)

func TestMapConsolidatesSubgenres(t *testing.T) {
	m := genre.NewMapper(true)
	cases := map[string]string{
		"Grunge":          "Rock",
		"grunge":          "Rock",
		" Post-Rock ":     "Rock",
		"Dream Pop":       "Pop",
		"Trip Hop":        "Electronic",
		"Trap":            "Hip Hop",
		"Americana":       "Country",
		"Neo Soul":        "R&B",
		"Dancehall":       "Reggae",
		"Opera":           "Classical",
		"Afrobeat":        "World",
		"Avant-Garde":     "Ambient",
		"New Romantic":    "New Wave",
		"Rock And Roll":   "Rockabilly",
		"Shoegaze":        "Shoegaze",
		"Lounge":          "Lounge",
		"Zydeco":          "Zydeco",
		"Midwest Emo":     "Punk",
		"Southern Gospel": "Gospel",
	}
	for tag, want := range cases {
		if got := m.Map(tag); got != want {
			t.Errorf("Map(%q) = %q, want %q", tag, got, want)
		}
	}
}

func TestMapFirstGroupWinsForSharedTags(t *testing.T) {
	m := genre.NewMapper(true)
	// These tags appear in more than one group; the earlier group takes them.
	if got := m.Map("Blues Rock"); got != "Rock" {
		t.Fatalf("Map(Blues Rock) = %q, want Rock", got)
	}
	if got := m.Map("Indie Pop"); got != "Pop" {
		t.Fatalf("Map(Indie Pop) = %q, want Pop", got)
	}
	if got := m.Map("Nu Metal"); got != "Rock" {
		t.Fatalf("Map(Nu Metal) = %q, want Rock", got)
	}
}

func TestMapDisabledPassesThrough(t *testing.T) {
	m := genre.NewMapper(false)
	if got := m.Map("Grunge"); got != "Grunge" {
		t.Fatalf("Map(Grunge) = %q, want Grunge", got)
	}
}

func TestMapAllDeduplicatesMappedGroups(t *testing.T) {
	m := genre.NewMapper(true)
	got := m.MapAll([]string{"Grunge", "Hard Rock", "Trap", "Punk Rock"})
	want := []string{"Rock", "Hip Hop"}
	if len(got) != len(want) {
		t.Fatalf("MapAll = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MapAll = %v, want %v", got, want)
		}
	}
}

func TestLoadMapperOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.toml")
	content := `
[[group]]
name = "Heavy"
tags = ["Metal", "Doom Metal"]

[[group]]
name = "Quiet"
tags = ["Ambient", "Metal"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	m, err := genre.LoadMapper(path, true)
	if err != nil {
		t.Fatalf("LoadMapper returned error: %v", err)
	}
	if got := m.Map("Metal"); got != "Heavy" {
		t.Fatalf("Map(Metal) = %q, want Heavy", got)
	}
	if got := m.Map("Ambient"); got != "Quiet" {
		t.Fatalf("Map(Ambient) = %q, want Quiet", got)
	}
	groups := m.Groups()
	if len(groups) != 2 || groups[0] != "Heavy" || groups[1] != "Quiet" {
		t.Fatalf("Groups = %v", groups)
	}
}

func TestLoadMapperRejectsEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.toml")
	if err := os.WriteFile(path, []byte("# nothing here\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}
	if _, err := genre.LoadMapper(path, true); err == nil {
		t.Fatal("expected error for empty group table")
	}
}
