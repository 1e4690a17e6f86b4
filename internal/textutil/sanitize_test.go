package textutil_test

import (
	"testing"

	"jellyjams/internal/textutil"
)

func TestNormalizeNameFoldsUnicodePunctuation(t *testing.T) {
	cases := map[string]string{
		"Guns N’ Roses":       "Guns N' Roses",
		"Back to the 1980s":        "Back to the 1980s",
		"AC–DC":               "AC-DC",
		"“Quoted” Radio": `"Quoted" Radio`,
		"  trimmed  ":              "trimmed",
	}
	for input, want := range cases {
		if got := textutil.NormalizeName(input); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeDirNameReplacesHostileCharacters(t *testing.T) {
	got := textutil.SanitizeDirName(`This is AC/DC!`)
	if got != "This is AC_DC!" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
	if textutil.SanitizeDirName("a<b>c:d") != "a_b_c_d" {
		t.Fatalf("expected hostile characters replaced")
	}
}

func TestSanitizeDirNameStripsControlCharacters(t *testing.T) {
	got := textutil.SanitizeDirName("Rock\x00 Radio\x1f")
	if got != "Rock Radio" {
		t.Fatalf("unexpected result: %q", got)
	}
}

func TestSanitizeDirNameEmptyFallsBack(t *testing.T) {
	if got := textutil.SanitizeDirName("\x00\x01"); got != "Unknown Playlist" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}

func TestSanitizeDirNameIdempotent(t *testing.T) {
	inputs := []string{
		"This is Daft Punk!",
		`Weird <?> Name`,
		"Back to the 1970s",
		"café — live",
	}
	for _, input := range inputs {
		once := textutil.SanitizeDirName(input)
		twice := textutil.SanitizeDirName(once)
		if once != twice {
			t.Fatalf("sanitize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestFoldASCIIDropsUnrenderable(t *testing.T) {
	if got := textutil.FoldASCII("Sigur Rós"); got != "Sigur Rs" {
		t.Fatalf("unexpected fold: %q", got)
	}
	if got := textutil.FoldASCII("M—name’s"); got != "M-name's" {
		t.Fatalf("unexpected fold: %q", got)
	}
}
