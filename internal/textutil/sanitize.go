package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// punctuationFolder maps Unicode quote, apostrophe, and dash variants to ASCII
// equivalents. Media servers and tag writers disagree on which variant they
// emit, so names are folded before any comparison or lookup.
var punctuationFolder = strings.NewReplacer(
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"‛", "'", // single high-reversed-9 quotation mark
	"′", "'", // prime
	"ʼ", "'", // modifier letter apostrophe
	"＇", "'", // fullwidth apostrophe
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"＂", `"`, // fullwidth quotation mark
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	" ", " ", // non-breaking space
)

// fileNameReplacer replaces filesystem-unsafe characters with underscores.
var fileNameReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
	"/", "_",
	`\`, "_",
)

// NormalizeName folds a playlist or artist name into a canonical form:
// NFKC composition, ASCII punctuation, trimmed whitespace. The result is the
// name used for every media-server call so Unicode variants never produce
// duplicate playlists.
func NormalizeName(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = punctuationFolder.Replace(s)
	return strings.TrimSpace(s)
}

// SanitizeDirName converts a playlist name into a safe directory name.
// Control characters and null bytes are stripped, filesystem-hostile
// characters become underscores, and punctuation variants are folded to
// ASCII. An empty result falls back to "Unknown Playlist". Sanitizing an
// already sanitized name is a no-op.
func SanitizeDirName(name string) string {
	normalized := NormalizeName(name)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	sanitized := strings.TrimSpace(fileNameReplacer.Replace(b.String()))
	if sanitized == "" {
		return "Unknown Playlist"
	}
	return sanitized
}

// FoldASCII maps punctuation variants to ASCII and drops any remaining
// non-ASCII codepoints. Used before rendering text with fonts whose glyph
// coverage is not guaranteed.
func FoldASCII(s string) string {
	folded := punctuationFolder.Replace(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
