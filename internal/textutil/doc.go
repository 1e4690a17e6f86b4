// Package textutil provides text processing utilities for playlist and artist
// names.
//
// The primary use cases are:
//   - Normalizing Unicode punctuation variants so playlist names compare
//     consistently against the media server
//   - Sanitizing playlist names into safe on-disk directory names
//   - Folding text to ASCII so it can be rendered with fonts that lack
//     extended glyph coverage
//
// Normalization applies NFKC composition and maps curly quotes, primes, and
// dash variants to their ASCII equivalents before trimming.
package textutil
