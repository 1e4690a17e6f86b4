// Package assemble turns filtered track buckets into named playlist
// definitions ready to push to the media server.
package assemble

import (
	"fmt"
	"math/rand/v2"

	"jellyjams/internal/catalog"
	"jellyjams/internal/textutil"
)

// Type identifies which generation rule produced a playlist.
type Type string

const (
	TypeGenre    Type = "genre"
	TypeDecade   Type = "decade"
	TypeArtist   Type = "artist"
	TypePersonal Type = "personal"
)

// PersonalKind distinguishes the per-user playlist flavors.
type PersonalKind string

const (
	KindTopTracks       PersonalKind = "Top Tracks"
	KindDiscovery       PersonalKind = "Discovery Mix"
	KindRecentFavorites PersonalKind = "Recent Favorites"
	KindGenreMix        PersonalKind = "Genre Mix"
)

// Playlist is a fully assembled playlist definition. Name is the normalized
// display name used for every media server call; DirName derives the
// filesystem-safe variant used only for cover directories.
type Playlist struct {
	Type   Type
	Kind   PersonalKind
	Name   string
	Owner  catalog.User
	Tracks []catalog.Track
}

// New builds a playlist with its name normalized for API use.
func New(t Type, name string, tracks []catalog.Track) Playlist {
	return Playlist{Type: t, Name: textutil.NormalizeName(name), Tracks: tracks}
}

// NewPersonal builds a per-user playlist.
func NewPersonal(kind PersonalKind, owner catalog.User, tracks []catalog.Track) Playlist {
	p := New(TypePersonal, PersonalName(kind, owner.Name), tracks)
	p.Kind = kind
	p.Owner = owner
	return p
}

// Public reports the playlist's media server visibility. Personal playlists
// are private to their owner; everything else is shared.
func (p Playlist) Public() bool {
	return p.Type != TypePersonal
}

// DirName is the sanitized directory name used for cover art storage.
func (p Playlist) DirName() string {
	return textutil.SanitizeDirName(p.Name)
}

// TrackIDs lists the item IDs in playlist order.
func (p Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// GenreName formats the display name for a genre playlist.
func GenreName(group string) string {
	return fmt.Sprintf("%s Radio", group)
}

// DecadeName formats the display name for a decade playlist. The key already
// carries its "s" suffix ("1980s").
func DecadeName(decadeKey string) string {
	return fmt.Sprintf("Back to the %s", decadeKey)
}

// ArtistName formats the display name for an artist playlist.
func ArtistName(artist string) string {
	return fmt.Sprintf("This is %s!", artist)
}

// PersonalName formats the display name for a per-user playlist.
func PersonalName(kind PersonalKind, user string) string {
	return fmt.Sprintf("%s - %s", kind, user)
}

// Sequencer bounds and optionally shuffles track lists. A nil Rand uses the
// process-wide source.
type Sequencer struct {
	MaxTracks int
	Shuffle   bool
	Rand      *rand.Rand
}

// Sequence prepares a bucket whose order carries no meaning: take the first
// MaxTracks, then shuffle the selection.
func (s Sequencer) Sequence(tracks []catalog.Track) []catalog.Track {
	out := s.truncate(tracks)
	s.shuffle(out)
	return out
}

// Ranked prepares a rank-ordered candidate list: shuffle the whole set first
// so truncation samples it, or keep rank order when shuffling is off.
func (s Sequencer) Ranked(tracks []catalog.Track) []catalog.Track {
	out := make([]catalog.Track, len(tracks))
	copy(out, tracks)
	s.shuffle(out)
	if s.MaxTracks > 0 && len(out) > s.MaxTracks {
		out = out[:s.MaxTracks]
	}
	return out
}

func (s Sequencer) truncate(tracks []catalog.Track) []catalog.Track {
	n := len(tracks)
	if s.MaxTracks > 0 && n > s.MaxTracks {
		n = s.MaxTracks
	}
	out := make([]catalog.Track, n)
	copy(out, tracks[:n])
	return out
}

func (s Sequencer) shuffle(tracks []catalog.Track) {
	if !s.Shuffle {
		return
	}
	swap := func(i, j int) { tracks[i], tracks[j] = tracks[j], tracks[i] }
	if s.Rand != nil {
		s.Rand.Shuffle(len(tracks), swap)
		return
	}
	rand.Shuffle(len(tracks), swap)
}
