package spotify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"jellyjams/internal/services/spotify"
)

type fixture struct {
	client     *spotify.Client
	tokenCalls *atomic.Int32
}

func newFixture(t *testing.T, search http.HandlerFunc) fixture {
	t.Helper()
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			t.Errorf("basic auth = %q %q", user, pass)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	if search != nil {
		mux.HandleFunc("/v1/search", search)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := spotify.New("id", "secret", spotify.WithBaseURLs(srv.URL, srv.URL))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return fixture{client: client, tokenCalls: &tokenCalls}
}

func searchResponse(names ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := make([]map[string]any, 0, len(names))
		for _, n := range names {
			items = append(items, map[string]any{
				"name":   n,
				"images": []map[string]any{{"url": "http://img.example/" + n, "width": 640, "height": 640}},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"playlists": map[string]any{"items": items}})
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := spotify.New("", "secret"); err == nil {
		t.Fatal("expected error for missing client id")
	}
	if _, err := spotify.New("id", ""); err == nil {
		t.Fatal("expected error for missing secret")
	}
}

func TestFindArtistPlaylistMatchesVariants(t *testing.T) {
	cases := []struct {
		name      string
		playlists []string
		want      string
	}{
		{"exact", []string{"Workout Mix", "This is Drake"}, "This is Drake"},
		{"trailing bang", []string{"THIS IS DRAKE!"}, "THIS IS DRAKE!"},
		{"prefix", []string{"This is Drake: the essentials"}, "This is Drake: the essentials"},
		{"no match", []string{"Drake Hits", "Best of Drake"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture(t, searchResponse(tc.playlists...))
			got, err := fx.client.FindArtistPlaylist(context.Background(), "Drake")
			if err != nil {
				t.Fatalf("FindArtistPlaylist returned error: %v", err)
			}
			if tc.want == "" {
				if got != nil {
					t.Fatalf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Name != tc.want {
				t.Fatalf("got %+v, want %q", got, tc.want)
			}
		})
	}
}

func TestFindArtistPlaylistQuery(t *testing.T) {
	fx := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("q") != "This is Old Mervs" || q.Get("type") != "playlist" {
			t.Errorf("query = %v", q)
		}
		searchResponse()(w, r)
	})
	if _, err := fx.client.FindArtistPlaylist(context.Background(), "Old Mervs"); err != nil {
		t.Fatalf("FindArtistPlaylist returned error: %v", err)
	}
}

func TestTokenIsCachedAcrossSearches(t *testing.T) {
	fx := newFixture(t, searchResponse("This is Drake"))
	for i := 0; i < 3; i++ {
		if _, err := fx.client.FindArtistPlaylist(context.Background(), "Drake"); err != nil {
			t.Fatalf("FindArtistPlaylist returned error: %v", err)
		}
	}
	if got := fx.tokenCalls.Load(); got != 1 {
		t.Fatalf("token endpoint called %d times, want 1", got)
	}
}

func TestFindArtistPlaylistEmptyArtist(t *testing.T) {
	fx := newFixture(t, nil)
	got, err := fx.client.FindArtistPlaylist(context.Background(), "  ")
	if err != nil || got != nil {
		t.Fatalf("got %+v, %v", got, err)
	}
	if fx.tokenCalls.Load() != 0 {
		t.Fatal("token fetched for empty artist")
	}
}

func TestCoverImageDownloadsFirstImage(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer imgSrv.Close()

	fx := newFixture(t, nil)
	data, err := fx.client.CoverImage(context.Background(), &spotify.Playlist{
		Name:   "This is Drake",
		Images: []spotify.Image{{URL: imgSrv.URL + "/cover.jpg"}},
	})
	if err != nil {
		t.Fatalf("CoverImage returned error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("data = %q", data)
	}
}

func TestCoverImageNoImages(t *testing.T) {
	fx := newFixture(t, nil)
	if _, err := fx.client.CoverImage(context.Background(), &spotify.Playlist{Name: "empty"}); err == nil {
		t.Fatal("expected error for playlist without images")
	}
}
