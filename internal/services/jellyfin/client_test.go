package jellyfin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jellyjams/internal/services/jellyfin"
)

func newClient(t *testing.T, handler http.Handler) (*jellyfin.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := jellyfin.New(srv.URL, "token123")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client, srv
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := jellyfin.New("", "key"); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := jellyfin.New("http://jellyfin:8096", " "); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestAudioItemsSendsTokenAndParses(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Items" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Emby-Token"); got != "token123" {
			t.Errorf("token header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("IncludeItemTypes") != "Audio" || q.Get("Recursive") != "true" {
			t.Errorf("unexpected query %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]any{
				{
					"Id":             "t1",
					"Name":           "Everlong",
					"Album":          "The Colour and the Shape",
					"Artists":        []string{"Foo Fighters"},
					"Genres":         []string{"Alternative Rock; Grunge"},
					"ProductionYear": 1997,
					"DateCreated":    "2024-03-01T10:00:00.0000000Z",
				},
				{"Name": "broken item without id"},
			},
		})
	}))

	tracks, err := client.AudioItems(context.Background())
	if err != nil {
		t.Fatalf("AudioItems returned error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(tracks))
	}
	tr := tracks[0]
	if tr.ID != "t1" || tr.ProductionYear != 1997 {
		t.Fatalf("track = %+v", tr)
	}
	if len(tr.Genres) != 2 || tr.Genres[0] != "Alternative Rock" || tr.Genres[1] != "Grunge" {
		t.Fatalf("genres = %v", tr.Genres)
	}
	if tr.DateCreated.IsZero() {
		t.Fatal("DateCreated not parsed")
	}
}

func TestListeningStatsMissingPluginYieldsEmpty(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	stats, err := client.ListeningStats(context.Background(), "u1", 50)
	if err != nil {
		t.Fatalf("ListeningStats returned error: %v", err)
	}
	if stats != nil {
		t.Fatalf("stats = %v, want nil", stats)
	}
}

func TestListeningStatsServerErrorIsError(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	if _, err := client.ListeningStats(context.Background(), "u1", 50); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestRecentlyPlayedFiltersUnplayedItems(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("SortBy") != "DatePlayed" || q.Get("SortOrder") != "Descending" {
			t.Errorf("unexpected query %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]any{
				{"Id": "played", "UserData": map[string]any{"LastPlayedDate": "2024-05-01T00:00:00Z"}},
				{"Id": "never-played", "UserData": map[string]any{}},
				{"Id": "no-userdata"},
			},
		})
	}))

	tracks, err := client.RecentlyPlayed(context.Background(), "u1", 30)
	if err != nil {
		t.Fatalf("RecentlyPlayed returned error: %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "played" {
		t.Fatalf("tracks = %+v", tracks)
	}
}

func TestCreatePlaylistPostsPayload(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/Playlists" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["Name"] != "Rock Radio" || payload["IsPublic"] != true || payload["UserId"] != "u1" {
			t.Errorf("payload = %v", payload)
		}
		json.NewEncoder(w).Encode(map[string]string{"Id": "pl42"})
	}))

	id, err := client.CreatePlaylist(context.Background(), jellyfin.CreatePlaylistRequest{
		Name:     "Rock Radio",
		TrackIDs: []string{"a", "b"},
		UserID:   "u1",
		Public:   true,
	})
	if err != nil {
		t.Fatalf("CreatePlaylist returned error: %v", err)
	}
	if id != "pl42" {
		t.Fatalf("id = %q", id)
	}
}

func TestFindPlaylistMatchesNormalizedName(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"Items": []map[string]any{
				{"Id": "p1", "Name": "Rock Radio Hits"},
				{"Id": "p2", "Name": "This is Guns N’ Roses!"},
			},
		})
	}))

	id, found, err := client.FindPlaylist(context.Background(), "u1", "This is Guns N' Roses!")
	if err != nil {
		t.Fatalf("FindPlaylist returned error: %v", err)
	}
	if !found || id != "p2" {
		t.Fatalf("found=%v id=%q", found, id)
	}

	_, found, err = client.FindPlaylist(context.Background(), "u1", "Nothing Here")
	if err != nil {
		t.Fatalf("FindPlaylist returned error: %v", err)
	}
	if found {
		t.Fatal("unexpected match")
	}
}

func TestDeleteItemAndRefreshLibrary(t *testing.T) {
	var deleted, refreshed bool
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/Items/p1":
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/Library/Refresh":
			refreshed = true
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	if err := client.DeleteItem(context.Background(), "p1"); err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}
	if err := client.RefreshLibrary(context.Background()); err != nil {
		t.Fatalf("RefreshLibrary returned error: %v", err)
	}
	if !deleted || !refreshed {
		t.Fatalf("deleted=%v refreshed=%v", deleted, refreshed)
	}
}

func TestSystemInfo(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/System/Info" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"ServerName": "media", "Version": "10.9.0"})
	}))
	info, err := client.SystemInfo(context.Background())
	if err != nil {
		t.Fatalf("SystemInfo returned error: %v", err)
	}
	if info.ServerName != "media" || info.Version != "10.9.0" {
		t.Fatalf("info = %+v", info)
	}
}
