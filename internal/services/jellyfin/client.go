package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jellyjams/internal/catalog"
	"jellyjams/internal/services"
	"jellyjams/internal/textutil"
)

// audioFields is the field set requested for every track query.
const audioFields = "Path,Genres,ProductionYear,Artists,RunTimeTicks,DateCreated"

// HTTPDoer describes the HTTP client used by the Jellyfin service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SystemInfo is the subset of /System/Info used for connection checks.
type SystemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
}

// PlayStat is one row of Playback Reporting activity.
type PlayStat struct {
	ItemID    string `json:"ItemId"`
	PlayCount int    `json:"PlayCount"`
}

// CreatePlaylistRequest carries the fields for playlist creation.
type CreatePlaylistRequest struct {
	Name     string
	TrackIDs []string
	UserID   string
	Public   bool
}

// Client talks to a Jellyfin server.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// New creates a Jellyfin client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("jellyfin base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("jellyfin api key required")
	}
	client := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SystemInfo fetches server identity, doubling as a connectivity check.
func (c *Client) SystemInfo(ctx context.Context) (SystemInfo, error) {
	var info SystemInfo
	if err := c.getJSON(ctx, "/System/Info", nil, &info); err != nil {
		return SystemInfo{}, services.Wrap(services.ErrUnavailable, "jellyfin", "system info", "query server", err)
	}
	return info, nil
}

// AudioItems enumerates every audio track in the library. Items without a
// usable ID are dropped.
func (c *Client) AudioItems(ctx context.Context) ([]catalog.Track, error) {
	params := url.Values{}
	params.Set("IncludeItemTypes", "Audio")
	params.Set("Recursive", "true")
	params.Set("Fields", audioFields)

	var page itemPage
	if err := c.getJSON(ctx, "/Items", params, &page); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "jellyfin", "audio items", "fetch library", err)
	}
	return parseTracks(page.Items), nil
}

// Users lists all server accounts.
func (c *Client) Users(ctx context.Context) ([]catalog.User, error) {
	var raw []struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	}
	if err := c.getJSON(ctx, "/Users", nil, &raw); err != nil {
		return nil, services.Wrap(services.ErrTransient, "jellyfin", "users", "fetch users", err)
	}
	users := make([]catalog.User, 0, len(raw))
	for _, u := range raw {
		if u.ID == "" {
			continue
		}
		users = append(users, catalog.User{ID: u.ID, Name: u.Name})
	}
	return users, nil
}

// ListeningStats queries the Playback Reporting plugin for a user's most
// played audio items. A 404 means the plugin is not installed and yields
// empty data.
func (c *Client) ListeningStats(ctx context.Context, userID string, limit int) ([]PlayStat, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("media_type", "Audio")

	var stats []PlayStat
	err := c.getJSON(ctx, "/user_usage_stats/PlayActivity", params, &stats)
	if err != nil {
		var status *statusError
		if errors.As(err, &status) && status.code == http.StatusNotFound {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrTransient, "jellyfin", "listening stats", "fetch play activity", err)
	}
	return stats, nil
}

// FavoriteTracks lists the audio items a user has marked as favorites.
func (c *Client) FavoriteTracks(ctx context.Context, userID string) ([]catalog.Track, error) {
	params := url.Values{}
	params.Set("IsFavorite", "true")
	params.Set("IncludeItemTypes", "Audio")
	params.Set("Recursive", "true")
	params.Set("Fields", audioFields+",UserData")

	var page itemPage
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(userID)+"/Items", params, &page); err != nil {
		return nil, services.Wrap(services.ErrTransient, "jellyfin", "favorites", "fetch favorites", err)
	}
	return parseTracks(page.Items), nil
}

// RecentlyPlayed lists a user's most recently played tracks, newest first.
// Items the user never actually played are filtered out.
func (c *Client) RecentlyPlayed(ctx context.Context, userID string, limit int) ([]catalog.Track, error) {
	params := url.Values{}
	params.Set("IncludeItemTypes", "Audio")
	params.Set("Recursive", "true")
	params.Set("SortBy", "DatePlayed")
	params.Set("SortOrder", "Descending")
	params.Set("Limit", strconv.Itoa(limit))
	params.Set("Fields", audioFields+",UserData")

	var page itemPage
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(userID)+"/Items", params, &page); err != nil {
		return nil, services.Wrap(services.ErrTransient, "jellyfin", "recently played", "fetch play history", err)
	}
	played := make([]item, 0, len(page.Items))
	for _, it := range page.Items {
		if it.UserData != nil && it.UserData.LastPlayedDate != "" {
			played = append(played, it)
		}
	}
	return parseTracks(played), nil
}

// CreatePlaylist creates a server-side playlist and returns its item ID.
func (c *Client) CreatePlaylist(ctx context.Context, req CreatePlaylistRequest) (string, error) {
	payload := map[string]any{
		"Name":     req.Name,
		"IsPublic": req.Public,
		"Ids":      req.TrackIDs,
		"UserId":   req.UserID,
	}
	var created struct {
		ID string `json:"Id"`
	}
	if err := c.postJSON(ctx, "/Playlists", payload, &created); err != nil {
		return "", services.Wrap(services.ErrTransient, "jellyfin", "create playlist", "create "+req.Name, err)
	}
	return created.ID, nil
}

// FindPlaylist looks up an existing playlist by exact name for the given
// user. The server search is fuzzy, so candidates are compared after name
// normalization.
func (c *Client) FindPlaylist(ctx context.Context, userID, name string) (string, bool, error) {
	params := url.Values{}
	params.Set("IncludeItemTypes", "Playlist")
	params.Set("Recursive", "true")
	params.Set("SearchTerm", name)

	var page itemPage
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(userID)+"/Items", params, &page); err != nil {
		return "", false, services.Wrap(services.ErrTransient, "jellyfin", "find playlist", "search "+name, err)
	}
	want := textutil.NormalizeName(name)
	for _, it := range page.Items {
		if textutil.NormalizeName(it.Name) == want {
			return it.ID, true, nil
		}
	}
	return "", false, nil
}

// DeleteItem removes an item (playlist) from the server.
func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/Items/"+url.PathEscape(itemID), nil, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return services.Wrap(services.ErrTransient, "jellyfin", "delete item", "delete "+itemID, err)
	}
	return nil
}

// RefreshLibrary asks the server to rescan its libraries.
func (c *Client) RefreshLibrary(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/Library/Refresh", nil, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return services.Wrap(services.ErrTransient, "jellyfin", "refresh", "trigger library scan", err)
	}
	return nil
}

type itemPage struct {
	Items []item `json:"Items"`
}

type item struct {
	ID             string    `json:"Id"`
	Name           string    `json:"Name"`
	Path           string    `json:"Path"`
	Album          string    `json:"Album"`
	AlbumID        string    `json:"AlbumId"`
	AlbumArtist    string    `json:"AlbumArtist"`
	Artists        []string  `json:"Artists"`
	Genres         []string  `json:"Genres"`
	ProductionYear int       `json:"ProductionYear"`
	RunTimeTicks   int64     `json:"RunTimeTicks"`
	DateCreated    string    `json:"DateCreated"`
	UserData       *userData `json:"UserData"`
}

type userData struct {
	LastPlayedDate string `json:"LastPlayedDate"`
	PlayCount      int    `json:"PlayCount"`
	IsFavorite     bool   `json:"IsFavorite"`
}

func parseTracks(items []item) []catalog.Track {
	tracks := make([]catalog.Track, 0, len(items))
	for _, it := range items {
		track, err := catalog.ParseTrack(catalog.Track{
			ID:             it.ID,
			Name:           it.Name,
			Path:           it.Path,
			Album:          it.Album,
			AlbumID:        it.AlbumID,
			AlbumArtist:    it.AlbumArtist,
			Artists:        it.Artists,
			Genres:         it.Genres,
			ProductionYear: it.ProductionYear,
			RunTimeTicks:   it.RunTimeTicks,
			DateCreated:    parseTime(it.DateCreated),
		})
		if err != nil {
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("jellyfin returned %d", e.code)
	}
	return fmt.Sprintf("jellyfin returned %d: %s", e.code, e.body)
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build jellyfin request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode jellyfin payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("jellyfin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode jellyfin response: %w", err)
	}
	return nil
}
