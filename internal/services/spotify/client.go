// Package spotify looks up "This is {artist}" playlists through the Spotify
// Web API so their cover images can seed artist playlist artwork. Only the
// client-credentials flow is used; no user data is touched.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"jellyjams/internal/services"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com"
	defaultAPIURL      = "https://api.spotify.com"

	// Tokens are refreshed slightly early to avoid racing their expiry.
	tokenExpiryMargin = 30 * time.Second
)

// Image is one rendition of a playlist cover.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Playlist is the subset of a Spotify playlist used for cover sourcing.
type Playlist struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Client is a minimal Spotify Web API client.
type Client struct {
	clientID     string
	clientSecret string
	accountsURL  string
	apiURL       string
	http         *resty.Client
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs overrides the accounts and API endpoints.
func WithBaseURLs(accountsURL, apiURL string) Option {
	return func(c *Client) {
		if accountsURL != "" {
			c.accountsURL = strings.TrimRight(accountsURL, "/")
		}
		if apiURL != "" {
			c.apiURL = strings.TrimRight(apiURL, "/")
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// New creates a Spotify client using the client-credentials flow.
func New(clientID, clientSecret string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("spotify client id and secret required")
	}
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		accountsURL:  defaultAccountsURL,
		apiURL:       defaultAPIURL,
		http:         resty.New().SetTimeout(10 * time.Second),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FindArtistPlaylist searches for Spotify's editorial "This is {artist}"
// playlist. Matching is case-insensitive and accepts the exact title, a
// trailing exclamation mark, or a title-prefixed variant. Returns nil when
// nothing matches.
func (c *Client) FindArtistPlaylist(ctx context.Context, artist string) (*Playlist, error) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return nil, nil
	}
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var result struct {
		Playlists struct {
			Items []*Playlist `json:"items"`
		} `json:"playlists"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     "This is " + artist,
			"type":  "playlist",
			"limit": "10",
		}).
		SetResult(&result).
		Get(c.apiURL + "/v1/search")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "spotify", "search", "search playlists", err)
	}
	if resp.IsError() {
		return nil, services.Wrap(services.ErrTransient, "spotify", "search", "search playlists", fmt.Errorf("spotify returned %d", resp.StatusCode()))
	}

	target := "this is " + strings.ToLower(artist)
	for _, p := range result.Playlists.Items {
		if p == nil {
			continue
		}
		name := strings.ToLower(p.Name)
		if name == target || name == target+"!" || strings.HasPrefix(name, target) {
			return p, nil
		}
	}
	return nil, nil
}

// CoverImage downloads the highest quality cover of a playlist. Spotify
// orders images largest first.
func (c *Client) CoverImage(ctx context.Context, playlist *Playlist) ([]byte, error) {
	if playlist == nil || len(playlist.Images) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "spotify", "cover", "playlist has no images", nil)
	}
	resp, err := c.http.R().SetContext(ctx).Get(playlist.Images[0].URL)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "spotify", "cover", "download image", err)
	}
	if resp.IsError() {
		return nil, services.Wrap(services.ErrTransient, "spotify", "cover", "download image", fmt.Errorf("image host returned %d", resp.StatusCode()))
	}
	return resp.Body(), nil
}

// ArtistCover searches for the artist's "This is" playlist and downloads its
// cover in one step. The second return is false when no playlist matched.
func (c *Client) ArtistCover(ctx context.Context, artist string) ([]byte, bool, error) {
	playlist, err := c.FindArtistPlaylist(ctx, artist)
	if err != nil {
		return nil, false, err
	}
	if playlist == nil || len(playlist.Images) == 0 {
		return nil, false, nil
	}
	data, err := c.CoverImage(ctx, playlist)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.clientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&result).
		Post(c.accountsURL + "/api/token")
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "spotify", "token", "request access token", err)
	}
	if resp.IsError() {
		return "", services.Wrap(services.ErrConfiguration, "spotify", "token", "request access token", fmt.Errorf("spotify returned %d", resp.StatusCode()))
	}
	if result.AccessToken == "" {
		return "", services.Wrap(services.ErrConfiguration, "spotify", "token", "no access token in response", nil)
	}

	c.accessToken = result.AccessToken
	lifetime := time.Duration(result.ExpiresIn) * time.Second
	if lifetime > tokenExpiryMargin {
		lifetime -= tokenExpiryMargin
	}
	c.tokenExpiry = c.now().Add(lifetime)
	return c.accessToken, nil
}
