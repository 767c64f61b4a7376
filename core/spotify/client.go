package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"

	// Spotify's documented ceiling for search results per request.
	maxSearchLimit = 50
)

// Client is a Spotify Web API client. Catalog reads fall back to an
// application token (client-credentials grant) when no user token is
// supplied; playlist writes always require a user token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	appTokens  *clientcredentials.Config
}

// NewClient creates a Spotify client. clientID and clientSecret may be empty,
// in which case only calls carrying an explicit user token will succeed.
func NewClient(clientID, clientSecret string) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}
	if clientID != "" && clientSecret != "" {
		c.appTokens = &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     defaultTokenURL,
		}
	}
	return c
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// SetTimeout sets the request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// bearer resolves the token to use for a request: the caller-supplied user
// token when present, otherwise an application token.
func (c *Client) bearer(ctx context.Context, userToken string) (string, error) {
	if userToken != "" {
		return userToken, nil
	}
	if c.appTokens == nil {
		return "", fmt.Errorf("spotify credentials not configured")
	}
	tok, err := c.appTokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain spotify app token: %w", err)
	}
	return tok.AccessToken, nil
}

// doRequest performs an authenticated request against the Spotify API.
func (c *Client) doRequest(ctx context.Context, method, endpoint, token string, body interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("spotify API error: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchTracks searches the catalog for tracks matching query. userToken may
// be empty; the client then authenticates with application credentials.
func (c *Client) SearchTracks(ctx context.Context, userToken, query string, limit int) ([]Track, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	token, err := c.bearer(ctx, userToken)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var resp searchResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tracks.Items, nil
}

// CreatePlaylist creates a playlist for the user the token belongs to.
func (c *Client) CreatePlaylist(ctx context.Context, userToken, name, description string, public bool) (*Playlist, error) {
	if userToken == "" {
		return nil, fmt.Errorf("user token is required to create playlists")
	}
	if name == "" {
		return nil, fmt.Errorf("playlist name is required")
	}

	body := map[string]interface{}{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist Playlist
	if err := c.doRequest(ctx, http.MethodPost, "/me/playlists", userToken, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddPlaylistTracks appends track URIs to a playlist, in order.
func (c *Client) AddPlaylistTracks(ctx context.Context, userToken, playlistID string, uris []string) error {
	if userToken == "" {
		return fmt.Errorf("user token is required to modify playlists")
	}
	if playlistID == "" {
		return fmt.Errorf("playlist ID is required")
	}
	if len(uris) == 0 {
		return fmt.Errorf("no track URIs provided")
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	body := map[string]interface{}{"uris": uris}

	return c.doRequest(ctx, http.MethodPost, endpoint, userToken, body, nil)
}

// TrackURI formats a track ID as a Spotify URI.
func TrackURI(trackID string) string {
	return "spotify:track:" + trackID
}
