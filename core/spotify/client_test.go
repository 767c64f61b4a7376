package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchTracks(t *testing.T) {
	t.Run("Decodes Results", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/search") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
				t.Errorf("unexpected auth header %q", got)
			}
			if got := r.URL.Query().Get("q"); got != "daft punk" {
				t.Errorf("unexpected query %q", got)
			}

			resp := map[string]interface{}{
				"tracks": map[string]interface{}{
					"items": []map[string]interface{}{
						{
							"id":   "track1",
							"name": "One More Time",
							"artists": []map[string]string{
								{"id": "a1", "name": "Daft Punk"},
							},
							"album": map[string]interface{}{
								"id":   "al1",
								"name": "Discovery",
								"images": []map[string]interface{}{
									{"url": "https://img.example/1", "height": 640, "width": 640},
								},
							},
						},
					},
					"total": 1,
				},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer ts.Close()

		c := NewClient("", "")
		c.SetBaseURL(ts.URL)

		tracks, err := c.SearchTracks(context.Background(), "user-token", "daft punk", 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		if tracks[0].Name != "One More Time" || tracks[0].Artists[0].Name != "Daft Punk" {
			t.Errorf("unexpected track %+v", tracks[0])
		}
	})

	t.Run("Empty Query", func(t *testing.T) {
		c := NewClient("", "")
		if _, err := c.SearchTracks(context.Background(), "tok", "", 10); err == nil {
			t.Error("expected error for empty query")
		}
	})

	t.Run("No Token No Credentials", func(t *testing.T) {
		c := NewClient("", "")
		if _, err := c.SearchTracks(context.Background(), "", "daft punk", 10); err == nil {
			t.Error("expected error without token or credentials")
		}
	})

	t.Run("API Error Status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "rate limited"},
			})
		}))
		defer ts.Close()

		c := NewClient("", "")
		c.SetBaseURL(ts.URL)

		_, err := c.SearchTracks(context.Background(), "tok", "x", 10)
		if err == nil || !strings.Contains(err.Error(), "429") {
			t.Errorf("expected status error, got %v", err)
		}
	})
}

func TestPlaylists(t *testing.T) {
	t.Run("Create And Add Tracks", func(t *testing.T) {
		var addedURIs []string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/me/playlists":
				var body map[string]interface{}
				json.NewDecoder(r.Body).Decode(&body)
				if body["name"] != "My TransitionFlow Playlist" {
					t.Errorf("unexpected playlist name %v", body["name"])
				}
				json.NewEncoder(w).Encode(map[string]interface{}{
					"id":   "pl1",
					"name": body["name"],
				})
			case r.Method == http.MethodPost && r.URL.Path == "/playlists/pl1/tracks":
				var body struct {
					URIs []string `json:"uris"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				addedURIs = body.URIs
				w.WriteHeader(http.StatusCreated)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer ts.Close()

		c := NewClient("", "")
		c.SetBaseURL(ts.URL)

		ctx := context.Background()
		playlist, err := c.CreatePlaylist(ctx, "user-token", "My TransitionFlow Playlist", "desc", true)
		if err != nil {
			t.Fatalf("create playlist: %v", err)
		}
		if playlist.ID != "pl1" {
			t.Fatalf("unexpected playlist id %s", playlist.ID)
		}

		uris := []string{TrackURI("s1"), TrackURI("s2")}
		if err := c.AddPlaylistTracks(ctx, "user-token", playlist.ID, uris); err != nil {
			t.Fatalf("add tracks: %v", err)
		}

		if len(addedURIs) != 2 || addedURIs[0] != "spotify:track:s1" {
			t.Errorf("unexpected URIs sent: %v", addedURIs)
		}
	})

	t.Run("Requires User Token", func(t *testing.T) {
		c := NewClient("id", "secret")
		if _, err := c.CreatePlaylist(context.Background(), "", "name", "", true); err == nil {
			t.Error("expected error without user token")
		}
		if err := c.AddPlaylistTracks(context.Background(), "", "pl", []string{"u"}); err == nil {
			t.Error("expected error without user token")
		}
	})
}
