package server

import (
	"encoding/json"
	"net/http"

	"transflow/core/spotify"
	"transflow/logger"
)

// spotifyTokenHeader carries an optional user-scoped Spotify access token.
// Catalog search works without it via application credentials; playlist
// export requires it.
const spotifyTokenHeader = "X-Spotify-Token"

// SpotifySearchHandler proxies a track search to the Spotify catalog.
func (h *APIHandler) SpotifySearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	limit := parseIntParam(r.URL.Query().Get("limit"), 10)
	userToken := r.Header.Get(spotifyTokenHeader)

	tracks, err := h.spotifyClient.SearchTracks(r.Context(), userToken, query, limit)
	if err != nil {
		logger.Error("Spotify search failed",
			logger.String("query", query), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "Failed to search Spotify")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracks": tracks,
	})
}

// ExportPlaylistRequest selects transitions to export as a Spotify playlist.
type ExportPlaylistRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Public        bool     `json:"public"`
	TransitionIDs []string `json:"transitionIds"`
}

// ExportPlaylistHandler creates a playlist on the caller's Spotify account
// containing both tracks of each selected transition, in selection order.
func (h *APIHandler) ExportPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := GetUserIDFromContext(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userToken := r.Header.Get(spotifyTokenHeader)
	if userToken == "" {
		writeError(w, http.StatusUnauthorized, "Spotify authentication required")
		return
	}

	var req ExportPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.TransitionIDs) == 0 {
		writeError(w, http.StatusBadRequest, "At least one transition is required")
		return
	}
	if req.Name == "" {
		req.Name = "My TransitionFlow Playlist"
	}
	if req.Description == "" {
		req.Description = "Seamless transitions created with TransitionFlow"
	}

	transitions, err := h.transitionRepo.ListByIDs(r.Context(), req.TransitionIDs)
	if err != nil {
		logger.Error("Failed to fetch transitions for export", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to export playlist")
		return
	}
	if len(transitions) == 0 {
		writeError(w, http.StatusNotFound, "No matching transitions found")
		return
	}

	// Keep the caller's selection order, pairing each transition's tracks.
	type pair struct{ song1, song2 string }
	byID := make(map[string]pair, len(transitions))
	for _, t := range transitions {
		byID[t.ID] = pair{song1: t.Song1ID, song2: t.Song2ID}
	}

	var uris []string
	for _, id := range req.TransitionIDs {
		if p, ok := byID[id]; ok {
			uris = append(uris, spotify.TrackURI(p.song1), spotify.TrackURI(p.song2))
		}
	}

	playlist, err := h.spotifyClient.CreatePlaylist(r.Context(), userToken, req.Name, req.Description, req.Public)
	if err != nil {
		logger.Error("Failed to create Spotify playlist", logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "Failed to create playlist")
		return
	}

	if err := h.spotifyClient.AddPlaylistTracks(r.Context(), userToken, playlist.ID, uris); err != nil {
		logger.Error("Failed to add tracks to Spotify playlist",
			logger.String("playlistId", playlist.ID), logger.ErrorField(err))
		writeError(w, http.StatusBadGateway, "Failed to add tracks to playlist")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"playlist": playlist,
		"tracks":   len(uris),
	})
}
