package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"valentine/album"
	"valentine/flow"
	"valentine/session"
)

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Summaries())
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	s := h.manager.Create()
	writeJSON(w, http.StatusCreated, s.View())
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *handler) killSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.Kill(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to end session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actionRequest carries the optional arguments of a session action.
type actionRequest struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Index  int    `json:"index,omitempty"`
	Key    string `json:"key,omitempty"`
}

// sessionAction applies one user action to the session and returns the new
// view. Actions that do not apply to the current screen are no-ops.
func (h *handler) sessionAction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	vp := flow.Viewport{Width: req.Width, Height: req.Height}

	m := s.Machine()
	switch chi.URLParam(r, "action") {
	case "open":
		m.Open()
	case "continue":
		m.Continue()
	case "decline":
		m.Decline()
	case "accept":
		m.Accept(vp)
	case "music":
		m.ToggleMusic()
	case "reason-next":
		m.NextReason()
	case "reason-prev":
		m.PrevReason()
	case "resize":
		m.Resize(vp)
	case "album-open":
		if !s.Album().Open(req.Index) {
			http.Error(w, "no photo at that index", http.StatusConflict)
			return
		}
	case "album-close":
		s.Album().Close()
	case "album-prev":
		s.Album().Prev()
	case "album-next":
		s.Album().Next()
	case "key":
		s.PressKey(album.Key(req.Key))
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	s.Publish()
	writeJSON(w, http.StatusOK, s.View())
}
