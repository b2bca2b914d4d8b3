package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"valentine/configstore"
	"valentine/content"
	"valentine/editor"
)

func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Store().Get())
}

// putConfig merges a partial bundle onto the live one. Keys left out of the
// body keep their current value.
func (h *handler) putConfig(w http.ResponseWriter, r *http.Request) {
	var p content.Partial
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.manager.Store().Save(p)
	if err != nil {
		writeSaveError(w, err)
		return
	}
	h.manager.Broadcast(saved)
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) resetConfig(w http.ResponseWriter, r *http.Request) {
	live := h.manager.Store().Reset()
	h.manager.Broadcast(live)
	writeJSON(w, http.StatusOK, live)
}

func writeSaveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, configstore.ErrStorageFull):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "storage_full", Message: editor.NoticeStorageFull})
	case errors.Is(err, content.ErrInvalidBundle):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid", Message: err.Error()})
	default:
		http.Error(w, "failed to save config", http.StatusInternalServerError)
	}
}
