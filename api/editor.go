package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"valentine/content"
	"valentine/editor"
	"valentine/imageingest"
)

const maxUploadMemory = 32 << 20

// maxUploadBytes caps the whole multipart body of a photo upload.
var maxUploadBytes int64 = 64 << 20

// editorView is the settings panel as the client renders it.
type editorView struct {
	Open   bool                `json:"open"`
	Notice string              `json:"notice,omitempty"`
	Draft  *content.Bundle     `json:"draft,omitempty"`
	Photos []editor.PhotoEntry `json:"photos,omitempty"`
}

func viewEditor(ed *editor.Session) editorView {
	v := editorView{Open: ed.IsOpen(), Notice: ed.Notice()}
	if d, err := ed.Draft(); err == nil {
		v.Draft = &d
	}
	if photos, err := ed.PhotoEntries(); err == nil {
		v.Photos = photos
	}
	return v
}

func (h *handler) getEditor(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewEditor(s.Editor()))
}

func (h *handler) openEditor(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.Editor().Open()
	s.Publish()
	writeJSON(w, http.StatusOK, viewEditor(s.Editor()))
}

// editRequest is one draft edit.
//
//	{"op":"set","field":"recipientName","value":"Sam"}
//	{"op":"setItem","field":"reasons","index":1,"value":"..."}
//	{"op":"append","field":"letterLines","value":""}
//	{"op":"remove","field":"reasons","index":3}
//	{"op":"appendPhoto","value":"beach.jpeg"}
//	{"op":"removePhoto","index":3}
type editRequest struct {
	Op    string `json:"op"`
	Field string `json:"field"`
	Index int    `json:"index"`
	Value string `json:"value"`
}

func (h *handler) editDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ed := s.Editor()
	var err error
	switch req.Op {
	case "set":
		err = ed.SetField(req.Field, req.Value)
	case "setItem":
		err = ed.SetItem(req.Field, req.Index, req.Value)
	case "append":
		err = ed.AppendItem(req.Field, req.Value)
	case "remove":
		err = ed.RemoveItem(req.Field, req.Index)
	case "appendPhoto":
		err = ed.AppendPhoto(req.Value)
	case "removePhoto":
		err = ed.RemovePhoto(req.Index)
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeEditError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewEditor(ed))
}

// uploadPhotos ingests a multipart selection ("files" fields) into the draft.
func (h *handler) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if r.ContentLength > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "upload_too_large", Message: editor.NoticeUploadFailed})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "upload_too_large", Message: editor.NoticeUploadFailed})
			return
		}
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	var files []imageingest.File
	for _, fh := range r.MultipartForm.File["files"] {
		files = append(files, imageingest.FromMultipart(fh))
	}

	batch, err := s.Editor().AddPhotos(r.Context(), files)
	s.Publish()
	if err != nil {
		if errors.Is(err, imageingest.ErrNothingIngested) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "upload_failed", Message: editor.NoticeUploadFailed})
			return
		}
		writeEditError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		editorView
		Added   int `json:"added"`
		Skipped int `json:"skipped"`
		Failed  int `json:"failed"`
	}{viewEditor(s.Editor()), len(batch.Photos), batch.Skipped, len(batch.Failed)})
}

func (h *handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	saved, err := s.Editor().Save()
	if err != nil {
		s.Publish()
		if errors.Is(err, editor.ErrNotOpen) {
			writeEditError(w, err)
			return
		}
		writeSaveError(w, err)
		return
	}
	h.manager.Broadcast(saved)
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) cancelEditor(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.Editor().Cancel()
	s.Publish()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) resetDraft(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req struct {
		Confirm bool `json:"confirm"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	live, err := s.Editor().Reset(req.Confirm)
	if err != nil {
		writeEditError(w, err)
		return
	}
	h.manager.Broadcast(live)
	writeJSON(w, http.StatusOK, viewEditor(s.Editor()))
}

func writeEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrNotOpen):
		http.Error(w, "settings panel is not open", http.StatusConflict)
	case errors.Is(err, editor.ErrDraftReplaced):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, editor.ErrNotConfirmed):
		http.Error(w, "reset requires confirmation", http.StatusPreconditionRequired)
	case errors.Is(err, editor.ErrUnknownField), errors.Is(err, editor.ErrIndexOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "failed to edit settings", http.StatusInternalServerError)
	}
}
