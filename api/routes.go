package api

import (
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"valentine/session"
)

func RegisterRoutes(manager *session.Manager, staticFS, assetFS fs.FS) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{manager: manager}

	// Content bundle
	r.Get("/api/config", h.getConfig)
	r.Put("/api/config", h.putConfig)
	r.Delete("/api/config", h.resetConfig)

	// Sessions
	r.Get("/api/sessions", h.listSessions)
	r.Post("/api/sessions", h.createSession)
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Delete("/", h.killSession)
		r.Post("/actions/{action}", h.sessionAction)

		// Settings panel
		r.Get("/editor", h.getEditor)
		r.Post("/editor", h.openEditor)
		r.Patch("/editor", h.editDraft)
		r.Post("/editor/photos", h.uploadPhotos)
		r.Post("/editor/save", h.saveDraft)
		r.Post("/editor/cancel", h.cancelEditor)
		r.Post("/editor/reset", h.resetDraft)

		// WebSocket
		r.Get("/ws", h.handleWS)
	})

	// Static sub-FS: strip the "static/" prefix present in the embed.FS.
	// In dev mode staticFS is already rooted at the directory, so probe
	// index.html to detect that.
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		staticSub = staticFS
	} else if _, statErr := fs.Stat(staticSub, "index.html"); statErr != nil {
		staticSub = staticFS
	}

	// Serve HTML pages by reading from the FS directly.
	// Using http.FileServer with r.URL.Path ending in "index.html" triggers
	// Go's built-in redirect to "./"; avoid that by reading the file manually.
	r.Get("/", serveFile(staticSub, "index.html"))

	fileServer := http.FileServer(http.FS(staticSub))
	r.Get("/js/*", fileServer.ServeHTTP)
	r.Get("/css/*", fileServer.ServeHTTP)

	// User media: photos referenced by filename and the song.
	if assetFS != nil {
		assets := http.FileServer(http.FS(assetFS))
		r.Get("/photos/*", assets.ServeHTTP)
		r.Get("/songs/*", assets.ServeHTTP)
	}

	return r
}

// serveFile returns a handler that reads a single file from fsys and sends it.
func serveFile(fsys fs.FS, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}

type handler struct {
	manager *session.Manager
}

// errorBody is the JSON error shape for failures the client shows to the user.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// lookup resolves the {id} session or writes a 404.
func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}
