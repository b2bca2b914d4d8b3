package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"valentine/album"
	"valentine/flow"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is a report from the client: a key press, a widget event or a
// change in the browser's state.
type wsMessage struct {
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Page    int    `json:"page,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Playing bool   `json:"playing,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	write := func(data []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	outChan := make(chan []byte, 256)
	kick := s.SetClient(outChan)
	defer s.ClearClient(outChan)

	// Replay the last view so a reconnecting client resumes where it was.
	if snap := s.LatestSnapshot(); len(snap) > 0 {
		if err := write(snap); err != nil {
			log.Printf("WS replay error: %v", err)
			return
		}
	}

	// Exits when ClearClient closes outChan.
	go func() {
		for data := range outChan {
			if err := write(data); err != nil {
				return
			}
		}
	}()

	connDone := make(chan struct{})
	go func() {
		select {
		case <-s.Done():
			write([]byte(`{"type":"closed"}`)) //nolint:errcheck
			conn.Close()
		case <-kick:
			// Displaced by a newer connection; no "closed" message so the
			// client shows the disconnected overlay.
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "key":
			s.PressKey(album.Key(msg.Key))
		case "mounted":
			s.MountPager()
		case "unmounted":
			s.Album().Unmount()
		case "flip":
			s.Album().OnFlip(msg.Page)
			s.Publish()
		case "resize":
			if msg.Width > 0 && msg.Height > 0 {
				s.Machine().Resize(flow.Viewport{Width: msg.Width, Height: msg.Height})
			}
		case "playback":
			s.Machine().SetPlaying(msg.Playing)
		default:
			log.Printf("WS unknown message type %q from session %s", msg.Type, s.ID)
		}
	}
}
