package session

import (
	"sync"
	"time"

	"valentine/album"
	"valentine/content"
	"valentine/editor"
	"valentine/flow"
)

// Session is one visitor's run through the greeting. It owns the flow
// machine, the album viewer and the settings panel, and pushes a fresh View
// to its client after every change.
type Session struct {
	ID        string
	CreatedAt time.Time

	assetBase string
	machine   *flow.Machine
	album     *album.Album
	keys      *album.Keys
	editor    *editor.Session

	latest     *latestView
	outChan    chan []byte
	kickChan   chan struct{}
	outMu      sync.Mutex
	lastActive time.Time
	connected  bool
	done       chan struct{}
	doneOnce   sync.Once
}

// Summary is a point-in-time listing entry for a session.
type Summary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Connected  bool      `json:"connected"`
}

// Summary copies the session's listing fields under the output lock.
func (s *Session) Summary() Summary {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return Summary{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
		Connected:  s.connected,
	}
}

// IsConnected reports whether a client currently receives updates.
func (s *Session) IsConnected() bool {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return s.connected
}

// latestView keeps the most recent encoded view for replay on connect.
type latestView struct {
	mu   sync.Mutex
	data []byte
}

func (l *latestView) Set(p []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = p
}

func (l *latestView) Snapshot() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.data) == 0 {
		return nil
	}
	cp := make([]byte, len(l.data))
	copy(cp, l.data)
	return cp
}

// PhotoView is a photo ready to render: a resolved URL and its caption.
type PhotoView struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// PageContent is the text and media the current screens render.
type PageContent struct {
	RecipientName      string      `json:"recipientName"`
	LandingSubtitle    string      `json:"landingSubtitle"`
	LetterIntro        string      `json:"letterIntro"`
	SuccessMainMessage string      `json:"successMainMessage"`
	ValentineMessage   string      `json:"valentineMessage"`
	FooterSignOff      string      `json:"footerSignOff"`
	SongURL            string      `json:"songUrl"`
	Photos             []PhotoView `json:"photos"`
}

// EditorView is the settings panel's visible state.
type EditorView struct {
	Open   bool   `json:"open"`
	Notice string `json:"notice,omitempty"`
}

// View is the full state pushed to the client.
type View struct {
	ID      string        `json:"id"`
	Flow    flow.Snapshot `json:"flow"`
	Album   album.State   `json:"album"`
	Editor  EditorView    `json:"editor"`
	Content PageContent   `json:"content"`
}

// View builds the current view.
func (s *Session) View() View {
	b := s.machine.Content()
	photos := make([]PhotoView, len(b.Photos))
	for i, ref := range b.Photos {
		photos[i] = PhotoView{URL: content.ResolvePhoto(s.assetBase, ref), Caption: b.Caption(i)}
	}
	return View{
		ID:     s.ID,
		Flow:   s.machine.Snapshot(),
		Album:  s.album.State(),
		Editor: EditorView{Open: s.editor.IsOpen(), Notice: s.editor.Notice()},
		Content: PageContent{
			RecipientName:      b.RecipientName,
			LandingSubtitle:    b.LandingSubtitle,
			LetterIntro:        b.LetterIntro,
			SuccessMainMessage: b.SuccessMainMessage,
			ValentineMessage:   b.ValentineMessage,
			FooterSignOff:      b.FooterSignOff,
			SongURL:            s.songURL(),
			Photos:             photos,
		},
	}
}

func (s *Session) songURL() string {
	return content.ResolveAsset(s.assetBase, s.machine.Content().SongPath)
}

// Machine, Album and Editor expose the session's sub-states.
func (s *Session) Machine() *flow.Machine  { return s.machine }
func (s *Session) Album() *album.Album     { return s.album }
func (s *Session) Editor() *editor.Session { return s.editor }

// Publish encodes the current view, records it for replay and pushes it to
// the client if one is connected.
func (s *Session) Publish() {
	v := s.View()
	data := encode(Message{Type: "state", State: &v})
	s.latest.Set(data)
	s.push(data)
}

// send pushes a widget command. It reports whether a client received it.
func (s *Session) send(c Command) bool {
	return s.push(encode(Message{Type: "command", Command: &c}))
}

func (s *Session) push(data []byte) bool {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	s.lastActive = time.Now()
	if s.outChan == nil {
		return false
	}
	select {
	case s.outChan <- data:
		return true
	default:
		return false
	}
}

// PressKey delivers a key press from the client to whatever is bound.
func (s *Session) PressKey(k album.Key) {
	s.keys.Publish(k)
	s.Publish()
}

// MountPager attaches the connected client's flipbook to the album. Paging
// requests are forwarded to it as commands.
func (s *Session) MountPager() {
	s.album.Mount(remotePager{s: s})
	s.Publish()
}

// ApplyContent swaps in a newly saved bundle.
func (s *Session) ApplyContent(b content.Bundle) {
	s.album.SetCount(len(b.Photos))
	s.machine.SetContent(b)
}

// SetClient registers a channel to receive live updates. If a previous
// client is connected it is kicked: its kick channel is closed so the
// transport can close that connection. Returns a kick channel that will be
// closed if this client is itself later displaced.
func (s *Session) SetClient(ch chan []byte) <-chan struct{} {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.kickChan != nil {
		close(s.kickChan)
	}
	kick := make(chan struct{})
	s.kickChan = kick
	s.outChan = ch
	s.connected = true
	return kick
}

// ClearClient is called when a connection ends. It only updates session
// state if ch is still the current owner. It always closes ch so the pump
// goroutine exits. The album widget lives in the client, so it is unmounted.
func (s *Session) ClearClient(ch chan []byte) {
	s.outMu.Lock()
	owned := s.outChan == ch
	if owned {
		s.outChan = nil
		s.connected = false
		s.kickChan = nil
	}
	s.outMu.Unlock()
	close(ch)
	if owned {
		s.album.Unmount()
		s.machine.SetPlaying(false)
	}
}

// LatestSnapshot returns the last published view, encoded.
func (s *Session) LatestSnapshot() []byte {
	return s.latest.Snapshot()
}

// Done returns a channel that is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// close cancels every timer and key binding the session registered.
func (s *Session) close() {
	s.doneOnce.Do(func() {
		s.machine.Close()
		s.album.Teardown()
		s.editor.Cancel()
		close(s.done)
	})
}
