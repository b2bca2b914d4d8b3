// Package album tracks the photo viewer: whether it is open, which page it
// shows, and the keyboard bindings that only exist while it is open.
//
// The paging widget owns its own page pointer once mounted. The album only
// mirrors the widget's page-change notifications and requests jumps through
// Pager; it never asserts its index back onto the widget.
package album

import "sync"

// Key is a keyboard key name as reported by the client.
type Key string

const (
	KeyEscape     Key = "Escape"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
)

// Pager is the external paging widget.
type Pager interface {
	FlipPrev()
	FlipNext()
	TurnToPage(i int)
}

// KeyBus delivers key presses. The returned func removes the subscription.
type KeyBus interface {
	Subscribe(fn func(Key)) (unsubscribe func())
}

// State is the serializable view of the album.
type State struct {
	IsOpen       bool `json:"isOpen"`
	CurrentIndex int  `json:"currentIndex"`
	Count        int  `json:"count"`
}

// Album is the viewer sub-state for one visitor.
type Album struct {
	mu sync.Mutex

	count   int
	isOpen  bool
	current int
	// intent is the page requested at open time, applied when the widget
	// mounts.
	intent int

	pager   Pager
	bus     KeyBus
	unsub   func()
	onClose []func()
}

// New returns a closed album over count photos.
func New(count int, bus KeyBus) *Album {
	return &Album{count: count, bus: bus}
}

// SetCount updates the number of photos, closing the viewer if there are no
// photos left to show.
func (a *Album) SetCount(n int) {
	a.mu.Lock()
	a.count = n
	shouldClose := a.isOpen && (n == 0 || a.current >= n)
	a.mu.Unlock()
	if shouldClose {
		a.Close()
	}
}

// Open shows the viewer at photo i. It is ignored when there are no photos or
// i is out of range.
func (a *Album) Open(i int) bool {
	a.mu.Lock()
	if i < 0 || i >= a.count {
		a.mu.Unlock()
		return false
	}
	a.intent = i
	a.current = i
	a.isOpen = true
	needKeys := a.unsub == nil && a.bus != nil
	a.mu.Unlock()

	if needKeys {
		unsub := a.bus.Subscribe(a.HandleKey)
		a.mu.Lock()
		if a.isOpen && a.unsub == nil {
			a.unsub = unsub
			unsub = nil
		}
		a.mu.Unlock()
		if unsub != nil {
			unsub()
		}
	}
	return true
}

// Close hides the viewer and releases its key bindings. The widget is
// unmounted along with the viewer.
func (a *Album) Close() {
	a.mu.Lock()
	wasOpen := a.isOpen
	a.isOpen = false
	a.pager = nil
	unsub := a.unsub
	a.unsub = nil
	hooks := append([]func(){}, a.onClose...)
	a.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if wasOpen {
		for _, fn := range hooks {
			fn()
		}
	}
}

// OnClose registers fn to run whenever an open viewer closes.
func (a *Album) OnClose(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onClose = append(a.onClose, fn)
}

// Mount attaches the widget and jumps it to the page requested at open time.
func (a *Album) Mount(p Pager) {
	a.mu.Lock()
	if !a.isOpen {
		a.mu.Unlock()
		return
	}
	a.pager = p
	page := a.intent
	a.mu.Unlock()

	if page > 0 {
		p.TurnToPage(page)
	}
}

// Unmount detaches the widget. Paging becomes a no-op.
func (a *Album) Unmount() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pager = nil
}

// Prev asks the widget for the previous page. No-op without a widget.
func (a *Album) Prev() {
	if p := a.mountedPager(); p != nil {
		p.FlipPrev()
	}
}

// Next asks the widget for the next page. No-op without a widget.
func (a *Album) Next() {
	if p := a.mountedPager(); p != nil {
		p.FlipNext()
	}
}

func (a *Album) mountedPager() Pager {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pager
}

// OnFlip records the page the widget reports it is now showing.
func (a *Album) OnFlip(i int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= a.count {
		return
	}
	a.current = i
}

// HandleKey applies the viewer key bindings. Keys are ignored while closed.
func (a *Album) HandleKey(k Key) {
	a.mu.Lock()
	open := a.isOpen
	a.mu.Unlock()
	if !open {
		return
	}

	switch k {
	case KeyEscape:
		a.Close()
	case KeyArrowLeft:
		a.Prev()
	case KeyArrowRight:
		a.Next()
	}
}

// Teardown releases everything the album registered. Call it when the owning
// view goes away.
func (a *Album) Teardown() {
	a.Close()
}

// State returns the current viewer state.
func (a *Album) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{IsOpen: a.isOpen, CurrentIndex: a.current, Count: a.count}
}
