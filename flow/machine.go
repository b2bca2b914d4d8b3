// Package flow drives the greeting's screen sequence: landing, the timed
// letter reveal, the yes/no question and the success view.
package flow

import (
	"context"
	"log"
	"sync"
	"time"

	"valentine/content"
)

// Step is one screen of the sequence.
type Step string

const (
	StepLanding  Step = "landing"
	StepLetter   Step = "letter"
	StepQuestion Step = "question"
	StepSuccess  Step = "success"
)

const (
	FirstRevealDelay = 800 * time.Millisecond
	NextRevealDelay  = 2400 * time.Millisecond
	OverlayDuration  = 8 * time.Second

	playTimeout = 5 * time.Second
)

// DelayForStep is how long the letter waits before advancing from reveal
// index i.
func DelayForStep(i int) time.Duration {
	if i == 0 {
		return FirstRevealDelay
	}
	return NextRevealDelay
}

// Options wires a Machine to its collaborators. Zero values fall back to the
// wall clock, a silent player, a time-seeded random source and goroutines.
type Options struct {
	Scheduler Scheduler
	Player    Player
	Rand      Rand
	// Async runs best-effort side effects such as starting playback.
	Async func(func())
}

// Machine is the presentation state machine for one visitor. It is safe for
// concurrent use; timer callbacks and client actions serialize on mu.
type Machine struct {
	mu sync.Mutex

	sched  Scheduler
	player Player
	rnd    Rand
	async  func(func())

	bundle   content.Bundle
	step     Step
	reveal   int
	firings  int
	decline  Position
	overlay  bool
	viewport Viewport
	playing  bool
	reasons  *Carousel

	// gen invalidates timers armed for a state that no longer exists.
	gen          uint64
	revealTimer  Timer
	overlayTimer Timer
	closed       bool

	listeners []func()
}

// NewMachine starts a machine on the landing screen.
func NewMachine(b content.Bundle, opts Options) *Machine {
	m := &Machine{
		sched:    opts.Scheduler,
		player:   opts.Player,
		rnd:      opts.Rand,
		async:    opts.Async,
		bundle:   b.Clone(),
		step:     StepLanding,
		decline:  initialDecline,
		viewport: DefaultViewport,
		reasons:  NewCarousel(b.Reasons),
	}
	if m.sched == nil {
		m.sched = WallClock
	}
	if m.player == nil {
		m.player = silentPlayer{}
	}
	if m.rnd == nil {
		m.rnd = NewRand()
	}
	if m.async == nil {
		m.async = func(fn func()) { go fn() }
	}
	return m
}

// OnChange registers fn to run after every state change, including changes
// made by timers. fn runs without the machine lock held.
func (m *Machine) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Machine) notify() {
	m.mu.Lock()
	ls := append([]func(){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

// Step returns the current screen.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Open leaves the landing screen for the letter and starts the music.
func (m *Machine) Open() bool {
	m.mu.Lock()
	if m.closed || m.step != StepLanding {
		m.mu.Unlock()
		return false
	}
	m.step = StepLetter
	m.reveal = 0
	m.firings = 0
	m.gen++
	m.armRevealLocked()
	m.mu.Unlock()

	m.playMusic()
	m.notify()
	return true
}

// armRevealLocked schedules the next reveal step while the letter still has
// lines left to show.
func (m *Machine) armRevealLocked() {
	if m.revealTimer != nil {
		m.revealTimer.Stop()
		m.revealTimer = nil
	}
	if m.step != StepLetter || m.firings >= len(m.bundle.LetterLines) {
		return
	}
	gen := m.gen
	m.revealTimer = m.sched.AfterFunc(DelayForStep(m.firings), func() {
		m.advanceReveal(gen)
	})
}

func (m *Machine) advanceReveal(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen || m.step != StepLetter {
		m.mu.Unlock()
		return
	}
	m.revealTimer = nil
	m.firings++
	if last := len(m.bundle.LetterLines) - 1; m.reveal < last {
		m.reveal++
	}
	m.armRevealLocked()
	m.mu.Unlock()
	m.notify()
}

// CanContinue reports whether the letter has revealed its last line.
func (m *Machine) CanContinue() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canContinueLocked()
}

func (m *Machine) canContinueLocked() bool {
	return m.step == StepLetter && m.reveal >= len(m.bundle.LetterLines)-1
}

// Continue moves from the letter to the question once the reveal allows it.
func (m *Machine) Continue() bool {
	m.mu.Lock()
	if m.closed || !m.canContinueLocked() {
		m.mu.Unlock()
		return false
	}
	m.step = StepQuestion
	m.gen++
	m.stopTimersLocked(false)
	m.mu.Unlock()
	m.notify()
	return true
}

// Decline moves the decline button somewhere else. It never changes screen.
func (m *Machine) Decline() Position {
	m.mu.Lock()
	if m.closed || m.step != StepQuestion {
		pos := m.decline
		m.mu.Unlock()
		return pos
	}
	m.decline = Relocate(m.rnd, DeclineBounds)
	pos := m.decline
	m.mu.Unlock()
	m.notify()
	return pos
}

// Accept answers the question: music, celebration overlay and the success
// screen. The overlay hides itself after OverlayDuration.
func (m *Machine) Accept(vp Viewport) bool {
	m.mu.Lock()
	if m.closed || m.step != StepQuestion {
		m.mu.Unlock()
		return false
	}
	m.step = StepSuccess
	m.overlay = true
	if vp.Width > 0 && vp.Height > 0 {
		m.viewport = vp
	}
	m.gen++
	gen := m.gen
	m.overlayTimer = m.sched.AfterFunc(OverlayDuration, func() {
		m.hideOverlay(gen)
	})
	m.mu.Unlock()

	m.playMusic()
	m.notify()
	return true
}

func (m *Machine) hideOverlay(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen || !m.overlay {
		m.mu.Unlock()
		return
	}
	m.overlay = false
	m.overlayTimer = nil
	m.mu.Unlock()
	m.notify()
}

// Resize records a new viewport size.
func (m *Machine) Resize(vp Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	m.mu.Lock()
	m.viewport = vp
	m.mu.Unlock()
	m.notify()
}

// NextReason and PrevReason page the reasons carousel.
func (m *Machine) NextReason() {
	m.mu.Lock()
	m.reasons.Next()
	m.mu.Unlock()
	m.notify()
}

func (m *Machine) PrevReason() {
	m.mu.Lock()
	m.reasons.Prev()
	m.mu.Unlock()
	m.notify()
}

// playMusic starts playback unless it is already running. Failures are logged
// and leave Playing false.
func (m *Machine) playMusic() {
	m.mu.Lock()
	if m.playing || m.closed {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()
		if err := m.player.Play(ctx); err != nil {
			log.Printf("flow: playback not started: %v", err)
			return
		}
		m.SetPlaying(true)
	})
}

// ToggleMusic pauses when playing and tries to play otherwise.
func (m *Machine) ToggleMusic() {
	m.mu.Lock()
	playing := m.playing
	m.mu.Unlock()

	if playing {
		m.player.Pause()
		m.SetPlaying(false)
		return
	}
	m.playMusic()
}

// SetPlaying records the actual playback state reported by the transport.
func (m *Machine) SetPlaying(playing bool) {
	m.mu.Lock()
	if m.playing == playing {
		m.mu.Unlock()
		return
	}
	m.playing = playing
	m.mu.Unlock()
	m.notify()
}

// Playing reports whether audio is known to be playing.
func (m *Machine) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// SetContent swaps in an edited bundle without leaving the current screen.
func (m *Machine) SetContent(b content.Bundle) {
	m.mu.Lock()
	m.bundle = b.Clone()
	m.reasons.SetItems(b.Reasons)
	if n := len(m.bundle.LetterLines); m.reveal > n-1 {
		m.reveal = max(n-1, 0)
	}
	if m.firings > len(m.bundle.LetterLines) {
		m.firings = len(m.bundle.LetterLines)
	}
	if m.step == StepLetter && m.revealTimer == nil {
		m.armRevealLocked()
	}
	m.mu.Unlock()
	m.notify()
}

// Content returns a copy of the bundle the machine renders.
func (m *Machine) Content() content.Bundle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bundle.Clone()
}

// Close cancels every pending timer. A closed machine ignores all input.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.gen++
	m.stopTimersLocked(true)
}

func (m *Machine) stopTimersLocked(all bool) {
	if m.revealTimer != nil {
		m.revealTimer.Stop()
		m.revealTimer = nil
	}
	if all && m.overlayTimer != nil {
		m.overlayTimer.Stop()
		m.overlayTimer = nil
	}
}
