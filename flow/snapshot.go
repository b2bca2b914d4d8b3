package flow

// Line is one letter line that has started to show.
type Line struct {
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// Reason is the carousel's current slide. Text is empty and Count zero when
// there are no reasons.
type Reason struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
	Count int    `json:"count"`
}

// Snapshot is everything a renderer needs to draw the current screen.
type Snapshot struct {
	Step         Step     `json:"step"`
	RevealIndex  int      `json:"revealIndex"`
	Lines        []Line   `json:"lines"`
	CanContinue  bool     `json:"canContinue"`
	Decline      Position `json:"decline"`
	Overlay      bool     `json:"overlay"`
	Viewport     Viewport `json:"viewport"`
	Flipbook     Size     `json:"flipbook"`
	MusicPlaying bool     `json:"musicPlaying"`
	Reason       Reason   `json:"reason"`
}

// Visible reports whether letter line i is showing.
func (m *Machine) Visible(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleLocked(i)
}

func (m *Machine) visibleLocked(i int) bool {
	if m.step == StepLanding {
		return false
	}
	return i >= 0 && i <= m.reveal && i < len(m.bundle.LetterLines)
}

// RevealIndex returns the highest letter line index that is showing.
func (m *Machine) RevealIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reveal
}

// Snapshot captures the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Step:         m.step,
		RevealIndex:  m.reveal,
		Lines:        []Line{},
		CanContinue:  m.canContinueLocked(),
		Decline:      m.decline,
		Overlay:      m.overlay,
		Viewport:     m.viewport,
		Flipbook:     FlipbookSize(m.viewport.Width),
		MusicPlaying: m.playing,
	}
	if m.step == StepLetter {
		for i, text := range m.bundle.LetterLines {
			if i > m.reveal {
				break
			}
			s.Lines = append(s.Lines, Line{Text: text, Visible: m.visibleLocked(i)})
		}
	}
	if text, ok := m.reasons.Current(); ok {
		s.Reason = Reason{Text: text, Index: m.reasons.Index(), Count: m.reasons.Len()}
	}
	return s
}
