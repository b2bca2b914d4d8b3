package session

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrNoClient = errors.New("no client connected")

// Command asks the connected client to drive one of its widgets.
type Command struct {
	Target string `json:"target"` // "pager" or "audio"
	Action string `json:"action"`
	Page   int    `json:"page,omitempty"`
	Src    string `json:"src,omitempty"`
}

// Message is the envelope for everything sent to the client.
type Message struct {
	Type    string   `json:"type"` // "state" or "command"
	State   *View    `json:"state,omitempty"`
	Command *Command `json:"command,omitempty"`
}

// remotePager forwards album paging requests to the client's flipbook.
type remotePager struct{ s *Session }

func (p remotePager) FlipPrev() { p.s.send(Command{Target: "pager", Action: "flipPrev"}) }
func (p remotePager) FlipNext() { p.s.send(Command{Target: "pager", Action: "flipNext"}) }
func (p remotePager) TurnToPage(i int) {
	p.s.send(Command{Target: "pager", Action: "turnToPage", Page: i})
}

// remotePlayer asks the client's audio element to play. Success only means
// the request was delivered; the client reports actual playback separately.
type remotePlayer struct{ s *Session }

func (p remotePlayer) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.s.send(Command{Target: "audio", Action: "play", Src: p.s.songURL()}) {
		return ErrNoClient
	}
	return nil
}

func (p remotePlayer) Pause() {
	p.s.send(Command{Target: "audio", Action: "pause"})
}

func encode(msg Message) []byte {
	data, _ := json.Marshal(msg)
	return data
}
