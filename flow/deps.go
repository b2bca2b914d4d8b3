package flow

import (
	"context"
	"math/rand"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler arms callbacks after a delay. Tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Player is the audio transport. Play may fail, for example when the client
// has not interacted with the page yet; callers treat that as best-effort.
type Player interface {
	Play(ctx context.Context) error
	Pause()
}

// Rand is the random source used for decorative behaviour.
type Rand interface {
	Float64() float64
}

type wallClock struct{}

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// WallClock schedules callbacks with time.AfterFunc.
var WallClock Scheduler = wallClock{}

// NewRand returns a Rand seeded from the current time.
func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

type silentPlayer struct{}

func (silentPlayer) Play(context.Context) error { return nil }
func (silentPlayer) Pause()                     {}
