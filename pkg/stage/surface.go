// Package stage implements flicker-free clip switching over two playback surfaces.
//
// A Pair is not safe for concurrent use. It is driven from a single event loop: the
// owner calls Switch and Handle from that loop, and Pair schedules its own timer
// expiries back onto the loop through the post function it was built with.
package stage

import (
	"errors"
	"time"
)

// ErrPlayback wraps load and playback failures reported by a surface.
var ErrPlayback = errors.New("clip playback failed")

// Surface is one of the two playback slots.
//
// Calls never block on media. Outcomes are reported back as Events: Load ends in
// EventReady or EventError, Play ends in EventPlaying or EventError, and a non-looping
// clip that reaches its end reports EventEnded. Every event carries the seq of the
// Load it belongs to.
type Surface interface {
	// Load sets the source, the loop flag and rewinds to the start.
	Load(clip string, loop bool, seq uint64)
	Play()
	Pause()
	SetLoop(loop bool)
	SetVisible(visible bool)
}

type EventKind int

const (
	EventReady EventKind = iota
	EventPlaying
	EventEnded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventPlaying:
		return "playing"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Event is a surface callback. Surface is the index of the reporting surface in the
// pair, Clip the clip it had loaded when the event happened and Seq the seq passed to
// that Load. The same clip loaded twice gets two seqs.
type Event struct {
	Surface int
	Kind    EventKind
	Clip    string
	Seq     uint64
	Err     error
}

// Clock schedules one-shot callbacks. Callbacks run on an arbitrary goroutine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is backed by time.AfterFunc.
var RealClock Clock = realClock{}
