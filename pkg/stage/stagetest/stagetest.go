// Package stagetest provides a manual clock and a scriptable surface for tests.
package stagetest

import (
	"errors"
	"sort"
	"sync"
	"time"

	"demo/pkg/stage"
)

// FakeClock only moves when Advance is called. Expired callbacks run on the
// goroutine calling Advance, without the clock lock held.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func NewFakeClock() *FakeClock {
	return &FakeClock{}
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) stage.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, firing due timers in deadline order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.f()
	}
}

func (c *FakeClock) nextDue(target time.Duration) *fakeTimer {
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	return due[0]
}

// Pending counts timers that are neither stopped nor fired.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (c *FakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// ErrLoad is reported by a FakeSurface for clips listed in Fail.
var ErrLoad = errors.New("fake load error")

// FakeSurface records every call. With Sink set it answers on its own: Load reports
// ready (or an error for clips in Fail), Play reports playing. Clips in Stall never
// report anything.
type FakeSurface struct {
	Index int
	Sink  func(stage.Event)
	Fail  map[string]bool
	Stall map[string]bool

	mu      sync.Mutex
	clip    string
	seq     uint64
	loop    bool
	playing bool
	visible bool
	loads   []string
	calls   []string
}

func NewFakeSurface(index int) *FakeSurface {
	return &FakeSurface{Index: index, Fail: map[string]bool{}, Stall: map[string]bool{}}
}

func (s *FakeSurface) Load(clip string, loop bool, seq uint64) {
	s.mu.Lock()
	s.clip = clip
	s.seq = seq
	s.loop = loop
	s.playing = false
	s.loads = append(s.loads, clip)
	s.calls = append(s.calls, "load:"+clip)
	sink, fail, stall := s.Sink, s.Fail[clip], s.Stall[clip]
	s.mu.Unlock()

	if sink == nil || stall {
		return
	}
	if fail {
		sink(stage.Event{Surface: s.Index, Kind: stage.EventError, Clip: clip, Seq: seq, Err: ErrLoad})
		return
	}
	sink(stage.Event{Surface: s.Index, Kind: stage.EventReady, Clip: clip, Seq: seq})
}

func (s *FakeSurface) Play() {
	s.mu.Lock()
	s.playing = true
	s.calls = append(s.calls, "play")
	sink, clip, seq := s.Sink, s.clip, s.seq
	s.mu.Unlock()

	if sink != nil {
		sink(stage.Event{Surface: s.Index, Kind: stage.EventPlaying, Clip: clip, Seq: seq})
	}
}

func (s *FakeSurface) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.calls = append(s.calls, "pause")
}

func (s *FakeSurface) SetLoop(loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = loop
	s.calls = append(s.calls, "loop")
}

func (s *FakeSurface) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
	if visible {
		s.calls = append(s.calls, "show")
	} else {
		s.calls = append(s.calls, "hide")
	}
}

// Ended builds the ended event for the loaded clip.
func (s *FakeSurface) Ended() stage.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stage.Event{Surface: s.Index, Kind: stage.EventEnded, Clip: s.clip, Seq: s.seq}
}

// Event builds an event of the given kind for the loaded clip.
func (s *FakeSurface) Event(kind stage.EventKind) stage.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return stage.Event{Surface: s.Index, Kind: kind, Clip: s.clip, Seq: s.seq}
}

func (s *FakeSurface) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *FakeSurface) Clip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip
}

func (s *FakeSurface) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

func (s *FakeSurface) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *FakeSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *FakeSurface) Loads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loads...)
}

func (s *FakeSurface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
