package stage

import (
	"fmt"
	"time"
)

const (
	DefaultSettleDelay  = 50 * time.Millisecond
	DefaultReadyTimeout = 5 * time.Second
)

// Outcome describes how a Switch settled.
type Outcome int

const (
	// Unchanged: the clip was already active, only the loop flag changed.
	Unchanged Outcome = iota
	Switched
	// TimedOut: the clip never became ready. Roles are unchanged and the caller
	// carries on as if the switch had happened.
	TimedOut
	Failed
	// Superseded: a newer Switch replaced this one before it completed.
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Switched:
		return "switched"
	case TimedOut:
		return "timed_out"
	case Failed:
		return "failed"
	case Superseded:
		return "superseded"
	}
	return "unknown"
}

type Result struct {
	Clip    string
	Outcome Outcome
	Err     error
}

type Options struct {
	// SettleDelay is waited between playback start and the visibility swap.
	// Zero swaps immediately.
	SettleDelay  time.Duration
	ReadyTimeout time.Duration
}

type phase int

const (
	phaseLoading phase = iota
	phaseStarting
	phaseSettling
)

type pendingSwitch struct {
	clip    string
	seq     uint64
	loop    bool
	phase   phase
	timeout Timer
	settle  Timer
	done    func(Result)
}

// Pair holds the two surfaces and their active/inactive roles.
type Pair struct {
	surfaces [2]Surface
	active   int
	current  string
	loop     bool
	// seq 每次 Load 递增，activeSeq 是当前片段那次 Load 的 seq
	seq       uint64
	activeSeq uint64

	clock   Clock
	post    func(func())
	opts    Options
	pending *pendingSwitch
}

// NewPair builds a pair whose first surface starts as the active one. post must run
// the given function on the loop that owns the pair.
func NewPair(first, second Surface, clock Clock, post func(func()), opts Options) *Pair {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	if clock == nil {
		clock = RealClock
	}
	return &Pair{
		surfaces: [2]Surface{first, second},
		clock:    clock,
		post:     post,
		opts:     opts,
	}
}

// Reset shows the active surface and hides and pauses the inactive one.
func (p *Pair) Reset() {
	p.surfaces[p.active].SetVisible(true)
	p.surfaces[p.inactive()].SetVisible(false)
	p.surfaces[p.inactive()].Pause()
}

func (p *Pair) Active() int     { return p.active }
func (p *Pair) Current() string { return p.current }
func (p *Pair) Loop() bool      { return p.loop }
func (p *Pair) Pending() bool   { return p.pending != nil }
func (p *Pair) inactive() int   { return 1 - p.active }

// IsCurrent reports whether ev comes from the load that is showing right now.
func (p *Pair) IsCurrent(ev Event) bool {
	return ev.Surface == p.active && ev.Clip == p.current && ev.Seq == p.activeSeq
}

func (p *Pair) PendingClip() string {
	if p.pending == nil {
		return ""
	}
	return p.pending.clip
}

// Switch makes clip the visible clip. done is called exactly once, either before
// Switch returns (Unchanged, or Superseded for the previous request) or later from
// the loop. done must not call Switch when the outcome is Superseded.
func (p *Pair) Switch(clip string, loop bool, done func(Result)) {
	if p.pending != nil {
		p.abandon(Superseded, nil)
	}
	if clip == p.current {
		p.loop = loop
		p.surfaces[p.active].SetLoop(loop)
		done(Result{Clip: clip, Outcome: Unchanged})
		return
	}

	p.seq++
	ps := &pendingSwitch{clip: clip, seq: p.seq, loop: loop, phase: phaseLoading, done: done}
	p.pending = ps
	p.surfaces[p.inactive()].Load(clip, loop, ps.seq)
	ps.timeout = p.clock.AfterFunc(p.opts.ReadyTimeout, func() {
		p.post(func() {
			if p.pending == ps && ps.phase != phaseSettling {
				p.abandon(TimedOut, nil)
			}
		})
	})
}

// Handle feeds a surface event into the pending switch. It reports whether the
// event belonged to the pending switch; other events are left to the caller.
// Events from an earlier Load of the same clip do not belong to it.
func (p *Pair) Handle(ev Event) bool {
	ps := p.pending
	if ps == nil || ev.Surface != p.inactive() || ev.Clip != ps.clip || ev.Seq != ps.seq {
		return false
	}

	switch ev.Kind {
	case EventReady:
		if ps.phase != phaseLoading {
			return true
		}
		ps.phase = phaseStarting
		p.surfaces[p.inactive()].Play()
	case EventPlaying:
		if ps.phase != phaseStarting {
			return true
		}
		ps.phase = phaseSettling
		ps.timeout.Stop()
		if p.opts.SettleDelay == 0 {
			p.commit(ps)
			return true
		}
		ps.settle = p.clock.AfterFunc(p.opts.SettleDelay, func() {
			p.post(func() {
				if p.pending == ps {
					p.commit(ps)
				}
			})
		})
	case EventError:
		p.abandon(Failed, fmt.Errorf("%w: %s: %v", ErrPlayback, ps.clip, ev.Err))
	case EventEnded:
		// 切换还没完成，忽略
		return true
	}
	return true
}

func (p *Pair) commit(ps *pendingSwitch) {
	next := p.inactive()
	p.surfaces[next].SetVisible(true)
	p.surfaces[p.active].SetVisible(false)
	prev := p.active
	p.active = next
	p.surfaces[prev].Pause()

	p.current = ps.clip
	p.activeSeq = ps.seq
	p.loop = ps.loop
	p.pending = nil
	ps.done(Result{Clip: ps.clip, Outcome: Switched})
}

func (p *Pair) abandon(outcome Outcome, err error) {
	ps := p.pending
	p.pending = nil
	if ps.timeout != nil {
		ps.timeout.Stop()
	}
	if ps.settle != nil {
		ps.settle.Stop()
	}
	p.surfaces[p.inactive()].Pause()
	ps.done(Result{Clip: ps.clip, Outcome: outcome, Err: err})
}
