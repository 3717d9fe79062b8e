package usecase

import (
	"context"
	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"demo/pkg/metrics"
	"demo/pkg/stage"
	"errors"
	"time"
)

var (
	ErrTransitionInProgress = errors.New("mode transition in progress")
	ErrStopped              = errors.New("character controller stopped")
)

// Op 一次控制操作的结果，只会结束一次
type Op struct {
	done   chan struct{}
	closed <-chan struct{}
	mode   domain.Mode
	err    error
}

func (o *Op) resolve(mode domain.Mode, err error) {
	select {
	case <-o.done:
		return
	default:
	}
	o.mode = mode
	o.err = err
	close(o.done)
}

func (o *Op) Done() <-chan struct{} {
	return o.done
}

// Mode 操作结束时的模式，Done 之后有效
func (o *Op) Mode() domain.Mode {
	return o.mode
}

// Wait 等待操作结束；控制器先停止时返回 ErrStopped
func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-o.closed:
		select {
		case <-o.done:
			return o.err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CharacterSnapshot 控制器当前状态
type CharacterSnapshot struct {
	Mode      domain.Mode  `json:"mode"`
	State     domain.State `json:"state"`
	Clip      string       `json:"clip"`
	Loop      bool         `json:"loop"`
	Active    int          `json:"active"`
	Speaking  bool         `json:"speaking"`
	Pending   bool         `json:"pending"`
	IdleArmed int          `json:"idle_armed"`
}

type transitionOp struct {
	target   domain.Mode
	op       *Op
	awaiting bool
	timer    stage.Timer
}

// Character 角色视频控制器。所有状态只在 Run 的循环里修改
type Character struct {
	logger            *log.Logger
	clips             domain.ClipTable
	clock             stage.Clock
	stage             *stage.Pair
	tiers             [2]time.Duration
	transitionTimeout time.Duration

	events chan func()
	closed chan struct{}

	mode           domain.Mode
	state          domain.State
	speaking       bool
	resumeSpeaking bool // 过渡结束后回到说话
	epoch          uint64
	tierGen        uint64
	tierTimers     [2]stage.Timer
	transition     *transitionOp
	onChange       func(CharacterSnapshot)
}

func NewCharacter(l *log.Logger, c *config.Config, clips domain.ClipTable, first, second stage.Surface, clock stage.Clock) *Character {
	if clock == nil {
		clock = stage.RealClock
	}
	mode, err := domain.ParseMode(c.Character.InitialMode)
	if err != nil {
		mode = domain.ModeArmor
	}
	ch := &Character{
		logger:            l.WithModule("Character"),
		clips:             clips,
		clock:             clock,
		tiers:             [2]time.Duration{c.Character.GestureTier1, c.Character.GestureTier2},
		transitionTimeout: c.Character.TransitionTimeout,
		events:            make(chan func(), 128),
		closed:            make(chan struct{}),
		mode:              mode,
		state:             domain.StateIdle,
	}
	ch.stage = stage.NewPair(first, second, clock, func(fn func()) { ch.post(fn) }, stage.Options{
		SettleDelay:  c.Character.SettleDelay,
		ReadyTimeout: c.Character.ReadyTimeout,
	})
	return ch
}

// OnChange 模式、状态或片段变化时回调，在控制循环里执行，Run 之前设置
func (c *Character) OnChange(fn func(CharacterSnapshot)) {
	c.onChange = fn
}

// Run 控制循环，ctx 结束时返回
func (c *Character) Run(ctx context.Context) error {
	defer close(c.closed)
	c.stage.Reset()
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case fn := <-c.events:
			fn()
		}
	}
}

func (c *Character) post(fn func()) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.events <- fn:
		return true
	case <-c.closed:
		return false
	}
}

func (c *Character) submit(fn func(op *Op)) *Op {
	op := &Op{done: make(chan struct{}), closed: c.closed}
	if !c.post(func() { fn(op) }) {
		op.resolve(0, ErrStopped)
	}
	return op
}

// Deliver 把 surface 事件放进控制循环
func (c *Character) Deliver(ev stage.Event) {
	c.post(func() { c.handleEvent(ev) })
}

func (c *Character) StartSpeaking() *Op { return c.submit(c.startSpeaking) }

func (c *Character) StopSpeaking() *Op { return c.submit(c.stopSpeaking) }

// PlayTransition 切换到另一个模式，结束时 Op.Mode 为新模式
func (c *Character) PlayTransition() *Op { return c.submit(c.playTransition) }

// SetMode 直接设置模式（不播放过渡片段）
func (c *Character) SetMode(m domain.Mode) *Op {
	return c.submit(func(op *Op) { c.setMode(op, m) })
}

// PlayIdle 重新播放待机片段；说话或过渡中不做任何事
func (c *Character) PlayIdle() *Op {
	return c.submit(func(op *Op) {
		if c.state == domain.StateTransition || c.speaking {
			op.resolve(c.mode, nil)
			return
		}
		c.playIdle(func(err error) { op.resolve(c.mode, err) })
	})
}

func (c *Character) Snapshot() CharacterSnapshot {
	ch := make(chan CharacterSnapshot, 1)
	if !c.post(func() { ch <- c.snapshot() }) {
		return CharacterSnapshot{}
	}
	select {
	case s := <-ch:
		return s
	case <-c.closed:
		select {
		case s := <-ch:
			return s
		default:
			return CharacterSnapshot{}
		}
	}
}

func (c *Character) snapshot() CharacterSnapshot {
	armed := 0
	for _, t := range c.tierTimers {
		if t != nil {
			armed++
		}
	}
	return CharacterSnapshot{
		Mode:      c.mode,
		State:     c.state,
		Clip:      c.stage.Current(),
		Loop:      c.stage.Loop(),
		Active:    c.stage.Active(),
		Speaking:  c.speaking,
		Pending:   c.stage.Pending(),
		IdleArmed: armed,
	}
}

func (c *Character) notify() {
	if c.onChange != nil {
		c.onChange(c.snapshot())
	}
}

func (c *Character) setState(s domain.State) {
	if c.state == s {
		return
	}
	c.logger.Debug("state changed", log.String("from", c.state.String()), log.String("to", s.String()))
	c.state = s
	c.notify()
}

// bump 开始新的活动，旧活动的延迟回调据此失效
func (c *Character) bump() uint64 {
	c.epoch++
	return c.epoch
}

func (c *Character) switchTo(p domain.Purpose, loop bool, done func(stage.Result)) {
	clip := c.clips.Clip(c.mode, p)
	c.stage.Switch(clip, loop, func(res stage.Result) {
		metrics.ClipSwitches.WithLabelValues(res.Outcome.String()).Inc()
		switch res.Outcome {
		case stage.Failed:
			c.logger.Error("clip switch failed", log.String("clip", clip), log.Error(res.Err))
		case stage.TimedOut:
			c.logger.Warn("clip not ready in time", log.String("clip", clip))
		default:
			c.logger.Debug("clip switch settled", log.String("clip", clip), log.String("outcome", res.Outcome.String()))
		}
		c.notify()
		done(res)
	})
}

func (c *Character) handleEvent(ev stage.Event) {
	if c.stage.Handle(ev) {
		return
	}
	if !c.stage.IsCurrent(ev) {
		return
	}
	switch ev.Kind {
	case stage.EventEnded:
		c.activeFinished("ended")
	case stage.EventError:
		c.logger.Error("active clip playback error", log.String("clip", ev.Clip), log.Any("cause", ev.Err))
		c.activeFinished("error")
	}
}

// activeFinished 当前片段播完或出错
func (c *Character) activeFinished(reason string) {
	switch c.state {
	case domain.StateAction:
		c.playIdle(nil)
	case domain.StateTransition:
		if tr := c.transition; tr != nil && tr.awaiting {
			c.commitTransition(tr, reason, true)
		}
	}
}

func (c *Character) playIdle(done func(error)) {
	c.setState(domain.StateIdle)
	c.cancelIdle()
	epoch := c.bump()
	c.switchTo(domain.PurposeIdle, true, func(res stage.Result) {
		if res.Outcome != stage.Superseded && epoch == c.epoch && c.state == domain.StateIdle {
			c.armIdle()
		}
		if done != nil {
			done(res.Err)
		}
	})
}

func (c *Character) speak(done func(error)) {
	c.speaking = true
	c.setState(domain.StateSpeaking)
	c.cancelIdle()
	c.bump()
	c.switchTo(domain.PurposeSpeaking, true, func(res stage.Result) {
		done(res.Err)
	})
}

func (c *Character) startSpeaking(op *Op) {
	if c.state == domain.StateTransition {
		c.resumeSpeaking = true
		op.resolve(c.mode, nil)
		return
	}
	if c.speaking {
		op.resolve(c.mode, nil)
		return
	}
	c.speak(func(err error) { op.resolve(c.mode, err) })
}

func (c *Character) stopSpeaking(op *Op) {
	if c.state == domain.StateTransition {
		c.resumeSpeaking = false
		op.resolve(c.mode, nil)
		return
	}
	if !c.speaking {
		op.resolve(c.mode, nil)
		return
	}
	c.speaking = false
	c.playIdle(func(err error) { op.resolve(c.mode, err) })
}

func (c *Character) setMode(op *Op, m domain.Mode) {
	if c.state == domain.StateTransition {
		op.resolve(c.mode, ErrTransitionInProgress)
		return
	}
	if c.mode != m {
		c.mode = m
		c.notify()
	}
	done := func(err error) { op.resolve(c.mode, err) }
	if c.speaking {
		c.speak(done)
		return
	}
	c.playIdle(done)
}

func (c *Character) armIdle() {
	c.cancelIdle()
	gen := c.tierGen
	for i, d := range c.tiers {
		c.tierTimers[i] = c.clock.AfterFunc(d, func() {
			c.post(func() { c.fireTier(gen, i) })
		})
	}
}

func (c *Character) cancelIdle() {
	c.tierGen++
	for i, t := range c.tierTimers {
		if t != nil {
			t.Stop()
			c.tierTimers[i] = nil
		}
	}
}

func (c *Character) fireTier(gen uint64, tier int) {
	if gen != c.tierGen {
		return
	}
	c.tierTimers[tier] = nil
	if c.state == domain.StateSpeaking || c.state == domain.StateTransition || c.speaking {
		c.logger.Debug("gesture suppressed", log.Int("tier", tier+1), log.String("state", c.state.String()))
		return
	}
	if c.stage.Pending() {
		c.logger.Debug("gesture suppressed, switch pending", log.Int("tier", tier+1))
		return
	}

	purpose := domain.PurposeGesture1
	if tier == 1 {
		purpose = domain.PurposeGesture2
	}
	c.setState(domain.StateAction)
	epoch := c.bump()
	c.switchTo(purpose, false, func(res stage.Result) {
		if res.Outcome == stage.Superseded || epoch != c.epoch {
			return
		}
		if res.Outcome == stage.Failed || res.Outcome == stage.TimedOut {
			c.playIdle(nil)
		}
	})
}

func (c *Character) playTransition(op *Op) {
	if c.state == domain.StateTransition {
		op.resolve(c.mode, ErrTransitionInProgress)
		return
	}
	tr := &transitionOp{target: c.mode.Opposite(), op: op}
	c.transition = tr
	c.resumeSpeaking = c.speaking
	c.speaking = false
	c.setState(domain.StateTransition)
	c.cancelIdle()
	c.bump()
	c.logger.Info("transition started", log.String("from", c.mode.String()), log.String("to", tr.target.String()))

	c.switchTo(domain.PurposeTransition, false, func(res stage.Result) {
		if c.transition != tr {
			return
		}
		switch res.Outcome {
		case stage.Failed:
			c.commitTransition(tr, "clip failed", true)
			return
		case stage.Superseded:
			c.commitTransition(tr, "superseded", false)
			return
		}
		tr.awaiting = true
		tr.timer = c.clock.AfterFunc(c.transitionTimeout, func() {
			c.post(func() {
				if c.transition == tr {
					c.commitTransition(tr, "timeout", true)
				}
			})
		})
	})
}

// commitTransition 翻转模式；ended 和超时只有先到的一个会走到这里
func (c *Character) commitTransition(tr *transitionOp, reason string, resume bool) {
	c.transition = nil
	if tr.timer != nil {
		tr.timer.Stop()
	}
	c.mode = tr.target
	metrics.Transitions.WithLabelValues(c.mode.String(), reason).Inc()
	c.logger.Info("transition committed", log.String("mode", c.mode.String()), log.String("reason", reason))
	c.notify()

	finish := func(error) { tr.op.resolve(c.mode, nil) }
	switch {
	case !resume:
		c.resumeSpeaking = false
		c.setState(domain.StateIdle)
		finish(nil)
	case c.resumeSpeaking:
		c.resumeSpeaking = false
		c.speak(finish)
	default:
		c.playIdle(finish)
	}
}

func (c *Character) shutdown() {
	c.cancelIdle()
	if tr := c.transition; tr != nil {
		c.transition = nil
		if tr.timer != nil {
			tr.timer.Stop()
		}
		tr.op.resolve(c.mode, ErrStopped)
	}
}
