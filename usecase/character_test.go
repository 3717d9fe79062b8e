package usecase

import (
	"context"
	"testing"
	"time"

	"demo/config"
	"demo/domain"
	"demo/pkg/log"
	"demo/pkg/stage/stagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClips() domain.ClipTable {
	return domain.ClipTable{
		domain.ModeArmor: {
			domain.PurposeIdle:       "armor/idle",
			domain.PurposeSpeaking:   "armor/speaking",
			domain.PurposeGesture1:   "armor/g1",
			domain.PurposeGesture2:   "armor/g2",
			domain.PurposeTransition: "armor/castoff",
		},
		domain.ModeNormal: {
			domain.PurposeIdle:       "normal/idle",
			domain.PurposeSpeaking:   "normal/speaking",
			domain.PurposeGesture1:   "normal/g1",
			domain.PurposeGesture2:   "normal/g2",
			domain.PurposeTransition: "normal/change",
		},
	}
}

func testCharacterConfig(initial string) *config.Config {
	return &config.Config{Character: config.CharacterConfig{
		InitialMode:       initial,
		SettleDelay:       0,
		ReadyTimeout:      5 * time.Second,
		TransitionTimeout: 30 * time.Second,
		GestureTier1:      3 * time.Second,
		GestureTier2:      6 * time.Second,
	}}
}

type characterFixture struct {
	c     *Character
	clock *stagetest.FakeClock
	s     [2]*stagetest.FakeSurface
}

// newCharacterFixture 启动控制器，surface 自动回报 ready/playing。setup 在 Run 之前执行
func newCharacterFixture(t *testing.T, initial string, setup func(s [2]*stagetest.FakeSurface)) *characterFixture {
	t.Helper()
	f := &characterFixture{clock: stagetest.NewFakeClock()}
	f.s[0] = stagetest.NewFakeSurface(0)
	f.s[1] = stagetest.NewFakeSurface(1)
	if setup != nil {
		setup(f.s)
	}
	f.c = NewCharacter(log.NewDiscard(), testCharacterConfig(initial), testClips(), f.s[0], f.s[1], f.clock)
	f.s[0].Sink = f.c.Deliver
	f.s[1].Sink = f.c.Deliver

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = f.c.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return f
}

func waitOp(t *testing.T, op *Op) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, op.Wait(ctx))
}

func (f *characterFixture) eventually(t *testing.T, cond func(s CharacterSnapshot) bool) CharacterSnapshot {
	t.Helper()
	var last CharacterSnapshot
	require.Eventually(t, func() bool {
		last = f.c.Snapshot()
		return cond(last)
	}, 2*time.Second, 5*time.Millisecond)
	return last
}

// endActive 当前可见的片段播完
func (f *characterFixture) endActive() {
	snap := f.c.Snapshot()
	f.c.Deliver(f.s[snap.Active].Ended())
}

func (f *characterFixture) loaded(clip string) bool {
	for _, s := range f.s {
		for _, l := range s.Loads() {
			if l == clip {
				return true
			}
		}
	}
	return false
}

func TestCharacter_SpeakingInArmor(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())

	snap := f.c.Snapshot()
	assert.Equal(t, domain.ModeArmor, snap.Mode)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, "armor/idle", snap.Clip)
	assert.True(t, snap.Loop)
	assert.Equal(t, 2, snap.IdleArmed)

	waitOp(t, f.c.StartSpeaking())
	snap = f.c.Snapshot()
	assert.Equal(t, domain.StateSpeaking, snap.State)
	assert.Equal(t, "armor/speaking", snap.Clip)
	assert.True(t, snap.Loop)
	assert.Zero(t, snap.IdleArmed, "idle timers are disarmed while speaking")

	waitOp(t, f.c.StopSpeaking())
	snap = f.c.Snapshot()
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, "armor/idle", snap.Clip)
	assert.Equal(t, 2, snap.IdleArmed)
	assert.True(t, f.s[snap.Active].Visible())
	assert.False(t, f.s[1-snap.Active].Visible())
}

func TestCharacter_StartSpeakingTwiceIsNoop(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())
	waitOp(t, f.c.StartSpeaking())
	loads := len(f.s[0].Loads()) + len(f.s[1].Loads())

	waitOp(t, f.c.StartSpeaking())
	assert.Equal(t, loads, len(f.s[0].Loads())+len(f.s[1].Loads()))
	assert.Equal(t, domain.StateSpeaking, f.c.Snapshot().State)
}

func TestCharacter_TransitionCommitsOnEnded(t *testing.T) {
	f := newCharacterFixture(t, "normal", nil)
	waitOp(t, f.c.PlayIdle())
	require.Equal(t, "normal/idle", f.c.Snapshot().Clip)

	op := f.c.PlayTransition()
	snap := f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "normal/change" && !s.Pending })
	assert.Equal(t, domain.StateTransition, snap.State)
	assert.Equal(t, domain.ModeNormal, snap.Mode, "mode flips only when the transition finishes")
	assert.False(t, snap.Loop)

	f.endActive()
	waitOp(t, op)
	assert.Equal(t, domain.ModeArmor, op.Mode())

	snap = f.c.Snapshot()
	assert.Equal(t, domain.ModeArmor, snap.Mode)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, "armor/idle", snap.Clip)
	assert.Equal(t, 2, snap.IdleArmed)
}

func TestCharacter_TransitionCommitsOnTimeout(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())

	op := f.c.PlayTransition()
	f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/castoff" && !s.Pending })

	f.clock.Advance(29 * time.Second)
	snap := f.c.Snapshot()
	assert.Equal(t, domain.ModeArmor, snap.Mode)
	assert.Equal(t, domain.StateTransition, snap.State)

	f.clock.Advance(time.Second)
	waitOp(t, op)
	assert.Equal(t, domain.ModeNormal, op.Mode())

	snap = f.c.Snapshot()
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, "normal/idle", snap.Clip)
}

func TestCharacter_EndedAfterTimeoutDoesNotFlipAgain(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())
	op := f.c.PlayTransition()
	f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/castoff" && !s.Pending })
	late := f.s[f.c.Snapshot().Active].Ended()

	f.clock.Advance(30 * time.Second)
	waitOp(t, op)

	f.c.Deliver(late)
	snap := f.c.Snapshot()
	assert.Equal(t, domain.ModeNormal, snap.Mode)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, "normal/idle", snap.Clip)
}

func TestCharacter_TransitionClipFailureCommitsImmediately(t *testing.T) {
	f := newCharacterFixture(t, "armor", func(s [2]*stagetest.FakeSurface) {
		s[0].Fail["armor/castoff"] = true
		s[1].Fail["armor/castoff"] = true
	})
	waitOp(t, f.c.PlayIdle())

	op := f.c.PlayTransition()
	waitOp(t, op)
	assert.Equal(t, domain.ModeNormal, op.Mode())

	snap := f.c.Snapshot()
	assert.Equal(t, domain.ModeNormal, snap.Mode)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, "normal/idle", snap.Clip)
	assert.Equal(t, time.Duration(0), f.clock.Now(), "no need to wait for the transition timeout")
}

func TestCharacter_SecondTransitionIsRejected(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())

	first := f.c.PlayTransition()
	second := f.c.PlayTransition()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, second.Wait(ctx), ErrTransitionInProgress)
	assert.ErrorIs(t, f.c.SetMode(domain.ModeNormal).Wait(ctx), ErrTransitionInProgress)

	f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/castoff" && !s.Pending })
	f.endActive()
	waitOp(t, first)
	assert.Equal(t, domain.ModeNormal, first.Mode())
}

func TestCharacter_SpeakingDuringTransitionIsDeferred(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())

	op := f.c.PlayTransition()
	waitOp(t, f.c.StartSpeaking())
	snap := f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/castoff" && !s.Pending })
	assert.Equal(t, domain.StateTransition, snap.State)

	f.endActive()
	waitOp(t, op)
	snap = f.c.Snapshot()
	assert.Equal(t, domain.ModeNormal, snap.Mode)
	assert.Equal(t, domain.StateSpeaking, snap.State)
	assert.Equal(t, "normal/speaking", snap.Clip)
	assert.False(t, f.loaded("armor/speaking"))

	waitOp(t, f.c.StopSpeaking())
	assert.Equal(t, "normal/idle", f.c.Snapshot().Clip)
}

func TestCharacter_TransitionWhileSpeakingResumesSpeaking(t *testing.T) {
	f := newCharacterFixture(t, "normal", nil)
	waitOp(t, f.c.PlayIdle())
	waitOp(t, f.c.StartSpeaking())

	op := f.c.PlayTransition()
	f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "normal/change" && !s.Pending })
	waitOp(t, f.c.StopSpeaking())

	f.endActive()
	waitOp(t, op)
	snap := f.c.Snapshot()
	assert.Equal(t, domain.ModeArmor, snap.Mode)
	assert.Equal(t, domain.StateIdle, snap.State, "stop during the transition wins")
	assert.Equal(t, "armor/idle", snap.Clip)
}

func TestCharacter_GestureTiers(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())

	f.clock.Advance(3 * time.Second)
	snap := f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/g1" })
	assert.Equal(t, domain.StateAction, snap.State)
	assert.False(t, snap.Loop)

	f.clock.Advance(3 * time.Second)
	snap = f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/g2" })
	assert.Equal(t, domain.StateAction, snap.State)

	f.endActive()
	snap = f.eventually(t, func(s CharacterSnapshot) bool { return s.State == domain.StateIdle && s.IdleArmed == 2 })
	assert.Equal(t, "armor/idle", snap.Clip)
	assert.True(t, snap.Loop)
}

func TestCharacter_GestureEndedReturnsToIdle(t *testing.T) {
	f := newCharacterFixture(t, "normal", nil)
	waitOp(t, f.c.PlayIdle())

	f.clock.Advance(3 * time.Second)
	f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "normal/g1" })

	f.endActive()
	snap := f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "normal/idle" })
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, 2, snap.IdleArmed, "timers re-arm for the next idle period")
	assert.False(t, f.loaded("normal/g2"))
}

func TestCharacter_NoGestureWhileSpeaking(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())
	waitOp(t, f.c.StartSpeaking())

	f.clock.Advance(10 * time.Second)
	snap := f.c.Snapshot()
	assert.Equal(t, domain.StateSpeaking, snap.State)
	assert.Equal(t, "armor/speaking", snap.Clip)
	assert.False(t, f.loaded("armor/g1"))
	assert.False(t, f.loaded("armor/g2"))
}

// fireOnLoop 在事件循环上用当前代触发一档手势，等同于定时器恰好在取消之前到期
func (f *characterFixture) fireOnLoop(t *testing.T, tier int) {
	t.Helper()
	done := make(chan struct{})
	require.True(t, f.c.post(func() {
		f.c.fireTier(f.c.tierGen, tier)
		close(done)
	}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not run")
	}
}

func TestCharacter_TierExpiryWhileIdlePlaysGesture(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())

	f.fireOnLoop(t, 0)
	snap := f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/g1" })
	assert.Equal(t, domain.StateAction, snap.State)
}

func TestCharacter_TierExpirySuppressedWhileSpeakingOrTransitioning(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())
	waitOp(t, f.c.StartSpeaking())

	f.fireOnLoop(t, 0)
	snap := f.c.Snapshot()
	assert.Equal(t, domain.StateSpeaking, snap.State)
	assert.Equal(t, "armor/speaking", snap.Clip)
	assert.False(t, f.loaded("armor/g1"))

	waitOp(t, f.c.StopSpeaking())
	f.c.PlayTransition()
	f.eventually(t, func(s CharacterSnapshot) bool { return s.Clip == "armor/castoff" && !s.Pending })

	f.fireOnLoop(t, 1)
	snap = f.c.Snapshot()
	assert.Equal(t, domain.StateTransition, snap.State)
	assert.Equal(t, "armor/castoff", snap.Clip)
	assert.False(t, f.loaded("armor/g2"))
}

func TestCharacter_StalledGestureFallsBackToIdle(t *testing.T) {
	f := newCharacterFixture(t, "armor", func(s [2]*stagetest.FakeSurface) {
		s[0].Stall["armor/g1"] = true
		s[1].Stall["armor/g1"] = true
	})
	waitOp(t, f.c.PlayIdle())

	f.clock.Advance(3 * time.Second)
	f.eventually(t, func(s CharacterSnapshot) bool { return s.State == domain.StateAction && s.Pending })

	// tier 2 fires at 6s while the gesture is still loading, the ready timeout at 8s
	f.clock.Advance(5 * time.Second)
	snap := f.eventually(t, func(s CharacterSnapshot) bool { return s.State == domain.StateIdle && s.IdleArmed == 2 })
	assert.Equal(t, "armor/idle", snap.Clip)
	assert.False(t, snap.Pending)
	assert.False(t, f.loaded("armor/g2"))
}

func TestCharacter_SetModeSwitchesIdleClip(t *testing.T) {
	f := newCharacterFixture(t, "armor", nil)
	waitOp(t, f.c.PlayIdle())

	op := f.c.SetMode(domain.ModeNormal)
	waitOp(t, op)
	assert.Equal(t, domain.ModeNormal, op.Mode())
	assert.Equal(t, "normal/idle", f.c.Snapshot().Clip)
	assert.False(t, f.loaded("armor/castoff"))
}

func TestCharacter_OpsAfterStopReturnErrStopped(t *testing.T) {
	clock := stagetest.NewFakeClock()
	c := NewCharacter(log.NewDiscard(), testCharacterConfig("armor"), testClips(),
		stagetest.NewFakeSurface(0), stagetest.NewFakeSurface(1), clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, c.Run(ctx), context.Canceled)

	assert.ErrorIs(t, c.StartSpeaking().Wait(context.Background()), ErrStopped)
	assert.Equal(t, CharacterSnapshot{}, c.Snapshot())
}

func TestCharacter_OnChangeReportsModeFlip(t *testing.T) {
	clock := stagetest.NewFakeClock()
	s0, s1 := stagetest.NewFakeSurface(0), stagetest.NewFakeSurface(1)
	c := NewCharacter(log.NewDiscard(), testCharacterConfig("armor"), testClips(), s0, s1, clock)
	s0.Sink, s1.Sink = c.Deliver, c.Deliver

	changes := make(chan CharacterSnapshot, 64)
	c.OnChange(func(s CharacterSnapshot) {
		select {
		case changes <- s:
		default:
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	waitOp(t, c.SetMode(domain.ModeNormal))

	var sawNormal bool
	for len(changes) > 0 {
		if (<-changes).Mode == domain.ModeNormal {
			sawNormal = true
		}
	}
	assert.True(t, sawNormal)
}
