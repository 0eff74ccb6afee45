package preview

import (
	"math"
	"testing"

	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
	"github.com/hazelite/animstate/statemachine"
)

func newStateTimeline(t *testing.T, stateIndex int, params statemachine.BlendParams) (*Host, *Timeline) {
	t.Helper()
	h := newTestHost(t)
	tl := NewTimeline(h)
	if err := tl.ActivateState(stateIndex, params, nil); err != nil {
		t.Fatalf("ActivateState: %v", err)
	}
	return h, tl
}

func TestScrubStateRoundTrip(t *testing.T) {
	h, tl := newStateTimeline(t, 0, statemachine.BlendParams{Linear: 0.25})

	samplers, _ := ecs.Get(h.World(), h.Subject(), component.SamplerBufferComponent)

	tl.ScrubState(0)
	for _, sm := range samplers.All() {
		if sm.Time != 0 {
			t.Fatalf("after ScrubState(0), sampler %d time = %v", sm.ID, sm.Time)
		}
	}

	tl.ScrubState(1)
	for _, sm := range samplers.All() {
		if math.Abs(float64(sm.Time-sm.Duration)) > 1e-5 {
			t.Fatalf("after ScrubState(1), sampler %d time = %v, want %v", sm.ID, sm.Time, sm.Duration)
		}
	}

	// Per-sampler durations differ within the blend tree, so times must too.
	tl.ScrubState(0.5)
	idle := samplers.ByID(0)
	walk := samplers.ByID(1)
	if math.Abs(float64(idle.Time-0.5)) > 1e-5 || math.Abs(float64(walk.Time-1.0)) > 1e-5 {
		t.Fatalf("scrub should scale by each sampler's duration: idle=%v walk=%v", idle.Time, walk.Time)
	}
	if math.Abs(float64(walk.PreviousTime-2.0)) > 1e-5 {
		t.Fatalf("previous time should record the pre-scrub time, got %v", walk.PreviousTime)
	}
}

func TestPauseIsIdempotent(t *testing.T) {
	h, tl := newStateTimeline(t, 1, statemachine.BlendParams{})

	tl.Play()
	h.Update(0.25)
	tl.Pause()

	samplers, _ := ecs.Get(h.World(), h.Subject(), component.SamplerBufferComponent)
	first := *samplers.ByID(0)
	tl.Pause()
	second := *samplers.ByID(0)
	if first != second {
		t.Fatalf("double pause changed sampler state: %+v vs %+v", first, second)
	}

	// Paused means the simulation no longer advances time.
	h.Update(0.25)
	if *samplers.ByID(0) != first {
		t.Fatalf("paused sampler advanced: %+v", *samplers.ByID(0))
	}
}

func TestStepWrapsLoopingState(t *testing.T) {
	// 2s looping state (walk/run at param 0.75 blends 2s clips).
	h, tl := newStateTimeline(t, 0, statemachine.BlendParams{Linear: 1})

	// Start at t=1.9s of the 2s state.
	tl.ScrubState(0.95)
	tl.Step(30, 30)

	samplers, _ := ecs.Get(h.World(), h.Subject(), component.SamplerBufferComponent)
	run := samplers.ByID(2) // the run clip carries the full weight at param 1
	if math.Abs(float64(run.Time-0.9)) > 1e-4 {
		t.Fatalf("Step(30, 30) from 1.9s on a 2s loop should wrap to 0.9s, got %v", run.Time)
	}
}

func TestStepClampsNonLoopingState(t *testing.T) {
	_, tl := newStateTimeline(t, 1, statemachine.BlendParams{})

	tl.ScrubState(0.9)
	tl.Step(30, 30) // 1s forward on a 1s non-looping state clamps to the end

	snap := tl.Snapshot()
	if math.Abs(float64(snap.NormalizedTime-1)) > 1e-5 {
		t.Fatalf("non-looping step should clamp, got %v", snap.NormalizedTime)
	}
}

func TestPlayResyncsAfterScrub(t *testing.T) {
	h, tl := newStateTimeline(t, 1, statemachine.BlendParams{})

	tl.ScrubState(0.5)
	tl.Play()
	h.Update(0.25)

	samplers, _ := ecs.Get(h.World(), h.Subject(), component.SamplerBufferComponent)
	sm := samplers.ByID(0)
	// Resumes from the scrubbed 0.5s, not from 0.
	if math.Abs(float64(sm.Time-0.75)) > 1e-5 {
		t.Fatalf("play after scrub should continue from 0.5s, got %v", sm.Time)
	}
}

func TestCommandsNoOpWhenInactive(t *testing.T) {
	h := newTestHost(t)
	tl := NewTimeline(h)

	// Never activated: every command returns without mutation or panic.
	tl.Play()
	tl.Pause()
	tl.ScrubState(0.5)
	tl.ScrubTransition(0.5)
	tl.Step(10, 30)

	snap := tl.Snapshot()
	if snap.Initialized {
		t.Fatalf("snapshot should report uninitialized")
	}
	if snap.TransitionProgress != -1 {
		t.Fatalf("no transition should report -1, got %v", snap.TransitionProgress)
	}
}

func TestDeactivateLeavesLastWrittenState(t *testing.T) {
	h, tl := newStateTimeline(t, 1, statemachine.BlendParams{})

	tl.ScrubState(0.5)
	samplers, _ := ecs.Get(h.World(), h.Subject(), component.SamplerBufferComponent)
	before := *samplers.ByID(0)

	tl.Deactivate()
	tl.Play()
	tl.ScrubState(0.9)
	tl.Step(5, 30)

	if *samplers.ByID(0) != before {
		t.Fatalf("commands after Deactivate must not mutate: %+v vs %+v", *samplers.ByID(0), before)
	}
	if snap := tl.Snapshot(); snap.Initialized {
		t.Fatalf("deactivated snapshot should report uninitialized")
	}
}

func TestCommandsNoOpAfterSubjectDestroyed(t *testing.T) {
	h, tl := newStateTimeline(t, 0, statemachine.BlendParams{})

	// The owner may destroy the subject between commands.
	h.DestroySubject()
	tl.Play()
	tl.ScrubState(0.5)
	if snap := tl.Snapshot(); snap.Initialized {
		t.Fatalf("snapshot should report uninitialized after the subject died")
	}
}

func TestScrubTransition(t *testing.T) {
	h := newTestHost(t)
	tl := NewTimeline(h)
	// locomotion (2s at param 1) -> jump (1s), authored exit 0.8, duration 0.25.
	if err := tl.ActivateTransition(0, 1, 0.8, 0.25, statemachine.BlendParams{Linear: 1}); err != nil {
		t.Fatalf("ActivateTransition: %v", err)
	}

	timing := tl.Timing()
	if math.Abs(float64(timing.TransitionDuration-0.25)) > 1e-5 {
		t.Fatalf("transition duration = %v, want 0.25", timing.TransitionDuration)
	}

	tl.ScrubTransition(0.5)

	states, _ := ecs.Get(h.World(), h.Subject(), component.StateBufferComponent)
	from := states.ByID(0)
	to := states.ByID(1)
	if math.Abs(float64(from.Weight-0.5)) > 1e-5 || math.Abs(float64(to.Weight-0.5)) > 1e-5 {
		t.Fatalf("transition weights = (%v, %v), want (0.5, 0.5)", from.Weight, to.Weight)
	}

	samplers, _ := ecs.Get(h.World(), h.Subject(), component.SamplerBufferComponent)
	toSampler := samplers.Range(to.StartSampler, to.ClipCount)
	if len(toSampler) != 1 {
		t.Fatalf("jump state should have one sampler")
	}
	want := 0.5 * timing.TransitionDuration
	if math.Abs(float64(toSampler[0].Time-want)) > 1e-5 {
		t.Fatalf("to sampler time = %v, want %v", toSampler[0].Time, want)
	}

	snap := tl.Snapshot()
	if math.Abs(float64(snap.TransitionProgress-0.5)) > 1e-5 {
		t.Fatalf("snapshot progress = %v, want 0.5", snap.TransitionProgress)
	}
}

func TestTransitionPlaysToCompletion(t *testing.T) {
	h := newTestHost(t)
	tl := NewTimeline(h)
	if err := tl.ActivateTransition(0, 1, 0.8, 0.25, statemachine.BlendParams{Linear: 1}); err != nil {
		t.Fatalf("ActivateTransition: %v", err)
	}

	tl.Play()
	for i := 0; i < 10; i++ {
		h.Update(0.05) // 0.5s total, past the 0.25s transition
	}

	states, _ := ecs.Get(h.World(), h.Subject(), component.StateBufferComponent)
	if w := states.ByID(0).Weight; w != 0 {
		t.Fatalf("from weight after completion = %v, want 0", w)
	}
	if w := states.ByID(1).Weight; w != 1 {
		t.Fatalf("to weight after completion = %v, want 1", w)
	}
	tr, _ := ecs.Get(h.World(), h.Subject(), component.TransitionComponent)
	if tr.Valid {
		t.Fatalf("transition should invalidate on completion")
	}
	if snap := tl.Snapshot(); snap.TransitionProgress != -1 {
		t.Fatalf("completed transition should report -1, got %v", snap.TransitionProgress)
	}
}

func TestSnapshotBlendWeights(t *testing.T) {
	_, tl := newStateTimeline(t, 0, statemachine.BlendParams{Linear: 0.25})

	snap := tl.Snapshot()
	if !snap.Initialized {
		t.Fatalf("snapshot should be initialized: %v", snap.Err)
	}
	want := []float32{0.5, 0.5, 0}
	if len(snap.BlendWeights) != len(want) {
		t.Fatalf("expected %d weights, got %d", len(want), len(snap.BlendWeights))
	}
	for i := range want {
		if math.Abs(float64(snap.BlendWeights[i]-want[i])) > 1e-5 {
			t.Fatalf("weights = %v, want %v", snap.BlendWeights, want)
		}
	}
}

func TestSetBlendParamsRecomputesTiming(t *testing.T) {
	h := newTestHost(t)
	tl := NewTimeline(h)
	if err := tl.ActivateTransition(0, 1, 1.8, 0.25, statemachine.BlendParams{Linear: 1}); err != nil {
		t.Fatalf("ActivateTransition: %v", err)
	}
	// At param 1 the from state is 2s; exit 1.8 is inside it.
	if got := tl.Timing().ExitTime; math.Abs(float64(got-1.8)) > 1e-5 {
		t.Fatalf("exit time = %v, want 1.8", got)
	}

	// At param 0 the from state is 1s; the 1s jump target forces minExit 0
	// and the exit clamps down to the from duration.
	tl.SetBlendParams(statemachine.BlendParams{Linear: 0})
	if got := tl.Timing().ExitTime; got > 1+1e-5 {
		t.Fatalf("exit time should clamp to the shrunken from duration, got %v", got)
	}
}
