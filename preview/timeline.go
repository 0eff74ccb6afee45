package preview

import (
	"fmt"

	"github.com/hazelite/animstate/common"
	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
	"github.com/hazelite/animstate/statemachine"
)

// Mode is the timeline controller's coarse state.
type Mode uint8

const (
	ModeInactive Mode = iota
	ModeStatePreview
	ModeTransitionPreview
)

func (m Mode) String() string {
	switch m {
	case ModeStatePreview:
		return "state"
	case ModeTransitionPreview:
		return "transition"
	default:
		return "inactive"
	}
}

// Snapshot is the UI-facing view of the controller and its subject.
type Snapshot struct {
	NormalizedTime     float32
	BlendWeights       []float32
	TransitionProgress float32 // -1 when no transition is in progress
	Playing            bool
	Err                string
	Initialized        bool
}

// Timeline converts Play/Pause/Scrub/Step commands into writes on the
// subject's sampler pool and reads simulation state back for UI sync.
// Every command is a silent no-op when the controller is inactive, the
// subject has been destroyed, or a required buffer is missing.
type Timeline struct {
	host    *Host
	mode    Mode
	playing bool

	stateIndex int
	fromIndex  int
	toIndex    int
	fromID     uint8
	toID       uint8
	reqExit    float32
	reqDur     float32
	timing     statemachine.TransitionTiming

	errMsg string
}

func NewTimeline(host *Host) *Timeline {
	return &Timeline{host: host, stateIndex: -1, fromIndex: -1, toIndex: -1}
}

// Mode returns the controller's current mode.
func (t *Timeline) Mode() Mode {
	if t == nil {
		return ModeInactive
	}
	return t.mode
}

// Timing returns the transition layout computed at activation. Only
// meaningful in transition mode.
func (t *Timeline) Timing() statemachine.TransitionTiming {
	if t == nil {
		return statemachine.TransitionTiming{}
	}
	return t.timing
}

// ActivateState rebuilds the subject for a single-state preview. The preview
// starts paused under manual time control.
func (t *Timeline) ActivateState(stateIndex int, params statemachine.BlendParams, script *component.ParamScript) error {
	if t == nil || t.host == nil {
		return fmt.Errorf("preview: no host")
	}
	_, err := t.host.BuildSubject([]int{stateIndex}, params, script)
	if err != nil {
		t.mode = ModeInactive
		t.errMsg = t.host.Err()
		return err
	}
	t.mode = ModeStatePreview
	t.playing = false
	t.stateIndex = stateIndex
	t.fromIndex, t.toIndex = -1, -1
	t.timing = statemachine.TransitionTiming{}
	t.errMsg = ""
	return nil
}

// ActivateTransition rebuilds the subject for a transition preview between
// two states, computing the clamped overlap layout from the requested exit
// time and duration. The preview starts paused at the start of the from bar.
func (t *Timeline) ActivateTransition(fromIndex, toIndex int, requestedExitTime, requestedDuration float32, params statemachine.BlendParams) error {
	if t == nil || t.host == nil {
		return fmt.Errorf("preview: no host")
	}
	def := t.host.Definition()
	if def == nil {
		return fmt.Errorf("preview: no definition loaded")
	}
	if fromIndex < 0 || fromIndex >= len(def.States) || toIndex < 0 || toIndex >= len(def.States) {
		return fmt.Errorf("preview: transition states out of range")
	}

	fromDur := statemachine.StateDuration(def, &def.States[fromIndex], params)
	toDur := statemachine.StateDuration(def, &def.States[toIndex], params)
	timing := statemachine.ComputeTransitionTiming(fromDur, toDur, requestedExitTime, requestedDuration)

	ids, err := t.host.BuildSubject([]int{fromIndex, toIndex}, params, nil)
	if err != nil {
		t.mode = ModeInactive
		t.errMsg = t.host.Err()
		return err
	}

	w := t.host.World()
	tr := &component.ActiveTransition{
		FromState: ids[0],
		ToState:   ids[1],
		Duration:  timing.TransitionDuration,
		Valid:     true,
	}
	if err := ecs.Add(w, t.host.Subject(), component.TransitionComponent, tr); err != nil {
		t.mode = ModeInactive
		t.errMsg = err.Error()
		return err
	}

	t.mode = ModeTransitionPreview
	t.playing = false
	t.stateIndex = fromIndex
	t.fromIndex, t.toIndex = fromIndex, toIndex
	t.fromID, t.toID = ids[0], ids[1]
	t.reqExit, t.reqDur = requestedExitTime, requestedDuration
	t.timing = timing
	t.errMsg = ""
	return nil
}

// Play releases time control back to the simulation. When resuming from a
// paused scrub it first re-syncs elapsed-time bookkeeping from the current
// sampler time so playback continues without a visible jump.
func (t *Timeline) Play() {
	if !t.live() {
		return
	}
	tc, _ := ecs.Get(t.host.World(), t.host.Subject(), component.TimeControlComponent)
	if tc.Manual {
		tc.Elapsed = t.readBackElapsed()
		tc.Manual = false
	}
	t.playing = true
	t.pushPlayback(true)
}

// Pause asserts manual time control. Calling it twice leaves the same
// sampler state as calling it once.
func (t *Timeline) Pause() {
	if !t.live() {
		return
	}
	tc, _ := ecs.Get(t.host.World(), t.host.Subject(), component.TimeControlComponent)
	wasManual := tc.Manual
	tc.Manual = true
	tc.Elapsed = t.readBackElapsed()
	if t.playing || !wasManual {
		t.playing = false
		t.pushPlayback(false)
	}
}

// ScrubState sets every active sampler's time to normalized*duration, using
// each sampler's own duration since blended clips may differ in length.
// Asserts manual time control.
func (t *Timeline) ScrubState(normalized float32) {
	if !t.live() || t.mode != ModeStatePreview {
		return
	}
	normalized = common.Clamp01(normalized)

	w := t.host.World()
	subject := t.host.Subject()
	samplers, _ := ecs.Get(w, subject, component.SamplerBufferComponent)
	states, _ := ecs.Get(w, subject, component.StateBufferComponent)
	tc, _ := ecs.Get(w, subject, component.TimeControlComponent)

	tc.Manual = true
	t.playing = false

	for i := range states.All() {
		rt := &states.All()[i]
		if rt.Weight <= 0 {
			continue
		}
		rt.Time = normalized * t.stateDuration(rt.StateIndex)
		run := samplers.Range(rt.StartSampler, rt.ClipCount)
		for j := range run {
			run[j].PreviousTime = run[j].Time
			run[j].Time = normalized * run[j].Duration
		}
	}
	tc.Elapsed = normalized * t.stateDuration(t.stateIndex)

	w.Events().Push(ecs.Event{
		Type: ecs.EventTimeChanged,
		Data: ecs.TimeChanged{Entity: subject, NormalizedTime: normalized},
	})
}

// ScrubTransition sets the to state's contributing samplers to
// progress*transitionDuration and cross-fades the two state weights to
// (1-progress, progress). Asserts manual time control.
func (t *Timeline) ScrubTransition(progress float32) {
	if !t.live() || t.mode != ModeTransitionPreview {
		return
	}
	progress = common.Clamp01(progress)

	w := t.host.World()
	subject := t.host.Subject()
	samplers, _ := ecs.Get(w, subject, component.SamplerBufferComponent)
	states, _ := ecs.Get(w, subject, component.StateBufferComponent)
	tc, _ := ecs.Get(w, subject, component.TimeControlComponent)

	tc.Manual = true
	t.playing = false

	from := states.ByID(t.fromID)
	to := states.ByID(t.toID)
	if from == nil || to == nil {
		return
	}
	from.Weight = 1 - progress
	to.Weight = progress

	toTime := progress * t.timing.TransitionDuration
	to.Time = toTime
	run := samplers.Range(to.StartSampler, to.ClipCount)
	for j := range run {
		run[j].PreviousTime = run[j].Time
		run[j].Time = toTime
	}

	if tr, ok := ecs.Get(w, subject, component.TransitionComponent); ok {
		tr.Valid = progress < 1
		tr.Elapsed = progress * tr.Duration
	}

	w.Events().Push(ecs.Event{
		Type: ecs.EventTransitionProgress,
		Data: ecs.TransitionProgress{Entity: subject, Progress: progress},
	})
}

// Step advances the controller-tracked elapsed time by frames/fps seconds,
// wrapping by the state duration for looping states, and forwards the result
// through ScrubState. Only meaningful in state preview mode.
func (t *Timeline) Step(frames int, fps float32) {
	if !t.live() || t.mode != ModeStatePreview || fps <= 0 {
		return
	}
	w := t.host.World()
	tc, _ := ecs.Get(w, t.host.Subject(), component.TimeControlComponent)
	if !tc.Manual {
		tc.Elapsed = t.readBackElapsed()
		tc.Manual = true
		t.playing = false
	}

	duration := t.stateDuration(t.stateIndex)
	if duration <= 0 {
		return
	}
	elapsed := tc.Elapsed + float32(frames)/fps

	def := t.host.Definition()
	loop := def != nil && def.States[t.stateIndex].Loop
	if loop {
		for elapsed >= duration {
			elapsed -= duration
		}
		for elapsed < 0 {
			elapsed += duration
		}
	} else {
		elapsed = common.Clamp(elapsed, 0, duration)
	}
	tc.Elapsed = elapsed
	t.ScrubState(elapsed / duration)
}

// Deactivate switches the controller off. It never rolls anything back: the
// pool and records keep their last-written state.
func (t *Timeline) Deactivate() {
	if t == nil {
		return
	}
	t.mode = ModeInactive
	t.playing = false
}

// Snapshot reads the subject back for UI sync. An uninitialized or failed
// preview reports Initialized=false with an explanatory message.
func (t *Timeline) Snapshot() Snapshot {
	snap := Snapshot{TransitionProgress: -1}
	if t == nil {
		return snap
	}
	snap.Err = t.errMsg
	if snap.Err == "" && t.host != nil {
		snap.Err = t.host.Err()
	}
	if !t.live() {
		return snap
	}

	w := t.host.World()
	subject := t.host.Subject()
	samplers, _ := ecs.Get(w, subject, component.SamplerBufferComponent)
	states, _ := ecs.Get(w, subject, component.StateBufferComponent)

	snap.Initialized = true
	snap.Playing = t.playing

	var top *component.StateRuntime
	for i := range states.All() {
		rt := &states.All()[i]
		if top == nil || rt.Weight > top.Weight {
			top = rt
		}
	}
	if top != nil {
		run := samplers.Range(top.StartSampler, top.ClipCount)
		snap.BlendWeights = make([]float32, len(run))
		for i := range run {
			snap.BlendWeights[i] = run[i].Weight
		}
		if len(run) > 0 && run[0].Duration > 0 {
			snap.NormalizedTime = run[0].Time / run[0].Duration
		}
	}

	if tr, ok := ecs.Get(w, subject, component.TransitionComponent); ok && tr.Valid {
		snap.TransitionProgress = tr.Progress()
	}
	return snap
}

// live re-validates the whole chain before any mutation: controller active,
// world created, subject alive, required buffers present.
func (t *Timeline) live() bool {
	return t != nil && t.mode != ModeInactive && t.host.SubjectLive()
}

// readBackElapsed derives elapsed seconds within the dominant state from the
// current sampler time, so resuming play after a scrub does not jump.
func (t *Timeline) readBackElapsed() float32 {
	w := t.host.World()
	subject := t.host.Subject()
	samplers, _ := ecs.Get(w, subject, component.SamplerBufferComponent)
	states, _ := ecs.Get(w, subject, component.StateBufferComponent)

	var top *component.StateRuntime
	for i := range states.All() {
		rt := &states.All()[i]
		if top == nil || rt.Weight > top.Weight {
			top = rt
		}
	}
	if top == nil {
		return 0
	}
	run := samplers.Range(top.StartSampler, top.ClipCount)
	if len(run) == 0 || run[0].Duration <= 0 {
		return 0
	}
	normalized := run[0].Time / run[0].Duration
	return normalized * t.stateDuration(top.StateIndex)
}

func (t *Timeline) stateDuration(stateIndex int) float32 {
	def := t.host.Definition()
	if def == nil || stateIndex < 0 || stateIndex >= len(def.States) {
		return 0
	}
	params := statemachine.BlendParams{}
	if input, ok := ecs.Get(t.host.World(), t.host.Subject(), component.BlendInputComponent); ok {
		params = input.Params
	}
	return statemachine.StateDuration(def, &def.States[stateIndex], params)
}

// SetBlendParams updates the subject's live blend input. In transition mode
// the overlap layout is recomputed since blend-tree durations may change.
func (t *Timeline) SetBlendParams(params statemachine.BlendParams) {
	if !t.live() {
		return
	}
	input, _ := ecs.Get(t.host.World(), t.host.Subject(), component.BlendInputComponent)
	input.Params = params

	if t.mode == ModeTransitionPreview {
		def := t.host.Definition()
		fromDur := statemachine.StateDuration(def, &def.States[t.fromIndex], params)
		toDur := statemachine.StateDuration(def, &def.States[t.toIndex], params)
		t.timing = statemachine.ComputeTransitionTiming(fromDur, toDur, t.reqExit, t.reqDur)
		if tr, ok := ecs.Get(t.host.World(), t.host.Subject(), component.TransitionComponent); ok {
			tr.Duration = t.timing.TransitionDuration
		}
	}
}

func (t *Timeline) pushPlayback(playing bool) {
	w := t.host.World()
	w.Events().Push(ecs.Event{
		Type: ecs.EventPlaybackChanged,
		Data: ecs.PlaybackChanged{Entity: t.host.Subject(), Playing: playing},
	})
}
