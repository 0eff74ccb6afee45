// Package preview owns the tick-driven simulation world behind the state
// machine preview: world lifecycle, subject construction, and the timeline
// controller that drives it.
package preview

import (
	"fmt"
	"log"

	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
	"github.com/hazelite/animstate/ecs/system"
	"github.com/hazelite/animstate/statemachine"
)

// Host owns one simulation world and the preview subject's records. Updates
// are manual: nothing ticks unless the caller drives Update, and Update
// fences on job completion before returning, so callers never observe a
// partially updated tick.
type Host struct {
	world   *ecs.World
	scripts *system.ParamScriptSystem
	def     *statemachine.Definition
	subject ecs.Entity
	elapsed float64
	created bool
	errMsg  string
}

func NewHost() *Host {
	return &Host{}
}

// CreateWorld builds the world and its system schedule. Creating twice logs
// and no-ops.
func (h *Host) CreateWorld() {
	if h == nil {
		return
	}
	if h.created {
		log.Printf("preview: world already created")
		return
	}
	h.world = ecs.NewWorld()
	h.scripts = system.NewParamScriptSystem()
	h.world.AddSystem(h.scripts)
	h.world.AddSystem(system.NewTransitionSystem())
	h.world.AddSystem(system.NewSamplerAdvanceSystem())
	h.world.AddSystem(system.NewBlendWeightSystem())
	h.created = true
	h.elapsed = 0
	h.errMsg = ""
}

// DestroyWorld releases the definition and drops the world. Destroying an
// uninitialized host is a no-op.
func (h *Host) DestroyWorld() {
	if h == nil || !h.created {
		return
	}
	if h.def != nil {
		h.def.Release()
		h.def = nil
	}
	h.world = nil
	h.scripts = nil
	h.subject = 0
	h.created = false
	h.elapsed = 0
}

// Created reports whether the world exists.
func (h *Host) Created() bool {
	return h != nil && h.created
}

// World returns the owned world, or nil before CreateWorld.
func (h *Host) World() *ecs.World {
	if h == nil {
		return nil
	}
	return h.world
}

// Subject returns the current preview entity (possibly destroyed; check the
// world).
func (h *Host) Subject() ecs.Entity {
	if h == nil {
		return 0
	}
	return h.subject
}

// Definition returns the loaded definition, or nil.
func (h *Host) Definition() *statemachine.Definition {
	if h == nil {
		return nil
	}
	return h.def
}

// Err returns the stored construction error message, empty when healthy.
func (h *Host) Err() string {
	if h == nil {
		return ""
	}
	return h.errMsg
}

// LoadDefinition validates and acquires def, releasing any previous one.
func (h *Host) LoadDefinition(def *statemachine.Definition) error {
	if h == nil || !h.created {
		return fmt.Errorf("preview: world not created")
	}
	if err := def.Validate(); err != nil {
		h.errMsg = err.Error()
		return err
	}
	if h.def != nil {
		h.def.Release()
	}
	h.def = def.Acquire()
	h.errMsg = ""
	return nil
}

// Update advances the world by one manual tick. The underlying systems may
// parallelize internally; Update does not return until all of that tick's
// work has completed. No-op when uninitialized.
func (h *Host) Update(dt float64) {
	if h == nil || !h.created {
		return
	}
	h.elapsed += dt
	h.world.SetTime(h.elapsed, dt)
	h.world.Update()
	h.world.CompleteJobs()
}

// DrainEvents hands back everything queued since the last drain, in order.
// Call once per frame from the host application.
func (h *Host) DrainEvents() []ecs.Event {
	if h == nil || !h.created {
		return nil
	}
	return h.world.Events().Drain()
}

// DestroySubject tears down the current preview entity, if any.
func (h *Host) DestroySubject() {
	if h == nil || !h.created || !h.subject.Valid() {
		return
	}
	if h.scripts != nil {
		h.scripts.Forget(h.subject)
	}
	h.world.DestroyEntity(h.subject)
	h.subject = 0
}

// BuildSubject constructs the preview entity with the full required buffer
// set: one state runtime plus sampler range per requested state, blend
// input, time control, and the definition ref. The first state starts at
// weight 1, the rest at 0. Any failure leaves the preview uninitialized with
// a stored human-readable message.
func (h *Host) BuildSubject(stateIndices []int, params statemachine.BlendParams, script *component.ParamScript) ([]uint8, error) {
	if h == nil || !h.created {
		return nil, h.fail("preview world not created")
	}
	if h.def == nil {
		return nil, h.fail("no definition loaded")
	}
	if len(stateIndices) == 0 {
		return nil, h.fail("no states requested")
	}
	h.DestroySubject()

	samplers := component.NewSamplerBuffer()
	states := component.NewStateBuffer()
	stateIDs := make([]uint8, 0, len(stateIndices))

	for slot, idx := range stateIndices {
		if idx < 0 || idx >= len(h.def.States) {
			return nil, h.fail(fmt.Sprintf("state index %d out of range", idx))
		}
		st := &h.def.States[idx]
		clips := st.ClipIndices()
		if len(clips) == 0 {
			return nil, h.fail(fmt.Sprintf("state %q has no clips", st.Name))
		}

		start, err := samplers.AllocRange(len(clips))
		if err != nil {
			return nil, h.fail(err.Error())
		}
		run := samplers.Range(start, uint8(len(clips)))
		weights := statemachine.StateWeightsInto(make([]float32, len(clips)), st, params)
		for i, clip := range clips {
			run[i].Clip = uint16(clip)
			run[i].Duration = h.def.ClipDuration(clip)
			run[i].Weight = weights[i]
		}

		speed := st.Speed
		if speed == 0 {
			speed = 1
		}
		weight := float32(0)
		if slot == 0 {
			weight = 1
		}
		id, err := states.Alloc(component.StateRuntime{
			StateIndex:   idx,
			Weight:       weight,
			Speed:        speed,
			Loop:         st.Loop,
			StartSampler: start,
			ClipCount:    uint8(len(clips)),
		})
		if err != nil {
			return nil, h.fail(err.Error())
		}
		stateIDs = append(stateIDs, id)
	}

	e := h.world.CreateEntity()
	attach := func(err error) bool {
		if err != nil {
			h.world.DestroyEntity(e)
			return false
		}
		return true
	}
	if !attach(ecs.Add(h.world, e, component.SamplerBufferComponent, samplers)) ||
		!attach(ecs.Add(h.world, e, component.StateBufferComponent, states)) ||
		!attach(ecs.Add(h.world, e, component.BlendInputComponent, &component.BlendInput{Params: params})) ||
		!attach(ecs.Add(h.world, e, component.TimeControlComponent, &component.TimeControl{Manual: true})) ||
		!attach(ecs.Add(h.world, e, component.DefinitionComponent, &component.DefinitionRef{Def: h.def})) {
		return nil, h.fail("failed to attach preview buffers")
	}
	if script != nil && len(script.Source) > 0 {
		if !attach(ecs.Add(h.world, e, component.ParamScriptComponent, script)) {
			return nil, h.fail("failed to attach parameter script")
		}
	}

	h.subject = e
	h.errMsg = ""
	return stateIDs, nil
}

// SubjectLive reports whether the preview entity exists with its full
// required buffer set. Controllers re-validate through this before every
// mutation, since the host may have destroyed the subject between commands.
func (h *Host) SubjectLive() bool {
	if h == nil || !h.created || !h.subject.Valid() || !h.world.IsAlive(h.subject) {
		return false
	}
	return ecs.Has(h.world, h.subject, component.SamplerBufferComponent) &&
		ecs.Has(h.world, h.subject, component.StateBufferComponent) &&
		ecs.Has(h.world, h.subject, component.BlendInputComponent) &&
		ecs.Has(h.world, h.subject, component.TimeControlComponent) &&
		ecs.Has(h.world, h.subject, component.DefinitionComponent)
}

func (h *Host) fail(msg string) error {
	h.errMsg = msg
	return fmt.Errorf("preview: %s", msg)
}
