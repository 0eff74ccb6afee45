package system

import (
	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
)

// samplerShardSize is how many samplers one worker job advances. Small pools
// stay on the calling goroutine.
const samplerShardSize = 64

// SamplerAdvanceSystem advances sampler and state times by the tick's delta
// while the simulation owns time. It shards large pools across worker
// goroutines and fences before returning, so later systems and readers always
// observe a fully advanced tick.
type SamplerAdvanceSystem struct{}

func NewSamplerAdvanceSystem() *SamplerAdvanceSystem {
	return &SamplerAdvanceSystem{}
}

func (s *SamplerAdvanceSystem) Update(w *ecs.World) {
	dt := float32(w.Delta())
	if dt == 0 {
		return
	}

	ecs.ForEach2(w, component.SamplerBufferComponent, component.StateBufferComponent,
		func(e ecs.Entity, samplers *component.SamplerBuffer, states *component.StateBuffer) {
			if tc, ok := ecs.Get(w, e, component.TimeControlComponent); ok && tc.Manual {
				// The timeline controller is authoritative; leave every time alone.
				return
			}

			for i := range states.All() {
				rt := &states.All()[i]
				if rt.Weight <= 0 {
					continue
				}
				step := dt * rt.Speed
				rt.Time += step
				advanceRange(w, samplers.Range(rt.StartSampler, rt.ClipCount), step, rt.Loop)
			}
			w.CompleteJobs()

			if tc, ok := ecs.Get(w, e, component.TimeControlComponent); ok {
				tc.Elapsed += dt
			}
			pushTimeChanged(w, e, samplers, states)
		})
}

// advanceRange steps every sampler in the run, sharding across workers when
// the run is large. Each sampler wraps (or clamps) by its own duration since
// blended clips may differ in length.
func advanceRange(w *ecs.World, run []component.ClipSampler, step float32, loop bool) {
	advance := func(shard []component.ClipSampler) {
		for i := range shard {
			sm := &shard[i]
			sm.PreviousTime = sm.Time
			sm.Time += step
			if sm.Duration <= 0 {
				sm.Time = 0
				continue
			}
			if loop {
				for sm.Time >= sm.Duration {
					sm.Time -= sm.Duration
				}
				for sm.Time < 0 {
					sm.Time += sm.Duration
				}
			} else if sm.Time > sm.Duration {
				sm.Time = sm.Duration
			} else if sm.Time < 0 {
				sm.Time = 0
			}
		}
	}

	if len(run) <= samplerShardSize {
		advance(run)
		return
	}
	for start := 0; start < len(run); start += samplerShardSize {
		end := start + samplerShardSize
		if end > len(run) {
			end = len(run)
		}
		shard := run[start:end]
		w.Go(func() { advance(shard) })
	}
}

// pushTimeChanged reports the dominant state's normalized time for UI sync.
func pushTimeChanged(w *ecs.World, e ecs.Entity, samplers *component.SamplerBuffer, states *component.StateBuffer) {
	var top *component.StateRuntime
	for i := range states.All() {
		rt := &states.All()[i]
		if top == nil || rt.Weight > top.Weight {
			top = rt
		}
	}
	if top == nil || top.ClipCount == 0 {
		return
	}
	run := samplers.Range(top.StartSampler, top.ClipCount)
	if len(run) == 0 || run[0].Duration <= 0 {
		return
	}
	w.Events().Push(ecs.Event{
		Type: ecs.EventTimeChanged,
		Data: ecs.TimeChanged{Entity: e, NormalizedTime: run[0].Time / run[0].Duration},
	})
}
