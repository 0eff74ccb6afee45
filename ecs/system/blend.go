package system

import (
	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
	"github.com/hazelite/animstate/statemachine"
)

// BlendWeightSystem writes per-clip sampler weights from the subject's blend
// parameters. Within one state's sampler range the weights always sum to 1;
// the state's own weight is tracked separately on the state runtime.
type BlendWeightSystem struct {
	scratch []float32
}

func NewBlendWeightSystem() *BlendWeightSystem {
	return &BlendWeightSystem{}
}

func (s *BlendWeightSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.SamplerBufferComponent, component.StateBufferComponent,
		func(e ecs.Entity, samplers *component.SamplerBuffer, states *component.StateBuffer) {
			ref, ok := ecs.Get(w, e, component.DefinitionComponent)
			if !ok || ref.Def == nil {
				return
			}
			input, ok := ecs.Get(w, e, component.BlendInputComponent)
			if !ok {
				return
			}

			for i := range states.All() {
				rt := &states.All()[i]
				if rt.StateIndex < 0 || rt.StateIndex >= len(ref.Def.States) {
					continue
				}
				run := samplers.Range(rt.StartSampler, rt.ClipCount)
				if len(run) == 0 {
					continue
				}
				if cap(s.scratch) < len(run) {
					s.scratch = make([]float32, len(run))
				}
				weights := statemachine.StateWeightsInto(s.scratch[:len(run)], &ref.Def.States[rt.StateIndex], input.Params)
				for j := range run {
					run[j].Weight = weights[j]
				}
			}
		})
}
