package system

import (
	"github.com/hazelite/animstate/ecs"
	"github.com/hazelite/animstate/ecs/component"
)

// TransitionSystem advances an in-progress transition while the simulation
// owns time: it cross-fades the two state weights and reports progress.
// On completion the from state is silenced and the record invalidated.
type TransitionSystem struct{}

func NewTransitionSystem() *TransitionSystem {
	return &TransitionSystem{}
}

func (s *TransitionSystem) Update(w *ecs.World) {
	dt := float32(w.Delta())

	ecs.ForEach2(w, component.TransitionComponent, component.StateBufferComponent,
		func(e ecs.Entity, tr *component.ActiveTransition, states *component.StateBuffer) {
			if !tr.Valid {
				return
			}
			if tc, ok := ecs.Get(w, e, component.TimeControlComponent); ok && tc.Manual {
				return
			}

			tr.Elapsed += dt
			p := tr.Progress()

			from := states.ByID(tr.FromState)
			to := states.ByID(tr.ToState)
			if from == nil || to == nil {
				tr.Valid = false
				return
			}
			from.Weight = 1 - p
			to.Weight = p

			w.Events().Push(ecs.Event{
				Type: ecs.EventTransitionProgress,
				Data: ecs.TransitionProgress{Entity: e, Progress: p},
			})

			if p >= 1 {
				from.Weight = 0
				to.Weight = 1
				tr.Valid = false
			}
		})
}
