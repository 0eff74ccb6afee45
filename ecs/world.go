package ecs

import (
	"sync"

	"github.com/hazelite/animstate/ecs/component"
)

// System updates a world once per tick.
type System interface {
	Update(w *World)
}

// World owns entities, per-kind component stores, system order, the event
// queue, and the job fence. Updates are caller-driven; there is no background
// ticking.
type World struct {
	entities entityStore
	stores   map[component.ID]*SparseSet
	systems  []System
	events   EventQueue

	jobs sync.WaitGroup

	elapsed float64
	delta   float64
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{stores: make(map[component.ID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity kills an entity and drops all of its components. Returns
// false for stale handles.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(e.id())
	}
	return true
}

// IsAlive reports whether an entity handle is still valid.
func (w *World) IsAlive(e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil || s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// SetTime sets the world's logical clock for the upcoming tick.
func (w *World) SetTime(elapsed, delta float64) {
	if w == nil {
		return
	}
	w.elapsed = elapsed
	w.delta = delta
}

// Elapsed returns the world's logical time in seconds.
func (w *World) Elapsed() float64 {
	if w == nil {
		return 0
	}
	return w.elapsed
}

// Delta returns the current tick's delta time in seconds.
func (w *World) Delta() float64 {
	if w == nil {
		return 0
	}
	return w.delta
}

// Update runs all systems once, then fences on any jobs they scheduled.
// When Update returns, every read observes this tick's writes in full.
func (w *World) Update() {
	if w == nil {
		return
	}
	for _, s := range w.systems {
		if s != nil {
			s.Update(w)
		}
	}
	w.CompleteJobs()
}

// Go schedules fn on a worker goroutine. Work scheduled here is guaranteed
// complete once CompleteJobs returns.
func (w *World) Go(fn func()) {
	if w == nil || fn == nil {
		return
	}
	w.jobs.Add(1)
	go func() {
		defer w.jobs.Done()
		fn()
	}()
}

// CompleteJobs blocks until all scheduled jobs have finished. This is the
// fence every reader relies on; it is safe to call more than once per tick.
func (w *World) CompleteJobs() {
	if w == nil {
		return
	}
	w.jobs.Wait()
}

// Events returns the world event queue. The host drains it once per frame.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) storeFor(id component.ID) *SparseSet {
	s, ok := w.stores[id]
	if !ok {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

// AddComponent attaches a component value to a live entity.
func (w *World) AddComponent(e Entity, id component.ID, v any) error {
	if w == nil || !w.entities.isAlive(e) {
		return component.ErrEntityNotAlive
	}
	if id == 0 {
		return component.ErrInvalidComponentKind
	}
	w.storeFor(id).Set(e.id(), v)
	return nil
}

// GetComponent fetches a component value from a live entity.
func (w *World) GetComponent(e Entity, id component.ID) (any, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	s, ok := w.stores[id]
	if !ok || !s.Has(e.id()) {
		return nil, false
	}
	return s.Get(e.id()), true
}

// RemoveComponent detaches a component from an entity if present.
func (w *World) RemoveComponent(e Entity, id component.ID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	s, ok := w.stores[id]
	if !ok || !s.Has(e.id()) {
		return false
	}
	s.Remove(e.id())
	return true
}

// HasComponent reports whether a live entity carries the component.
func (w *World) HasComponent(e Entity, id component.ID) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	s, ok := w.stores[id]
	return ok && s.Has(e.id())
}
