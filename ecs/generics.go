package ecs

import "github.com/hazelite/animstate/ecs/component"

func Add[T any](w *World, e Entity, handle component.Handle[T], value T) error {
	return w.AddComponent(e, handle.ID(), value)
}

func Remove[T any](w *World, e Entity, handle component.Handle[T]) bool {
	return w.RemoveComponent(e, handle.ID())
}

func Has[T any](w *World, e Entity, handle component.Handle[T]) bool {
	return w.HasComponent(e, handle.ID())
}

func Get[T any](w *World, e Entity, handle component.Handle[T]) (T, bool) {
	var zero T
	value, ok := w.GetComponent(e, handle.ID())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// ForEach visits every live entity carrying the component.
func ForEach[T any](w *World, handle component.Handle[T], fn func(e Entity, v T)) {
	if w == nil || fn == nil {
		return
	}
	s, ok := w.stores[handle.ID()]
	if !ok {
		return
	}
	// Snapshot the dense list so fn may add/remove safely.
	ids := append([]uint32(nil), s.denseEntities...)
	for _, id := range ids {
		e := w.entities.liveEntity(id)
		if !e.Valid() || !s.Has(id) {
			continue
		}
		if v, ok := s.Get(id).(T); ok {
			fn(e, v)
		}
	}
}

// ForEach2 visits every live entity carrying both components.
func ForEach2[A, B any](w *World, ha component.Handle[A], hb component.Handle[B], fn func(e Entity, a A, b B)) {
	ForEach(w, ha, func(e Entity, a A) {
		b, ok := Get(w, e, hb)
		if !ok {
			return
		}
		fn(e, a, b)
	})
}
