package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ID identifies a component kind at runtime. 0 is reserved as invalid.
type ID uint32

var nextID atomic.Uint32

// Handle is the typed key for one component kind. Declare one package-level
// handle per kind and share it between writers and readers.
type Handle[T any] struct {
	id ID
}

func New[T any]() Handle[T] {
	return Handle[T]{id: ID(nextID.Add(1))}
}

func (h Handle[T]) ID() ID {
	return h.id
}

func (h Handle[T]) Valid() bool {
	return h.id != 0
}
