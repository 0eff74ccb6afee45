package ecs

import "strconv"

// Entity packs a 32-bit id and a 32-bit generation. The zero Entity is
// invalid; a stale handle (destroyed, id recycled) fails IsAlive.
type Entity uint64

const entityIDBits = 32

func makeEntity(id, gen uint32) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() uint32 {
	return uint32(e)
}

func (e Entity) generation() uint32 {
	return uint32(uint64(e) >> entityIDBits)
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

func (e Entity) Valid() bool {
	return e.id() != 0
}

// entityStore tracks generations and recycled ids.
type entityStore struct {
	next uint32
	gens []uint32 // indexed by id-1
	free []uint32
}

func (s *entityStore) create() Entity {
	var id uint32
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.next++
		id = s.next
		s.gens = append(s.gens, 0)
	}
	return makeEntity(id, s.gens[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	s.gens[e.id()-1]++
	s.free = append(s.free, e.id())
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || id > uint32(len(s.gens)) {
		return false
	}
	return s.gens[id-1] == e.generation()
}

// liveEntity rebuilds the full handle for a raw id, or 0 when the id is not
// currently backed by a live entity.
func (s *entityStore) liveEntity(id uint32) Entity {
	if id == 0 || id > uint32(len(s.gens)) {
		return 0
	}
	return makeEntity(id, s.gens[id-1])
}
