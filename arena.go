package dotcluster

import (
	"maps"
	"slices"
)

// ref is a handle to an element owned by a store. The generation makes a
// handle go stale once its slot is freed, even if the slot is reused.
type ref struct {
	slot uint32
	gen  uint32
}

type arenaSlot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// arena is an index-stable slot map: a value keeps its slot until removed,
// and freed slots are recycled with a bumped generation.
type arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) insert(v T) ref {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, arenaSlot[T]{})
	}
	s := &a.slots[idx]
	s.live = true
	s.val = v
	a.live++
	return ref{slot: idx, gen: s.gen}
}

func (a *arena[T]) get(r ref) (T, bool) {
	if int(r.slot) >= len(a.slots) {
		var zero T
		return zero, false
	}
	s := &a.slots[r.slot]
	if !s.live || s.gen != r.gen {
		var zero T
		return zero, false
	}
	return s.val, true
}

func (a *arena[T]) remove(r ref) bool {
	if _, ok := a.get(r); !ok {
		return false
	}
	s := &a.slots[r.slot]
	var zero T
	s.val = zero
	s.live = false
	s.gen++
	a.free = append(a.free, r.slot)
	a.live--
	return true
}

// reset frees every slot. Outstanding handles all go stale.
func (a *arena[T]) reset() {
	var zero T
	a.free = a.free[:0]
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			s.live = false
			s.val = zero
			s.gen++
		}
		a.free = append(a.free, uint32(i))
	}
	a.live = 0
}

func (a *arena[T]) len() int { return a.live }

// store is the canonical owner of every element of one level: the arena
// holds the elements, the index finds them by position.
type store[T node] struct {
	arena arena[T]
	index map[CoordKey]ref
}

func (s *store[T]) len() int { return s.arena.len() }

func (s *store[T]) lookup(k CoordKey) (T, bool) {
	r, ok := s.index[k]
	if !ok {
		var zero T
		return zero, false
	}
	return s.arena.get(r)
}

func (s *store[T]) resolve(r ref) (T, bool) { return s.arena.get(r) }

// insert takes ownership of e under key k. It reports false and leaves the
// store unchanged when k is already taken.
func (s *store[T]) insert(k CoordKey, e T) bool {
	if s.index == nil {
		s.index = make(map[CoordKey]ref)
	}
	if _, taken := s.index[k]; taken {
		return false
	}
	r := s.arena.insert(e)
	e.setRef(r)
	s.index[k] = r
	return true
}

// keys returns every key in CoordKey order.
func (s *store[T]) keys() []CoordKey {
	return slices.SortedFunc(maps.Keys(s.index), CompareKeys)
}

// ordered returns every element in CoordKey order.
func (s *store[T]) ordered() []T {
	keys := s.keys()
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		if e, ok := s.arena.get(s.index[k]); ok {
			out = append(out, e)
		}
	}
	return out
}

// clear destroys every element the store owns.
func (s *store[T]) clear() {
	s.arena.reset()
	clear(s.index)
}
