package kinetic

import (
	"fmt"

	"github.com/akmonengine/kinetic/actor"
)

// BodyHandle identifies a body registered in a World. A handle outlives its
// body: once the body is removed, lookups through it fail instead of
// reaching whichever body reuses the slot.
type BodyHandle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether the handle was never issued
func (h BodyHandle) IsZero() bool {
	return h.generation == 0
}

// Index is the arena slot of the handle, stable for the life of the body
func (h BodyHandle) Index() int {
	return int(h.index)
}

func (h BodyHandle) String() string {
	return fmt.Sprintf("body(%d:%d)", h.index, h.generation)
}

type slot struct {
	body       *actor.RigidBody
	generation uint32
	// detach unsubscribes the body from its transform
	detach func()
}

// bodyArena stores bodies in slots reused through a free list. Each reuse
// bumps the slot generation.
type bodyArena struct {
	slots []slot
	free  []uint32
	count int
}

func (a *bodyArena) insert(body *actor.RigidBody) BodyHandle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{generation: 1})
		index = uint32(len(a.slots) - 1)
	}

	a.slots[index].body = body
	a.count++
	return BodyHandle{index: index, generation: a.slots[index].generation}
}

func (a *bodyArena) get(h BodyHandle) (*actor.RigidBody, bool) {
	if int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.index]
	if s.body == nil || s.generation != h.generation {
		return nil, false
	}
	return s.body, true
}

func (a *bodyArena) slot(h BodyHandle) *slot {
	if _, ok := a.get(h); !ok {
		return nil
	}
	return &a.slots[h.index]
}

// remove frees the slot and returns what it held
func (a *bodyArena) remove(h BodyHandle) (slot, bool) {
	if _, ok := a.get(h); !ok {
		return slot{}, false
	}

	s := a.slots[h.index]
	a.slots[h.index] = slot{generation: s.generation + 1}
	a.free = append(a.free, h.index)
	a.count--
	return s, true
}

// each visits live bodies in slot order. fn returns false to stop.
func (a *bodyArena) each(fn func(h BodyHandle, body *actor.RigidBody) bool) {
	for i, s := range a.slots {
		if s.body == nil {
			continue
		}
		if !fn(BodyHandle{index: uint32(i), generation: s.generation}, s.body) {
			return
		}
	}
}

func (a *bodyArena) len() int {
	return a.count
}
