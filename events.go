package kinetic

import "github.com/go-gl/mathgl/mgl64"

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
)

type pairKey struct {
	bodyA BodyHandle
	bodyB BodyHandle
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB BodyHandle) pairKey {
	if bodyB.index < bodyA.index {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

func (t EventType) String() string {
	switch t {
	case COLLISION_ENTER:
		return "collision_enter"
	case COLLISION_STAY:
		return "collision_stay"
	case COLLISION_EXIT:
		return "collision_exit"
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CollisionEnterEvent is sent on the first Step a pair collides.
// Normal and Depth come from the last contact recorded for the pair.
type CollisionEnterEvent struct {
	BodyA  BodyHandle
	BodyB  BodyHandle
	Normal mgl64.Vec3
	Depth  float64
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA  BodyHandle
	BodyB  BodyHandle
	Normal mgl64.Vec3
	Depth  float64
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA BodyHandle
	BodyB BodyHandle
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// EventListener - callback for events
type EventListener func(event Event)

type contact struct {
	normal mgl64.Vec3
	depth  float64
}

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]contact
	// order keeps the first-seen order of the current pairs, previousOrder
	// the order they had during the last Step
	order         []pairKey
	previousOrder []pairKey
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 64),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]contact),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// record marks the pair as colliding during the current Step. A pair seen
// from both sides is tracked once.
func (e *Events) record(result CollisionResult) {
	pair := makePairKey(result.BodyA, result.BodyB)
	if _, ok := e.currentActivePairs[pair]; !ok {
		e.order = append(e.order, pair)
	}

	normal := result.Normal
	if pair.bodyA != result.BodyA {
		normal = normal.Mul(-1)
	}
	e.currentActivePairs[pair] = contact{normal: normal, depth: result.Depth}
}

// forget drops every pair involving the body, without an Exit event
func (e *Events) forget(body BodyHandle) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.bodyA == body || pair.bodyB == body {
			delete(e.currentActivePairs, pair)
		}
	}
	n := 0
	for _, pair := range e.order {
		if pair.bodyA != body && pair.bodyB != body {
			e.order[n] = pair
			n++
		}
	}
	e.order = e.order[:n]
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
// Should be called after all substeps
func (e *Events) processCollisionEvents() {
	// Detect Enter and Stay events
	for _, pair := range e.order {
		c := e.currentActivePairs[pair]

		if e.previousActivePairs[pair] {
			// Pair was active before and still is, Stay
			e.buffer = append(e.buffer, CollisionStayEvent{
				BodyA:  pair.bodyA,
				BodyB:  pair.bodyB,
				Normal: c.normal,
				Depth:  c.depth,
			})
		} else {
			// New pair, Enter
			e.buffer = append(e.buffer, CollisionEnterEvent{
				BodyA:  pair.bodyA,
				BodyB:  pair.bodyB,
				Normal: c.normal,
				Depth:  c.depth,
			})
		}
	}

	// Detect Exit events
	for _, pair := range e.previousOrder {
		if !e.previousActivePairs[pair] {
			// forgotten
			continue
		}
		if _, ok := e.currentActivePairs[pair]; !ok {
			// Pair was active but is no longer, Exit
			e.buffer = append(e.buffer, CollisionExitEvent{
				BodyA: pair.bodyA,
				BodyB: pair.bodyB,
			})
		}
	}

	// Current pairs become the previous ones for next Step
	clear(e.previousActivePairs)
	for pair := range e.currentActivePairs {
		e.previousActivePairs[pair] = true
	}
	clear(e.currentActivePairs)
	e.previousOrder = append(e.previousOrder[:0], e.order...)
	e.order = e.order[:0]
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
