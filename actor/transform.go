package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is a scene-graph node. It holds a rigid local matrix and a size
// relative to its parent, and caches the resulting world matrix and world size.
// Every mutation propagates to all descendants before returning, so reads of
// World/WorldSize are always current.
type Transform struct {
	Name string

	local     mgl64.Mat4
	size      mgl64.Vec3
	world     mgl64.Mat4
	worldSize mgl64.Vec3

	parent   *Transform
	children []*Transform

	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(*Transform)
}

// NewTransform creates an identity node of unit size
func NewTransform(name string) *Transform {
	return &Transform{
		Name:      name,
		local:     mgl64.Ident4(),
		size:      mgl64.Vec3{1, 1, 1},
		world:     mgl64.Ident4(),
		worldSize: mgl64.Vec3{1, 1, 1},
	}
}

// NewTransformAt creates a root node placed at position with the given size
func NewTransformAt(name string, position, size mgl64.Vec3) *Transform {
	t := NewTransform(name)
	t.local = mgl64.Translate3D(position.X(), position.Y(), position.Z())
	t.size = size
	t.propagate()
	return t
}

func (t *Transform) Local() mgl64.Mat4      { return t.local }
func (t *Transform) Size() mgl64.Vec3       { return t.size }
func (t *Transform) World() mgl64.Mat4      { return t.world }
func (t *Transform) WorldSize() mgl64.Vec3  { return t.worldSize }
func (t *Transform) Parent() *Transform     { return t.parent }
func (t *Transform) Children() []*Transform { return t.children }

// Position returns the world-space translation
func (t *Transform) Position() mgl64.Vec3 {
	return t.world.Col(3).Vec3()
}

// Rotation returns the world-space rotation part of the world matrix
func (t *Transform) Rotation() mgl64.Mat3 {
	return t.world.Mat3()
}

// SetLocal replaces the local matrix.
func (t *Transform) SetLocal(local mgl64.Mat4) {
	t.local = local
	t.propagate()
}

// SetSize replaces the local size.
func (t *Transform) SetSize(size mgl64.Vec3) {
	t.size = size
	t.propagate()
}

// SetWorld places the node so that its world matrix equals world, rewriting
// the local matrix against the current parent.
func (t *Transform) SetWorld(world mgl64.Mat4) {
	if t.parent == nil {
		t.local = world
	} else {
		t.local = t.parent.world.Inv().Mul4(world)
	}
	t.propagate()
}

// SetWorldSize sets the local size so that the world size equals size.
// Axes where the parent world size is zero keep the requested value as-is.
func (t *Transform) SetWorldSize(size mgl64.Vec3) {
	if t.parent == nil {
		t.size = size
	} else {
		ps := t.parent.worldSize
		for i := range 3 {
			if ps[i] != 0 {
				size[i] /= ps[i]
			}
		}
		t.size = size
	}
	t.propagate()
}

// SetPosition moves the node to a world-space position, keeping its rotation.
func (t *Transform) SetPosition(position mgl64.Vec3) {
	world := t.world
	world.SetCol(3, position.Vec4(1))
	t.SetWorld(world)
}

// Translate moves the node by a world-space offset.
func (t *Transform) Translate(offset mgl64.Vec3) {
	t.SetPosition(t.Position().Add(offset))
}

// SetParent reparents the node. The world placement is preserved; a nil
// parent detaches the node into its own root.
func (t *Transform) SetParent(parent *Transform) {
	if parent == t.parent {
		return
	}
	for p := parent; p != nil; p = p.parent {
		if p == t {
			return // would create a cycle
		}
	}

	world, worldSize := t.world, t.worldSize
	if t.parent != nil {
		siblings := t.parent.children
		for i, c := range siblings {
			if c == t {
				t.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}

	t.parent = parent
	if parent != nil {
		parent.children = append(parent.children, t)
	}

	// SetWorldSize and SetWorld both propagate; only the second must notify
	if parent == nil {
		t.size = worldSize
	} else {
		ps := parent.worldSize
		for i := range 3 {
			if ps[i] != 0 {
				worldSize[i] /= ps[i]
			}
		}
		t.size = worldSize
	}
	t.SetWorld(world)
}

// Walk visits the node and its descendants depth-first. Returning false from
// fn skips the visited node's subtree.
func (t *Transform) Walk(fn func(*Transform) bool) {
	if !fn(t) {
		return
	}
	for _, c := range t.children {
		c.Walk(fn)
	}
}

// OnChange registers fn to be called after the node's world matrix or world
// size is recomputed. The returned function unregisters it.
func (t *Transform) OnChange(fn func(*Transform)) (cancel func()) {
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listener{id: id, fn: fn})

	return func() {
		for i, l := range t.listeners {
			if l.id == id {
				t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// propagate recomputes world = parent.world * local for the node and every
// descendant, then notifies listeners in the same order.
func (t *Transform) propagate() {
	if t.parent == nil {
		t.world = t.local
		t.worldSize = t.size
	} else {
		t.world = t.parent.world.Mul4(t.local)
		ps := t.parent.worldSize
		t.worldSize = mgl64.Vec3{ps[0] * t.size[0], ps[1] * t.size[1], ps[2] * t.size[2]}
	}

	for _, l := range t.listeners {
		l.fn(t)
	}
	for _, c := range t.children {
		c.propagate()
	}
}
