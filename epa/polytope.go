package epa

import (
	"math"
	"sync"

	"github.com/akmonengine/kinetic/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// degenerateArea is the squared cross product length under which a face has
// no usable normal
const degenerateArea = 1e-24

// face is a triangle of the polytope, indexing into its vertices
type face struct {
	indices  [3]int
	normal   mgl64.Vec3
	distance float64
}

// edge is an ordered pair of vertex indices
type edge struct {
	a, b int
}

// polytope is the expanding hull of Minkowski difference points. Vertices
// keep their witness points so the closest face can be mapped back onto
// both shapes.
type polytope struct {
	vertices []gjk.SupportPoint
	faces    []face
	edges    []edge
	visible  []int
	centroid mgl64.Vec3
}

// polytopePool reuses polytope buffers between expansions
var polytopePool = sync.Pool{
	New: func() any {
		return &polytope{
			vertices: make([]gjk.SupportPoint, 0, 16),
			faces:    make([]face, 0, 32),
			edges:    make([]edge, 0, 16),
			visible:  make([]int, 0, 16),
		}
	},
}

func (p *polytope) reset() {
	p.vertices = p.vertices[:0]
	p.faces = p.faces[:0]
	p.edges = p.edges[:0]
	p.visible = p.visible[:0]
	p.centroid = mgl64.Vec3{}
}

// build seeds the polytope with the four faces of a GJK tetrahedron
func (p *polytope) build(simplex *gjk.Simplex) {
	p.reset()
	for i := range simplex.Len() {
		p.vertices = append(p.vertices, simplex.At(i))
	}
	p.updateCentroid()

	for _, indices := range [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}} {
		p.faces = append(p.faces, p.newFace(indices[0], indices[1], indices[2]))
	}
}

func (p *polytope) updateCentroid() {
	var sum mgl64.Vec3
	for _, v := range p.vertices {
		sum = sum.Add(v.Point)
	}
	p.centroid = sum.Mul(1 / float64(len(p.vertices)))
}

// newFace computes the unit normal pointing out of the polytope and the
// distance of the face plane from the origin. A zero-area face is kept with
// an infinite distance so it is never selected as closest.
func (p *polytope) newFace(i0, i1, i2 int) face {
	v0 := p.vertices[i0].Point
	v1 := p.vertices[i1].Point
	v2 := p.vertices[i2].Point

	normal := v1.Sub(v0).Cross(v2.Sub(v0))
	if normal.LenSqr() < degenerateArea {
		return face{indices: [3]int{i0, i1, i2}, distance: math.Inf(1)}
	}
	normal = normal.Normalize()

	// outward is away from the interior, estimated by the vertex centroid
	if normal.Dot(v0.Sub(p.centroid)) < 0 {
		normal = normal.Mul(-1)
		i1, i2 = i2, i1
	}

	distance := normal.Dot(v0)
	if distance < 0 {
		normal = normal.Mul(-1)
		distance = -distance
		i1, i2 = i2, i1
	}

	return face{indices: [3]int{i0, i1, i2}, normal: normal, distance: distance}
}

// closest returns the index of the face nearest to the origin, -1 when the
// polytope has no face
func (p *polytope) closest() int {
	index := -1
	best := math.Inf(1)
	for i, f := range p.faces {
		if index == -1 || f.distance < best {
			index = i
			best = f.distance
		}
	}
	return index
}

// expand adds the support point to the polytope: every face that sees it
// is removed and the hole is closed by fanning the silhouette edges to it.
func (p *polytope) expand(support gjk.SupportPoint, closest int) {
	p.visible = p.visible[:0]
	for i, f := range p.faces {
		if f.normal.LenSqr() == 0 {
			continue
		}
		if gjk.SameDirection(f.normal, support.Point.Sub(p.vertices[f.indices[0]].Point)) {
			p.visible = append(p.visible, i)
		}
	}

	// never tear down the whole hull
	if len(p.visible) == 0 || len(p.visible) >= len(p.faces) {
		p.visible = append(p.visible[:0], closest)
	}

	p.edges = p.edges[:0]
	for _, i := range p.visible {
		f := p.faces[i]
		p.addEdge(f.indices[0], f.indices[1])
		p.addEdge(f.indices[1], f.indices[2])
		p.addEdge(f.indices[2], f.indices[0])
	}

	p.removeVisible()

	p.vertices = append(p.vertices, support)
	p.updateCentroid()
	newIndex := len(p.vertices) - 1
	for _, e := range p.edges {
		p.faces = append(p.faces, p.newFace(e.a, e.b, newIndex))
	}
}

// addEdge records a silhouette candidate. An edge shared by two removed faces
// is interior to the removed region and cancels out, whichever way it runs.
func (p *polytope) addEdge(a, b int) {
	for i, e := range p.edges {
		if (e.a == a && e.b == b) || (e.a == b && e.b == a) {
			p.edges[i] = p.edges[len(p.edges)-1]
			p.edges = p.edges[:len(p.edges)-1]
			return
		}
	}
	p.edges = append(p.edges, edge{a, b})
}

// removeVisible deletes the visible faces, keeping the order of the others
func (p *polytope) removeVisible() {
	kept := p.faces[:0]
	next := 0
	for i, f := range p.faces {
		if next < len(p.visible) && p.visible[next] == i {
			next++
			continue
		}
		kept = append(kept, f)
	}
	p.faces = kept
}
