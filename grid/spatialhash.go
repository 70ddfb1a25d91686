// Package grid implements the uniform-grid spatial hash used as broad phase.
//
// World positions are rounded to the nearest multiple of the cell size; the
// integer multiple on each axis is the cell coordinate. Cell k therefore spans
// [(k-0.5)*size, (k+0.5)*size) on every axis. An id is registered in every
// cell its bounding box overlaps and in no other.
package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CellKey - integer coordinates of a cell
type CellKey struct {
	X, Y, Z int
}

// SpatialHash maps cell coordinates to unordered sets of ids
type SpatialHash[ID comparable] struct {
	cellSize float64
	cells    map[CellKey]map[ID]struct{}
}

// New creates an empty hash. A non-positive cellSize falls back to 1.
func New[ID comparable](cellSize float64) *SpatialHash[ID] {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash[ID]{
		cellSize: cellSize,
		cells:    make(map[CellKey]map[ID]struct{}),
	}
}

func (h *SpatialHash[ID]) CellSize() float64 {
	return h.cellSize
}

// Round snaps a world position to the nearest multiple of the cell size
func (h *SpatialHash[ID]) Round(pos mgl64.Vec3) mgl64.Vec3 {
	k := h.CellOf(pos)
	return mgl64.Vec3{
		float64(k.X) * h.cellSize,
		float64(k.Y) * h.cellSize,
		float64(k.Z) * h.cellSize,
	}
}

// CellOf returns the coordinates of the cell containing pos
func (h *SpatialHash[ID]) CellOf(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: h.index(pos.X()),
		Y: h.index(pos.Y()),
		Z: h.index(pos.Z()),
	}
}

func (h *SpatialHash[ID]) index(v float64) int {
	return int(math.Floor(v/h.cellSize + 0.5))
}

// Insert registers id in a single cell
func (h *SpatialHash[ID]) Insert(id ID, key CellKey) {
	cell, ok := h.cells[key]
	if !ok {
		cell = make(map[ID]struct{}, 4)
		h.cells[key] = cell
	}
	cell[id] = struct{}{}
}

// Remove drops id from each of the listed cells. Cells left empty are freed.
func (h *SpatialHash[ID]) Remove(id ID, keys []CellKey) {
	for _, key := range keys {
		cell, ok := h.cells[key]
		if !ok {
			continue
		}
		delete(cell, id)
		if len(cell) == 0 {
			delete(h.cells, key)
		}
	}
}

// Sync moves id from its previous cells to every cell overlapped by the box
// [min, max]. The returned slice is the new membership and reuses the backing
// array of previous.
func (h *SpatialHash[ID]) Sync(id ID, min, max mgl64.Vec3, previous []CellKey) []CellKey {
	h.Remove(id, previous)
	cells := previous[:0]

	minCell := h.CellOf(min)
	maxCell := h.CellOf(max)
	if minCell == maxCell {
		h.Insert(id, minCell)
		return append(cells, minCell)
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				key := CellKey{x, y, z}
				h.Insert(id, key)
				cells = append(cells, key)
			}
		}
	}
	return cells
}

// Contains reports whether id is registered in the cell
func (h *SpatialHash[ID]) Contains(key CellKey, id ID) bool {
	_, ok := h.cells[key][id]
	return ok
}

// Members returns the ids registered in a cell, in no particular order.
// A missing cell has no members.
func (h *SpatialHash[ID]) Members(key CellKey) []ID {
	cell := h.cells[key]
	ids := make([]ID, 0, len(cell))
	for id := range cell {
		ids = append(ids, id)
	}
	return ids
}

// Each calls fn for every id of every listed cell. An id present in several
// cells is visited once per cell.
func (h *SpatialHash[ID]) Each(keys []CellKey, fn func(id ID)) {
	for _, key := range keys {
		for id := range h.cells[key] {
			fn(id)
		}
	}
}

// Len returns the number of non-empty cells
func (h *SpatialHash[ID]) Len() int {
	return len(h.cells)
}

// Clear removes every registration
func (h *SpatialHash[ID]) Clear() {
	clear(h.cells)
}

// Traverse walks the cells pierced by the segment origin + t*direction,
// t in [0, maxT], in ray order (3D DDA). visit returns false to stop.
func (h *SpatialHash[ID]) Traverse(origin, direction mgl64.Vec3, maxT float64, visit func(key CellKey) bool) {
	cell := [3]int{h.index(origin.X()), h.index(origin.Y()), h.index(origin.Z())}

	var step [3]int
	var tMax, tDelta [3]float64
	for axis := range 3 {
		d := direction[axis]
		switch {
		case d > 0:
			step[axis] = 1
			boundary := (float64(cell[axis]) + 0.5) * h.cellSize
			tMax[axis] = (boundary - origin[axis]) / d
			tDelta[axis] = h.cellSize / d
		case d < 0:
			step[axis] = -1
			boundary := (float64(cell[axis]) - 0.5) * h.cellSize
			tMax[axis] = (boundary - origin[axis]) / d
			tDelta[axis] = -h.cellSize / d
		default:
			tMax[axis] = math.Inf(1)
			tDelta[axis] = math.Inf(1)
		}
	}

	for {
		if !visit(CellKey{cell[0], cell[1], cell[2]}) {
			return
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if tMax[axis] > maxT {
			return
		}

		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}
}
