package actor

import "github.com/go-gl/mathgl/mgl64"

// MeshData is a read-only view of collision geometry. Positions are in the
// node's unit space and get scaled by the world size; Indices are carried for
// callers that need triangles but are never read by the support queries.
type MeshData struct {
	Positions []mgl64.Vec3
	Indices   []uint32
}

func (m MeshData) Empty() bool {
	return len(m.Positions) == 0
}

// MeshSource resolves an asset handle into collision geometry.
type MeshSource interface {
	CollisionMesh(asset string) (MeshData, bool)
}

// MeshLibrary is an in-memory MeshSource
type MeshLibrary map[string]MeshData

func (l MeshLibrary) CollisionMesh(asset string) (MeshData, bool) {
	m, ok := l[asset]
	return m, ok
}

// UnitCubeMesh returns the 8 corners and 12 triangles of a cube spanning
// [-0.5, 0.5] on every axis.
func UnitCubeMesh() MeshData {
	return MeshData{
		Positions: []mgl64.Vec3{
			{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
			{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
		},
		Indices: []uint32{
			0, 2, 1, 0, 3, 2, // -Z
			4, 5, 6, 4, 6, 7, // +Z
			0, 1, 5, 0, 5, 4, // -Y
			3, 7, 6, 3, 6, 2, // +Y
			0, 4, 7, 0, 7, 3, // -X
			1, 2, 6, 1, 6, 5, // +X
		},
	}
}
