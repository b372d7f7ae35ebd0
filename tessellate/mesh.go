package tessellate

import "github.com/soypat/geometry/ms3"

// Mesh is a triangle soup with shared, deduplicated vertices.
type Mesh struct {
	Vertices  []ms3.Vec
	Triangles [][3]int
}

func (m *Mesh) addTriangle(a, b, c int) {
	m.Triangles = append(m.Triangles, [3]int{a, b, c})
}

// vertexKey identifies one dual vertex: the cell that owns it and which
// partition of that cell's active-edge graph it was placed for.
type vertexKey struct {
	cell      Index
	partition EdgeBitset
}

// vertexCache assigns a stable index to each (cell, partition) dual vertex,
// computing its position lazily on first reference since a partition may be
// reached from any of its member edges' owning cells during quad emission.
type vertexCache struct {
	ids   map[vertexKey]int
	mesh  *Mesh
	eg    edgeGrid
	grid  *scalarGrid
}

func newVertexCache(mesh *Mesh, eg edgeGrid, grid *scalarGrid) *vertexCache {
	return &vertexCache{
		ids:  make(map[vertexKey]int),
		mesh: mesh,
		eg:   eg,
		grid: grid,
	}
}

// vertexFor returns the index into mesh.Vertices of the dual vertex for the
// partition of cell idx containing baseEdge, placing it via QEF on first
// reference.
func (vc *vertexCache) vertexFor(idx Index, signBits uint8, baseEdge Edge) int {
	partition := getConnectedEdges(baseEdge, signBits)
	key := vertexKey{cell: idx, partition: partition}
	if id, ok := vc.ids[key]; ok {
		return id
	}
	planes := make([]Plane, 0, 4)
	for e := Edge(0); e < 12; e++ {
		if !partition.has(e) {
			continue
		}
		p, ok := vc.eg.tangentPlane(e, idx)
		if !ok {
			panic("tessellate: active partition edge has no recorded crossing, edge grid is incomplete")
		}
		planes = append(planes, p)
	}
	cellMin := vc.grid.cellOrigin(idx)
	pos := solveQEF(planes, cellMin, vc.grid.h)
	id := len(vc.mesh.Vertices)
	vc.mesh.Vertices = append(vc.mesh.Vertices, pos)
	vc.ids[key] = id
	return id
}
