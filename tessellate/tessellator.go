// Package tessellate implements Dual Marching Cubes with QEF-based vertex
// placement: it converts an implicit scalar [Field] into a triangle [Mesh].
package tessellate

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
)

// dilation is the padding, in multiples of h, added to every side of the
// field's bounding box so that the sample lattice extends beyond the solid on
// each axis. The quad emitter still checks that all 4 cells around a crossing
// lie in the grid and emits no quad for a crossing where they do not.
const dilation = 1.1

// maxAttempts bounds the retry loop against an adversarial field that keeps
// landing grid samples exactly on the zero level set; it is a safety valve,
// not expected to trigger for any field seen in practice.
const maxAttempts = 32

// Tessellator extracts a triangle mesh from a [Field] at a fixed target
// resolution h, using dual marching cubes with least-squares vertex
// placement.
type Tessellator struct {
	field Field
	h     float32
	bbox  ms3.Box
	rng   uint32
}

// New prepares a tessellator for field at grid spacing h. The working
// bounding box is the field's own, dilated outward so that its faces never
// coincide with a true surface feature.
func New(field Field, h float32) (*Tessellator, error) {
	if field == nil {
		return nil, errors.New("tessellate: nil field")
	}
	if h <= 0 {
		return nil, errors.New("tessellate: resolution must be positive")
	}
	box := field.Bbox()
	pad := ms3.Vec{X: dilation * h, Y: dilation * h, Z: dilation * h}
	t := &Tessellator{
		field: field,
		h:     h,
		bbox:  ms3.Box{Min: ms3.Sub(box.Min, pad), Max: ms3.Add(box.Max, pad)},
		rng:   0x9e3779b9,
	}
	return t, nil
}

// Tesselate extracts the mesh, retrying with a jittered bounding box whenever
// a grid sample lands exactly on the zero level set.
func (t *Tessellator) Tesselate() (Mesh, error) {
	bbox := t.bbox
	for attempt := 0; attempt < maxAttempts; attempt++ {
		mesh, err := t.tryTesselate(bbox)
		if err == nil {
			return mesh, nil
		}
		var zeroHit *GridZeroHit
		if !errors.As(err, &zeroHit) {
			return Mesh{}, err
		}
		bbox = t.jitter(bbox)
	}
	return Mesh{}, fmt.Errorf("tessellate: exceeded %d attempts, field keeps landing grid samples on its zero level set", maxAttempts)
}

// jitter dilates the bounding box on every side by a random offset in (h/2, h],
// strictly larger than half a cell so the new sample lattice cannot repeat
// the same zero hit.
func (t *Tessellator) jitter(box ms3.Box) ms3.Box {
	padding := t.h / (1 + absf32(t.nextRand()))
	offset := ms3.Scale(padding, ms3.Vec{X: 1, Y: 1, Z: 1})
	return ms3.Box{Min: ms3.Sub(box.Min, offset), Max: ms3.Add(box.Max, offset)}
}

// nextRand is a tiny deterministic xorshift generator: retries must be
// reproducible across runs given the same field, so no entropy source is used.
func (t *Tessellator) nextRand() float32 {
	x := t.rng
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	t.rng = x
	const maxInt32 = 1<<31 - 1
	return float32(int32(x)) / float32(maxInt32)
}

// tryTesselate performs one full grid-sample-and-extract pass over bbox. All
// state (grid, edge crossings, vertex cache, mesh) is rebuilt from scratch,
// so a retry after a zero hit cannot see stale data from the previous attempt.
func (t *Tessellator) tryTesselate(bbox ms3.Box) (Mesh, error) {
	grid, err := buildScalarGrid(bbox, t.h, t.field)
	if err != nil {
		return Mesh{}, err
	}
	eg := buildEdgeGrid(grid, t.field)
	mesh := &Mesh{}
	vc := newVertexCache(mesh, eg, grid)
	for key := range eg {
		t.emitQuad(grid, eg, vc, key.e, key.idx)
	}
	return *mesh, nil
}

// emitQuad, given a canonical crossing at (baseEdge, ownerIdx), gathers the
// dual vertices of the 4 cells sharing that physical edge and emits the
// resulting quad as two triangles, winding by the sign of the edge's lower
// endpoint so all faces point from the negative (inside) side outward.
func (t *Tessellator) emitQuad(grid *scalarGrid, eg edgeGrid, vc *vertexCache, baseEdge Edge, ownerIdx Index) {
	axis := baseEdge.Axis()
	cellEdges := quads[axis]
	var verts [4]int
	for k, ce := range cellEdges {
		c := ownerIdx.sub(edgeOffset[ce])
		if !inGrid(c, grid) {
			return
		}
		signBits := grid.signBits(c)
		verts[k] = vc.vertexFor(c, signBits, ce)
	}
	lowCorner := edgeCorners[baseEdge][0]
	dx, dy, dz := int(lowCorner&1), int((lowCorner>>1)&1), int((lowCorner>>2)&1)
	va := grid.at(ownerIdx[0]+dx, ownerIdx[1]+dy, ownerIdx[2]+dz)
	mesh := vc.mesh
	if va >= 0 {
		mesh.addTriangle(verts[0], verts[1], verts[2])
		mesh.addTriangle(verts[0], verts[2], verts[3])
	} else {
		mesh.addTriangle(verts[0], verts[2], verts[1])
		mesh.addTriangle(verts[0], verts[3], verts[2])
	}
}

func inGrid(idx Index, grid *scalarGrid) bool {
	cells := grid.cells()
	for i := 0; i < 3; i++ {
		if idx[i] < 0 || idx[i] >= cells[i] {
			return false
		}
	}
	return true
}
