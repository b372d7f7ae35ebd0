package tessellate

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// precision bounds the absolute tolerance (scaled by h) of the edge-crossing
// locator and the in-cell margin of the QEF fallback search.
const precision = 0.01

// maxLocateDepth caps the recursive interval refinement in locateCrossing.
// The source algorithm (plain secant-style recursion) can in principle
// oscillate near a sign flip when both endpoint magnitudes are large; capping
// recursion depth and returning the midpoint of the current bracket bounds
// worst-case cost without sacrificing correctness for well-behaved fields.
const maxLocateDepth = 64

// Plane is a surface tangent plane: P is a zero crossing on a grid edge, N is
// the field gradient at P (not required to be unit length).
type Plane struct {
	P ms3.Vec
	N ms3.Vec
}

type edgeKey struct {
	e   Edge
	idx Index
}

// edgeGrid maps (baseEdge, cellIndex) to the tangent plane of that cell edge's
// zero crossing. Keys exist iff the edge has a sign change. Read-only after construction.
type edgeGrid map[edgeKey]Plane

func signf(v float32) float32 {
	if v == 0 {
		return 0
	}
	return math32.Copysign(1, v)
}

func absf32(v float32) float32 {
	return math32.Abs(v)
}

// locateCrossing finds the zero crossing between a (value va) and b (value vb),
// which must have opposing signs, via recursive interval refinement: a
// secant-style linear-interpolation guess converges faster than plain
// bisection for smooth fields, at the cost of needing a depth cap for
// pathological ones.
func locateCrossing(field Field, h float32, a, b ms3.Vec, va, vb float32, depth int) ms3.Vec {
	if absf32(va) < precision*h {
		return a
	}
	if absf32(vb) < precision*h {
		return b
	}
	if depth >= maxLocateDepth {
		return ms3.Scale(0.5, ms3.Add(a, b))
	}
	t := absf32(va) / absf32(vb-va)
	n := ms3.Add(a, ms3.Scale(t, ms3.Sub(b, a)))
	nv := field.ApproxValue(n, h)
	if signf(va) != signf(nv) {
		return locateCrossing(field, h, a, n, va, nv, depth+1)
	}
	return locateCrossing(field, h, n, b, nv, vb, depth+1)
}

// buildEdgeGrid walks the three base edges (+x,+y,+z) of every cell in g whose
// endpoints have opposite sign, recording a tangent plane per crossing.
func buildEdgeGrid(g *scalarGrid, field Field) edgeGrid {
	cells := g.cells()
	eg := make(edgeGrid, cells[0]*cells[1]*cells[2])
	h := g.h
	for z := 0; z < cells[2]; z++ {
		for y := 0; y < cells[1]; y++ {
			for x := 0; x < cells[0]; x++ {
				idx := Index{x, y, z}
				a := g.cellOrigin(idx)
				va := g.at(x, y, z)
				for _, e := range [3]Edge{EdgeA, EdgeB, EdgeC} {
					axis := e.Axis()
					eo := edgeEndOffset[axis]
					vb := g.at(x+eo[0], y+eo[1], z+eo[2])
					if signf(va) == signf(vb) {
						continue
					}
					b := ms3.Add(a, ms3.Scale(h, axisVec(axis)))
					p := locateCrossing(field, h, a, b, va, vb, 0)
					n := field.Normal(p)
					eg[edgeKey{e, idx}] = Plane{P: p, N: n}
				}
			}
		}
	}
	return eg
}

func axisVec(axis int) ms3.Vec {
	switch axis {
	case 0:
		return ms3.Vec{X: 1}
	case 1:
		return ms3.Vec{Y: 1}
	default:
		return ms3.Vec{Z: 1}
	}
}

// tangentPlane looks up the tangent plane owning local edge e of cell idx,
// translating via the cell-offset table into the canonical (base edge, owner cell) key.
func (eg edgeGrid) tangentPlane(e Edge, idx Index) (Plane, bool) {
	owner := idx.add(edgeOffset[e])
	p, ok := eg[edgeKey{e.Base(), owner}]
	return p, ok
}
