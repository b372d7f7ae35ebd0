package tessellate

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// GridZeroHit is returned by the grid sampler when a lattice point lands
// exactly on the field's zero level set. The entire algorithm branches on
// sign(f); a true zero has no defined side, so the caller must retry with a
// jittered bounding box.
type GridZeroHit struct {
	Position ms3.Vec
}

func (e *GridZeroHit) Error() string {
	return fmt.Sprintf("tessellate: grid sample hit exact zero at %v", e.Position)
}

// scalarGrid is the dense 3D array G[z][y][x] produced by the grid sampler.
// Dimensions are sample counts per axis; the cell count along an axis is
// dims[axis]-1.
type scalarGrid struct {
	bboxMin ms3.Vec
	h       float32
	dims    Index
	samples []float32
}

// cells returns the number of cells (not samples) along each axis.
func (g *scalarGrid) cells() Index {
	return Index{g.dims[0] - 1, g.dims[1] - 1, g.dims[2] - 1}
}

func (g *scalarGrid) sampleIndex(x, y, z int) int {
	return (z*g.dims[1]+y)*g.dims[0] + x
}

func (g *scalarGrid) at(x, y, z int) float32 {
	return g.samples[g.sampleIndex(x, y, z)]
}

func (g *scalarGrid) samplePos(x, y, z int) ms3.Vec {
	return ms3.Add(g.bboxMin, ms3.Vec{X: float32(x) * g.h, Y: float32(y) * g.h, Z: float32(z) * g.h})
}

// cellOrigin returns the world position of the corner-A (lowest) corner of cell idx.
func (g *scalarGrid) cellOrigin(idx Index) ms3.Vec {
	return g.samplePos(idx[0], idx[1], idx[2])
}

// signBits returns the 8-bit corner-sign bitset of cell idx: bit (z<<2|y<<1|x)
// is set iff that corner's sample is negative.
func (g *scalarGrid) signBits(idx Index) uint8 {
	var bits uint8
	for c := Corner(0); c < 8; c++ {
		dx, dy, dz := int(c&1), int((c>>1)&1), int((c>>2)&1)
		if g.at(idx[0]+dx, idx[1]+dy, idx[2]+dz) < 0 {
			bits |= 1 << c
		}
	}
	return bits
}

// buildScalarGrid samples field over a dilated bounding box at spacing h,
// producing a dense grid. It fails with [*GridZeroHit] on the first exact-zero
// sample encountered.
func buildScalarGrid(bbox ms3.Box, h float32, field Field) (*scalarGrid, error) {
	size := bbox.Size()
	dims := Index{
		int(math32.Ceil(size.X / h)),
		int(math32.Ceil(size.Y / h)),
		int(math32.Ceil(size.Z / h)),
	}
	for i, d := range dims {
		if d < 2 {
			dims[i] = 2
		}
	}
	g := &scalarGrid{
		bboxMin: bbox.Min,
		h:       h,
		dims:    dims,
		samples: make([]float32, dims[0]*dims[1]*dims[2]),
	}
	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				p := g.samplePos(x, y, z)
				val := field.ApproxValue(p, h)
				if val == 0 {
					return nil, &GridZeroHit{Position: p}
				}
				g.samples[g.sampleIndex(x, y, z)] = val
			}
		}
	}
	return g, nil
}
