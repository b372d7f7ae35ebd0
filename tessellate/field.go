package tessellate

import (
	"errors"

	"github.com/soypat/dmc/gleval"
	"github.com/soypat/geometry/ms3"
)

// Field is the implicit scalar field consumed by the tessellator. It is the
// only collaborator the core depends on: mesh I/O, rendering, CLI parsing and
// the field's own internal representation are all out of scope here.
type Field interface {
	// ApproxValue evaluates the field at p. h is the current grid resolution,
	// which some fields use to bound their own approximation error.
	// Sign convention: negative inside the solid, positive outside.
	ApproxValue(p ms3.Vec, h float32) float32
	// Normal returns the (not necessarily unit-length) field gradient at p.
	Normal(p ms3.Vec) ms3.Vec
	// Bbox returns a tight bounding box of the solid.
	Bbox() ms3.Box
}

// SDF3Field adapts a [gleval.SDF3] (the vectorized CPU evaluator used
// throughout the csg package) into the scalar [Field] interface the
// tessellator expects, using central differences for the normal oracle.
type SDF3Field struct {
	sdf     gleval.SDF3
	vp      gleval.VecPool
	normBuf [1]ms3.Vec
	posBuf  [1]ms3.Vec
	distBuf [1]float32
}

// NewSDF3Field wraps sdf for consumption by the tessellator.
func NewSDF3Field(sdf gleval.SDF3) (*SDF3Field, error) {
	if sdf == nil {
		return nil, errors.New("nil SDF3")
	}
	return &SDF3Field{sdf: sdf}, nil
}

func (f *SDF3Field) ApproxValue(p ms3.Vec, h float32) float32 {
	f.posBuf[0] = p
	err := f.sdf.Evaluate(f.posBuf[:], f.distBuf[:], &f.vp)
	if err != nil {
		panic("tessellate: field evaluation failed: " + err.Error())
	}
	return f.distBuf[0]
}

const normalStep = 2e-4

func (f *SDF3Field) Normal(p ms3.Vec) ms3.Vec {
	f.posBuf[0] = p
	err := gleval.NormalsCentralDiff(f.sdf, f.posBuf[:], f.normBuf[:], normalStep, &f.vp)
	if err != nil {
		panic("tessellate: normal evaluation failed: " + err.Error())
	}
	return f.normBuf[0]
}

func (f *SDF3Field) Bbox() ms3.Box {
	return f.sdf.Bounds()
}
