// Package csg provides constructive solid geometry primitives and
// boolean/transform operations over signed distance fields (SDFs).
// Every shape produced by this package implements [gleval.SDF3] and can be
// evaluated on the CPU directly, or fed into the dmc/tessellate package to
// extract a triangle mesh.
package csg

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/dmc/gleval"
	"github.com/soypat/geometry/ms3"
)

const (
	largenum = 1e20
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization or transformation matrix determinants.
	epstol = 6e-7
)

// SDF3 is the interface implemented by every shape in this package.
type SDF3 = gleval.SDF3

// Builder accumulates errors encountered while constructing shapes,
// allowing a chain of primitive/operation calls to defer error handling
// to one final check instead of threading an error return through every call.
type Builder struct {
	accumErrs []error
}

// Err returns errors accumulated during SDF primitive creation and operations. The returned error implements `Unwrap() []error`.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors clears accumulated errors such that [Builder.Err] returns nil on next call.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) accumErr(err error) {
	if err != nil {
		bld.accumErrs = append(bld.accumErrs, err)
	}
}

// NewSphere creates a sphere centered at the origin of radius r, accumulating
// any construction error on bld instead of returning it.
func (bld *Builder) NewSphere(r float32) SDF3 {
	s, err := NewSphere(r)
	bld.accumErr(err)
	return s
}

// NewBox creates a box centered at the origin, accumulating any construction
// error on bld instead of returning it.
func (bld *Builder) NewBox(x, y, z, round float32) SDF3 {
	s, err := NewBox(x, y, z, round)
	bld.accumErr(err)
	return s
}

// NewTorus creates a torus around the z axis, accumulating any construction
// error on bld instead of returning it.
func (bld *Builder) NewTorus(greaterRadius, lesserRadius float32) SDF3 {
	s, err := NewTorus(greaterRadius, lesserRadius)
	bld.accumErr(err)
	return s
}

// NewHalfSpace creates a half-space cutting plane, accumulating any
// construction error on bld instead of returning it.
func (bld *Builder) NewHalfSpace(n, p0 ms3.Vec) SDF3 {
	s, err := NewHalfSpace(n, p0)
	bld.accumErr(err)
	return s
}

// Union joins shapes, panicking (via [Union]) on fewer than 2 non-nil arguments.
func (bld *Builder) Union(shapes ...SDF3) SDF3 { return Union(shapes...) }

// Difference subtracts b from a. See [Difference].
func (bld *Builder) Difference(a, b SDF3) SDF3 { return Difference(a, b) }

// Intersection intersects a and b. See [Intersection].
func (bld *Builder) Intersection(a, b SDF3) SDF3 { return Intersection(a, b) }

// Translate moves s by (dirX, dirY, dirZ). See [Translate].
func (bld *Builder) Translate(s SDF3, dirX, dirY, dirZ float32) SDF3 {
	return Translate(s, dirX, dirY, dirZ)
}

// Scale scales s around the origin. See [Scale].
func (bld *Builder) Scale(s SDF3, scaleFactor float32) SDF3 { return Scale(s, scaleFactor) }

func minf(a, b float32) float32   { return math32.Min(a, b) }
func maxf(a, b float32) float32   { return math32.Max(a, b) }
func hypotf(a, b float32) float32 { return math32.Hypot(a, b) }
