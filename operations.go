package csg

import (
	"fmt"

	"github.com/soypat/dmc/gleval"
	"github.com/soypat/geometry/ms3"
)

// OpUnion is the result of the [Union] operation. Prefer using [Union] over
// constructing this type directly.
type OpUnion struct {
	// joined contains 2 or more 3D SDFs.
	joined []SDF3
}

// Union joins the shapes of several 3D SDFs into one. Is exact.
// Union aggregates nested Union results into its own to keep evaluation shallow.
func Union(shapes ...SDF3) SDF3 {
	if len(shapes) < 2 {
		panic("need at least 2 arguments to Union")
	}
	var U OpUnion
	for i, s := range shapes {
		if s == nil {
			panic(fmt.Sprintf("nil %d argument to Union", i))
		}
		if subU, ok := s.(*OpUnion); ok {
			U.joined = append(U.joined, subU.joined...)
		} else {
			U.joined = append(U.joined, s)
		}
	}
	return &U
}

func (u *OpUnion) mustValidate() {
	if len(u.joined) < 2 {
		panic("OpUnion must have at least 2 elements, please prefer using csg.Union over csg.OpUnion")
	}
}

// Bounds returns the union of all joined SDFs' bounds.
func (u *OpUnion) Bounds() ms3.Box {
	u.mustValidate()
	bb := u.joined[0].Bounds()
	for _, s := range u.joined[1:] {
		bb = bb.Union(s.Bounds())
	}
	return bb
}

// Evaluate implements [gleval.SDF3].
func (u *OpUnion) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	u.mustValidate()
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	auxDist := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(auxDist)
	err = evaluateSDF3(u.joined[0], pos, dist, userData)
	if err != nil {
		return err
	}
	for _, shape := range u.joined[1:] {
		err = evaluateSDF3(shape, pos, auxDist, userData)
		if err != nil {
			return err
		}
		for i := range dist {
			dist[i] = minf(dist[i], auxDist[i])
		}
	}
	return nil
}

type diff struct {
	s1, s2 SDF3 // Performs s1-s2.
}

// Difference is the SDF difference of a-b. Does not produce a true SDF.
func Difference(a, b SDF3) SDF3 {
	if a == nil || b == nil {
		panic("nil argument to Difference")
	}
	return &diff{s1: a, s2: b}
}

func (s *diff) Bounds() ms3.Box { return s.s1.Bounds() }

func (s *diff) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	d2 := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(d2)
	err = evaluateSDF3(s.s1, pos, dist, userData)
	if err != nil {
		return err
	}
	err = evaluateSDF3(s.s2, pos, d2, userData)
	if err != nil {
		return err
	}
	for i := range dist {
		dist[i] = maxf(dist[i], -d2[i])
	}
	return nil
}

type intersect struct {
	s1, s2 SDF3 // Performs s1 ^ s2.
}

// Intersection is the SDF intersection of a ^ b. Does not produce an exact SDF.
func Intersection(a, b SDF3) SDF3 {
	if a == nil || b == nil {
		panic("nil argument to Intersection")
	}
	return &intersect{s1: a, s2: b}
}

func (s *intersect) Bounds() ms3.Box {
	return s.s1.Bounds().Intersect(s.s2.Bounds())
}

func (s *intersect) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	d2 := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(d2)
	err = evaluateSDF3(s.s1, pos, dist, userData)
	if err != nil {
		return err
	}
	err = evaluateSDF3(s.s2, pos, d2, userData)
	if err != nil {
		return err
	}
	for i := range dist {
		dist[i] = maxf(dist[i], d2[i])
	}
	return nil
}

type translate struct {
	s SDF3
	p ms3.Vec
}

// Translate moves s by (dirX, dirY, dirZ).
func Translate(s SDF3, dirX, dirY, dirZ float32) SDF3 {
	if s == nil {
		panic("nil argument to Translate")
	}
	return &translate{s: s, p: ms3.Vec{X: dirX, Y: dirY, Z: dirZ}}
}

func (t *translate) Bounds() ms3.Box {
	return t.s.Bounds().Add(t.p)
}

func (t *translate) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	transformed := vp.V3.Acquire(len(pos))
	defer vp.V3.Release(transformed)
	T := t.p
	for i, p := range pos {
		transformed[i] = ms3.Sub(p, T)
	}
	return t.s.Evaluate(transformed, dist, userData)
}

type scale struct {
	s       SDF3
	scale   float32
	inverse float32
}

// Scale scales s by scaleFactor around the origin.
func Scale(s SDF3, scaleFactor float32) SDF3 {
	if s == nil {
		panic("nil argument to Scale")
	} else if scaleFactor == 0 {
		panic("zero scale factor")
	}
	return &scale{s: s, scale: scaleFactor, inverse: 1 / scaleFactor}
}

func (s *scale) Bounds() ms3.Box {
	b := s.s.Bounds()
	return b.Scale(ms3.Vec{X: s.scale, Y: s.scale, Z: s.scale})
}

func (s *scale) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	vp, err := gleval.GetVecPool(userData)
	if err != nil {
		return err
	}
	scaled := vp.V3.Acquire(len(pos))
	defer vp.V3.Release(scaled)
	for i, p := range pos {
		scaled[i] = ms3.Scale(s.inverse, p)
	}
	err = s.s.Evaluate(scaled, dist, userData)
	if err != nil {
		return err
	}
	factor := s.scale
	for i := range dist {
		dist[i] *= factor
	}
	return nil
}
