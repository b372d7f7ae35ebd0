package csg

import (
	"errors"

	"github.com/soypat/geometry/ms3"
)

type sphere struct {
	r float32
}

// NewSphere creates a sphere centered at the origin of radius r.
func NewSphere(r float32) (SDF3, error) {
	if r <= 0 {
		return nil, errors.New("zero or negative sphere radius")
	}
	return &sphere{r: r}, nil
}

func (s *sphere) Bounds() ms3.Box {
	return ms3.Box{
		Min: ms3.Vec{X: -s.r, Y: -s.r, Z: -s.r},
		Max: ms3.Vec{X: s.r, Y: s.r, Z: s.r},
	}
}

func (s *sphere) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	r := s.r
	for i, p := range pos {
		dist[i] = ms3.Norm(p) - r
	}
	return nil
}

type box struct {
	dims  ms3.Vec
	round float32
}

// NewBox creates a box centered at the origin with x,y,z dimensions and a rounding parameter to round edges.
func NewBox(x, y, z, round float32) (SDF3, error) {
	if round < 0 || round > x/2 || round > y/2 || round > z/2 {
		return nil, errors.New("invalid box rounding value")
	} else if x <= 0 || y <= 0 || z <= 0 {
		return nil, errors.New("zero or negative box dimension")
	}
	return &box{dims: ms3.Vec{X: x, Y: y, Z: z}, round: round}, nil
}

func (s *box) Bounds() ms3.Box {
	return ms3.NewCenteredBox(ms3.Vec{}, s.dims)
}

func (b *box) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	d := ms3.Scale(0.5, b.dims)
	r := b.round
	for i, p := range pos {
		q := ms3.AddScalar(r, ms3.Sub(ms3.AbsElem(p), d))
		dist[i] = ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0.0) - r
	}
	return nil
}

type torus struct {
	rLesser, rGreater float32
}

// NewTorus creates a 3D torus given 2 radii to define the radius across (greaterRadius)
// and the "solid" radius (lesserRadius). The torus' axis is in the z axis.
func NewTorus(greaterRadius, lesserRadius float32) (SDF3, error) {
	if greaterRadius < 2*lesserRadius {
		return nil, errors.New("too large torus lesser radius")
	} else if greaterRadius <= 0 || lesserRadius <= 0 {
		return nil, errors.New("invalid torus parameter")
	}
	return &torus{rLesser: lesserRadius, rGreater: greaterRadius}, nil
}

func (s *torus) Bounds() ms3.Box {
	R := s.rLesser + s.rGreater
	return ms3.Box{
		Min: ms3.Vec{X: -R, Y: -R, Z: -s.rLesser},
		Max: ms3.Vec{X: R, Y: R, Z: s.rLesser},
	}
}

func (t *torus) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	t1 := t.rGreater
	t2 := t.rLesser
	for i, p := range pos {
		p = ms3.Vec{X: p.X, Y: p.Z, Z: p.Y}
		q := hypotf(p.X, p.Z) - t1
		dist[i] = hypotf(q, p.Y) - t2
	}
	return nil
}

type halfSpace struct {
	// n is the (unit) outward normal of the plane; the solid occupies n·(p-p0) < 0.
	n  ms3.Vec
	p0 ms3.Vec
}

// NewHalfSpace creates the solid half of space on the negative side of the plane
// through p0 with outward normal n, i.e. f(p) = n·(p-p0). Useful as a cutting
// plane or, on its own, as an unbounded sheet-producing field for testing the
// tessellator against flat, axis-aligned surfaces.
func NewHalfSpace(n, p0 ms3.Vec) (SDF3, error) {
	norm := ms3.Norm(n)
	if norm < epstol {
		return nil, errors.New("zero or near-zero half-space normal")
	}
	return &halfSpace{n: ms3.Scale(1/norm, n), p0: p0}, nil
}

// Bounds returns a very large box since a half-space is unbounded; callers
// tessellating a half-space should intersect it with a bounded shape or rely
// on the tessellator's own bounding box argument instead of this Bounds call.
func (s *halfSpace) Bounds() ms3.Box {
	return ms3.Box{
		Min: ms3.Vec{X: -largenum, Y: -largenum, Z: -largenum},
		Max: ms3.Vec{X: largenum, Y: largenum, Z: largenum},
	}
}

func (s *halfSpace) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	n, p0 := s.n, s.p0
	for i, p := range pos {
		dist[i] = ms3.Dot(n, ms3.Sub(p, p0))
	}
	return nil
}

func evaluateSDF3(obj SDF3, pos []ms3.Vec, dist []float32, userData any) error {
	return obj.Evaluate(pos, dist, userData)
}
