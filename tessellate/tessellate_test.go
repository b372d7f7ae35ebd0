package tessellate

import (
	"testing"

	"github.com/soypat/geometry/ms3"
)

// sphereField is a hand-rolled origin-centered sphere field of radius r, independent of the csg
// package, so these tests exercise only the tessellator against a field with
// known analytic gradient.
type sphereField struct {
	r float32
}

func (s sphereField) ApproxValue(p ms3.Vec, h float32) float32 {
	return ms3.Norm(p) - s.r
}

func (s sphereField) Normal(p ms3.Vec) ms3.Vec {
	n := ms3.Norm(p)
	if n == 0 {
		return ms3.Vec{X: 1}
	}
	return ms3.Scale(1/n, p)
}

func (s sphereField) Bbox() ms3.Box {
	return ms3.Box{Min: ms3.Vec{X: -s.r, Y: -s.r, Z: -s.r}, Max: ms3.Vec{X: s.r, Y: s.r, Z: s.r}}
}

// planeField is an unbounded flat field f(p) = p.X, used to check behavior on
// a surface with a single, constant-normal sheet per cell.
type planeField struct{}

func (planeField) ApproxValue(p ms3.Vec, h float32) float32 { return p.X }
func (planeField) Normal(p ms3.Vec) ms3.Vec                 { return ms3.Vec{X: 1} }
func (planeField) Bbox() ms3.Box {
	return ms3.Box{Min: ms3.Vec{X: -1, Y: -1, Z: -1}, Max: ms3.Vec{X: 1, Y: 1, Z: 1}}
}

// zeroOnceField forces the very first grid sample to read exactly zero,
// exercising the retry controller exactly once.
type zeroOnceField struct {
	inner Field
	calls int
}

func (f *zeroOnceField) ApproxValue(p ms3.Vec, h float32) float32 {
	f.calls++
	if f.calls == 1 {
		return 0
	}
	return f.inner.ApproxValue(p, h)
}

func (f *zeroOnceField) Normal(p ms3.Vec) ms3.Vec { return f.inner.Normal(p) }
func (f *zeroOnceField) Bbox() ms3.Box            { return f.inner.Bbox() }

func TestTesselateSphereProducesClosedMesh(t *testing.T) {
	tess, err := New(sphereField{r: 0.9}, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := tess.Tesselate()
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Triangles) == 0 {
		t.Fatal("expected at least one triangle")
	}
	if len(mesh.Vertices) == 0 {
		t.Fatal("expected at least one vertex")
	}
	edgeCount := map[[2]int]int{}
	for _, tri := range mesh.Triangles {
		for i := 0; i < 3; i++ {
			a, b := tri[i], tri[(i+1)%3]
			if a == b {
				t.Fatalf("degenerate triangle %v", tri)
			}
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			edgeCount[key]++
		}
	}
	for e, n := range edgeCount {
		if n != 2 {
			t.Errorf("edge %v shared by %d triangles, want 2 for a closed mesh", e, n)
		}
	}
	for _, v := range mesh.Vertices {
		r := ms3.Norm(v)
		if r < 0.5 || r > 1.3 {
			t.Errorf("vertex %v has radius %f, expected close to 0.9", v, r)
		}
	}
}

func TestTesselatePlaneProducesFlatSheet(t *testing.T) {
	tess, err := New(planeField{}, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := tess.Tesselate()
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) == 0 {
		t.Fatal("expected vertices on the plane")
	}
	for _, v := range mesh.Vertices {
		if absf32(v.X) > 0.3 {
			t.Errorf("vertex %v too far from the x=0 plane", v)
		}
	}
}

func TestTesselateRetriesOnExactZeroSample(t *testing.T) {
	f := &zeroOnceField{inner: sphereField{r: 0.9}}
	tess, err := New(f, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := tess.Tesselate()
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Triangles) == 0 {
		t.Fatal("expected a mesh after retrying past the exact-zero sample")
	}
	if f.calls < 2 {
		t.Fatal("expected the field to be resampled after the forced zero hit")
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	if _, err := New(nil, 0.1); err == nil {
		t.Error("expected error for nil field")
	}
	if _, err := New(sphereField{r: 1}, 0); err == nil {
		t.Error("expected error for zero resolution")
	}
	if _, err := New(sphereField{r: 1}, -1); err == nil {
		t.Error("expected error for negative resolution")
	}
}

func TestQEFFallsBackInsideCell(t *testing.T) {
	planes := []Plane{
		{P: ms3.Vec{X: 0.5, Y: 0, Z: 0}, N: ms3.Vec{X: 1}},
		{P: ms3.Vec{X: 0, Y: 0.5, Z: 0}, N: ms3.Vec{Y: 1}},
	}
	cellMin := ms3.Vec{}
	h := float32(1.0)
	v := solveQEF(planes, cellMin, h)
	if !inOpenCell(v, cellMin, h) {
		t.Errorf("solveQEF returned out-of-cell vertex %v", v)
	}
}

func TestEigSym3Diagonal(t *testing.T) {
	m := [9]float32{2, 0, 0, 0, 3, 0, 0, 0, 5}
	vals, _ := eigSym3(m)
	sum := vals[0] + vals[1] + vals[2]
	if absf32(sum-10) > 1e-3 {
		t.Errorf("eigenvalue sum (trace) = %f, want 10", sum)
	}
}
