package csg

import (
	"math"
	"testing"

	"github.com/soypat/dmc/gleval"
	"github.com/soypat/geometry/ms3"
)

var bld Builder

func TestSphereEvaluate(t *testing.T) {
	s, err := NewSphere(1)
	if err != nil {
		t.Fatal(err)
	}
	pos := []ms3.Vec{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	dist := make([]float32, len(pos))
	err = s.Evaluate(pos, dist, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{-1, 1, 0}
	for i := range want {
		if math.Abs(float64(dist[i]-want[i])) > 1e-6 {
			t.Errorf("index %d: got %f want %f", i, dist[i], want[i])
		}
	}
}

func TestSphereInvalidRadius(t *testing.T) {
	if _, err := NewSphere(0); err == nil {
		t.Error("expected error for zero radius")
	}
	if _, err := NewSphere(-1); err == nil {
		t.Error("expected error for negative radius")
	}
}

func TestBoxBounds(t *testing.T) {
	b, err := NewBox(2, 4, 6, 0)
	if err != nil {
		t.Fatal(err)
	}
	bb := b.Bounds()
	want := ms3.Box{Min: ms3.Vec{X: -1, Y: -2, Z: -3}, Max: ms3.Vec{X: 1, Y: 2, Z: 3}}
	if bb.Min != want.Min || bb.Max != want.Max {
		t.Errorf("got %+v want %+v", bb, want)
	}
}

func TestHalfSpaceEvaluate(t *testing.T) {
	hs, err := NewHalfSpace(ms3.Vec{X: 1}, ms3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	pos := []ms3.Vec{{X: -3}, {X: 0}, {X: 5}}
	dist := make([]float32, len(pos))
	if err := hs.Evaluate(pos, dist, nil); err != nil {
		t.Fatal(err)
	}
	if dist[0] >= 0 || dist[1] != 0 || dist[2] <= 0 {
		t.Errorf("unexpected signs: %v", dist)
	}
}

func TestUnionRequiresTwoShapes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic calling Union with a single shape")
		}
	}()
	sph := bld.NewSphere(1)
	Union(sph)
}

func TestDifferenceSphereMinusSphere(t *testing.T) {
	big, err := NewSphere(2)
	if err != nil {
		t.Fatal(err)
	}
	small, err := NewSphere(1)
	if err != nil {
		t.Fatal(err)
	}
	shape := Difference(big, small)
	pos := []ms3.Vec{{X: 0}, {X: 1.5}, {X: 3}}
	dist := make([]float32, len(pos))
	if err := shape.Evaluate(pos, dist, &gleval.VecPool{}); err != nil {
		t.Fatal(err)
	}
	if dist[0] <= 0 {
		t.Error("origin should be outside the shell (inside the removed sphere)")
	}
	if dist[1] >= 0 {
		t.Error("midpoint between radii should be inside the shell")
	}
	if dist[2] <= 0 {
		t.Error("point outside both spheres should be outside")
	}
}

func TestTranslateAndScaleBounds(t *testing.T) {
	s, err := NewSphere(1)
	if err != nil {
		t.Fatal(err)
	}
	moved := Translate(s, 3, 0, 0)
	bb := moved.Bounds()
	if bb.Min.X != 2 || bb.Max.X != 4 {
		t.Errorf("unexpected translated bounds: %+v", bb)
	}
	scaled := Scale(s, 2)
	bb = scaled.Bounds()
	if bb.Min.X != -2 || bb.Max.X != 2 {
		t.Errorf("unexpected scaled bounds: %+v", bb)
	}
}

func TestBuilderAccumulatesErrors(t *testing.T) {
	var b Builder
	b.NewSphere(-1)
	b.NewBox(-1, 1, 1, 0)
	if b.Err() == nil {
		t.Fatal("expected accumulated errors")
	}
	b.ClearErrors()
	if b.Err() != nil {
		t.Error("expected errors cleared")
	}
}
