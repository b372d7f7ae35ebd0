package tessellate

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// svdTruncSq is the truncation threshold applied to the squares of the
// singular values of the normals matrix A (i.e. to the eigenvalues of AtA),
// since the spec's threshold of 0.1 is stated in terms of singular values of
// A directly: sigma > 0.1  <=>  sigma^2 > 0.01.
const svdTruncSq = 0.1 * 0.1

// qefValue evaluates Q(x) = sum_i (n_i . (x - p_i))^2 for the given tangent planes.
func qefValue(planes []Plane, x ms3.Vec) float32 {
	var sum float32
	for _, pl := range planes {
		d := ms3.Dot(pl.N, ms3.Sub(x, pl.P))
		sum += d * d
	}
	return sum
}

// solveQEF places a vertex minimizing Q(x) = sum (n_i.(x-p_i))^2 for the given
// tangent planes, constrained to lie strictly inside the cell spanning
// [cellMin, cellMin+h]^3. It first attempts the algebraic truncated-SVD
// pseudo-inverse solution; if that solution escapes the cell it falls back to
// bounded per-axis coordinate descent, which is guaranteed to return an
// in-cell point.
func solveQEF(planes []Plane, cellMin ms3.Vec, h float32) ms3.Vec {
	mean := centroid(planes)
	x, ok := algebraicQEF(planes, mean)
	if ok && inOpenCell(x, cellMin, h) {
		return x
	}
	return coordDescentQEF(planes, cellMin, h)
}

func centroid(planes []Plane) ms3.Vec {
	var sum ms3.Vec
	for _, pl := range planes {
		sum = ms3.Add(sum, pl.P)
	}
	return ms3.Scale(1/float32(len(planes)), sum)
}

func inOpenCell(p, cellMin ms3.Vec, h float32) bool {
	d := ms3.Sub(p, cellMin)
	return d.X > 0 && d.X < h && d.Y > 0 && d.Y < h && d.Z > 0 && d.Z < h
}

// algebraicQEF solves A x ≈ b in the least-squares sense, x measured relative
// to mean, via the truncated-SVD pseudo-inverse of A. Since A^T A is the
// symmetric 3x3 matrix whose eigenvectors are the right singular vectors of A
// and whose eigenvalues are the squared singular values of A, the
// pseudo-inverse is assembled directly from the eigendecomposition of AtA
// without ever forming A or its SVD explicitly.
func algebraicQEF(planes []Plane, mean ms3.Vec) (ms3.Vec, bool) {
	var AtA ms3.Mat3
	var Atb ms3.Vec
	for _, pl := range planes {
		n := pl.N
		AtA = ms3.AddMat3(AtA, ms3.Prod(n, n))
		b := ms3.Dot(n, ms3.Sub(pl.P, mean))
		Atb = ms3.Add(Atb, ms3.Scale(b, n))
	}
	vals, vecs := eigSym3(AtA.Array())
	var pseudoInv ms3.Mat3
	truncated := 0
	for i := 0; i < 3; i++ {
		if vals[i] > svdTruncSq {
			pseudoInv = ms3.AddMat3(pseudoInv, ms3.ScaleMat3(ms3.Prod(vecs[i], vecs[i]), 1/vals[i]))
		} else {
			truncated++
		}
	}
	if truncated == 3 {
		// No well-conditioned direction at all: treated the same as SVD failure.
		return ms3.Vec{}, false
	}
	x := ms3.MulMatVec(pseudoInv, Atb)
	return ms3.Add(mean, x), true
}

// coordDescentQEF performs one pass of axis-wise bounded bisection within the
// cell interior (margin precision from each face), minimizing Q directly by
// comparing samples at two midpoints separated by precision/100 and shrinking
// the bracket until it is narrower than precision. Grounded on the original
// implementation's binary-search fallback, which bisects on QEF value rather
// than on the (here nonexistent) field sign.
func coordDescentQEF(planes []Plane, cellMin ms3.Vec, h float32) ms3.Vec {
	result := ms3.Add(cellMin, ms3.Vec{X: precision, Y: precision, Z: precision})
	for axis := 0; axis < 3; axis++ {
		a, b := result, result
		setAxis(&b, axis, getAxis(result, axis)+h-2*precision)
		lastMid := getAxis(a, axis)
		for getAxis(a, axis)+precision < getAxis(b, axis) {
			mid := 0.5 * (getAxis(a, axis) + getAxis(b, axis))
			ma, mb := a, a
			setAxis(&ma, axis, mid)
			setAxis(&mb, axis, mid+precision/100)
			lastMid = mid
			if qefValue(planes, ma) < qefValue(planes, mb) {
				b = mb
			} else {
				a = ma
			}
		}
		setAxis(&result, axis, lastMid)
	}
	return result
}

func getAxis(v ms3.Vec, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func setAxis(v *ms3.Vec, axis int, value float32) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}

// eigSym3 computes eigenvalues and orthonormal eigenvectors of the symmetric
// 3x3 matrix given by its column-major element array, via the classical
// cyclic Jacobi rotation method.
func eigSym3(m [9]float32) (vals [3]float32, vecs [3]ms3.Vec) {
	a := [3][3]float32{
		{m[0], m[3], m[6]},
		{m[1], m[4], m[7]},
		{m[2], m[5], m[8]},
	}
	v := [3][3]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for iter := 0; iter < 50; iter++ {
		p, q := 0, 1
		maxVal := absf32(a[0][1])
		if absf32(a[0][2]) > maxVal {
			p, q, maxVal = 0, 2, absf32(a[0][2])
		}
		if absf32(a[1][2]) > maxVal {
			p, q, maxVal = 1, 2, absf32(a[1][2])
		}
		if maxVal < 1e-12 {
			break
		}
		app, aqq, apq := a[p][p], a[q][q], a[p][q]
		theta := (aqq - app) / (2 * apq)
		var t float32
		if theta == 0 {
			t = 1
		} else {
			t = signf(theta) / (absf32(theta) + math32.Sqrt(theta*theta+1))
		}
		c := 1 / math32.Sqrt(t*t+1)
		s := t * c
		for k := 0; k < 3; k++ {
			akp, akq := a[k][p], a[k][q]
			a[k][p] = c*akp - s*akq
			a[k][q] = s*akp + c*akq
		}
		for k := 0; k < 3; k++ {
			apk, aqk := a[p][k], a[q][k]
			a[p][k] = c*apk - s*aqk
			a[q][k] = s*apk + c*aqk
		}
		for k := 0; k < 3; k++ {
			vkp, vkq := v[k][p], v[k][q]
			v[k][p] = c*vkp - s*vkq
			v[k][q] = s*vkp + c*vkq
		}
	}
	vals = [3]float32{a[0][0], a[1][1], a[2][2]}
	vecs = [3]ms3.Vec{
		{X: v[0][0], Y: v[1][0], Z: v[2][0]},
		{X: v[0][1], Y: v[1][1], Z: v[2][1]},
		{X: v[0][2], Y: v[1][2], Z: v[2][2]},
	}
	return vals, vecs
}
