// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package vec

import "github.com/ajroetker/go-batchqr/hwy"

// Dot returns Σ(a[i] * b[i]) over the common length of a and b.
//
// Vectors are accumulated lane-blocked via BaseDot, unless dispatch is in
// scalar mode (for instance HWY_NO_SIMD=1), in which case a single running
// sum in index order is used.
func Dot[T hwy.Floats](a, b []T) T {
	if hwy.CurrentLevel() == hwy.DispatchScalar {
		return BaseDotScalar(a, b)
	}
	return BaseDot(a, b)
}

// SquaredNorm returns Dot(v, v).
func SquaredNorm[T hwy.Floats](v []T) T {
	return Dot(v, v)
}

// Norm returns the Euclidean norm of v.
func Norm[T hwy.Floats](v []T) T {
	squaredNorm := SquaredNorm(v)
	if squaredNorm == 0 {
		return 0
	}
	return Sqrt(squaredNorm)
}

// MulConstAddTo performs dst[i] += a * x[i].
func MulConstAddTo[T hwy.Floats](dst []T, a T, x []T) {
	if hwy.CurrentLevel() == hwy.DispatchScalar {
		n := min(len(dst), len(x))
		for i := range n {
			dst[i] += T(a * x[i])
		}
		return
	}
	BaseMulConstAddTo(dst, a, x)
}

// ScaleTo performs dst[i] = c * s[i].
func ScaleTo[T hwy.Floats](dst []T, c T, s []T) {
	BaseScaleTo(dst, c, s)
}

// DivConstTo performs dst[i] = s[i] / c.
func DivConstTo[T hwy.Floats](dst []T, s []T, c T) {
	BaseDivConstTo(dst, s, c)
}

// DotFloat32 is the non-generic version of Dot for float32.
func DotFloat32(a, b []float32) float32 { return Dot(a, b) }

// DotFloat64 is the non-generic version of Dot for float64.
func DotFloat64(a, b []float64) float64 { return Dot(a, b) }

// NormFloat32 is the non-generic version of Norm for float32.
func NormFloat32(v []float32) float32 { return Norm(v) }

// NormFloat64 is the non-generic version of Norm for float64.
func NormFloat64(v []float64) float64 { return Norm(v) }
