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
package qr

import (
	"math"
	"slices"

	"github.com/ajroetker/go-batchqr/hwy"
)

// ReconstructionError returns, per matrix, ||X - Q·R||_F / ||X||_F computed
// in float64. For an all-zero X the absolute error ||Q·R||_F is returned.
// Only the upper triangle of R (k >= j) is read.
func ReconstructionError[T hwy.Floats](shape Shape, x, q, r []T) []float64 {
	h, w := shape.Height, shape.Width
	errs := make([]float64, shape.NumMatrices)
	for m := range shape.NumMatrices {
		xm := x[m*shape.MatrixLen():]
		qm := q[m*shape.MatrixLen():]
		rm := r[m*shape.RMatrixLen():]

		var diff, ref float64
		for k := range w {
			for i := range h {
				var recon float64
				for j := 0; j <= k; j++ {
					recon += float64(qm[j*h+i]) * float64(rm[k*w+j])
				}
				xv := float64(xm[k*h+i])
				diff += (xv - recon) * (xv - recon)
				ref += xv * xv
			}
		}
		if ref == 0 {
			errs[m] = math.Sqrt(diff)
		} else {
			errs[m] = math.Sqrt(diff / ref)
		}
	}
	return errs
}

// OrthonormalityError returns, per matrix, the largest of |q_j·q_k| for
// j != k and | ||q_j|| - 1 |, computed in float64. Columns flagged as rank
// deficient in report are skipped; report may be nil.
func OrthonormalityError[T hwy.Floats](shape Shape, q []T, report *Report) []float64 {
	h, w := shape.Height, shape.Width
	errs := make([]float64, shape.NumMatrices)
	for m := range shape.NumMatrices {
		qm := q[m*shape.MatrixLen():]
		var skip []int
		if report != nil && m < len(report.Matrices) {
			skip = report.Matrices[m].DeficientColumns
		}

		var worst float64
		for j := range w {
			if slices.Contains(skip, j) {
				continue
			}
			for k := j; k < w; k++ {
				if slices.Contains(skip, k) {
					continue
				}
				var d float64
				for i := range h {
					d += float64(qm[j*h+i]) * float64(qm[k*h+i])
				}
				if j == k {
					d = math.Sqrt(d) - 1
				}
				worst = math.Max(worst, math.Abs(d))
			}
		}
		errs[m] = worst
	}
	return errs
}

// StrictlyLowerZero reports whether every never-written entry of R
// (k < j in r[k*Width+j]) is zero.
func StrictlyLowerZero[T hwy.Floats](shape Shape, r []T) bool {
	w := shape.Width
	for m := range shape.NumMatrices {
		rm := r[m*shape.RMatrixLen():]
		for k := range w {
			for j := k + 1; j < w; j++ {
				if rm[k*w+j] != 0 {
					return false
				}
			}
		}
	}
	return true
}
