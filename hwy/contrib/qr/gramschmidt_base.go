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

	"github.com/ajroetker/go-batchqr/hwy"
	"github.com/ajroetker/go-batchqr/hwy/contrib/vec"
)

// BaseGramSchmidt decomposes one matrix with Modified Gram-Schmidt on the
// calling goroutine.
//
// x holds width vectors of height entries (vector-major); v is scratch of
// the same size, overwritten; q receives the orthonormal vectors; r
// receives R as described in the package documentation. Entries of r with
// k < j are not written. The slices must not overlap and must have the
// sizes implied by height and width.
//
// Column j is rank deficient when its norm after orthogonalisation is zero,
// non-finite or <= tol*||x[j]||; policy chooses what is written to q[j].
//
//	for j := range width:
//	    r[j][j] = ||v[j]||
//	    q[j] = v[j] / r[j][j]
//	    for k := j+1 .. width-1:
//	        r[k][j] = q[j]·v[k]
//	        v[k] -= r[k][j] * q[j]
func BaseGramSchmidt[T hwy.Floats](x, v, q, r []T, height, width int, tol float64, policy RankPolicy) MatrixStatus {
	xNorms := make([]float64, width)
	for j := range width {
		copy(column(v, j, height), column(x, j, height))
		xNorms[j] = float64(vec.Norm(column(x, j, height)))
	}

	deficient := make([]bool, width)
	norms := make([]T, width)
	for j := range width {
		qj := column(q, j, height)
		norms[j], deficient[j] = normalizeColumn(column(v, j, height), qj, xNorms[j], tol, policy)
		r[j*width+j] = norms[j]

		for k := j + 1; k < width; k++ {
			r[k*width+j] = projectOut(qj, column(v, k, height), deficient[j], policy)
		}
	}

	return newStatus(deficient, norms)
}

// column returns vector j of a vector-major matrix.
func column[T hwy.Floats](buf []T, j, height int) []T {
	return buf[j*height : (j+1)*height : (j+1)*height]
}

// normalizeColumn writes q_j = v_j / ||v_j|| and returns ||v_j||, or fills
// q_j according to policy and reports the column as deficient.
func normalizeColumn[T hwy.Floats](vj, qj []T, xNorm, tol float64, policy RankPolicy) (T, bool) {
	norm := vec.Norm(vj)
	n := float64(norm)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) || n <= tol*xNorm {
		if policy == RankNaN {
			vec.Fill(qj, T(math.NaN()))
		} else {
			vec.Fill(qj, 0)
		}
		return norm, true
	}
	vec.DivConstTo(qj, vj, norm)
	return norm, false
}

// projectOut removes the q_j component from v_k in place and returns the
// coefficient q_j·v_k. Under RankZero a deficient q_j contributes nothing.
func projectOut[T hwy.Floats](qj, vk []T, deficient bool, policy RankPolicy) T {
	if deficient && policy == RankZero {
		return 0
	}
	d := vec.Dot(qj, vk)
	vec.MulConstAddTo(vk, -d, qj)
	return d
}

func newStatus[T hwy.Floats](deficient []bool, norms []T) MatrixStatus {
	var s MatrixStatus
	s.MinNorm = math.Inf(1)
	for j, bad := range deficient {
		if bad {
			s.DeficientColumns = append(s.DeficientColumns, j)
		}
		if n := float64(norms[j]); n < s.MinNorm || math.IsNaN(n) {
			s.MinNorm = n
		}
	}
	return s
}
