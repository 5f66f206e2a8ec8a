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
	"github.com/ajroetker/go-batchqr/hwy"
	"github.com/ajroetker/go-batchqr/hwy/contrib/vec"
	"github.com/ajroetker/go-batchqr/hwy/contrib/workerpool"
)

// LanesGramSchmidt computes the same decomposition as BaseGramSchmidt with
// the work of one matrix spread over lanes goroutines.
//
// The copy of x into v is split by vector. Each round j then has two phases
// separated by barriers: lane 0 normalises v_j into q_j and writes r[j][j];
// then the updates of the later vectors k > j are dealt round-robin to the
// lanes. Every vector is updated by exactly one lane per round and in the
// same order as in BaseGramSchmidt, so both kernels produce identical
// results.
//
// The barrier after the updates is what makes round j+1 safe: lane 0 reads
// v_{j+1}, which another lane may have just written.
//
// lanes is capped at width; with one lane no goroutine is started.
func LanesGramSchmidt[T hwy.Floats](x, v, q, r []T, height, width, lanes int, tol float64, policy RankPolicy) MatrixStatus {
	lanes = max(1, min(lanes, width))

	xNorms := make([]float64, width)
	deficient := make([]bool, width)
	norms := make([]T, width)

	workerpool.RunLanes(lanes, func(lane int, b *workerpool.Barrier) {
		for j := lane; j < width; j += lanes {
			copy(column(v, j, height), column(x, j, height))
			xNorms[j] = float64(vec.Norm(column(x, j, height)))
		}
		b.Wait()

		for j := range width {
			qj := column(q, j, height)
			if lane == 0 {
				norms[j], deficient[j] = normalizeColumn(column(v, j, height), qj, xNorms[j], tol, policy)
				r[j*width+j] = norms[j]
			}
			b.Wait()

			for k := j + 1 + lane; k < width; k += lanes {
				r[k*width+j] = projectOut(qj, column(v, k, height), deficient[j], policy)
			}
			b.Wait()
		}
	})

	return newStatus(deficient, norms)
}
