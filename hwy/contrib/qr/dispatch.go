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
	"time"

	"github.com/ajroetker/go-batchqr/hwy"
	"github.com/ajroetker/go-batchqr/hwy/contrib/workerpool"
)

// Decompose computes Q and R for every matrix of a batch.
//
//   - input holds shape.InputLen() entries and is only read.
//   - q receives shape.InputLen() entries.
//   - r receives the upper triangle of each R (shape.RLen() entries in
//     total); the strictly lower part is never written, so r should be
//     zero-initialised if it is read back whole.
//
// The scratch buffer is allocated internally; use DecomposeWithScratch to
// supply it. Shape, size and aliasing errors are returned before anything
// is written. Rank deficiency is not an error here: it is reported per
// matrix in the returned Report (see Report.Err).
func Decompose[T hwy.Floats](shape Shape, input, q, r []T, opts ...Option) (*Report, error) {
	if err := checkBuffers(shape, input, nil, q, r); err != nil {
		return nil, err
	}
	v := make([]T, shape.InputLen())
	return DecomposeWithScratch(shape, input, v, q, r, opts...)
}

// DecomposeWithScratch is Decompose with a caller-supplied scratch buffer v
// of shape.InputLen() entries. Its contents on return are unspecified.
func DecomposeWithScratch[T hwy.Floats](shape Shape, input, v, q, r []T, opts ...Option) (*Report, error) {
	groups, err := Regions(shape, input, v, q, r)
	if err != nil {
		return nil, err
	}

	o := newOptions(opts)
	kernel := o.kernelFor(shape)
	lanes := 1
	if kernel == KernelLanes {
		lanes = o.lanesFor(shape)
	}
	tol := tolerance[T](o)
	policy := o.rankPolicy
	height, width := shape.Height, shape.Width

	report := &Report{
		Shape:    shape,
		Kernel:   kernel,
		Lanes:    lanes,
		Matrices: make([]MatrixStatus, len(groups)),
	}

	// Each group writes only its own slices and its own report entry.
	run := func(g int) {
		grp := groups[g]
		var status MatrixStatus
		if kernel == KernelLanes {
			status = LanesGramSchmidt(grp.X, grp.V, grp.Q, grp.R, height, width, lanes, tol, policy)
		} else {
			status = BaseGramSchmidt(grp.X, grp.V, grp.Q, grp.R, height, width, tol, policy)
		}
		status.Index = grp.Index
		report.Matrices[g] = status
	}

	start := time.Now()
	switch {
	case len(groups) == 1:
		run(0)
	case o.pool != nil:
		o.pool.ParallelForAtomic(len(groups), run)
	default:
		workerpool.ForAtomic(len(groups), run)
	}

	if o.observer != nil {
		o.observer.ObserveBatch(shape, kernel, time.Since(start), report)
	}
	return report, nil
}

// DecomposeWithPool is Decompose running the groups on pool.
// A nil pool behaves like Decompose.
func DecomposeWithPool[T hwy.Floats](pool *workerpool.Pool, shape Shape, input, q, r []T, opts ...Option) (*Report, error) {
	if pool == nil {
		return Decompose(shape, input, q, r, opts...)
	}
	return Decompose(shape, input, q, r, append(opts[:len(opts):len(opts)], WithPool(pool))...)
}

// DecomposeFloat32 is the non-generic version of Decompose for float32.
func DecomposeFloat32(shape Shape, input, q, r []float32, opts ...Option) (*Report, error) {
	return Decompose(shape, input, q, r, opts...)
}

// DecomposeFloat64 is the non-generic version of Decompose for float64.
func DecomposeFloat64(shape Shape, input, q, r []float64, opts ...Option) (*Report, error) {
	return Decompose(shape, input, q, r, opts...)
}
