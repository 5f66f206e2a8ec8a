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
// Package qr computes batched QR decompositions of small dense matrices with
// the Modified Gram-Schmidt (MGS) algorithm.
//
// A batch holds NumMatrices independent matrices. Each matrix is Width
// vectors of Height entries, stored vector-major: entry i of vector j of
// matrix m is at m*Height*Width + j*Height + i. This is column-major storage
// of the Height × Width matrix X whose columns are orthogonalised. Q has the
// same layout as X. R is Width × Width per matrix; the coefficient of vector
// k on q_j (k >= j) is at m*Width*Width + k*Width + j, which read
// column-major is the upper-triangular R with X = Q·R. Entries with k < j are
// never written and must be zeroed by the caller if they are to be read.
//
// Example:
//
//	shape := qr.Shape{NumMatrices: 1, Height: 5, Width: 3}
//	x := []float32{-1, 0, 3, 1, 5, 2, 5, 1, -1, 0, 1, -5, 6, 3, 1}
//	q := make([]float32, shape.InputLen())
//	r := make([]float32, shape.RLen())
//	report, err := qr.Decompose(shape, x, q, r)
//	// r[0], r[4], r[8] hold the diagonal: 6, 5.56776, 6.46031.
//
// # Parallelism
//
// Every matrix is one group, an independent unit of work over disjoint
// slices of the buffers. Groups run concurrently on a workerpool.Pool (see
// WithPool) or on transient goroutines. Within a group the KernelSequential
// kernel runs the whole algorithm on one goroutine; KernelLanes spreads the
// per-round column updates over several lanes that meet at a barrier after
// each round, since round j+1 reads vectors updated in round j.
//
// # Errors
//
// Buffer sizes and aliasing are checked before anything is written;
// failures wrap ErrInvalidShape, ErrShapeMismatch or ErrAliasedBuffers.
// A column whose remaining norm is zero or negligible relative to its input
// norm makes its matrix rank deficient: the matrix is flagged in the Report
// (Report.Err wraps ErrRankDeficient) and the rest of the batch is still
// decomposed. RankPolicy chooses what is written to the deficient Q column.
//
// MGS loses orthogonality on ill-conditioned inputs; Householder
// reflections are the stable alternative and are not implemented here.
package qr
