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

// Package hwy provides portable lane vectors and runtime CPU dispatch
// information for the batched linear-algebra kernels in this module.
//
// A Vec holds MaxLanes[T]() elements, where the lane count follows the
// widest vector register detected on the host (16 bytes for SSE2/NEON,
// 32 for AVX2, 64 for AVX-512). The operations are written in pure Go so
// that every kernel has a single, deterministic reference path; the lane
// width only shapes how reductions are blocked.
//
// Basic usage:
//
//	sum := hwy.Zero[float32]()
//	for i := 0; i+sum.NumLanes() <= len(a); i += sum.NumLanes() {
//		sum = hwy.MulAdd(hwy.Load(a[i:]), hwy.Load(b[i:]), sum)
//	}
//	dot := hwy.ReduceSum(sum)
package hwy

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// Vec is a portable vector handle holding one value per lane.
//
// Vec instances should not be created directly; use Load, Set, or Zero instead.
type Vec[T Floats] struct {
	data []T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Data returns the underlying slice representation of the vector.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	return v.data
}

// Store writes the vector's data to a slice.
// This is the method form of the hwy.Store function.
func (v Vec[T]) Store(dst []T) {
	Store(v, dst)
}
