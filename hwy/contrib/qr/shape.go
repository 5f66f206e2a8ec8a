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
	"fmt"
	"math"
	"unsafe"

	"github.com/ajroetker/go-batchqr/hwy"
)

// Shape describes a batch: NumMatrices matrices of Width vectors, each
// Height entries long.
type Shape struct {
	NumMatrices int `json:"num_matrices" yaml:"num_matrices"`
	Height      int `json:"height" yaml:"height"`
	Width       int `json:"width" yaml:"width"`
}

// Validate checks that every dimension is positive and that the flat buffer
// sizes fit in an int.
func (s Shape) Validate() error {
	if s.NumMatrices <= 0 || s.Height <= 0 || s.Width <= 0 {
		return fmt.Errorf("%w: %s: dimensions must be > 0", ErrInvalidShape, s)
	}
	if s.Height > math.MaxInt/s.Width || s.Width > math.MaxInt/s.Width {
		return fmt.Errorf("%w: %s: matrix size overflows", ErrInvalidShape, s)
	}
	if s.NumMatrices > math.MaxInt/max(s.MatrixLen(), s.RMatrixLen()) {
		return fmt.Errorf("%w: %s: batch size overflows", ErrInvalidShape, s)
	}
	return nil
}

// String returns the shape as "NxHxW".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.NumMatrices, s.Height, s.Width)
}

// MatrixLen is the number of entries of one matrix of X, V or Q.
func (s Shape) MatrixLen() int { return s.Height * s.Width }

// RMatrixLen is the number of entries of one matrix of R.
func (s Shape) RMatrixLen() int { return s.Width * s.Width }

// InputLen is the length of the input, scratch and Q buffers.
func (s Shape) InputLen() int { return s.NumMatrices * s.MatrixLen() }

// RLen is the length of the R buffer.
func (s Shape) RLen() int { return s.NumMatrices * s.RMatrixLen() }

// Lanes is the number of lanes of a group, one per matrix entry.
func (s Shape) Lanes() int { return s.MatrixLen() }

// Overcomplete reports whether there are more vectors than dimensions, in
// which case every vector past the Height-th is necessarily rank deficient.
func (s Shape) Overcomplete() bool { return s.Width > s.Height }

// Group is one matrix of a batch: disjoint, capacity-limited slices of the
// input, scratch, Q and R buffers.
type Group[T hwy.Floats] struct {
	Index int
	X     []T
	V     []T
	Q     []T
	R     []T
}

// Regions validates the buffers against shape and splits them into one
// Group per matrix. Group g covers [g*Height*Width, (g+1)*Height*Width) of
// x, v and q and [g*Width*Width, (g+1)*Width*Width) of r.
//
// Nothing is written to any buffer.
func Regions[T hwy.Floats](shape Shape, x, v, q, r []T) ([]Group[T], error) {
	if err := checkBuffers(shape, x, v, q, r); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, checkLen("scratch", 0, shape.InputLen())
	}

	n, r2 := shape.MatrixLen(), shape.RMatrixLen()
	groups := make([]Group[T], shape.NumMatrices)
	for g := range groups {
		off, roff := g*n, g*r2
		groups[g] = Group[T]{
			Index: g,
			X:     x[off : off+n : off+n],
			V:     v[off : off+n : off+n],
			Q:     q[off : off+n : off+n],
			R:     r[roff : roff+r2 : roff+r2],
		}
	}
	return groups, nil
}

// checkBuffers runs every pre-dispatch check: shape, lengths, aliasing.
// v may be nil when the scratch buffer is allocated internally.
func checkBuffers[T hwy.Floats](shape Shape, x, v, q, r []T) error {
	if err := shape.Validate(); err != nil {
		return err
	}
	want := shape.InputLen()
	if err := checkLen("input", len(x), want); err != nil {
		return err
	}
	if v != nil {
		if err := checkLen("scratch", len(v), want); err != nil {
			return err
		}
	}
	if err := checkLen("q", len(q), want); err != nil {
		return err
	}
	if err := checkLen("r", len(r), shape.RLen()); err != nil {
		return err
	}

	named := []struct {
		name string
		buf  []T
	}{{"input", x}, {"scratch", v}, {"q", q}, {"r", r}}
	for i := range named {
		for j := i + 1; j < len(named); j++ {
			if overlaps(named[i].buf, named[j].buf) {
				return fmt.Errorf("%w: %s and %s", ErrAliasedBuffers, named[i].name, named[j].name)
			}
		}
	}
	return nil
}

func checkLen(name string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s has %d entries, want %d", ErrShapeMismatch, name, got, want)
	}
	return nil
}

// overlaps reports whether a and b share any element.
func overlaps[T hwy.Floats](a, b []T) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	var zero T
	size := unsafe.Sizeof(zero)
	a0 := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	b0 := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	a1 := a0 + uintptr(len(a))*size
	b1 := b0 + uintptr(len(b))*size
	return a0 < b1 && b0 < a1
}
