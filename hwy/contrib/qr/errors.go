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

import "errors"

var (
	// ErrInvalidShape is returned when a dimension is not positive or the
	// flat buffer sizes derived from the shape overflow int.
	ErrInvalidShape = errors.New("qr: invalid shape")

	// ErrShapeMismatch is returned when a buffer length differs from the
	// length derived from the shape.
	ErrShapeMismatch = errors.New("qr: buffer size does not match shape")

	// ErrAliasedBuffers is returned when two of the input, scratch, Q and R
	// buffers share memory.
	ErrAliasedBuffers = errors.New("qr: buffers overlap")

	// ErrRankDeficient marks a matrix with a zero or negligible column norm
	// during orthogonalisation. It is reported per matrix through Report and
	// never aborts a batch.
	ErrRankDeficient = errors.New("qr: rank-deficient matrix")
)
