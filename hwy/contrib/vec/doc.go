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
// Package vec provides the vector reductions and updates used by the
// Gram-Schmidt kernels: dot products, norms, scaled accumulation (axpy) and
// little-endian codecs for raw float buffers.
//
// Each operation has a BaseXxx generic implementation built on hwy
// primitives and an exported entry point that picks the scalar loop when
// dispatch is in scalar mode.
//
// Example:
//
//	q := make([]float32, len(v))
//	vec.DivConstTo(q, v, vec.Norm(v))
//	d := vec.Dot(q, w)
//	vec.MulConstAddTo(w, -d, q) // w -= (q·w) q
package vec
