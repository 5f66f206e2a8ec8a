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

import (
	"math"

	"github.com/ajroetker/go-batchqr/hwy"
)

// BaseSquaredNorm returns Σ v[i]². It is BaseDot(v, v), so a column's norm
// and its dot products share one rounding pattern.
func BaseSquaredNorm[T hwy.Floats](v []T) T {
	return BaseDot(v, v)
}

// BaseNorm returns the Euclidean length of v.
func BaseNorm[T hwy.Floats](v []T) T {
	if ss := BaseSquaredNorm(v); ss != 0 {
		return Sqrt(ss)
	}
	return 0
}

// Sqrt returns the square root of x in the precision of T.
// For float32 the root is taken in float64 and rounded once, which yields the
// correctly rounded float32 result.
func Sqrt[T hwy.Floats](x T) T {
	return T(math.Sqrt(float64(x)))
}
