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

import "github.com/ajroetker/go-batchqr/hwy"

// BaseDot returns Σ a[i]*b[i] over the common prefix of a and b.
//
// Whole registers are accumulated lane by lane and reduced once at the end;
// the remainder is added in index order. For a given target the summation
// order depends only on the length, so every kernel that calls BaseDot on the
// same column gets the same bits.
func BaseDot[T hwy.Floats](a, b []T) T {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	n := min(len(a), len(b))
	sum := hwy.Zero[T]()
	lanes := sum.NumLanes()

	var i int
	for i = 0; i+lanes <= n; i += lanes {
		sum = hwy.MulAdd(hwy.Load(a[i:]), hwy.Load(b[i:]), sum)
	}

	result := hwy.ReduceSum(sum)
	for ; i < n; i++ {
		result += T(a[i] * b[i])
	}

	return result
}

// BaseDotScalar computes the dot product with a single running sum in index
// order: ((a[0]*b[0] + a[1]*b[1]) + a[2]*b[2]) + ...
func BaseDotScalar[T hwy.Floats](a, b []T) T {
	n := min(len(a), len(b))
	var sum T
	for i := range n {
		sum += T(a[i] * b[i])
	}
	return sum
}
