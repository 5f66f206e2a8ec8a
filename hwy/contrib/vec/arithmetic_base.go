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

// BaseMulConstAddTo computes dst[i] += a*x[i] over the common prefix of dst
// and x. This is the projection update of Gram-Schmidt with a = -<q, v>.
func BaseMulConstAddTo[T hwy.Floats](dst []T, a T, x []T) {
	if len(dst) == 0 || len(x) == 0 {
		return
	}

	n := min(len(dst), len(x))
	va := hwy.Set(a)
	lanes := va.NumLanes()

	var i int
	for i = 0; i+lanes <= n; i += lanes {
		result := hwy.MulAdd(va, hwy.Load(x[i:]), hwy.Load(dst[i:]))
		hwy.Store(result, dst[i:])
	}

	for ; i < n; i++ {
		dst[i] += T(a * x[i])
	}
}

// BaseScaleTo computes dst[i] = c*s[i] over the common prefix.
func BaseScaleTo[T hwy.Floats](dst []T, c T, s []T) {
	n := min(len(dst), len(s))
	vc := hwy.Set(c)
	lanes := vc.NumLanes()

	var i int
	for i = 0; i+lanes <= n; i += lanes {
		hwy.Store(hwy.Mul(vc, hwy.Load(s[i:])), dst[i:])
	}
	for ; i < n; i++ {
		dst[i] = c * s[i]
	}
}

// BaseDivConstTo performs dst[i] = s[i] / c.
//
// Division is done per element rather than as a multiplication by 1/c, so
// the result is the correctly rounded quotient.
func BaseDivConstTo[T hwy.Floats](dst []T, s []T, c T) {
	n := min(len(dst), len(s))
	for i := range n {
		dst[i] = s[i] / c
	}
}

// Fill sets every element of dst to value.
func Fill[T hwy.Floats](dst []T, value T) {
	for i := range dst {
		dst[i] = value
	}
}
