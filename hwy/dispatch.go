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

package hwy

import (
	"os"
	"strconv"
	"unsafe"
)

// DispatchLevel identifies the widest vector instruction set found on the host.
type DispatchLevel int

const (
	// DispatchScalar means no usable vector unit: kernels take plain loops.
	DispatchScalar DispatchLevel = iota
	// DispatchSSE2 is the x86-64 baseline, 128-bit registers.
	DispatchSSE2
	// DispatchAVX2 is 256-bit x86 with FMA.
	DispatchAVX2
	// DispatchAVX512 is 512-bit x86 (F, BW and VL).
	DispatchAVX512
	// DispatchNEON is ARM ASIMD, 128-bit registers.
	DispatchNEON
)

var levelNames = [...]string{
	DispatchScalar: "scalar",
	DispatchSSE2:   "sse2",
	DispatchAVX2:   "avx2",
	DispatchAVX512: "avx512",
	DispatchNEON:   "neon",
}

func (d DispatchLevel) String() string {
	if d < 0 || int(d) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[d]
}

// Target is the vector unit the kernels block their reductions for.
type Target struct {
	Level DispatchLevel
	// Width is the register width in bytes.
	Width int
}

// Lanes returns how many elements of size elemSize fit in one register.
func (t Target) Lanes(elemSize int) int {
	if elemSize <= 0 {
		return 0
	}
	return t.Width / elemSize
}

// scalarTarget keeps 16-byte blocking so reductions associate the same way
// with and without SIMD.
var scalarTarget = Target{Level: DispatchScalar, Width: 16}

// current is set once by the init function of dispatch_<arch>.go.
var current = scalarTarget

// CurrentTarget returns the detected target.
func CurrentTarget() Target { return current }

// CurrentLevel returns the detected instruction set.
func CurrentLevel() DispatchLevel { return current.Level }

// CurrentWidth returns the register width in bytes: 16 for SSE2 and NEON,
// 32 for AVX2, 64 for AVX-512.
func CurrentWidth() int { return current.Width }

// CurrentName returns the name of the detected level, e.g. "avx2".
func CurrentName() string { return current.Level.String() }

// NoSimdEnv reports whether HWY_NO_SIMD asks for scalar mode. Any non-empty
// value other than a false boolean ("0", "false", ...) counts.
func NoSimdEnv() bool {
	val, ok := os.LookupEnv("HWY_NO_SIMD")
	if !ok || val == "" {
		return false
	}
	b, err := strconv.ParseBool(val)
	return err != nil || b
}

// MaxLanes returns the lane count of Vec[T] on the current target, e.g.
// 8 float32 or 4 float64 lanes on AVX2.
func MaxLanes[T Floats]() int {
	var zero T
	return current.Lanes(int(unsafe.Sizeof(zero)))
}

// detect installs t unless HWY_NO_SIMD is set.
func detect(t Target) {
	if NoSimdEnv() {
		current = scalarTarget
		return
	}
	current = t
}
