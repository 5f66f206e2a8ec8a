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
	"fmt"
	"math"
	"math/rand"
	"testing"
)

// Tolerance constants for floating point comparison
const (
	epsilon32 = float32(1e-5)
	epsilon64 = float64(1e-12)
)

// approxEqual64 checks if two float64 values are approximately equal
func approxEqual64(a, b, epsilon float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= epsilon
}

// dotReference computes the dot product in float64 for comparison.
func dotReference[T float32 | float64](a, b []T) float64 {
	var sum float64
	for i := range min(len(a), len(b)) {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestDot(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 7, 8, 15, 16, 17, 33, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			a := make([]float64, n)
			b := make([]float64, n)
			for i := range n {
				a[i] = float64(i + 1)
				b[i] = float64(2*i - 3)
			}
			want := dotReference(a, b)
			if got := Dot(a, b); !approxEqual64(got, want, epsilon64*math.Max(1, math.Abs(want))) {
				t.Errorf("Dot = %v, want %v", got, want)
			}
			if got := BaseDot(a, b); !approxEqual64(got, want, epsilon64*math.Max(1, math.Abs(want))) {
				t.Errorf("BaseDot = %v, want %v", got, want)
			}
			if got := BaseDotScalar(a, b); !approxEqual64(got, want, epsilon64*math.Max(1, math.Abs(want))) {
				t.Errorf("BaseDotScalar = %v, want %v", got, want)
			}
		})
	}
}

func TestDotMismatchedLengths(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6, 7, 8}
	if got := Dot(a, b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := Dot(a, nil); got != 0 {
		t.Errorf("Dot with empty slice = %v, want 0", got)
	}
}

func TestDotFloat32Random(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := make([]float32, 37)
	b := make([]float32, 37)
	for i := range a {
		a[i] = rng.Float32()*2 - 1
		b[i] = rng.Float32()*2 - 1
	}
	want := dotReference(a, b)
	if got := DotFloat32(a, b); math.Abs(float64(got)-want) > float64(epsilon32) {
		t.Errorf("DotFloat32 = %v, want %v", got, want)
	}
}

func TestNorm(t *testing.T) {
	tests := []struct {
		v    []float64
		want float64
	}{
		{nil, 0},
		{[]float64{0, 0, 0}, 0},
		{[]float64{3, 4}, 5},
		{[]float64{-1, 0, 3, 1, 5}, 6},
		{[]float64{1, 1, 1, 1, 1, 1, 1, 1, 1}, 3},
	}
	for _, tt := range tests {
		if got := NormFloat64(tt.v); !approxEqual64(got, tt.want, epsilon64) {
			t.Errorf("Norm(%v) = %v, want %v", tt.v, got, tt.want)
		}
		if got := SquaredNorm(tt.v); !approxEqual64(got, tt.want*tt.want, epsilon64) {
			t.Errorf("SquaredNorm(%v) = %v, want %v", tt.v, got, tt.want*tt.want)
		}
	}
	if got := NormFloat32([]float32{3, 4}); got != 5 {
		t.Errorf("NormFloat32 = %v, want 5", got)
	}
}

func TestMulConstAddTo(t *testing.T) {
	for _, n := range []int{1, 4, 9, 17} {
		dst := make([]float32, n)
		x := make([]float32, n)
		want := make([]float32, n)
		for i := range n {
			dst[i] = float32(i)
			x[i] = 1
			want[i] = float32(i) - 2.5
		}
		MulConstAddTo(dst, -2.5, x)
		for i := range n {
			if dst[i] != want[i] {
				t.Errorf("n=%d: dst[%d] = %v, want %v", n, i, dst[i], want[i])
			}
		}
	}
}

func TestScaleAndDiv(t *testing.T) {
	s := []float64{2, 4, 6, 8, 10, 12, 14, 16, 18}
	scaled := make([]float64, len(s))
	ScaleTo(scaled, 0.5, s)
	divided := make([]float64, len(s))
	DivConstTo(divided, s, 2)
	for i := range s {
		want := float64(i + 1)
		if scaled[i] != want {
			t.Errorf("ScaleTo: [%d] = %v, want %v", i, scaled[i], want)
		}
		if divided[i] != want {
			t.Errorf("DivConstTo: [%d] = %v, want %v", i, divided[i], want)
		}
	}
}

func TestFill(t *testing.T) {
	dst := make([]float32, 5)
	Fill(dst, float32(math.NaN()))
	for i, v := range dst {
		if !math.IsNaN(float64(v)) {
			t.Errorf("Fill: dst[%d] = %v, want NaN", i, v)
		}
	}
}

func TestEncodeDecodeFloat32s(t *testing.T) {
	src := []float32{-1, 0, 3.5, float32(math.Inf(1)), 1e-30}
	buf := make([]byte, len(src)*4)
	EncodeFloat32s(buf, src)

	// -1.0f is 0xbf800000, little-endian.
	if buf[0] != 0x00 || buf[1] != 0x00 || buf[2] != 0x80 || buf[3] != 0xbf {
		t.Errorf("EncodeFloat32s(-1) bytes = % x, want 00 00 80 bf", buf[:4])
	}

	got := make([]float32, len(src))
	DecodeFloat32s(buf, got)
	for i := range src {
		if got[i] != src[i] {
			t.Errorf("DecodeFloat32s: [%d] = %v, want %v", i, got[i], src[i])
		}
	}
}

func TestDecodeFloat64sShortPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("DecodeFloat64s with short src did not panic")
		}
	}()
	DecodeFloat64s(make([]byte, 7), make([]float64, 1))
}

func BenchmarkDot(b *testing.B) {
	for _, n := range []int{16, 64, 256} {
		x := make([]float32, n)
		y := make([]float32, n)
		for i := range n {
			x[i] = float32(i)
			y[i] = 1
		}
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			for b.Loop() {
				_ = Dot(x, y)
			}
		})
	}
}

func TestAppendFloat64s(t *testing.T) {
	buf := AppendFloat64s([]byte{0xff}, []float64{1, -2.5})
	if len(buf) != 17 {
		t.Fatalf("len = %d, want 17", len(buf))
	}
	got := make([]float64, 2)
	DecodeFloat64s(buf[1:], got)
	if got[0] != 1 || got[1] != -2.5 {
		t.Errorf("round trip = %v, want [1 -2.5]", got)
	}
}
