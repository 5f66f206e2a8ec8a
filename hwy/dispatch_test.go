package hwy

import (
	"testing"
)

func TestDispatchLevelString(t *testing.T) {
	tests := []struct {
		level DispatchLevel
		want  string
	}{
		{DispatchScalar, "scalar"},
		{DispatchSSE2, "sse2"},
		{DispatchAVX2, "avx2"},
		{DispatchAVX512, "avx512"},
		{DispatchNEON, "neon"},
		{DispatchLevel(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("DispatchLevel(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestCurrentDispatch(t *testing.T) {
	t.Logf("Dispatch level: %s, width %d bytes", CurrentName(), CurrentWidth())

	if CurrentWidth() < 16 {
		t.Errorf("CurrentWidth() = %d, want >= 16", CurrentWidth())
	}
	if CurrentName() != CurrentLevel().String() {
		t.Errorf("CurrentName() = %q, want %q", CurrentName(), CurrentLevel().String())
	}
	if NoSimdEnv() && CurrentLevel() != DispatchScalar {
		t.Errorf("HWY_NO_SIMD set but level is %s", CurrentLevel())
	}
}

func TestMaxLanes(t *testing.T) {
	if got, want := MaxLanes[float32](), CurrentWidth()/4; got != want {
		t.Errorf("MaxLanes[float32]() = %d, want %d", got, want)
	}
	if got, want := MaxLanes[float64](), CurrentWidth()/8; got != want {
		t.Errorf("MaxLanes[float64]() = %d, want %d", got, want)
	}
}

func TestNoSimdEnv(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"false", false},
		{"0", false},
		{"yes", true},
	}
	for _, tt := range tests {
		t.Setenv("HWY_NO_SIMD", tt.val)
		if got := NoSimdEnv(); got != tt.want {
			t.Errorf("NoSimdEnv() with HWY_NO_SIMD=%q = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestTargetLanes(t *testing.T) {
	avx2 := Target{Level: DispatchAVX2, Width: 32}
	if got := avx2.Lanes(4); got != 8 {
		t.Errorf("AVX2 float32 lanes = %d, want 8", got)
	}
	if got := avx2.Lanes(8); got != 4 {
		t.Errorf("AVX2 float64 lanes = %d, want 4", got)
	}
	if got := avx2.Lanes(0); got != 0 {
		t.Errorf("Lanes(0) = %d, want 0", got)
	}
	if CurrentTarget().Width != CurrentWidth() || CurrentTarget().Level != CurrentLevel() {
		t.Errorf("CurrentTarget() = %+v, inconsistent with CurrentLevel/CurrentWidth", CurrentTarget())
	}
}

func TestDetectHonorsNoSimd(t *testing.T) {
	saved := current
	defer func() { current = saved }()

	t.Setenv("HWY_NO_SIMD", "1")
	detect(Target{Level: DispatchAVX512, Width: 64})
	if current != scalarTarget {
		t.Errorf("with HWY_NO_SIMD=1, detect installed %+v", current)
	}

	t.Setenv("HWY_NO_SIMD", "")
	detect(Target{Level: DispatchAVX512, Width: 64})
	if current.Level != DispatchAVX512 || MaxLanes[float32]() != 16 {
		t.Errorf("detect installed %+v, MaxLanes[float32]() = %d", current, MaxLanes[float32]())
	}
}
