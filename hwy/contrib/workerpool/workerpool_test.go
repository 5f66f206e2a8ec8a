// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelForAtomic(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	var calls atomic.Int32
	results := make([]int, n)

	pool.ParallelForAtomic(n, func(i int) {
		calls.Add(1)
		results[i] = i * 2
	})

	if calls.Load() != int32(n) {
		t.Errorf("fn called %d times, want %d", calls.Load(), n)
	}
	for i := range n {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForZeroN(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	called := false
	pool.ParallelForAtomic(0, func(i int) { called = true })
	ForAtomic(0, func(i int) { called = true })
	if called {
		t.Error("fn called for n=0")
	}
}

func TestForAtomic(t *testing.T) {
	n := 37
	results := make([]int, n)
	ForAtomic(n, func(i int) {
		results[i] = i + 1
	})
	for i := range n {
		if results[i] != i+1 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i+1)
		}
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	pool := New(2)
	pool.Close()
	pool.Close()
}

func TestClosedPoolFallback(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 10
	results := make([]int, n)
	pool.ParallelForAtomic(n, func(i int) {
		results[i] = i
	})
	pool.ParallelForAtomic(n, func(i int) {
		results[i] += i
	})

	for i := range n {
		if results[i] != 2*i {
			t.Errorf("results[%d] = %d, want %d", i, results[i], 2*i)
		}
	}
}

func TestConcurrentSubmitters(t *testing.T) {
	pool := New(3)
	defer pool.Close()

	const callers, n = 8, 50
	var total atomic.Int64
	done := make(chan struct{})
	for range callers {
		go func() {
			defer func() { done <- struct{}{} }()
			pool.ParallelForAtomic(n, func(i int) { total.Add(int64(i)) })
		}()
	}
	for range callers {
		<-done
	}
	if want := int64(callers * n * (n - 1) / 2); total.Load() != want {
		t.Errorf("total = %d, want %d", total.Load(), want)
	}
}

func TestPanicPropagates(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	defer func() {
		if recover() == nil {
			t.Error("panic in a task was not re-raised")
		}
	}()
	pool.ParallelForAtomic(16, func(i int) {
		if i == 5 {
			panic("boom")
		}
	})
}

func TestPoolUsableAfterPanic(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	func() {
		defer func() { _ = recover() }()
		pool.ParallelForAtomic(4, func(int) { panic("boom") })
	}()

	var calls atomic.Int32
	pool.ParallelForAtomic(10, func(int) { calls.Add(1) })
	if calls.Load() != 10 {
		t.Errorf("after a panic: %d calls, want 10", calls.Load())
	}
}

func TestRunLanesRounds(t *testing.T) {
	const lanes = 4
	const rounds = 50

	// Each round every lane writes its slot, then after the barrier each lane
	// checks that all slots of the round are visible.
	slots := make([]int, lanes)
	var failures atomic.Int32

	RunLanes(lanes, func(lane int, b *Barrier) {
		for r := range rounds {
			slots[lane] = r
			b.Wait()
			for other := range lanes {
				if slots[other] != r {
					failures.Add(1)
				}
			}
			b.Wait()
		}
	})

	if failures.Load() != 0 {
		t.Errorf("%d lanes observed a stale slot after the barrier", failures.Load())
	}
}

func TestRunLanesSingle(t *testing.T) {
	ran := false
	RunLanes(1, func(lane int, b *Barrier) {
		if lane != 0 {
			t.Errorf("lane = %d, want 0", lane)
		}
		if b.Parties() != 1 {
			t.Errorf("Parties() = %d, want 1", b.Parties())
		}
		b.Wait()
		ran = true
	})
	if !ran {
		t.Error("fn did not run")
	}
}

func TestNewBarrierPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewBarrier(0) did not panic")
		}
	}()
	NewBarrier(0)
}

func BenchmarkParallelForAtomic(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	data := make([]float32, 1024)
	for b.Loop() {
		pool.ParallelForAtomic(len(data), func(i int) {
			data[i] = float32(i) * 2
		})
	}
}

func BenchmarkBarrier(b *testing.B) {
	for b.Loop() {
		RunLanes(4, func(lane int, bar *Barrier) {
			for range 16 {
				bar.Wait()
			}
		})
	}
}
