// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the two levels of parallelism used by the
// batched kernels: a persistent Pool that fans independent groups (one per
// matrix) out to worker goroutines, and RunLanes, which runs the lanes of a
// single group concurrently so they can meet at a Barrier between rounds.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	// One group per matrix.
//	pool.ParallelForAtomic(numMatrices, func(g int) {
//	    decomposeOne(g)
//	})
package workerpool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines reused across batches.
//
// Several goroutines may submit batches to the same pool concurrently; their
// groups interleave on the workers. Submitting after Close runs the batch on
// the caller's goroutine. Close must not race with a submission.
type Pool struct {
	size    int
	tasks   chan func()
	workers sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
}

// New starts a pool of size workers. A size <= 0 means GOMAXPROCS.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		size:  size,
		tasks: make(chan func(), size),
	}
	p.workers.Add(size)
	for range size {
		go func() {
			defer p.workers.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// NumWorkers returns the number of worker goroutines.
func (p *Pool) NumWorkers() int {
	return p.size
}

// Close stops the workers once the queued tasks have run, and waits for
// them to exit. It is safe to call more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
		p.workers.Wait()
	})
}

// ParallelForAtomic calls fn(i) once for every i in [0, n) and returns when
// all calls are done. Workers claim indices one at a time from a shared
// counter, so uneven groups balance themselves.
//
// A panic in fn is re-raised on the caller's goroutine after the remaining
// workers of the batch have stopped claiming indices.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(p.size, n)
	if workers == 1 || p.closed.Load() {
		for i := range n {
			fn(i)
		}
		return
	}

	var b batch
	b.wg.Add(workers)
	for range workers {
		p.tasks <- func() {
			defer b.wg.Done()
			b.drain(n, fn)
		}
	}
	b.wait()
}

// ForAtomic is ParallelForAtomic on transient goroutines, for callers that do
// not keep a Pool.
func ForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(runtime.GOMAXPROCS(0), n)
	if workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var b batch
	b.wg.Add(workers)
	for range workers {
		go func() {
			defer b.wg.Done()
			b.drain(n, fn)
		}()
	}
	b.wait()
}

// batch is the shared state of one ParallelForAtomic call.
type batch struct {
	next     atomic.Int64
	wg       sync.WaitGroup
	panicked atomic.Pointer[panicValue]
}

type panicValue struct{ v any }

func (b *batch) drain(n int, fn func(i int)) {
	defer func() {
		if r := recover(); r != nil {
			b.panicked.CompareAndSwap(nil, &panicValue{r})
			b.next.Store(int64(n))
		}
	}()
	for {
		i := int(b.next.Add(1)) - 1
		if i >= n {
			return
		}
		fn(i)
	}
}

func (b *batch) wait() {
	b.wg.Wait()
	if pv := b.panicked.Load(); pv != nil {
		panic(fmt.Sprintf("workerpool: task panicked: %v", pv.v))
	}
}
