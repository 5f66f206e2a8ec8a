// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import "sync"

// RunLanes runs fn concurrently on n lanes and blocks until all return.
// Every lane receives its index in [0, n) and the same Barrier sized for n
// parties, so lanes can separate dependent rounds of work with b.Wait().
//
// Lanes always get their own goroutines instead of Pool workers: a barrier
// requires all parties to be running at once, which a pool already busy with
// other groups cannot guarantee.
//
// With n == 1 fn runs on the calling goroutine and Wait is a no-op.
// It panics if n < 1.
func RunLanes(n int, fn func(lane int, b *Barrier)) {
	b := NewBarrier(n)
	if n == 1 {
		fn(0, b)
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for lane := range n {
		go func() {
			defer wg.Done()
			fn(lane, b)
		}()
	}
	wg.Wait()
}
