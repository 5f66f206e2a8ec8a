// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import "sync"

// Barrier is a reusable (cyclic) rendezvous point for a fixed number of
// goroutines. Each call to Wait blocks until all parties have called Wait,
// then releases them together and resets for the next round.
//
// Everything a party wrote before Wait happens-before everything any party
// reads after the matching Wait returns.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
}

// NewBarrier returns a Barrier for the given number of parties.
// It panics if parties < 1.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		panic("workerpool: barrier needs at least one party")
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Parties returns the number of goroutines the barrier waits for.
func (b *Barrier) Parties() int {
	return b.parties
}

// Wait blocks until all parties have reached the barrier.
func (b *Barrier) Wait() {
	if b.parties == 1 {
		return
	}
	b.mu.Lock()
	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.mu.Unlock()
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
	b.mu.Unlock()
}
