// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called; every pending After waiter whose
// deadline falls within the advanced window fires in deadline order.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After registers a waiter that fires when the clock advances past d from
// now. A non-positive d fires immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, fakeWaiter{deadline: c.current.Add(d), channel: channel})
	return channel
}

// Advance moves the clock forward by d, firing every waiter whose
// deadline is reached, in deadline order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)

	// Fire ripe waiters one at a time, always the earliest first, so
	// that waiters registered with different deadlines observe a
	// consistent order.
	for {
		ripe := -1
		for i, waiter := range c.waiters {
			if waiter.deadline.After(c.current) {
				continue
			}
			if ripe == -1 || waiter.deadline.Before(c.waiters[ripe].deadline) {
				ripe = i
			}
		}
		if ripe == -1 {
			return
		}
		waiter := c.waiters[ripe]
		c.waiters = append(c.waiters[:ripe], c.waiters[ripe+1:]...)
		waiter.channel <- waiter.deadline
	}
}

// Waiters reports how many After calls are pending. Tests use this to
// synchronize with code that is about to block on a backoff delay.
func (c *FakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
