// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations for testability. Production code
// injects Real(); tests inject Fake() and advance time deterministically.
// Anything in this repository that sleeps or schedules (most importantly
// the reconnect backoff) goes through a Clock instead of the time package
// so that tests never wait on the wall clock.
package clock

import "time"

// Clock provides the time operations the framework uses.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has
	// elapsed. Equivalent to time.After. If d <= 0, the channel
	// receives immediately.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
