// Copyright (C) 2025 Engboniface, Inc.
// This file is part of stellar-core
//
// stellar-core is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// stellar-core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with stellar-core.  If not, see <https://www.gnu.org/licenses/>.

// Package timers provides a Clock abstraction useful for simulating
// timeouts.
package timers

import (
	"time"
)

// Clock provides the current time and timeout events which fire at some
// point after it.
type Clock interface {
	// Now returns the clock's current reading.
	Now() time.Time

	// AfterFunc arranges for f to be called once delta time has elapsed,
	// and returns a Timer that can stop the call. f runs on its own
	// goroutine for the monotonic clock, and on the goroutine that advances
	// the frozen clock.
	AfterFunc(delta time.Duration, f func()) Timer
}

// Timer is an armed timeout returned by Clock.AfterFunc.
type Timer interface {
	// Stop prevents the timer from firing, returning true if the call
	// stops the timer and false if the timer has already fired or been
	// stopped. A stopped timer's function never runs.
	Stop() bool
}

// Unix converts a clock reading to whole seconds since the epoch. Wire
// close times are expressed in this form.
func Unix(t time.Time) uint64 {
	u := t.Unix()
	if u < 0 {
		return 0
	}
	return uint64(u)
}
