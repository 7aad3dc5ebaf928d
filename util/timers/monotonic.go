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

package timers

import (
	"time"
)

// Monotonic uses the system's monotonic clock to emit timeouts.
type Monotonic struct{}

// MakeMonotonicClock creates a new monotonic clock.
func MakeMonotonicClock() Clock {
	return Monotonic{}
}

// Now returns the current system time.
func (m Monotonic) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on the runtime timer heap.
func (m Monotonic) AfterFunc(delta time.Duration, f func()) Timer {
	if delta < 0 {
		delta = 0
	}
	return monotonicTimer{time.AfterFunc(delta, f)}
}

type monotonicTimer struct {
	t *time.Timer
}

func (mt monotonicTimer) Stop() bool {
	return mt.t.Stop()
}
