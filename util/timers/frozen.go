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
	"sort"
	"time"

	"github.com/algorand/go-deadlock"
)

// Frozen is a manually driven clock for deterministic tests. Time stands
// still until Advance or AdvanceTo is called; due timers then fire
// synchronously on the advancing goroutine, in deadline order.
type Frozen struct {
	mu      deadlock.Mutex
	now     time.Time
	pending []*frozenTimer
}

type frozenTimer struct {
	clock    *Frozen
	deadline time.Time
	f        func()
	stopped  bool
}

// MakeFrozenClock creates a new frozen clock starting at the given time.
func MakeFrozenClock(start time.Time) *Frozen {
	return &Frozen{now: start}
}

// Now returns the frozen clock's current reading.
func (m *Frozen) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc registers f to run once the clock has been advanced by at
// least delta.
func (m *Frozen) AfterFunc(delta time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &frozenTimer{
		clock:    m,
		deadline: m.now.Add(delta),
		f:        f,
	}
	m.pending = append(m.pending, t)
	return t
}

func (t *frozenTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by delta, firing due timers.
func (m *Frozen) Advance(delta time.Duration) {
	m.AdvanceTo(m.Now().Add(delta))
}

// AdvanceTo moves the clock to target, firing due timers in deadline
// order. Timers armed by a firing callback fire in the same call when
// their deadline is not after target.
func (m *Frozen) AdvanceTo(target time.Time) {
	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.f()
	}
	m.mu.Lock()
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// popDue removes and returns the earliest pending timer with deadline at
// or before target, advancing now to its deadline.
func (m *Frozen) popDue(target time.Time) *frozenTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.pending = live

	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].deadline.Before(m.pending[j].deadline)
	})

	if len(m.pending) == 0 || m.pending[0].deadline.After(target) {
		return nil
	}
	t := m.pending[0]
	m.pending = m.pending[1:]
	t.stopped = true
	if t.deadline.After(m.now) {
		m.now = t.deadline
	}
	return t
}
