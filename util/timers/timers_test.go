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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/engboniface/stellar-core/testpartitioning"
)

func TestMonotonicAfterFunc(t *testing.T) {
	testpartitioning.PartitionTest(t)

	c := MakeMonotonicClock()
	fired := make(chan struct{})
	c.AfterFunc(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer failed to fire")
	}
}

func TestMonotonicStop(t *testing.T) {
	testpartitioning.PartitionTest(t)

	c := MakeMonotonicClock()
	fired := make(chan struct{}, 1)
	timer := c.AfterFunc(50*time.Millisecond, func() { fired <- struct{}{} })
	require.True(t, timer.Stop())
	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestFrozenFiresInDeadlineOrder(t *testing.T) {
	testpartitioning.PartitionTest(t)

	start := time.Unix(1000, 0)
	c := MakeFrozenClock(start)

	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	c.Advance(90 * time.Second)
	require.Equal(t, []int{1, 2, 3}, order)
	require.Equal(t, start.Add(90*time.Second), c.Now())
}

func TestFrozenStop(t *testing.T) {
	testpartitioning.PartitionTest(t)

	c := MakeFrozenClock(time.Unix(1000, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	c.Advance(time.Minute)
	require.False(t, fired)
}

func TestFrozenNowAdvancesThroughDeadlines(t *testing.T) {
	testpartitioning.PartitionTest(t)

	start := time.Unix(1000, 0)
	c := MakeFrozenClock(start)

	var seen time.Time
	c.AfterFunc(5*time.Second, func() { seen = c.Now() })
	c.Advance(time.Hour)
	require.Equal(t, start.Add(5*time.Second), seen)
}

func TestFrozenRearmWithinAdvance(t *testing.T) {
	testpartitioning.PartitionTest(t)

	c := MakeFrozenClock(time.Unix(1000, 0))
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)
	c.Advance(10 * time.Second)
	require.Equal(t, 3, count)
}

func TestUnix(t *testing.T) {
	testpartitioning.PartitionTest(t)

	require.Equal(t, uint64(1000), Unix(time.Unix(1000, 500)))
	require.Equal(t, uint64(0), Unix(time.Unix(-5, 0)))
}
