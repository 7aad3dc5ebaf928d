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

package herder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/protocol"
	"github.com/engboniface/stellar-core/testpartitioning"
)

func makeTestFetcher(g *recordingGossip) *itemFetcher[string] {
	return makeItemFetcher[string]("txset", protocol.TxSetRequestTag, g)
}

func TestFetcherSingleOutstandingRequest(t *testing.T) {
	testpartitioning.PartitionTest(t)

	g := &recordingGossip{}
	f := makeTestFetcher(g)
	hash := crypto.Hash([]byte("artifact"))

	_, ok := f.FetchItem(hash, true)
	require.False(t, ok)
	require.Len(t, g.byTag(protocol.TxSetRequestTag), 1)

	// Joining an outstanding fetch does not re-ask.
	_, ok = f.FetchItem(hash, true)
	require.False(t, ok)
	require.Len(t, g.byTag(protocol.TxSetRequestTag), 1)

	// Without askNetwork there is never traffic.
	other := crypto.Hash([]byte("other"))
	_, ok = f.FetchItem(other, false)
	require.False(t, ok)
	require.Len(t, g.msgs, 1)
}

func TestFetcherRecvItem(t *testing.T) {
	testpartitioning.PartitionTest(t)

	g := &recordingGossip{}
	f := makeTestFetcher(g)
	hash := crypto.Hash([]byte("artifact"))

	// Unsolicited artifacts are dropped.
	require.False(t, f.RecvItem(hash, "payload"))
	_, ok := f.FetchItem(hash, false)
	require.False(t, ok)

	// After a fetch, the artifact sticks.
	f.FetchItem(hash, true)
	require.True(t, f.RecvItem(hash, "payload"))
	item, ok := f.FetchItem(hash, false)
	require.True(t, ok)
	require.Equal(t, "payload", item)

	// Redelivery is refused once held.
	require.False(t, f.RecvItem(hash, "payload"))
}

func TestFetcherDoesntHave(t *testing.T) {
	testpartitioning.PartitionTest(t)

	g := &recordingGossip{}
	f := makeTestFetcher(g)
	hash := crypto.Hash([]byte("artifact"))
	f.FetchItem(hash, true)
	require.Len(t, g.byTag(protocol.TxSetRequestTag), 1)

	// A peer's first negative re-arms the request.
	f.DoesntHave(hash, "peerA")
	require.Len(t, g.byTag(protocol.TxSetRequestTag), 2)

	// The same peer's repeated negative does not.
	f.DoesntHave(hash, "peerA")
	require.Len(t, g.byTag(protocol.TxSetRequestTag), 2)

	f.DoesntHave(hash, "peerB")
	require.Len(t, g.byTag(protocol.TxSetRequestTag), 3)

	// Negatives for hashes nobody wants are ignored.
	f.DoesntHave(crypto.Hash([]byte("unwanted")), "peerA")
	require.Len(t, g.byTag(protocol.TxSetRequestTag), 3)
}

func TestFetcherStopAndClear(t *testing.T) {
	testpartitioning.PartitionTest(t)

	g := &recordingGossip{}
	f := makeTestFetcher(g)

	held := crypto.Hash([]byte("held"))
	pending := crypto.Hash([]byte("pending"))
	f.FetchItem(held, true)
	require.True(t, f.RecvItem(held, "kept"))
	f.FetchItem(pending, true)

	// Cancellation forgets outstanding requests but keeps content.
	f.StopFetchingAll()
	_, ok := f.FetchItem(held, false)
	require.True(t, ok)
	require.False(t, f.RecvItem(pending, "late"))

	f.Clear()
	_, ok = f.FetchItem(held, false)
	require.False(t, ok)
}

func TestFetcherCache(t *testing.T) {
	testpartitioning.PartitionTest(t)

	g := &recordingGossip{}
	f := makeTestFetcher(g)
	hash := crypto.Hash([]byte("local"))

	f.Cache(hash, "ours")
	item, ok := f.FetchItem(hash, true)
	require.True(t, ok)
	require.Equal(t, "ours", item)
	require.Empty(t, g.msgs)
}
