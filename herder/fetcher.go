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
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/network"
	"github.com/engboniface/stellar-core/protocol"
	"github.com/engboniface/stellar-core/util/metrics"
)

// itemFetcher is a content-addressed cache over one artifact kind. A hash
// maps to either a held artifact, an outstanding broadcast request with
// per-peer negative-reply tracking, or nothing. At most one request per
// hash is outstanding at a time; a peer's DONT_HAVE reply is recorded so
// the same peer's repeated negatives are ignored, and re-arms the request.
//
// The fetcher has no lock of its own; the herder serializes access.
type itemFetcher[T any] struct {
	kind    string
	reqTag  protocol.Tag
	overlay Gossiper
	items   map[crypto.Digest]*trackedItem[T]
}

type trackedItem[T any] struct {
	item T
	held bool

	// asked is true while a broadcast request for the hash is
	// outstanding.
	asked bool

	// refused records the addresses of peers that answered DONT_HAVE for
	// the current request round.
	refused map[string]bool
}

func makeItemFetcher[T any](kind string, reqTag protocol.Tag, overlay Gossiper) *itemFetcher[T] {
	return &itemFetcher[T]{
		kind:    kind,
		reqTag:  reqTag,
		overlay: overlay,
		items:   make(map[crypto.Digest]*trackedItem[T]),
	}
}

// FetchItem returns the held artifact for hash, if any. When absent and
// askNetwork is set, a broadcast request is initiated unless one is
// already outstanding; the artifact, if it arrives, is delivered through
// RecvItem.
func (f *itemFetcher[T]) FetchItem(hash crypto.Digest, askNetwork bool) (item T, ok bool) {
	tracked := f.items[hash]
	if tracked != nil && tracked.held {
		return tracked.item, true
	}
	if !askNetwork {
		return item, false
	}
	if tracked == nil {
		tracked = &trackedItem[T]{refused: make(map[string]bool)}
		f.items[hash] = tracked
	}
	if !tracked.asked {
		tracked.asked = true
		f.request(hash)
	}
	return item, false
}

// RecvItem offers an artifact under its hash. It is stored only if some
// party asked for it; unsolicited artifacts are dropped and false is
// returned.
func (f *itemFetcher[T]) RecvItem(hash crypto.Digest, item T) bool {
	tracked := f.items[hash]
	if tracked == nil {
		return false
	}
	if tracked.held {
		return false
	}
	tracked.item = item
	tracked.held = true
	tracked.asked = false
	return true
}

// Cache stores an artifact unconditionally, with no network traffic. Used
// for locally built artifacts (our own transaction sets, the configured
// quorum set) that peers may request by hash.
func (f *itemFetcher[T]) Cache(hash crypto.Digest, item T) {
	tracked := f.items[hash]
	if tracked == nil {
		tracked = &trackedItem[T]{refused: make(map[string]bool)}
		f.items[hash] = tracked
	}
	tracked.item = item
	tracked.held = true
	tracked.asked = false
}

// DoesntHave records a peer's negative reply for hash. A first negative
// from a peer re-arms the broadcast request so the remaining peers are
// asked again; repeated negatives from the same peer are ignored.
func (f *itemFetcher[T]) DoesntHave(hash crypto.Digest, peer string) {
	tracked := f.items[hash]
	if tracked == nil || tracked.held || !tracked.asked {
		return
	}
	if tracked.refused[peer] {
		return
	}
	tracked.refused[peer] = true
	f.request(hash)
}

// StopFetchingAll cancels every outstanding request. Held artifacts stay
// cached; continuations awaiting a cancelled hash are implicitly dropped
// by the herder's rotation.
func (f *itemFetcher[T]) StopFetchingAll() {
	for hash, tracked := range f.items {
		if tracked.held {
			continue
		}
		delete(f.items, hash)
	}
}

// Clear flushes the cache entirely.
func (f *itemFetcher[T]) Clear() {
	f.items = make(map[crypto.Digest]*trackedItem[T])
}

func (f *itemFetcher[T]) request(hash crypto.Digest) {
	metrics.FetchRequests.WithLabelValues(f.kind).Inc()
	f.overlay.Broadcast(network.MakeRequestMessage(f.reqTag, hash))
}
