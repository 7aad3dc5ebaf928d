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
	"github.com/engboniface/stellar-core/config"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/transactions"
)

// receivedBuckets holds uncommitted transactions in age cohorts. Newly
// accepted transactions enter bucket 0; each ledger close shifts every
// cohort one bucket older. The oldest bucket is the set a proposed
// transaction set must include to be acceptable.
type receivedBuckets [config.NumReceivedBuckets][]transactions.SignedTx

// contains reports whether any bucket holds the transaction with the
// given full hash.
func (rb *receivedBuckets) contains(id transactions.Txid) bool {
	for i := range rb {
		for _, stx := range rb[i] {
			if stx.ID() == id {
				return true
			}
		}
	}
	return false
}

// countBySource returns how many held transactions share the given source
// account.
func (rb *receivedBuckets) countBySource(source basics.AccountID) int {
	n := 0
	for i := range rb {
		for _, stx := range rb[i] {
			if stx.Txn.Source == source {
				n++
			}
		}
	}
	return n
}

// add appends a transaction to the youngest bucket.
func (rb *receivedBuckets) add(stx transactions.SignedTx) {
	rb[0] = append(rb[0], stx)
}

// remove deletes the transaction with the given full hash from whichever
// bucket holds it, in place, stopping at the first hit.
func (rb *receivedBuckets) remove(id transactions.Txid) {
	for i := range rb {
		for j, stx := range rb[i] {
			if stx.ID() == id {
				rb[i] = append(rb[i][:j], rb[i][j+1:]...)
				return
			}
		}
	}
}

// shift moves every cohort one bucket older. The oldest bucket
// accumulates; it only drains through commitment.
func (rb *receivedBuckets) shift() {
	last := len(rb) - 1
	rb[last] = append(rb[last], rb[last-1]...)
	for n := last - 1; n > 0; n-- {
		rb[n] = rb[n-1]
	}
	rb[0] = nil
}

// all returns every held transaction, youngest cohort first.
func (rb *receivedBuckets) all() []transactions.SignedTx {
	var txs []transactions.SignedTx
	for i := range rb {
		txs = append(txs, rb[i]...)
	}
	return txs
}

// oldest returns the cohort that has survived the full aging window.
func (rb *receivedBuckets) oldest() []transactions.SignedTx {
	return rb[len(rb)-1]
}
