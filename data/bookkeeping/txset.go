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

package bookkeeping

import (
	"bytes"
	"sort"

	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/transactions"
	"github.com/engboniface/stellar-core/protocol"
)

// TxSetFrame is the ordered collection of transactions a value proposes
// for one ledger, linked to the previous ledger's header hash. Its
// contents hash is the canonical identifier referenced by consensus
// values.
type TxSetFrame struct {
	PreviousLedgerHash crypto.Digest           `codec:"prev"`
	Transactions       []transactions.SignedTx `codec:"txs"`
}

// Add appends a transaction to the frame.
func (ts *TxSetFrame) Add(stx transactions.SignedTx) {
	ts.Transactions = append(ts.Transactions, stx)
}

// Contains reports whether the frame holds the transaction with the given
// full hash.
func (ts *TxSetFrame) Contains(id transactions.Txid) bool {
	for _, stx := range ts.Transactions {
		if stx.ID() == id {
			return true
		}
	}
	return false
}

// ToBeHashed implements the crypto.Hashable interface. Transactions are
// hashed in full-hash order, so the contents hash does not depend on
// arrival order.
func (ts TxSetFrame) ToBeHashed() (protocol.HashID, []byte) {
	sorted := TxSetFrame{
		PreviousLedgerHash: ts.PreviousLedgerHash,
		Transactions:       append([]transactions.SignedTx(nil), ts.Transactions...),
	}
	sort.Slice(sorted.Transactions, func(i, j int) bool {
		a := sorted.Transactions[i].ID()
		b := sorted.Transactions[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return protocol.TxSet, protocol.Encode(sorted)
}

// ContentsHash returns the canonical identifier of the frame.
func (ts TxSetFrame) ContentsHash() crypto.Digest {
	return crypto.HashObj(ts)
}

// LedgerState is the subset of the ledger a frame is validated against.
type LedgerState interface {
	LastClosedLedgerHeader() LedgerHeader
	LookupAccount(basics.AccountID) (basics.AccountData, bool)
	TxFee() basics.Stroops
}

// CheckValid verifies the frame against the current ledger: the previous
// ledger link must match the last closed header, every transaction must be
// well formed, its source account loadable with a feasible sequence
// number, and the account's balance must cover the frame's obligations for
// it.
func (ts TxSetFrame) CheckValid(state LedgerState) bool {
	lcl := state.LastClosedLedgerHeader()
	if ts.PreviousLedgerHash != lcl.Hash {
		return false
	}

	minFee := state.TxFee()
	owed := make(map[basics.AccountID]basics.Stroops)
	for _, stx := range ts.Transactions {
		if stx.WellFormed(minFee) != nil {
			return false
		}
		acct, ok := state.LookupAccount(stx.Txn.Source)
		if !ok {
			return false
		}
		if stx.Txn.SeqNum < acct.SeqNum+1 {
			return false
		}
		owed[stx.Txn.Source] += stx.Txn.Fee + stx.Txn.Amount
		if owed[stx.Txn.Source] > acct.Balance {
			return false
		}
	}
	return true
}
