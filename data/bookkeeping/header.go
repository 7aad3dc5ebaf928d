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

// Package bookkeeping defines the ledger header and the transaction set
// frame that consensus decides on.
package bookkeeping

import (
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/protocol"
)

// LedgerHeader summarizes a closed ledger.
type LedgerHeader struct {
	// LedgerSeq is this ledger's sequence number; the next slot up for
	// consensus is always LedgerSeq+1.
	LedgerSeq basics.LedgerSeq `codec:"seq"`

	// PrevHash links to the preceding ledger header.
	PrevHash crypto.Digest `codec:"prev"`

	// TxSetHash identifies the transaction set applied in this ledger.
	TxSetHash crypto.Digest `codec:"txset"`

	// CloseTime is the consensus close time, in seconds since the epoch.
	CloseTime uint64 `codec:"ct"`

	// BaseFee is the per-transaction fee charged in this ledger.
	BaseFee uint64 `codec:"fee"`

	// Hash is this header's own hash. It is derived from the other
	// fields and excluded from the hashed representation.
	Hash crypto.Digest `codec:"hash"`
}

// ToBeHashed implements the crypto.Hashable interface. The stored Hash
// field does not participate.
func (h LedgerHeader) ToBeHashed() (protocol.HashID, []byte) {
	hashed := h
	hashed.Hash = crypto.Digest{}
	return protocol.LedgerHeader, protocol.Encode(hashed)
}

// ComputeHash returns the header's hash.
func (h LedgerHeader) ComputeHash() crypto.Digest {
	return crypto.HashObj(h)
}

// WithHash returns a copy of the header with the Hash field filled in.
func (h LedgerHeader) WithHash() LedgerHeader {
	h.Hash = h.ComputeHash()
	return h
}

// NextSlot returns the slot index consensus is expected to decide next.
func (h LedgerHeader) NextSlot() uint64 {
	return uint64(h.LedgerSeq) + 1
}
