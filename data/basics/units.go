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

// Package basics defines the ledger's primitive value types.
package basics

import (
	"github.com/engboniface/stellar-core/crypto"
)

// LedgerSeq is the monotonically increasing sequence number of a closed
// ledger. Consensus decides exactly one value per sequence number.
type LedgerSeq uint64

// SeqNum is a per-account transaction sequence number.
type SeqNum uint64

// Stroops is an amount of the network's native currency, in its smallest
// indivisible unit.
type Stroops int64

// AccountID identifies an account by its ed25519 public key.
type AccountID crypto.PublicKey

// String returns the account in hexadecimal.
func (id AccountID) String() string {
	return crypto.PublicKey(id).String()
}

// Short returns an abbreviated form of the account, suitable for log
// lines.
func (id AccountID) Short() string {
	return crypto.PublicKey(id).Short()
}

// IsZero returns true if the account contains only zeros.
func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

// AccountData holds the ledger state of a single account.
type AccountData struct {
	Balance Stroops `codec:"balance"`
	SeqNum  SeqNum  `codec:"seqnum"`
}
