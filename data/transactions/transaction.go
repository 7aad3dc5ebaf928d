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

// Package transactions defines the payment transaction frame and its
// signing and well-formedness rules.
package transactions

import (
	"errors"

	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/protocol"
)

// Txid is a hash used to uniquely identify individual signed transactions.
type Txid crypto.Digest

// String converts txid to a pretty-printable string.
func (txid Txid) String() string {
	return crypto.Digest(txid).String()
}

// Header captures the fields common to every transaction type.
type Header struct {
	Source basics.AccountID `codec:"src"`
	Fee    basics.Stroops   `codec:"fee"`
	SeqNum basics.SeqNum    `codec:"seq"`
}

// Transaction describes a payment from Source to Destination.
type Transaction struct {
	Header      `codec:"hdr"`
	Destination basics.AccountID `codec:"dst"`
	Amount      basics.Stroops   `codec:"amt"`
}

// ToBeHashed implements the crypto.Hashable interface.
func (tx Transaction) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Transaction, protocol.Encode(tx)
}

// ID returns the Txid (i.e., hash) of the unsigned transaction.
func (tx Transaction) ID() Txid {
	return Txid(crypto.HashObj(tx))
}

// Sign signs the transaction with the source account's secrets and returns
// the signed frame.
func (tx Transaction) Sign(secrets *crypto.SignatureSecrets) SignedTx {
	return SignedTx{
		Txn: tx,
		Sig: secrets.Sign(tx),
	}
}

// SignedTx wraps a transaction and its signature. Its full hash is the
// identity used by flooding and by the received buckets.
type SignedTx struct {
	Sig crypto.Signature `codec:"sig"`
	Txn Transaction      `codec:"txn"`
}

// ToBeHashed implements the crypto.Hashable interface.
func (stx SignedTx) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.SignedTx, protocol.Encode(stx)
}

// ID returns the full hash of the signed transaction, covering the
// signature as well as the payload.
func (stx SignedTx) ID() Txid {
	return Txid(crypto.HashObj(stx))
}

// Verify checks the signature against the source account's key.
func (stx SignedTx) Verify() bool {
	return crypto.SignatureVerifier(stx.Txn.Source).Verify(stx.Txn, stx.Sig)
}

// Well-formedness errors.
var (
	ErrZeroSource      = errors.New("transaction has a zero source account")
	ErrZeroDestination = errors.New("transaction has a zero destination account")
	ErrNonPositiveAmt  = errors.New("transaction amount is not positive")
	ErrFeeTooSmall     = errors.New("transaction fee is below the network fee")
	ErrBadSignature    = errors.New("transaction signature does not verify")
)

// WellFormed checks the structural validity of the signed transaction
// against the network's base fee. It performs no account lookups.
func (stx SignedTx) WellFormed(minFee basics.Stroops) error {
	if stx.Txn.Source.IsZero() {
		return ErrZeroSource
	}
	if stx.Txn.Destination.IsZero() {
		return ErrZeroDestination
	}
	if stx.Txn.Amount <= 0 {
		return ErrNonPositiveAmt
	}
	if stx.Txn.Fee < minFee {
		return ErrFeeTooSmall
	}
	if !stx.Verify() {
		return ErrBadSignature
	}
	return nil
}
