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

// Package fba implements federated Byzantine agreement: the statement
// types exchanged between validators, the capability surface the engine
// requires from its driver, and the engine itself.
package fba

import (
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/protocol"
)

// NodeID identifies a validator by its ed25519 public key.
type NodeID crypto.PublicKey

// String returns the node in hexadecimal.
func (id NodeID) String() string {
	return crypto.PublicKey(id).String()
}

// Short returns an abbreviated form of the node, suitable for log lines.
func (id NodeID) Short() string {
	return crypto.PublicKey(id).Short()
}

// Value is the opaque byte string consensus decides on. Equality and total
// ordering are defined bytewise over this form; the engine never looks
// inside.
type Value []byte

// Ballot pairs a monotonically bumped counter with a candidate value.
type Ballot struct {
	Counter uint32 `codec:"c"`
	Value   Value  `codec:"v"`
}

// StatementType is the phase a statement asserts for its ballot.
type StatementType uint32

// Statement phases, in protocol order.
const (
	StatementPrepare StatementType = iota
	StatementCommit
)

func (t StatementType) String() string {
	switch t {
	case StatementPrepare:
		return "PREPARE"
	case StatementCommit:
		return "COMMIT"
	default:
		return "UNKNOWN"
	}
}

// Statement is one assertion a validator signs about a slot.
type Statement struct {
	SlotIndex     uint64        `codec:"slot"`
	Type          StatementType `codec:"type"`
	Ballot        Ballot        `codec:"ballot"`
	QuorumSetHash crypto.Digest `codec:"qset"`
}

// ToBeHashed implements the crypto.Hashable interface.
func (s Statement) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.Envelope, protocol.Encode(s)
}

// Envelope is a signed statement as it travels on the overlay.
type Envelope struct {
	NodeID    NodeID           `codec:"node"`
	Signature crypto.Signature `codec:"sig"`
	Statement Statement        `codec:"st"`
}

// Verify checks the envelope's signature against its node's key.
func (e Envelope) Verify() bool {
	return crypto.SignatureVerifier(e.NodeID).Verify(e.Statement, e.Signature)
}

// QuorumSet is a threshold plus the validators whose statements count
// toward it.
type QuorumSet struct {
	Threshold  uint32   `codec:"t"`
	Validators []NodeID `codec:"v"`
}

// ToBeHashed implements the crypto.Hashable interface.
func (qs QuorumSet) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.QuorumSet, protocol.Encode(qs)
}

// Hash returns the SHA-512/256 identifier of the quorum set's canonical
// serialization.
func (qs QuorumSet) Hash() crypto.Digest {
	return crypto.HashObj(qs)
}

// Contains reports whether id is one of the quorum set's validators.
func (qs QuorumSet) Contains(id NodeID) bool {
	for _, v := range qs.Validators {
		if v == id {
			return true
		}
	}
	return false
}
