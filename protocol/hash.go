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

package protocol

// HashID is a domain separation prefix for an object type that might be
// hashed. This ensures, for example, that the hash of a transaction will
// never collide with the hash of a quorum set.
type HashID string

// Hash IDs for specific object types, in lexicographic order.
const (
	Envelope     HashID = "EV"
	LedgerHeader HashID = "LH"
	QuorumSet    HashID = "QS"
	SignedTx     HashID = "SG"
	Transaction  HashID = "TX"
	TxSet        HashID = "TL"
	ValuePayload HashID = "VA"

	TestHashable HashID = "TE"
)
