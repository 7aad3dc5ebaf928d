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

package fba

import (
	"github.com/engboniface/stellar-core/crypto"
)

// Driver is the capability surface the engine requires from its host. The
// engine holds exactly one Driver and performs no other outcalls; every
// policy decision (what values are acceptable, how to reach the overlay,
// what happens on commit) lives behind this boundary.
//
// Validation callbacks are asynchronous: the driver may need to fetch the
// artifacts a value references before it can answer, so the result is
// reported through cont rather than returned. The engine must tolerate
// cont running after ReceiveEnvelope has returned.
type Driver interface {
	// ValidateValue reports through cont whether value is acceptable as a
	// candidate for slot.
	ValidateValue(slot uint64, nodeID NodeID, value Value, cont func(bool))

	// ValidateBallot reports through cont whether ballot is acceptable
	// for slot. This is a stricter test than ValidateValue: it also
	// bounds the ballot counter and the value's close time and fee.
	ValidateBallot(slot uint64, nodeID NodeID, ballot Ballot, cont func(bool))

	// CompareValues returns -1, 0 or +1 ordering v1 against v2. The
	// ordering must be a total order identical across all honest nodes;
	// the engine uses it to break preference ties deterministically.
	CompareValues(slot uint64, counter uint32, v1, v2 Value) int

	// BallotDidHearFromQuorum notifies the driver that a transitive
	// quorum has been observed on ballot for slot.
	BallotDidHearFromQuorum(slot uint64, ballot Ballot)

	// ValueExternalized notifies the driver that consensus committed
	// value for slot. This is the commit point: the driver applies the
	// decided value to the ledger.
	ValueExternalized(slot uint64, value Value)

	// RetrieveQuorumSet resolves qSetHash to the quorum set it
	// identifies, delivering it through cont once available.
	RetrieveQuorumSet(nodeID NodeID, qSetHash crypto.Digest, cont func(QuorumSet))

	// EmitEnvelope hands a signed envelope to the driver for broadcast
	// over the overlay.
	EmitEnvelope(env Envelope)
}
