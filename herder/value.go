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
	"github.com/engboniface/stellar-core/fba"
	"github.com/engboniface/stellar-core/protocol"
)

// ValuePayload is the decoded form of a consensus value: the transaction
// set it proposes, the close time it stamps, and the base fee it charges.
// The opaque form is the canonical encoding of this struct, so bytewise
// comparison of values is deterministic across nodes.
type ValuePayload struct {
	TxSetHash crypto.Digest `codec:"txset"`
	CloseTime uint64        `codec:"ct"`
	BaseFee   uint64        `codec:"fee"`
}

// Encode returns the canonical opaque form consensus operates on.
func (p ValuePayload) Encode() fba.Value {
	return fba.Value(protocol.Encode(p))
}

// DecodeValue decodes an opaque consensus value. Values produced by
// malformed or hostile nodes fail here and are treated as invalid.
func DecodeValue(v fba.Value) (p ValuePayload, err error) {
	err = protocol.Decode([]byte(v), &p)
	return
}
