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

// Tag represents a message type identifier. Messages have a Tag field;
// handlers can register to a given Tag. e.g., the herder registers to
// handle agreement envelopes with the FBAMessageTag.
type Tag string

// Tags, in lexicographic sort order of tag values to avoid duplicates.
const (
	UnknownMsgTag       Tag = "??"
	DontHaveTag         Tag = "DH"
	FBAMessageTag       Tag = "FB"
	QuorumSetRequestTag Tag = "QR"
	QuorumSetTag        Tag = "QS"
	TxSetRequestTag     Tag = "TR"
	TxSetTag            Tag = "TS"
	TxnTag              Tag = "TX"
)

// TagLength is the number of bytes used by the wire encoding of a Tag.
const TagLength = 2

// Complement returns the corresponding response/request tag for
// content-addressed fetch traffic.
func (t Tag) Complement() Tag {
	switch t {
	case TxSetRequestTag:
		return TxSetTag
	case TxSetTag:
		return TxSetRequestTag
	case QuorumSetRequestTag:
		return QuorumSetTag
	case QuorumSetTag:
		return QuorumSetRequestTag
	default:
		return UnknownMsgTag
	}
}
