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

// Package crypto provides the digest and signature primitives used across
// the node: SHA-512/256 content addressing and ed25519 signatures.
package crypto

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/engboniface/stellar-core/protocol"
)

// DigestSize is the number of bytes in the preferred hash digest used here.
const DigestSize = sha512.Size256

// Digest represents a SHA-512/256 hash.
type Digest [DigestSize]byte

// String returns the digest in hexadecimal.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns an abbreviated form of the digest, suitable for log lines.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:3])
}

// IsZero returns true if the digest contains only zeros.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// DigestFromString converts a hexadecimal string to a Digest.
func DigestFromString(str string) (d Digest, err error) {
	var b []byte
	b, err = hex.DecodeString(str)
	if err != nil {
		return
	}
	if len(b) != DigestSize {
		return d, errWrongDigestLen
	}
	copy(d[:], b)
	return
}

// Hash computes the SHA-512/256 digest of data.
func Hash(data []byte) Digest {
	return sha512.Sum512_256(data)
}

// Hashable is an interface implemented by an object that can be represented
// with a sequence of bytes to be hashed or signed, together with a type ID
// to distinguish different types of objects.
type Hashable interface {
	ToBeHashed() (protocol.HashID, []byte)
}

// HashRep appends the correct hashid before the message to be hashed.
func HashRep(h Hashable) []byte {
	hashid, data := h.ToBeHashed()
	return append([]byte(hashid), data...)
}

// HashObj computes a hash of a Hashable object and its type.
func HashObj(h Hashable) Digest {
	return Hash(HashRep(h))
}
