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

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/engboniface/stellar-core/protocol"
	"github.com/engboniface/stellar-core/testpartitioning"
)

type testMessage string

func (m testMessage) ToBeHashed() (protocol.HashID, []byte) {
	return protocol.TestHashable, []byte(m)
}

func TestHashDomainSeparation(t *testing.T) {
	testpartitioning.PartitionTest(t)

	h1 := HashObj(testMessage("hello"))
	h2 := HashObj(testMessage("hello"))
	h3 := HashObj(testMessage("world"))
	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
	require.NotEqual(t, h1, Hash([]byte("hello")))
	require.False(t, h1.IsZero())
	require.True(t, Digest{}.IsZero())
}

func TestDigestRoundTrip(t *testing.T) {
	testpartitioning.PartitionTest(t)

	d := Hash([]byte("roundtrip"))
	d2, err := DigestFromString(d.String())
	require.NoError(t, err)
	require.Equal(t, d, d2)

	_, err = DigestFromString("abcd")
	require.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	testpartitioning.PartitionTest(t)

	var seed Seed
	RandomSeed(&seed)
	secrets := GenerateSignatureSecrets(seed)

	msg := testMessage("testing signing")
	sig := secrets.Sign(msg)
	require.False(t, sig.Blank())
	require.True(t, secrets.SignatureVerifier.Verify(msg, sig))
	require.False(t, secrets.SignatureVerifier.Verify(testMessage("other"), sig))

	var otherSeed Seed
	RandomSeed(&otherSeed)
	other := GenerateSignatureSecrets(otherSeed)
	require.False(t, other.SignatureVerifier.Verify(msg, sig))
}

func TestSeedDeterminism(t *testing.T) {
	testpartitioning.PartitionTest(t)

	var seed Seed
	seed[0] = 42
	a := GenerateSignatureSecrets(seed)
	b := GenerateSignatureSecrets(seed)
	require.Equal(t, a.SignatureVerifier, b.SignatureVerifier)
}
