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
	ed25519 "crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/hdevalence/ed25519consensus"
)

var errWrongDigestLen = errors.New("digest is the wrong length")
var errWrongSeedLen = errors.New("seed is the wrong length")

// A Seed holds the entropy needed to generate cryptographic keys.
type Seed [32]byte

// A PublicKey is the public half of an ed25519 signing keypair.
type PublicKey [ed25519.PublicKeySize]byte

// A Signature is a cryptographic signature. It proves that a message was
// produced by a holder of a cryptographic secret.
type Signature [ed25519.SignatureSize]byte

// BlankSignature is an empty signature structure, containing nothing but
// zeroes.
var BlankSignature = Signature{}

// Blank tests to see if the given signature contains only zeros.
func (s *Signature) Blank() bool {
	return *s == BlankSignature
}

// String returns the public key in hexadecimal.
func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

// Short returns an abbreviated form of the public key, suitable for log
// lines.
func (pk PublicKey) Short() string {
	return hex.EncodeToString(pk[:3])
}

// PublicKeyFromString converts a hexadecimal string to a PublicKey.
func PublicKeyFromString(str string) (pk PublicKey, err error) {
	var b []byte
	b, err = hex.DecodeString(str)
	if err != nil {
		return
	}
	if len(b) != ed25519.PublicKeySize {
		return pk, errWrongDigestLen
	}
	copy(pk[:], b)
	return
}

// SeedFromString converts a hexadecimal string to a Seed.
func SeedFromString(str string) (s Seed, err error) {
	var b []byte
	b, err = hex.DecodeString(str)
	if err != nil {
		return
	}
	if len(b) != len(s) {
		return s, errWrongSeedLen
	}
	copy(s[:], b)
	return
}

// RandomSeed fills s with cryptographically random data.
func RandomSeed(s *Seed) {
	if _, err := rand.Read(s[:]); err != nil {
		panic(err)
	}
}

// SignatureSecrets are used by an entity to produce unforgeable signatures
// over a message.
type SignatureSecrets struct {
	SignatureVerifier
	sk ed25519.PrivateKey
}

// SignatureVerifier is used to identify the holder of SignatureSecrets and
// verify the authenticity of Signatures.
type SignatureVerifier = PublicKey

// GenerateSignatureSecrets creates SignatureSecrets from a source of
// entropy.
func GenerateSignatureSecrets(seed Seed) *SignatureSecrets {
	sk := ed25519.NewKeyFromSeed(seed[:])
	var pk PublicKey
	copy(pk[:], sk.Public().(ed25519.PublicKey))
	return &SignatureSecrets{
		SignatureVerifier: pk,
		sk:                sk,
	}
}

// Sign produces a cryptographic Signature of a message, identified by its
// unique representation.
func (s *SignatureSecrets) Sign(message Hashable) Signature {
	return s.SignBytes(HashRep(message))
}

// SignBytes signs a message directly, without first hashing. Caller is
// responsible for domain separation.
func (s *SignatureSecrets) SignBytes(message []byte) (sig Signature) {
	copy(sig[:], ed25519.Sign(s.sk, message))
	return
}

// Verify verifies that some holder of a cryptographic secret authentically
// signed a Hashable message.
func (v SignatureVerifier) Verify(message Hashable, sig Signature) bool {
	return v.VerifyBytes(HashRep(message), sig)
}

// VerifyBytes verifies a signature, where the message is not hashed first.
// Caller is responsible for domain separation. Verification follows the
// ZIP-215 batch-compatible rules.
func (v SignatureVerifier) VerifyBytes(message []byte, sig Signature) bool {
	return ed25519consensus.Verify(ed25519.PublicKey(v[:]), message, sig[:])
}
