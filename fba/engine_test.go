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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/testpartitioning"
)

// recordingDriver answers every validation positively (unless told to
// reject) and records each callback, so tests can watch the engine's
// outcalls.
type recordingDriver struct {
	qSets map[crypto.Digest]QuorumSet

	rejectValue bool

	validations  []string
	emitted      []Envelope
	quorumHeard  []Ballot
	externalized map[uint64]Value
}

func makeRecordingDriver() *recordingDriver {
	return &recordingDriver{
		qSets:        make(map[crypto.Digest]QuorumSet),
		externalized: make(map[uint64]Value),
	}
}

func (d *recordingDriver) ValidateValue(slot uint64, nodeID NodeID, value Value, cont func(bool)) {
	d.validations = append(d.validations, "value")
	cont(!d.rejectValue)
}

func (d *recordingDriver) ValidateBallot(slot uint64, nodeID NodeID, ballot Ballot, cont func(bool)) {
	d.validations = append(d.validations, "ballot")
	cont(true)
}

func (d *recordingDriver) CompareValues(slot uint64, counter uint32, v1, v2 Value) int {
	return bytes.Compare(v1, v2)
}

func (d *recordingDriver) BallotDidHearFromQuorum(slot uint64, ballot Ballot) {
	d.quorumHeard = append(d.quorumHeard, ballot)
}

func (d *recordingDriver) ValueExternalized(slot uint64, value Value) {
	d.externalized[slot] = value
}

func (d *recordingDriver) RetrieveQuorumSet(nodeID NodeID, qSetHash crypto.Digest, cont func(QuorumSet)) {
	if qs, ok := d.qSets[qSetHash]; ok {
		cont(qs)
	}
}

func (d *recordingDriver) EmitEnvelope(env Envelope) {
	d.emitted = append(d.emitted, env)
}

func engineSecrets(b byte) *crypto.SignatureSecrets {
	var seed crypto.Seed
	seed[0] = b
	return crypto.GenerateSignatureSecrets(seed)
}

func (d *recordingDriver) emittedOfType(typ StatementType) []Envelope {
	var out []Envelope
	for _, env := range d.emitted {
		if env.Statement.Type == typ {
			out = append(out, env)
		}
	}
	return out
}

// TestEngineSoloExternalizes runs the degenerate quorum: a lone node's
// prepare carries straight through commit to externalization.
func TestEngineSoloExternalizes(t *testing.T) {
	testpartitioning.PartitionTest(t)

	driver := makeRecordingDriver()
	secrets := engineSecrets(1)
	e := MakeEngine(secrets, QuorumSet{Threshold: 0}, driver, logging.TestingLog(t))
	driver.qSets[e.LocalQuorumSetHash()] = QuorumSet{Threshold: 0}

	value := Value("decided")
	e.PrepareValue(1, value, false)

	require.Equal(t, value, driver.externalized[1])
	require.Len(t, driver.quorumHeard, 1)
	require.NotEmpty(t, driver.emittedOfType(StatementPrepare))
	require.NotEmpty(t, driver.emittedOfType(StatementCommit))

	// Re-preparing an externalized slot is a no-op.
	emitted := len(driver.emitted)
	e.PrepareValue(1, Value("late"), false)
	require.Len(t, driver.emitted, emitted)
}

// TestEngineTwoNodeAgreement drives two engines against each other by
// relaying their emitted envelopes.
func TestEngineTwoNodeAgreement(t *testing.T) {
	testpartitioning.PartitionTest(t)

	secretsA := engineSecrets(1)
	secretsB := engineSecrets(2)
	qSet := QuorumSet{
		Threshold: 2,
		Validators: []NodeID{
			NodeID(secretsA.SignatureVerifier),
			NodeID(secretsB.SignatureVerifier),
		},
	}

	driverA := makeRecordingDriver()
	driverB := makeRecordingDriver()
	engineA := MakeEngine(secretsA, qSet, driverA, logging.TestingLog(t))
	engineB := MakeEngine(secretsB, qSet, driverB, logging.TestingLog(t))
	driverA.qSets[qSet.Hash()] = qSet
	driverB.qSets[qSet.Hash()] = qSet

	value := Value("agreed")
	engineA.PrepareValue(1, value, false)
	engineB.PrepareValue(1, value, false)

	// Neither node externalizes on its own statement.
	require.Empty(t, driverA.externalized)
	require.Empty(t, driverB.externalized)

	// Relay until both queues drain.
	sentA, sentB := 0, 0
	for sentA < len(driverA.emitted) || sentB < len(driverB.emitted) {
		for ; sentA < len(driverA.emitted); sentA++ {
			engineB.ReceiveEnvelope(driverA.emitted[sentA], nil)
		}
		for ; sentB < len(driverB.emitted); sentB++ {
			engineA.ReceiveEnvelope(driverB.emitted[sentB], nil)
		}
	}

	require.Equal(t, value, driverA.externalized[1])
	require.Equal(t, value, driverB.externalized[1])
}

// TestEngineValidatesValueThenBallot checks the envelope routing: the
// value is validated on its own before the ballot-level predicates, and
// a rejected value stops the statement from counting.
func TestEngineValidatesValueThenBallot(t *testing.T) {
	testpartitioning.PartitionTest(t)

	secretsA := engineSecrets(1)
	secretsB := engineSecrets(2)
	qSet := QuorumSet{
		Threshold: 2,
		Validators: []NodeID{
			NodeID(secretsA.SignatureVerifier),
			NodeID(secretsB.SignatureVerifier),
		},
	}
	driver := makeRecordingDriver()
	e := MakeEngine(secretsA, qSet, driver, logging.TestingLog(t))
	driver.qSets[qSet.Hash()] = qSet

	stmt := Statement{
		SlotIndex:     1,
		Type:          StatementPrepare,
		Ballot:        Ballot{Counter: 1, Value: Value("v")},
		QuorumSetHash: qSet.Hash(),
	}
	env := Envelope{
		NodeID:    NodeID(secretsB.SignatureVerifier),
		Signature: secretsB.Sign(stmt),
		Statement: stmt,
	}

	verdict := false
	e.ReceiveEnvelope(env, func(ok bool) { verdict = ok })
	require.True(t, verdict)
	require.Equal(t, []string{"value", "ballot"}, driver.validations)

	// A rejected value never reaches the ballot predicates.
	driver.rejectValue = true
	driver.validations = nil
	verdict = true
	e.ReceiveEnvelope(env, func(ok bool) { verdict = ok })
	require.False(t, verdict)
	require.Equal(t, []string{"value"}, driver.validations)
}

// TestEngineRejectsBadSignature drops forged envelopes before any
// retrieval or validation.
func TestEngineRejectsBadSignature(t *testing.T) {
	testpartitioning.PartitionTest(t)

	driver := makeRecordingDriver()
	secrets := engineSecrets(1)
	forger := engineSecrets(2)
	e := MakeEngine(secrets, QuorumSet{Threshold: 1}, driver, logging.TestingLog(t))

	stmt := Statement{
		SlotIndex:     1,
		Type:          StatementPrepare,
		Ballot:        Ballot{Counter: 1, Value: Value("v")},
		QuorumSetHash: e.LocalQuorumSetHash(),
	}
	env := Envelope{
		NodeID:    NodeID(secrets.SignatureVerifier),
		Signature: forger.Sign(stmt),
		Statement: stmt,
	}

	verdict := true
	e.ReceiveEnvelope(env, func(ok bool) { verdict = ok })
	require.False(t, verdict)
	require.Empty(t, driver.emitted)
}

// TestEngineAdoptsStrongerBallot follows a peer's higher counter.
func TestEngineAdoptsStrongerBallot(t *testing.T) {
	testpartitioning.PartitionTest(t)

	secretsA := engineSecrets(1)
	secretsB := engineSecrets(2)
	qSet := QuorumSet{
		Threshold: 2,
		Validators: []NodeID{
			NodeID(secretsA.SignatureVerifier),
			NodeID(secretsB.SignatureVerifier),
		},
	}
	driver := makeRecordingDriver()
	e := MakeEngine(secretsA, qSet, driver, logging.TestingLog(t))
	driver.qSets[qSet.Hash()] = qSet

	e.PrepareValue(1, Value("mine"), false)

	stmt := Statement{
		SlotIndex:     1,
		Type:          StatementPrepare,
		Ballot:        Ballot{Counter: 3, Value: Value("theirs")},
		QuorumSetHash: qSet.Hash(),
	}
	env := Envelope{
		NodeID:    NodeID(secretsB.SignatureVerifier),
		Signature: secretsB.Sign(stmt),
		Statement: stmt,
	}
	e.ReceiveEnvelope(env, nil)

	prepares := driver.emittedOfType(StatementPrepare)
	last := prepares[len(prepares)-1].Statement.Ballot
	require.Equal(t, uint32(3), last.Counter)
	require.Equal(t, Value("theirs"), last.Value)
}

// TestEngineBumpKeepsPreference checks the bump path: the counter moves
// while the prepared value stays.
func TestEngineBumpKeepsPreference(t *testing.T) {
	testpartitioning.PartitionTest(t)

	secretsA := engineSecrets(1)
	otherPK := engineSecrets(2).SignatureVerifier
	qSet := QuorumSet{
		Threshold:  2,
		Validators: []NodeID{NodeID(secretsA.SignatureVerifier), NodeID(otherPK)},
	}
	driver := makeRecordingDriver()
	e := MakeEngine(secretsA, qSet, driver, logging.TestingLog(t))

	e.PrepareValue(1, Value("mine"), false)
	e.PrepareValue(1, Value("mine"), true)

	prepares := driver.emittedOfType(StatementPrepare)
	require.Len(t, prepares, 2)
	require.Equal(t, uint32(1), prepares[0].Statement.Ballot.Counter)
	require.Equal(t, uint32(2), prepares[1].Statement.Ballot.Counter)
	require.Equal(t, Value("mine"), prepares[1].Statement.Ballot.Value)
}
