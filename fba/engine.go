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
	"github.com/engboniface/stellar-core/logging"
)

// Engine runs the federated agreement protocol for this node. It maintains
// per-slot ballot state, counts peer statements against the local quorum
// set, and reports commitment through the Driver.
//
// The Engine is not safe for concurrent use. The host serializes every
// call into it (PrepareValue, ReceiveEnvelope) on a single logical loop,
// and all Driver callbacks are made from within those calls, on the same
// loop.
type Engine struct {
	secrets  *crypto.SignatureSecrets
	nodeID   NodeID
	qSet     QuorumSet
	qSetHash crypto.Digest
	driver   Driver
	log      logging.Logger

	slots map[uint64]*slotState
}

// slotState is the engine's view of one slot's ballot protocol.
type slotState struct {
	index uint64

	// ballot is this node's current ballot; zero Counter means no ballot
	// has been prepared yet.
	ballot Ballot

	// prepared and committed hold the latest statement of each phase per
	// node, our own included.
	prepared  map[NodeID]Ballot
	committed map[NodeID]Ballot

	// quorumBallot is the last ballot a transitive quorum was observed
	// on, so the driver is notified once per ballot.
	quorumBallot Ballot
	heardQuorum  bool

	externalized bool
}

// MakeEngine creates an engine for the given identity and local quorum
// set, reporting to driver.
func MakeEngine(secrets *crypto.SignatureSecrets, qSet QuorumSet, driver Driver, log logging.Logger) *Engine {
	return &Engine{
		secrets:  secrets,
		nodeID:   NodeID(secrets.SignatureVerifier),
		qSet:     qSet,
		qSetHash: qSet.Hash(),
		driver:   driver,
		log:      log,
		slots:    make(map[uint64]*slotState),
	}
}

// LocalNodeID returns this node's validator identity.
func (e *Engine) LocalNodeID() NodeID {
	return e.nodeID
}

// LocalQuorumSetHash returns the hash of the quorum set this node's
// statements carry.
func (e *Engine) LocalQuorumSetHash() crypto.Digest {
	return e.qSetHash
}

func (e *Engine) slot(index uint64) *slotState {
	st, ok := e.slots[index]
	if !ok {
		st = &slotState{
			index:     index,
			prepared:  make(map[NodeID]Ballot),
			committed: make(map[NodeID]Ballot),
		}
		e.slots[index] = st
	}
	return st
}

// PrepareValue proposes value for slot. With bump set, the ballot counter
// is incremented while the current preference is kept: if our value is the
// preference the bumped prepare progresses, otherwise only the counter
// moves.
func (e *Engine) PrepareValue(slot uint64, value Value, bump bool) {
	st := e.slot(slot)
	if st.externalized {
		return
	}

	switch {
	case st.ballot.Counter == 0:
		st.ballot = Ballot{Counter: 1, Value: value}
	case bump:
		st.ballot.Counter++
	default:
		// A fresh (non-bump) prepare for a slot we already have a ballot
		// on keeps the counter and switches to the new value.
		st.ballot.Value = value
	}

	e.emitStatement(st, StatementPrepare, st.ballot)
	e.advance(st)
}

// ReceiveEnvelope ingests a peer's signed statement for a slot. The
// verdict on the envelope is reported through cb once the statement's
// quorum set has been retrieved and its ballot validated; both steps may
// suspend on artifact fetches.
func (e *Engine) ReceiveEnvelope(env Envelope, cb func(bool)) {
	if cb == nil {
		cb = func(bool) {}
	}
	if !env.Verify() {
		e.log.WithFields(logging.Fields{
			"node": env.NodeID.Short(),
			"slot": env.Statement.SlotIndex,
		}).Debug("fba: envelope signature does not verify")
		cb(false)
		return
	}
	stmt := env.Statement
	st := e.slot(stmt.SlotIndex)
	if st.externalized {
		cb(false)
		return
	}

	// Resolve the sender's quorum set first so that, by the time the
	// statement counts, its transitive dependencies are held locally.
	// The ballot's value is validated on its own before the ballot-level
	// predicates run.
	e.driver.RetrieveQuorumSet(env.NodeID, stmt.QuorumSetHash, func(QuorumSet) {
		e.driver.ValidateValue(stmt.SlotIndex, env.NodeID, stmt.Ballot.Value, func(valid bool) {
			if !valid {
				cb(false)
				return
			}
			e.driver.ValidateBallot(stmt.SlotIndex, env.NodeID, stmt.Ballot, func(valid bool) {
				if !valid {
					cb(false)
					return
				}
				e.recordStatement(st, env.NodeID, stmt)
				e.advance(st)
				cb(true)
			})
		})
	})
}

func (e *Engine) recordStatement(st *slotState, node NodeID, stmt Statement) {
	switch stmt.Type {
	case StatementPrepare:
		if better(stmt.Ballot, st.prepared[node]) {
			st.prepared[node] = stmt.Ballot
		}
	case StatementCommit:
		if better(stmt.Ballot, st.committed[node]) {
			st.committed[node] = stmt.Ballot
		}
	}
}

// better reports whether a supersedes b, by counter alone. Value
// preference between equal counters is settled by the driver's ordering
// in advance, not here.
func better(a, b Ballot) bool {
	return a.Counter > b.Counter || b.Counter == 0
}

// emitStatement signs and emits a statement, recording our own copy so it
// counts toward thresholds like any peer's.
func (e *Engine) emitStatement(st *slotState, typ StatementType, ballot Ballot) {
	stmt := Statement{
		SlotIndex:     st.index,
		Type:          typ,
		Ballot:        ballot,
		QuorumSetHash: e.qSetHash,
	}
	env := Envelope{
		NodeID:    e.nodeID,
		Signature: e.secrets.Sign(stmt),
		Statement: stmt,
	}
	e.recordStatement(st, e.nodeID, stmt)
	e.driver.EmitEnvelope(env)
}

// countVotes returns how many distinct counted nodes have stated ballot
// in the given phase map. Only this node and the local quorum set's
// validators count.
func (e *Engine) countVotes(votes map[NodeID]Ballot, ballot Ballot) uint32 {
	var n uint32
	for node, b := range votes {
		if node != e.nodeID && !e.qSet.Contains(node) {
			continue
		}
		if b.Counter == ballot.Counter && crypto.Hash(b.Value) == crypto.Hash(ballot.Value) {
			n++
		}
	}
	return n
}

// advance runs the slot's state machine forward: adopt a better peer
// ballot, signal quorum, move to commit, and externalize once the commit
// threshold is reached.
func (e *Engine) advance(st *slotState) {
	if st.externalized {
		return
	}

	// Follow the strongest prepared ballot we have seen: a higher
	// counter wins, and between equal counters the driver's total order
	// on values breaks the tie.
	for _, b := range st.prepared {
		if b.Counter > st.ballot.Counter ||
			(b.Counter == st.ballot.Counter &&
				e.driver.CompareValues(st.index, b.Counter, b.Value, st.ballot.Value) > 0) {
			st.ballot = b
			e.emitStatement(st, StatementPrepare, st.ballot)
		}
	}

	if st.ballot.Counter == 0 {
		return
	}

	if e.countVotes(st.prepared, st.ballot) >= e.qSet.Threshold {
		if !st.heardQuorum || better(st.ballot, st.quorumBallot) {
			st.heardQuorum = true
			st.quorumBallot = st.ballot
			e.driver.BallotDidHearFromQuorum(st.index, st.ballot)
		}
		if _, done := st.committed[e.nodeID]; !done || better(st.ballot, st.committed[e.nodeID]) {
			e.emitStatement(st, StatementCommit, st.ballot)
		}
	}

	if e.countVotes(st.committed, st.ballot) >= e.qSet.Threshold {
		st.externalized = true
		e.driver.ValueExternalized(st.index, st.ballot.Value)
	}
}
