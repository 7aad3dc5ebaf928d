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

// Package herder drives consensus for the node: it nominates a value for
// each ledger slot, validates values and ballots proposed by peers,
// fetches the artifacts those values reference before voting on them,
// runs the nomination and ballot-bump timers, and applies externalized
// values to the ledger.
package herder

import (
	"bytes"
	"errors"
	"time"

	"github.com/algorand/go-deadlock"

	"github.com/engboniface/stellar-core/config"
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/bookkeeping"
	"github.com/engboniface/stellar-core/data/transactions"
	"github.com/engboniface/stellar-core/fba"
	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/network"
	"github.com/engboniface/stellar-core/protocol"
	"github.com/engboniface/stellar-core/util/metrics"
	"github.com/engboniface/stellar-core/util/timers"
)

// LedgerGateway is the ledger surface the herder consumes: the read side
// values and transactions are validated against, and the commit side an
// externalized transaction set is handed to. ExternalizeValue must call
// the herder's LedgerClosed synchronously with the new header.
type LedgerGateway interface {
	bookkeeping.LedgerState
	ExternalizeValue(txSet *bookkeeping.TxSetFrame, closeTime uint64, baseFee uint64)
}

// Gossiper is the overlay surface the herder consumes.
type Gossiper interface {
	Broadcast(network.Message)
}

// ErrNotNewNetwork is returned by Bootstrap when the config does not
// authorize minting a new network.
var ErrNotNewNetwork = errors.New("herder: config does not set StartNewNetwork")

type pendingEnvelope struct {
	env fba.Envelope
	cb  func(bool)
}

// Herder mediates between the agreement engine, the overlay, and the
// ledger.
//
// Concurrency: external entry points (Recv*, Bootstrap, timer firings)
// serialize on mu, giving the single-loop model the protocol assumes.
// The fba.Driver callbacks and LedgerClosed are invoked only from within
// that serialization (by the engine, or by the ledger during
// ExternalizeValue) and therefore take no lock of their own.
type Herder struct {
	mu deadlock.Mutex

	cfg     config.Local
	log     logging.Logger
	clock   timers.Clock
	ledger  LedgerGateway
	overlay Gossiper
	engine  *fba.Engine

	lastClosedLedger           bookkeeping.LedgerHeader
	ledgersToWaitToParticipate uint32
	syncedState                func() bool

	// Two transaction-set fetchers rotate at externalization so that
	// requests still referenced by next-slot envelopes survive commit by
	// one slot.
	txSetFetchers       [2]*itemFetcher[*bookkeeping.TxSetFrame]
	currentTxSetFetcher int
	qSetFetcher         *itemFetcher[fba.QuorumSet]

	// Pending continuations blocked on an artifact, drained in insertion
	// order when it arrives.
	txSetFetches map[crypto.Digest][]func(*bookkeeping.TxSetFrame)
	qSetFetches  map[crypto.Digest][]func(fba.QuorumSet)

	received        receivedBuckets
	futureEnvelopes map[uint64][]pendingEnvelope

	localValue  fba.Value
	lastTrigger time.Time

	// Timers are cancelled by bumping the matching generation; a firing
	// whose generation is stale no-ops.
	triggerTimer timers.Timer
	triggerGen   uint64
	bumpTimer    timers.Timer
	bumpGen      uint64
}

// MakeHerder wires a herder and its agreement engine. The local quorum
// set is pre-inserted into the quorum-set fetcher so that the engine and
// peers resolving it see it immediately.
func MakeHerder(cfg config.Local, secrets *crypto.SignatureSecrets, qSet fba.QuorumSet, ledger LedgerGateway, overlay Gossiper, clock timers.Clock, log logging.Logger) *Herder {
	h := &Herder{
		cfg:                        cfg,
		log:                        log,
		clock:                      clock,
		ledger:                     ledger,
		overlay:                    overlay,
		lastClosedLedger:           ledger.LastClosedLedgerHeader(),
		ledgersToWaitToParticipate: config.SyncWaitLedgers,
		syncedState:                func() bool { return true },
		qSetFetcher:                makeItemFetcher[fba.QuorumSet]("qset", protocol.QuorumSetRequestTag, overlay),
		txSetFetches:               make(map[crypto.Digest][]func(*bookkeeping.TxSetFrame)),
		qSetFetches:                make(map[crypto.Digest][]func(fba.QuorumSet)),
		futureEnvelopes:            make(map[uint64][]pendingEnvelope),
		lastTrigger:                clock.Now(),
	}
	h.txSetFetchers[0] = makeItemFetcher[*bookkeeping.TxSetFrame]("txset", protocol.TxSetRequestTag, overlay)
	h.txSetFetchers[1] = makeItemFetcher[*bookkeeping.TxSetFrame]("txset", protocol.TxSetRequestTag, overlay)
	h.engine = fba.MakeEngine(secrets, qSet, h, log)
	h.qSetFetcher.Cache(qSet.Hash(), qSet)
	return h
}

// SetSyncedStateProvider installs the predicate reporting whether the
// node considers itself synced. The sync-wait counter only counts down
// on ledgers closed while it reports true.
func (h *Herder) SetSyncedStateProvider(f func() bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syncedState = f
}

// LocalNodeID returns this node's validator identity.
func (h *Herder) LocalNodeID() fba.NodeID {
	return h.engine.LocalNodeID()
}

// Bootstrap mints the first slot of a new network: it skips the sync
// wait and triggers nomination immediately. The config must set
// StartNewNetwork.
func (h *Herder) Bootstrap() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.cfg.StartNewNetwork {
		return ErrNotNewNetwork
	}
	h.lastClosedLedger = h.ledger.LastClosedLedgerHeader()
	h.ledgersToWaitToParticipate = 0
	h.triggerNextLedger()
	return nil
}

//
// fba.Driver callbacks. These run within the herder's serialization and
// must not take mu.
//

// ValidateValue reports whether value is acceptable for slot. Ledger-
// relative predicates only apply once the node is fully synced; the
// transaction-set check suspends on a fetch when the set is not yet held.
func (h *Herder) ValidateValue(slot uint64, nodeID fba.NodeID, value fba.Value, cont func(bool)) {
	b, err := DecodeValue(value)
	if err != nil {
		cont(false)
		return
	}

	if h.ledgersToWaitToParticipate == 0 {
		if slot != h.lastClosedLedger.NextSlot() {
			cont(false)
			return
		}
		if b.CloseTime <= h.lastClosedLedger.CloseTime {
			cont(false)
			return
		}
	}

	h.resolveTxSet(b.TxSetHash, func(txSet *bookkeeping.TxSetFrame) {
		if h.ledgersToWaitToParticipate == 0 && !txSet.CheckValid(h.ledger) {
			h.log.WithFields(logging.Fields{
				"slot":  slot,
				"node":  nodeID.Short(),
				"txset": b.TxSetHash.Short(),
			}).Debug("herder: invalid txSet in value")
			cont(false)
			return
		}
		cont(true)
	})
}

// ValidateBallot applies the value predicates plus the ballot-level ones:
// close-time future drift, the ballot-counter exhaustion guard, the
// base-fee band, and oldest-bucket inclusion on the resolved set.
func (h *Herder) ValidateBallot(slot uint64, nodeID fba.NodeID, ballot fba.Ballot, cont func(bool)) {
	b, err := DecodeValue(ballot.Value)
	if err != nil {
		cont(false)
		return
	}

	if h.ledgersToWaitToParticipate == 0 {
		if slot != h.lastClosedLedger.NextSlot() {
			cont(false)
			return
		}
		if b.CloseTime <= h.lastClosedLedger.CloseTime {
			cont(false)
			return
		}
	}

	now := timers.Unix(h.clock.Now())
	slip := uint64(h.cfg.MaxTimeSlipSeconds)
	if b.CloseTime > now+slip {
		cont(false)
		return
	}

	// Ignore ballots whose counter could not have been reached through
	// the expected series of timeouts, accepting slip as clock error.
	// This bounds how fast a hostile peer can push the counter.
	lastTrigger := timers.Unix(h.lastTrigger)
	maxTimeout := uint64(h.cfg.MaxFBATimeoutSeconds)
	var sumTimeouts uint64
	for i := uint32(0); i < ballot.Counter; i++ {
		step := maxTimeout
		if i < 63 && uint64(1)<<i < maxTimeout {
			step = uint64(1) << i
		}
		if step == 0 {
			break
		}
		sumTimeouts += step
		if lastTrigger+sumTimeouts > now+slip {
			break
		}
	}
	if now+slip < lastTrigger+sumTimeouts {
		cont(false)
		return
	}

	if 2*b.BaseFee < h.cfg.DesiredBaseFee || b.BaseFee > 2*h.cfg.DesiredBaseFee {
		cont(false)
		return
	}

	h.resolveTxSet(b.TxSetHash, func(txSet *bookkeeping.TxSetFrame) {
		// The set must carry every transaction our quorum has been
		// flooding for the full aging window.
		for _, stx := range h.received.oldest() {
			if !txSet.Contains(stx.ID()) {
				h.log.WithFields(logging.Fields{
					"slot":  slot,
					"node":  nodeID.Short(),
					"txset": b.TxSetHash.Short(),
				}).Debug("herder: txSet missing aged received tx")
				cont(false)
				return
			}
		}
		if h.ledgersToWaitToParticipate == 0 && !txSet.CheckValid(h.ledger) {
			cont(false)
			return
		}
		cont(true)
	})
}

// CompareValues orders two opaque values bytewise; the canonical encoding
// makes the result identical across nodes.
func (h *Herder) CompareValues(slot uint64, counter uint32, v1, v2 fba.Value) int {
	return bytes.Compare(v1, v2)
}

// BallotDidHearFromQuorum arms the bump timer: if the slot does not
// externalize within 2^counter seconds, the ballot counter is bumped.
func (h *Herder) BallotDidHearFromQuorum(slot uint64, ballot fba.Ballot) {
	if h.ledgersToWaitToParticipate > 0 {
		return
	}
	if slot != h.lastClosedLedger.NextSlot() {
		return
	}

	h.cancelBumpTimer()
	gen := h.bumpGen
	h.bumpTimer = h.clock.AfterFunc(ballotBumpDelay(ballot.Counter), func() {
		h.expireBallot(gen, slot)
	})
}

// ballotBumpDelay returns 2^counter seconds, with the shift kept in
// range.
func ballotBumpDelay(counter uint32) time.Duration {
	if counter > 30 {
		counter = 30
	}
	return time.Duration(uint64(1)<<counter) * time.Second
}

// ValueExternalized is the commit point: the decided transaction set is
// handed to the ledger, committed transactions leave the received
// buckets, one-slot survivors are rebroadcast, and the buckets age.
func (h *Herder) ValueExternalized(slot uint64, value fba.Value) {
	h.cancelBumpTimer()

	b, err := DecodeValue(value)
	if err != nil {
		// Should not happen: every value was validated, and validation
		// starts with a decode.
		h.log.WithFields(logging.Fields{"slot": slot}).Error("herder: externalized value malformed")
	}

	externalizedSet, ok := h.fetchTxSet(b.TxSetHash, false)
	if !ok {
		// Likewise: validation fetched the set before any vote.
		h.log.WithFields(logging.Fields{
			"slot":  slot,
			"txset": b.TxSetHash.Short(),
		}).Error("herder: externalized txSet not found")
		return
	}

	h.log.WithFields(logging.Fields{
		"slot":  slot,
		"txset": b.TxSetHash.Short(),
		"txs":   len(externalizedSet.Transactions),
	}).Info("herder: value externalized")

	// Stop the committed slot's outstanding fetches and rotate; requests
	// the previous rotation left in flight lived exactly one slot.
	h.txSetFetchers[h.currentTxSetFetcher].StopFetchingAll()
	h.currentTxSetFetcher ^= 1
	h.txSetFetchers[h.currentTxSetFetcher].Clear()
	// Continuations awaiting a cancelled hash are dropped with it.
	h.txSetFetches = make(map[crypto.Digest][]func(*bookkeeping.TxSetFrame))

	h.ledger.ExternalizeValue(externalizedSet, b.CloseTime, b.BaseFee)
	metrics.LedgersClosed.Inc()

	for _, stx := range externalizedSet.Transactions {
		h.received.remove(stx.ID())
	}

	if config.NumReceivedBuckets >= 2 {
		for _, stx := range h.received[1] {
			h.overlay.Broadcast(network.MakeTxMessage(stx))
		}
	}

	h.received.shift()
}

// RetrieveQuorumSet resolves a quorum set by hash, requesting it from the
// overlay and suspending the continuation when it is not yet held.
func (h *Herder) RetrieveQuorumSet(nodeID fba.NodeID, qSetHash crypto.Digest, cont func(fba.QuorumSet)) {
	if qs, ok := h.qSetFetcher.FetchItem(qSetHash, true); ok {
		cont(qs)
		return
	}
	h.qSetFetches[qSetHash] = append(h.qSetFetches[qSetHash], cont)
}

// EmitEnvelope broadcasts an engine envelope, suppressed entirely while
// the node is not fully synced.
func (h *Herder) EmitEnvelope(env fba.Envelope) {
	if h.ledgersToWaitToParticipate > 0 {
		h.log.WithFields(logging.Fields{
			"slot": env.Statement.SlotIndex,
			"wait": h.ledgersToWaitToParticipate,
		}).Debug("herder: envelope suppressed while syncing")
		return
	}
	h.overlay.Broadcast(network.MakeEnvelopeMessage(env))
}

// LedgerClosed advances the last closed ledger and re-arms the trigger
// timer so that successive nominations stay at least the expected ledger
// timespan apart. Called by the ledger gateway, within the herder's
// serialization, for every ledger close.
func (h *Herder) LedgerClosed(header bookkeeping.LedgerHeader) {
	if header.LedgerSeq < h.lastClosedLedger.LedgerSeq {
		h.log.WithFields(logging.Fields{
			"seq":  uint64(header.LedgerSeq),
			"last": uint64(h.lastClosedLedger.LedgerSeq),
		}).Warn("herder: ignoring ledger close behind last closed")
		return
	}
	h.lastClosedLedger = header

	if h.ledgersToWaitToParticipate > 0 && h.syncedState() {
		h.ledgersToWaitToParticipate--
	}
	if h.ledgersToWaitToParticipate > 0 {
		return
	}

	h.cancelTriggerTimer()
	gen := h.triggerGen

	span := time.Duration(h.cfg.ExpectedLedgerTimespanSeconds) * time.Second
	delay := span - h.clock.Now().Sub(h.lastTrigger)
	if delay < 0 {
		delay = 0
	}
	h.triggerTimer = h.clock.AfterFunc(delay, func() {
		h.triggerFired(gen)
	})
}

//
// External entry points. These serialize on mu.
//

// RecvFBAEnvelope gates an incoming agreement envelope by sync state and
// slot window, buffers envelopes for future slots, and hands the rest to
// the engine. The verdict on the envelope is reported through cb.
func (h *Herder) RecvFBAEnvelope(env fba.Envelope, cb func(bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recvFBAEnvelope(env, cb)
}

func (h *Herder) recvFBAEnvelope(env fba.Envelope, cb func(bool)) {
	if h.ledgersToWaitToParticipate == 0 {
		slot := env.Statement.SlotIndex
		last := uint64(h.lastClosedLedger.LedgerSeq)
		bracket := uint64(h.cfg.LedgerValidityBracket)

		minSlot := uint64(0)
		if last > bracket {
			minSlot = last - bracket
		}
		if slot < minSlot || slot > last+bracket {
			metrics.EnvelopesDropped.Inc()
			return
		}
		if slot > last+1 {
			h.futureEnvelopes[slot] = append(h.futureEnvelopes[slot], pendingEnvelope{env: env, cb: cb})
			metrics.EnvelopesBuffered.Inc()
			return
		}
	}
	h.engine.ReceiveEnvelope(env, cb)
}

// RecvTransaction offers a flooded transaction to the received buckets,
// returning true iff it was newly accepted.
func (h *Herder) RecvTransaction(stx transactions.SignedTx) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recvTransaction(stx)
}

func (h *Herder) recvTransaction(stx transactions.SignedTx) bool {
	if h.received.contains(stx.ID()) {
		return false
	}
	numOthers := h.received.countBySource(stx.Txn.Source)

	acct, ok := h.ledger.LookupAccount(stx.Txn.Source)
	if !ok {
		metrics.TransactionsRejected.Inc()
		return false
	}
	if stx.Txn.SeqNum < acct.SeqNum+1 {
		metrics.TransactionsRejected.Inc()
		return false
	}
	// The balance must cover the account's in-flight fee obligations,
	// not its minimum balance: sending around credit stays allowed.
	if acct.Balance < basics.Stroops(numOthers+1)*h.ledger.TxFee() {
		metrics.TransactionsRejected.Inc()
		return false
	}
	if stx.WellFormed(h.ledger.TxFee()) != nil {
		metrics.TransactionsRejected.Inc()
		return false
	}

	h.received.add(stx)
	metrics.TransactionsReceived.Inc()
	return true
}

// RecvTxSet delivers a transaction set fetched from the overlay. If
// anyone was waiting on its hash, the set is cached, its transactions are
// offered to the received buckets, and blocked validations resume in
// arrival order.
func (h *Herder) RecvTxSet(txSet *bookkeeping.TxSetFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recvTxSet(txSet)
}

func (h *Herder) recvTxSet(txSet *bookkeeping.TxSetFrame) {
	hash := txSet.ContentsHash()
	if !h.txSetFetchers[h.currentTxSetFetcher].RecvItem(hash, txSet) {
		return
	}
	for _, stx := range txSet.Transactions {
		h.recvTransaction(stx)
	}
	h.resumeTxSetFetches(hash, txSet)
}

func (h *Herder) resumeTxSetFetches(hash crypto.Digest, txSet *bookkeeping.TxSetFrame) {
	conts := h.txSetFetches[hash]
	delete(h.txSetFetches, hash)
	for _, cont := range conts {
		cont(txSet)
	}
}

// DoesntHaveTxSet records a peer's negative reply to a transaction-set
// request.
func (h *Herder) DoesntHaveTxSet(hash crypto.Digest, peer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txSetFetchers[h.currentTxSetFetcher].DoesntHave(hash, peer)
}

// RecvQuorumSet delivers a quorum set fetched from the overlay, resuming
// blocked retrievals in arrival order.
func (h *Herder) RecvQuorumSet(qSet fba.QuorumSet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	hash := qSet.Hash()
	if !h.qSetFetcher.RecvItem(hash, qSet) {
		return
	}
	conts := h.qSetFetches[hash]
	delete(h.qSetFetches, hash)
	for _, cont := range conts {
		cont(qSet)
	}
}

// DoesntHaveQuorumSet records a peer's negative reply to a quorum-set
// request.
func (h *Herder) DoesntHaveQuorumSet(hash crypto.Digest, peer string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.qSetFetcher.DoesntHave(hash, peer)
}

// FetchTxSet serves a transaction set from the herder's caches, for
// answering peer requests. No network traffic results.
func (h *Herder) FetchTxSet(hash crypto.Digest) (*bookkeeping.TxSetFrame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fetchTxSet(hash, false)
}

// FetchQuorumSet serves a quorum set from the herder's cache, for
// answering peer requests. No network traffic results.
func (h *Herder) FetchQuorumSet(hash crypto.Digest) (fba.QuorumSet, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.qSetFetcher.FetchItem(hash, false)
}

// ReceivedBucket returns a copy of age cohort i, for status reporting and
// tests.
func (h *Herder) ReceivedBucket(i int) []transactions.SignedTx {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]transactions.SignedTx(nil), h.received[i]...)
}

// LastClosedLedger returns the herder's view of the last closed ledger.
func (h *Herder) LastClosedLedger() bookkeeping.LedgerHeader {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastClosedLedger
}

// LedgersToWaitToParticipate returns the remaining sync-wait count.
func (h *Herder) LedgersToWaitToParticipate() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ledgersToWaitToParticipate
}

//
// Timers and nomination.
//

func (h *Herder) triggerFired(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.triggerGen {
		return
	}
	h.triggerNextLedger()
}

func (h *Herder) expireBallot(gen uint64, slot uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.bumpGen {
		return
	}
	if slot != h.lastClosedLedger.NextSlot() {
		return
	}
	// Prepare our value with a bumped counter: if it is the engine's
	// preference the prepare progresses, otherwise only the counter
	// moves.
	h.engine.PrepareValue(slot, h.localValue, true)
}

// triggerNextLedger nominates this node's value for the next slot: a set
// of every transaction across the received buckets, stamped with the last
// closed hash, closing no earlier than one second past the last close.
func (h *Herder) triggerNextLedger() {
	h.lastTrigger = h.clock.Now()

	proposedSet := &bookkeeping.TxSetFrame{
		PreviousLedgerHash: h.lastClosedLedger.Hash,
	}
	for _, stx := range h.received.all() {
		proposedSet.Add(stx)
	}
	proposedHash := proposedSet.ContentsHash()

	// Install the set locally: peers asking for it by hash get served,
	// and validations already blocked on it resume.
	h.txSetFetchers[h.currentTxSetFetcher].Cache(proposedHash, proposedSet)
	h.resumeTxSetFetches(proposedHash, proposedSet)

	slot := h.lastClosedLedger.NextSlot()

	nextCloseTime := timers.Unix(h.lastTrigger)
	if nextCloseTime <= h.lastClosedLedger.CloseTime {
		nextCloseTime = h.lastClosedLedger.CloseTime + 1
	}

	h.localValue = ValuePayload{
		TxSetHash: proposedHash,
		CloseTime: nextCloseTime,
		BaseFee:   h.cfg.DesiredBaseFee,
	}.Encode()

	h.log.WithFields(logging.Fields{
		"slot":  slot,
		"txs":   len(proposedSet.Transactions),
		"txset": proposedHash.Short(),
	}).Debug("herder: triggering next ledger")

	pending := h.futureEnvelopes[slot]
	delete(h.futureEnvelopes, slot)

	// If we are king the ballot will be validated; if not it is simply
	// ignored by our peers.
	h.engine.PrepareValue(slot, h.localValue, false)

	for _, p := range pending {
		h.recvFBAEnvelope(p.env, p.cb)
	}
}

func (h *Herder) cancelTriggerTimer() {
	h.triggerGen++
	if h.triggerTimer != nil {
		h.triggerTimer.Stop()
		h.triggerTimer = nil
	}
}

func (h *Herder) cancelBumpTimer() {
	h.bumpGen++
	if h.bumpTimer != nil {
		h.bumpTimer.Stop()
		h.bumpTimer = nil
	}
}

func (h *Herder) fetchTxSet(hash crypto.Digest, askNetwork bool) (*bookkeeping.TxSetFrame, bool) {
	return h.txSetFetchers[h.currentTxSetFetcher].FetchItem(hash, askNetwork)
}

// resolveTxSet runs cont with the transaction set identified by hash,
// inline when held, otherwise once a network fetch delivers it.
func (h *Herder) resolveTxSet(hash crypto.Digest, cont func(*bookkeeping.TxSetFrame)) {
	if txSet, ok := h.fetchTxSet(hash, true); ok {
		cont(txSet)
		return
	}
	h.txSetFetches[hash] = append(h.txSetFetches[hash], cont)
}
