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

// Package node assembles a full node: ledger, herder, transaction queue,
// gossip overlay, and the metrics endpoint.
package node

import (
	"fmt"
	"net/http"

	"github.com/engboniface/stellar-core/config"
	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/basics"
	"github.com/engboniface/stellar-core/data/bookkeeping"
	"github.com/engboniface/stellar-core/fba"
	"github.com/engboniface/stellar-core/herder"
	"github.com/engboniface/stellar-core/ledger"
	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/network"
	"github.com/engboniface/stellar-core/protocol"
	"github.com/engboniface/stellar-core/util/metrics"
	"github.com/engboniface/stellar-core/util/timers"
)

// StellarFullNode wires the subsystems of one validator.
type StellarFullNode struct {
	cfg config.Local
	log logging.Logger

	ledger  *ledger.Ledger
	herder  *herder.Herder
	txQueue *herder.TransactionQueue
	gossip  network.GossipNode

	metricsServer *http.Server
}

// StatusReport is a point-in-time summary of the node.
type StatusReport struct {
	LastClosedLedgerSeq basics.LedgerSeq
	SyncWaitRemaining   uint32

	// QueuedTransactions and PendingTxSetHash describe the set the
	// transaction queue would assemble against the last closed ledger.
	QueuedTransactions int
	PendingTxSetHash   crypto.Digest

	Peers int
}

// MakeFullNode builds a node from its configuration. Nothing runs until
// Start.
func MakeFullNode(cfg config.Local, log logging.Logger) (*StellarFullNode, error) {
	secrets, err := cfg.ValidationSecrets()
	if err != nil {
		return nil, err
	}
	validators, err := cfg.QuorumValidators()
	if err != nil {
		return nil, err
	}
	qSet := fba.QuorumSet{Threshold: cfg.QuorumThreshold}
	for _, pk := range validators {
		qSet.Validators = append(qSet.Validators, fba.NodeID(pk))
	}

	lm, err := ledger.MakeLedger(cfg, log)
	if err != nil {
		return nil, err
	}

	gossip := network.MakeWebsocketGossipNode(cfg.NetAddress, cfg.GossipPeers, log)
	hrd := herder.MakeHerder(cfg, secrets, qSet, lm, gossip, timers.MakeMonotonicClock(), log)

	node := &StellarFullNode{
		cfg:     cfg,
		log:     log,
		ledger:  lm,
		herder:  hrd,
		txQueue: herder.MakeTransactionQueue(lm, cfg.TxPendingDepth, cfg.TxBanDepth, cfg.TxPoolLedgerMultiplier, log),
		gossip:  gossip,
	}
	lm.SetCloseListener(ledgerListener{node})
	gossip.RegisterHandlers(node.handlers())
	return node, nil
}

// ledgerListener fans a ledger close out to the subsystems that track it:
// the herder advances its slot and trigger timer, and the transaction
// queue drops committed transactions and ages.
type ledgerListener struct {
	node *StellarFullNode
}

func (l ledgerListener) LedgerClosed(header bookkeeping.LedgerHeader, txSet *bookkeeping.TxSetFrame) {
	l.node.herder.LedgerClosed(header)
	l.node.txQueue.RemoveAndReset(txSet.Transactions)
	l.node.txQueue.Shift()
}

// Start brings up the overlay and the metrics endpoint.
func (n *StellarFullNode) Start() error {
	if err := n.gossip.Start(); err != nil {
		return err
	}
	if n.cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		n.metricsServer = &http.Server{Addr: n.cfg.MetricsAddress, Handler: mux}
		go func() {
			err := n.metricsServer.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				n.log.WithFields(logging.Fields{"err": err}).Warn("node: metrics endpoint stopped")
			}
		}()
	}
	n.log.WithFields(logging.Fields{
		"node": n.herder.LocalNodeID().Short(),
	}).Info("node: started")
	return nil
}

// Bootstrap mints the first ledger of a new network.
func (n *StellarFullNode) Bootstrap() error {
	return n.herder.Bootstrap()
}

// Stop shuts the node down.
func (n *StellarFullNode) Stop() {
	if n.metricsServer != nil {
		n.metricsServer.Close()
	}
	n.gossip.Stop()
	n.log.Info("node: stopped")
}

// Status reports the node's current state.
func (n *StellarFullNode) Status() StatusReport {
	lcl := n.herder.LastClosedLedger()
	pending := n.txQueue.ToTxSet(lcl)
	return StatusReport{
		LastClosedLedgerSeq: lcl.LedgerSeq,
		SyncWaitRemaining:   n.herder.LedgersToWaitToParticipate(),
		QueuedTransactions:  len(pending.Transactions),
		PendingTxSetHash:    pending.ContentsHash(),
		Peers:               n.gossip.(*network.WebsocketGossipNode).NumPeers(),
	}
}

// SubmitTransaction injects a locally submitted transaction, flooding it
// when newly accepted.
func (n *StellarFullNode) SubmitTransaction(msg network.Message) error {
	if msg.Tag != protocol.TxnTag || msg.Tx == nil {
		return fmt.Errorf("node: not a transaction message")
	}
	n.handleTx(network.IncomingMessage{Msg: msg})
	return nil
}

// handlers is the overlay dispatch table.
func (n *StellarFullNode) handlers() []network.TaggedMessageHandler {
	return []network.TaggedMessageHandler{
		{Tag: protocol.FBAMessageTag, MessageHandler: network.HandlerFunc(n.handleEnvelope)},
		{Tag: protocol.TxnTag, MessageHandler: network.HandlerFunc(n.handleTx)},
		{Tag: protocol.TxSetTag, MessageHandler: network.HandlerFunc(n.handleTxSet)},
		{Tag: protocol.QuorumSetTag, MessageHandler: network.HandlerFunc(n.handleQuorumSet)},
		{Tag: protocol.TxSetRequestTag, MessageHandler: network.HandlerFunc(n.handleTxSetRequest)},
		{Tag: protocol.QuorumSetRequestTag, MessageHandler: network.HandlerFunc(n.handleQuorumSetRequest)},
		{Tag: protocol.DontHaveTag, MessageHandler: network.HandlerFunc(n.handleDontHave)},
	}
}

func (n *StellarFullNode) handleEnvelope(in network.IncomingMessage) {
	if in.Msg.Envelope == nil {
		return
	}
	n.herder.RecvFBAEnvelope(*in.Msg.Envelope, func(bool) {})
}

func (n *StellarFullNode) handleTx(in network.IncomingMessage) {
	if in.Msg.Tx == nil {
		return
	}
	stx := *in.Msg.Tx
	if !n.herder.RecvTransaction(stx) {
		return
	}
	n.txQueue.TryAdd(stx)
	// Newly accepted: keep the flood moving.
	n.gossip.Broadcast(network.MakeTxMessage(stx))
}

func (n *StellarFullNode) handleTxSet(in network.IncomingMessage) {
	if in.Msg.TxSet == nil {
		return
	}
	n.herder.RecvTxSet(in.Msg.TxSet)
}

func (n *StellarFullNode) handleQuorumSet(in network.IncomingMessage) {
	if in.Msg.QSet == nil {
		return
	}
	n.herder.RecvQuorumSet(*in.Msg.QSet)
}

func (n *StellarFullNode) handleTxSetRequest(in network.IncomingMessage) {
	if in.Sender == nil {
		return
	}
	if txSet, ok := n.herder.FetchTxSet(in.Msg.Hash); ok {
		in.Sender.Send(network.MakeTxSetMessage(*txSet))
		return
	}
	in.Sender.Send(network.MakeDontHaveMessage(protocol.TxSetRequestTag, in.Msg.Hash))
}

func (n *StellarFullNode) handleQuorumSetRequest(in network.IncomingMessage) {
	if in.Sender == nil {
		return
	}
	if qSet, ok := n.herder.FetchQuorumSet(in.Msg.Hash); ok {
		in.Sender.Send(network.MakeQuorumSetMessage(qSet))
		return
	}
	in.Sender.Send(network.MakeDontHaveMessage(protocol.QuorumSetRequestTag, in.Msg.Hash))
}

func (n *StellarFullNode) handleDontHave(in network.IncomingMessage) {
	if in.Sender == nil {
		return
	}
	switch in.Msg.ReqTag {
	case protocol.TxSetRequestTag:
		n.herder.DoesntHaveTxSet(in.Msg.Hash, in.Sender.Address())
	case protocol.QuorumSetRequestTag:
		n.herder.DoesntHaveQuorumSet(in.Msg.Hash, in.Sender.Address())
	}
}
