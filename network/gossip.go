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

// Package network provides the gossip overlay: the tagged message union
// exchanged between peers and a websocket-backed GossipNode that
// broadcasts and dispatches it.
package network

import (
	"errors"
	"fmt"

	"github.com/engboniface/stellar-core/crypto"
	"github.com/engboniface/stellar-core/data/bookkeeping"
	"github.com/engboniface/stellar-core/data/transactions"
	"github.com/engboniface/stellar-core/fba"
	"github.com/engboniface/stellar-core/protocol"
)

// Message is the tagged union gossiped between peers. Exactly the payload
// field matching Tag is set.
type Message struct {
	Tag protocol.Tag

	Envelope *fba.Envelope
	TxSet    *bookkeeping.TxSetFrame
	QSet     *fba.QuorumSet
	Tx       *transactions.SignedTx

	// Hash carries the requested artifact for TxSetRequestTag and
	// QuorumSetRequestTag, and the unanswered one for DontHaveTag.
	Hash crypto.Digest

	// ReqTag identifies, for DontHaveTag, which request kind went
	// unanswered.
	ReqTag protocol.Tag
}

// MakeEnvelopeMessage wraps an agreement envelope for broadcast.
func MakeEnvelopeMessage(env fba.Envelope) Message {
	return Message{Tag: protocol.FBAMessageTag, Envelope: &env}
}

// MakeTxSetMessage wraps a transaction set for transfer to a peer.
func MakeTxSetMessage(txSet bookkeeping.TxSetFrame) Message {
	return Message{Tag: protocol.TxSetTag, TxSet: &txSet}
}

// MakeQuorumSetMessage wraps a quorum set for transfer to a peer.
func MakeQuorumSetMessage(qSet fba.QuorumSet) Message {
	return Message{Tag: protocol.QuorumSetTag, QSet: &qSet}
}

// MakeTxMessage wraps a transaction for flooding.
func MakeTxMessage(tx transactions.SignedTx) Message {
	return Message{Tag: protocol.TxnTag, Tx: &tx}
}

// MakeRequestMessage builds a content-addressed fetch request. reqTag
// must be TxSetRequestTag or QuorumSetRequestTag.
func MakeRequestMessage(reqTag protocol.Tag, hash crypto.Digest) Message {
	return Message{Tag: reqTag, Hash: hash}
}

// MakeDontHaveMessage builds the negative reply to a fetch request.
func MakeDontHaveMessage(reqTag protocol.Tag, hash crypto.Digest) Message {
	return Message{Tag: protocol.DontHaveTag, Hash: hash, ReqTag: reqTag}
}

// hashPayload is the wire body of request messages.
type hashPayload struct {
	Hash crypto.Digest `codec:"hash"`
}

// dontHavePayload is the wire body of negative replies.
type dontHavePayload struct {
	ReqTag protocol.Tag  `codec:"tag"`
	Hash   crypto.Digest `codec:"hash"`
}

var errShortMessage = errors.New("network: message shorter than a tag")

// MarshalBinary renders the message as its two-byte tag followed by the
// canonical encoding of the payload.
func (m Message) MarshalBinary() []byte {
	var body []byte
	switch m.Tag {
	case protocol.FBAMessageTag:
		body = protocol.Encode(m.Envelope)
	case protocol.TxSetTag:
		body = protocol.Encode(m.TxSet)
	case protocol.QuorumSetTag:
		body = protocol.Encode(m.QSet)
	case protocol.TxnTag:
		body = protocol.Encode(m.Tx)
	case protocol.TxSetRequestTag, protocol.QuorumSetRequestTag:
		body = protocol.Encode(hashPayload{Hash: m.Hash})
	case protocol.DontHaveTag:
		body = protocol.Encode(dontHavePayload{ReqTag: m.ReqTag, Hash: m.Hash})
	}
	return append([]byte(m.Tag), body...)
}

// UnmarshalMessage parses a wire frame back into a Message.
func UnmarshalMessage(data []byte) (m Message, err error) {
	if len(data) < protocol.TagLength {
		return m, errShortMessage
	}
	m.Tag = protocol.Tag(data[:protocol.TagLength])
	body := data[protocol.TagLength:]

	switch m.Tag {
	case protocol.FBAMessageTag:
		m.Envelope = new(fba.Envelope)
		err = protocol.Decode(body, m.Envelope)
	case protocol.TxSetTag:
		m.TxSet = new(bookkeeping.TxSetFrame)
		err = protocol.Decode(body, m.TxSet)
	case protocol.QuorumSetTag:
		m.QSet = new(fba.QuorumSet)
		err = protocol.Decode(body, m.QSet)
	case protocol.TxnTag:
		m.Tx = new(transactions.SignedTx)
		err = protocol.Decode(body, m.Tx)
	case protocol.TxSetRequestTag, protocol.QuorumSetRequestTag:
		var p hashPayload
		if err = protocol.Decode(body, &p); err == nil {
			m.Hash = p.Hash
		}
	case protocol.DontHaveTag:
		var p dontHavePayload
		if err = protocol.Decode(body, &p); err == nil {
			m.ReqTag = p.ReqTag
			m.Hash = p.Hash
		}
	default:
		err = fmt.Errorf("network: unknown message tag %q", string(m.Tag))
	}
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// Peer is the sending half of one overlay connection.
type Peer interface {
	// Address returns the peer's dial or remote address. Fetchers use it
	// to key negative-reply tracking.
	Address() string

	// Send queues a message to this peer alone, dropping it if the peer
	// is backlogged.
	Send(Message)
}

// IncomingMessage is a message as received from a peer.
type IncomingMessage struct {
	Sender Peer
	Msg    Message
}

// MessageHandler takes a delivered message.
type MessageHandler interface {
	Handle(IncomingMessage)
}

// HandlerFunc represents an implementation of the MessageHandler
// interface.
type HandlerFunc func(IncomingMessage)

// Handle implements MessageHandler by calling f.
func (f HandlerFunc) Handle(msg IncomingMessage) {
	f(msg)
}

// TaggedMessageHandler receives messages of a particular tag.
type TaggedMessageHandler struct {
	Tag protocol.Tag
	MessageHandler
}

// GossipNode is the interface the node and herder use to reach the
// overlay.
type GossipNode interface {
	// Start brings up the listener and dials the configured peers.
	Start() error

	// Stop closes every connection and the listener.
	Stop()

	// Address returns the listening address, once Start has bound it.
	Address() string

	// Broadcast queues a message to every connected peer.
	Broadcast(Message)

	// RegisterHandlers installs the dispatch table routing incoming
	// messages by tag. It must be called before Start.
	RegisterHandlers(dispatch []TaggedMessageHandler)
}
