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

package network

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/algorand/websocket"

	"github.com/engboniface/stellar-core/logging"
	"github.com/engboniface/stellar-core/protocol"
)

// GossipPath is the HTTP path peers connect to.
const GossipPath = "/v1/gossip"

const (
	peerSendQueueDepth = 256
	dialTimeout        = 10 * time.Second
	writeTimeout       = 30 * time.Second
)

// WebsocketGossipNode is the production overlay: a websocket listener for
// incoming peers plus outgoing dials to the configured ones, with
// per-peer send queues and tag-routed dispatch of incoming messages.
type WebsocketGossipNode struct {
	log      logging.Logger
	listenOn string
	dialTo   []string

	mu       deadlock.Mutex
	peers    map[*wsPeer]bool
	handlers map[protocol.Tag]MessageHandler
	listener net.Listener
	server   http.Server
	running  bool

	wg sync.WaitGroup
}

// MakeWebsocketGossipNode creates a gossip node listening on listenOn
// (empty disables the listener) and dialing dialTo on Start.
func MakeWebsocketGossipNode(listenOn string, dialTo []string, log logging.Logger) *WebsocketGossipNode {
	return &WebsocketGossipNode{
		log:      log,
		listenOn: listenOn,
		dialTo:   dialTo,
		peers:    make(map[*wsPeer]bool),
		handlers: make(map[protocol.Tag]MessageHandler),
	}
}

// RegisterHandlers installs the dispatch table. Must be called before
// Start.
func (n *WebsocketGossipNode) RegisterHandlers(dispatch []TaggedMessageHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, h := range dispatch {
		n.handlers[h.Tag] = h.MessageHandler
	}
}

// Start binds the listener, begins accepting peers, and dials the
// configured ones.
func (n *WebsocketGossipNode) Start() error {
	n.mu.Lock()
	n.running = true
	n.mu.Unlock()

	if n.listenOn != "" {
		listener, err := net.Listen("tcp", n.listenOn)
		if err != nil {
			return fmt.Errorf("network: listen %s: %w", n.listenOn, err)
		}
		mux := http.NewServeMux()
		mux.HandleFunc(GossipPath, n.serveGossip)
		n.mu.Lock()
		n.listener = listener
		n.server.Handler = mux
		n.mu.Unlock()

		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			err := n.server.Serve(listener)
			if err != http.ErrServerClosed {
				n.log.WithFields(logging.Fields{"err": err}).Warn("network: listener stopped")
			}
		}()
		n.log.WithFields(logging.Fields{"addr": listener.Addr().String()}).Info("network: listening")
	}

	for _, addr := range n.dialTo {
		n.wg.Add(1)
		go func(addr string) {
			defer n.wg.Done()
			n.dialPeer(addr)
		}(addr)
	}
	return nil
}

// Stop closes every peer connection and the listener.
func (n *WebsocketGossipNode) Stop() {
	n.mu.Lock()
	n.running = false
	peers := make([]*wsPeer, 0, len(n.peers))
	for p := range n.peers {
		peers = append(peers, p)
	}
	listener := n.listener
	n.mu.Unlock()

	for _, p := range peers {
		p.close()
	}
	if listener != nil {
		n.server.Close()
	}
	n.wg.Wait()
}

// Address returns the bound listening address.
func (n *WebsocketGossipNode) Address() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listener == nil {
		return ""
	}
	return n.listener.Addr().String()
}

// Broadcast queues a message to every connected peer, dropping it at
// peers whose queue is full.
func (n *WebsocketGossipNode) Broadcast(msg Message) {
	data := msg.MarshalBinary()
	n.mu.Lock()
	peers := make([]*wsPeer, 0, len(n.peers))
	for p := range n.peers {
		peers = append(peers, p)
	}
	n.mu.Unlock()

	for _, p := range peers {
		p.sendData(data)
	}
}

// NumPeers returns the current connection count.
func (n *WebsocketGossipNode) NumPeers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.peers)
}

func (n *WebsocketGossipNode) serveGossip(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.log.WithFields(logging.Fields{"err": err}).Debug("network: upgrade failed")
		return
	}
	n.addPeer(conn, r.RemoteAddr)
}

func (n *WebsocketGossipNode) dialPeer(addr string) {
	url := fmt.Sprintf("ws://%s%s", addr, GossipPath)
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		n.log.WithFields(logging.Fields{"peer": addr, "err": err}).Warn("network: dial failed")
		return
	}
	n.addPeer(conn, addr)
}

func (n *WebsocketGossipNode) addPeer(conn *websocket.Conn, addr string) {
	// ReadMessage refuses a connection that has no read limit; bound the
	// size of incoming frames.
	const maxFrameBytes = 16 << 20
	conn.SetReadLimit(maxFrameBytes)

	p := &wsPeer{
		net:   n,
		conn:  conn,
		addr:  addr,
		sendQ: make(chan []byte, peerSendQueueDepth),
		done:  make(chan struct{}),
	}

	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		conn.Close()
		return
	}
	n.peers[p] = true
	n.mu.Unlock()

	n.log.WithFields(logging.Fields{"peer": addr}).Info("network: peer connected")
	n.wg.Add(2)
	go p.readLoop()
	go p.writeLoop()
}

func (n *WebsocketGossipNode) removePeer(p *wsPeer) {
	n.mu.Lock()
	delete(n.peers, p)
	n.mu.Unlock()
}

func (n *WebsocketGossipNode) dispatch(p *wsPeer, data []byte) {
	msg, err := UnmarshalMessage(data)
	if err != nil {
		n.log.WithFields(logging.Fields{"peer": p.addr, "err": err}).Debug("network: bad message")
		return
	}
	n.mu.Lock()
	handler := n.handlers[msg.Tag]
	n.mu.Unlock()
	if handler == nil {
		n.log.WithFields(logging.Fields{"tag": string(msg.Tag)}).Debug("network: no handler for tag")
		return
	}
	handler.Handle(IncomingMessage{Sender: p, Msg: msg})
}

// wsPeer is one overlay connection.
type wsPeer struct {
	net  *WebsocketGossipNode
	conn *websocket.Conn
	addr string

	sendQ chan []byte
	done  chan struct{}

	closeOnce sync.Once
}

// Address implements Peer.
func (p *wsPeer) Address() string {
	return p.addr
}

// Send implements Peer.
func (p *wsPeer) Send(msg Message) {
	p.sendData(msg.MarshalBinary())
}

func (p *wsPeer) sendData(data []byte) {
	select {
	case p.sendQ <- data:
	case <-p.done:
	default:
		// Backlogged peer; gossip is loss-tolerant.
	}
}

func (p *wsPeer) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.conn.Close()
		p.net.removePeer(p)
	})
}

func (p *wsPeer) readLoop() {
	defer p.net.wg.Done()
	defer p.close()
	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		p.net.dispatch(p, data)
	}
}

func (p *wsPeer) writeLoop() {
	defer p.net.wg.Done()
	defer p.close()
	for {
		select {
		case data := <-p.sendQ:
			p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := p.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-p.done:
			return
		}
	}
}
