package peernet

import (
	"github.com/cometbft/peernet/internal/log"
	"github.com/cometbft/peernet/internal/metrics"
	"github.com/cometbft/peernet/wire"
)

// Net composes the peer registry and connectionless builder, and is the
// sole entry point callers use: connect, disconnect, send, send_connless,
// feed, peer_addr. It owns event-iterator construction.
//
// A Net is single-threaded and non-reentrant: exactly one logical
// executor owns it at a time, and a Callback.Send supplied to one of its
// operations must never call back into that same Net.
type Net[A Address] struct {
	registry *registry[A]
	builder  *connlessBuilder[A]

	logger  log.Logger
	metrics *metrics.Metrics
}

// NetOption configures optional collaborators on a Net at construction
// time, mirroring the teacher's PeerOption pattern in p2p/peer.go.
type NetOption[A Address] func(*Net[A])

// WithLogger wires a structured logger into Net and every Conn it creates.
// The default is a no-op logger.
func WithLogger[A Address](l log.Logger) NetOption[A] {
	return func(n *Net[A]) { n.logger = l }
}

// WithMetrics wires a metrics.Metrics into Net. The default is
// metrics.NopMetrics().
func WithMetrics[A Address](m *metrics.Metrics) NetOption[A] {
	return func(n *Net[A]) { n.metrics = m }
}

// New constructs an empty Net with no registered peers.
func New[A Address](opts ...NetOption[A]) *Net[A] {
	n := &Net[A]{
		registry: newRegistry[A](),
		builder:  newConnlessBuilder[A](),
		logger:   log.NewNopLogger(),
		metrics:  metrics.NopMetrics(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Connect allocates a new peer at addr and begins the client-side
// handshake, returning the new PeerId regardless of whether the initial
// datagram made it out. The caller must not already have a peer
// registered at addr; violating this is a caller error this package does
// not check beyond logging it at Debug.
func (n *Net[A]) Connect(cb Callback[A], addr A) (PeerId, *Error) {
	if existing, ok := n.registry.pidFromAddr(addr); ok {
		n.logger.Debug("peernet: connect collides with an already-registered peer", "addr", addr, "existing_pid", existing)
	}

	pid, p := n.registry.newPeer(addr)
	p.conn.SetLogger(n.logger)
	n.metrics.PeersActive.Set(float64(n.registry.len()))
	if err := p.conn.Connect(adapt(cb, addr)); err != nil {
		return pid, callbackError(err)
	}
	return pid, nil
}

// Disconnect looks up pid (panicking if it is not live) and delegates to
// its Connection's disconnect, which emits a disconnect control datagram.
// The entry is removed immediately after the send, which is the simplest
// behavior that prevents PeerId reuse before the disconnect has left.
func (n *Net[A]) Disconnect(cb Callback[A], pid PeerId, reason []byte) *Error {
	p := n.registry.mustGet(pid)
	err := p.conn.Disconnect(adapt(cb, p.addr), reason)
	n.registry.removePeer(pid)
	n.metrics.PeersActive.Set(float64(n.registry.len()))
	if err != nil {
		return callbackError(err)
	}
	return nil
}

// SendConnless serializes data as a connectionless datagram to addr with
// no peer lookup at all, regardless of whether a peer happens to be
// registered at addr.
func (n *Net[A]) SendConnless(cb Callback[A], addr A, data []byte) *Error {
	err := n.builder.send(cb, addr, data)
	if err == nil {
		n.metrics.BytesSent.WithLabelValues(ChunkTypeConnless.String()).Add(float64(len(data)))
	}
	return err
}

// Send dispatches chunk according to its Addr: connectionless to an
// address with a live peer is routed through that peer's Connection (to
// preserve any piggyback semantics it provides); connectionless to an
// address with no peer falls back to SendConnless; and any Peer-addressed
// chunk is routed through that peer's Connection per its ChunkType.
//
// Send panics if chunk.Addr names a PeerId with no live registry entry,
// matching the teacher's indexing-style panics for callers that have
// already verified a peer exists.
func (n *Net[A]) Send(cb Callback[A], chunk Chunk[A]) *Error {
	if !chunk.Addr.HasPeer() {
		addr := chunk.Addr.NonPeer
		if pid, ok := n.registry.pidFromAddr(addr); ok {
			p := n.registry.mustGet(pid)
			err := p.conn.SendConnless(adapt(cb, p.addr), chunk.Data)
			return n.recordSend(ChunkTypeConnless, chunk.Data, err)
		}
		return n.SendConnless(cb, addr, chunk.Data)
	}

	p := n.registry.mustGet(chunk.Addr.PID)
	switch chunk.Addr.Type {
	case ChunkTypeConnless:
		err := p.conn.SendConnless(adapt(cb, p.addr), chunk.Data)
		return n.recordSend(ChunkTypeConnless, chunk.Data, err)
	case ChunkTypeConnected:
		err := p.conn.Send(adapt(cb, p.addr), chunk.Data, false)
		return n.recordSend(ChunkTypeConnected, chunk.Data, err)
	case ChunkTypeVital:
		err := p.conn.Send(adapt(cb, p.addr), chunk.Data, true)
		return n.recordSend(ChunkTypeVital, chunk.Data, err)
	default:
		panic("peernet: unknown ChunkType")
	}
}

// recordSend increments BytesSent for t on success and translates a
// collaborator error into the Net error surface.
func (n *Net[A]) recordSend(t ChunkType, data []byte, err error) *Error {
	if err != nil {
		return wrapConnErr(err)
	}
	n.metrics.BytesSent.WithLabelValues(t.String()).Add(float64(len(data)))
	return nil
}

// PeerAddr returns the Address a live peer was created with, or false if
// pid names no live entry.
func (n *Net[A]) PeerAddr(pid PeerId) (A, bool) {
	p, ok := n.registry.get(pid)
	if !ok {
		var zero A
		return zero, false
	}
	return p.addr, true
}

// Feed supplies one inbound datagram from addr to the router. scratch is
// decoding scratch owned by the caller and borrowed for the lifetime of
// the returned ReceivePacket.
//
// Routing: if a peer is already registered at addr, the datagram is
// delegated to that peer's Connection and wrapped as a Connected
// ReceivePacket — if the inner sequence contains a Disconnect, the peer is
// removed from the registry eagerly, before the caller consumes anything.
// Otherwise the datagram is parsed as a top-level packet: a
// connectionless packet yields a single connectionless Chunk; a
// connected Control-Connect packet allocates a new peer and yields a
// Connect event; anything else is silently dropped (logged at Debug) with
// an empty iterator and no error.
func (n *Net[A]) Feed(cb Callback[A], addr A, data []byte, scratch []byte) (ReceivePacket[A], *Error) {
	if pid, ok := n.registry.pidFromAddr(addr); ok {
		p := n.registry.mustGet(pid)
		innerPacket, err := p.conn.Feed(adapt(cb, addr), data, scratch)
		rp := receivePacketConnected[A](pid, innerPacket)
		if rp.hasDisconnect() {
			n.registry.removePeer(pid)
			n.metrics.PeersActive.Set(float64(n.registry.len()))
			n.metrics.DatagramsRouted.WithLabelValues("connected-disconnect").Inc()
		} else {
			n.metrics.DatagramsRouted.WithLabelValues("connected").Inc()
		}
		n.recordBytesReceived(rp)
		return rp, wrapConnErr(err)
	}

	return n.feedUnknownAddr(cb, addr, data, scratch)
}

// recordBytesReceived walks a clone of rp (leaving the caller's cursor
// untouched) and adds every Chunk observation's length to BytesReceived,
// labeled by its ChunkType.
func (n *Net[A]) recordBytesReceived(rp ReceivePacket[A]) {
	clone := rp.Clone()
	for {
		e, ok := clone.Next()
		if !ok {
			return
		}
		c, isChunk := e.IsChunk()
		if !isChunk {
			continue
		}
		label := ChunkTypeConnless.String()
		if c.Addr.HasPeer() {
			label = c.Addr.Type.String()
		}
		n.metrics.BytesReceived.WithLabelValues(label).Add(float64(len(c.Data)))
	}
}

// feedUnknownAddr handles a datagram from an address with no registered
// peer: a connectionless packet is delivered as-is, a connected
// Control-Connect packet allocates a new peer and replays itself through
// that peer's Connection to drive the accept handshake, and anything else
// is a malformed or stray datagram that is silently dropped.
func (n *Net[A]) feedUnknownAddr(cb Callback[A], addr A, data []byte, scratch []byte) (ReceivePacket[A], *Error) {
	pkt, ok := wire.Read(data, scratch)
	if !ok {
		n.logger.Debug("peernet: dropping malformed datagram from unknown address", "addr", addr)
		n.metrics.DatagramsRouted.WithLabelValues("stray").Inc()
		return receivePacketNone[A](), nil
	}

	if pkt.Connless {
		n.metrics.DatagramsRouted.WithLabelValues("connless").Inc()
		rp := receivePacketConnless(addr, pkt.Data)
		n.recordBytesReceived(rp)
		return rp, nil
	}

	if pkt.Kind == wire.KindControl && pkt.Control == wire.ControlConnect {
		pid, p := n.registry.newPeer(addr)
		p.conn.SetLogger(n.logger)
		innerPacket, err := p.conn.Feed(adapt(cb, addr), data, scratch)
		if _, hasAny := innerPacket.Next(); hasAny {
			panic("peernet: conn.Feed on a Control-Connect packet produced a non-empty ReceivePacket")
		}
		n.metrics.PeersActive.Set(float64(n.registry.len()))
		n.metrics.DatagramsRouted.WithLabelValues("connect").Inc()
		return receivePacketConnect[A](pid), wrapConnErr(err)
	}

	n.logger.Debug("peernet: dropping stray datagram from unknown address", "addr", addr)
	n.metrics.DatagramsRouted.WithLabelValues("stray").Inc()
	return receivePacketNone[A](), nil
}

func wrapConnErr(err error) *Error {
	if err == nil {
		return nil
	}
	return callbackError(err)
}
