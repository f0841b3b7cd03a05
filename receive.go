package peernet

import "github.com/cometbft/peernet/conn"

// ReceivePacket is the lazy, restartable-by-clone sequence of
// ChunkOrEvent values one Feed call produces. Exactly one is produced per
// call; its variants are none, a single Connect, the wrapped inner
// Connection receive sequence, or a single connectionless Chunk.
//
// It borrows the inbound datagram and decoding scratch passed to Feed and
// is only valid until the next Feed call on the same Net.
type ReceivePacket[A Address] struct {
	kind receivePacketKind

	pid       PeerId
	addr      A
	data      []byte
	innerConn conn.ReceivePacket
}

type receivePacketKind int

const (
	receiveNone receivePacketKind = iota
	receiveConnect
	receiveConnected
	receiveConnless
	receiveDone
)

func receivePacketNone[A Address]() ReceivePacket[A] {
	return ReceivePacket[A]{kind: receiveNone}
}

func receivePacketConnect[A Address](pid PeerId) ReceivePacket[A] {
	return ReceivePacket[A]{kind: receiveConnect, pid: pid}
}

func receivePacketConnected[A Address](pid PeerId, inner conn.ReceivePacket) ReceivePacket[A] {
	return ReceivePacket[A]{kind: receiveConnected, pid: pid, innerConn: inner}
}

func receivePacketConnless[A Address](addr A, data []byte) ReceivePacket[A] {
	return ReceivePacket[A]{kind: receiveConnless, addr: addr, data: data}
}

// Next returns the next ChunkOrEvent, or false when exhausted.
func (r *ReceivePacket[A]) Next() (ChunkOrEvent[A], bool) {
	switch r.kind {
	case receiveNone, receiveDone:
		return ChunkOrEvent[A]{}, false

	case receiveConnect:
		r.kind = receiveDone
		return connectEvent[A](r.pid), true

	case receiveConnless:
		r.kind = receiveDone
		return chunkEvent(Chunk[A]{Data: r.data, Addr: NonPeerConnless(r.addr)}), true

	case receiveConnected:
		inner, ok := r.innerConn.Next()
		if !ok {
			return ChunkOrEvent[A]{}, false
		}
		return innerToOuter[A](r.pid, inner), true

	default:
		return ChunkOrEvent[A]{}, false
	}
}

func innerToOuter[A Address](pid PeerId, inner conn.ReceiveChunk) ChunkOrEvent[A] {
	if data, vital, ok := inner.IsConnected(); ok {
		t := ChunkTypeConnected
		if vital {
			t = ChunkTypeVital
		}
		return chunkEvent(Chunk[A]{Data: data, Addr: PeerChunk[A](pid, t)})
	}
	if data, ok := inner.IsConnless(); ok {
		return chunkEvent(Chunk[A]{Data: data, Addr: PeerChunk[A](pid, ChunkTypeConnless)})
	}
	reason, _ := inner.IsDisconnect()
	return disconnectEvent[A](pid, reason)
}

// Clone returns an independent copy positioned at the same cursor, cheap
// because the only owned state is the inner Connection iterator's cursor.
func (r ReceivePacket[A]) Clone() ReceivePacket[A] {
	r.innerConn = r.innerConn.Clone()
	return r
}

// Len returns the exact number of elements remaining, computed by
// cloning and counting.
func (r ReceivePacket[A]) Len() int {
	clone := r.Clone()
	n := 0
	for {
		if _, ok := clone.Next(); !ok {
			break
		}
		n++
	}
	return n
}

// Collect returns the remaining elements as a slice, iterating a clone so
// r itself is not advanced. Convenience for tests and callers that don't
// need streaming consumption.
func (r ReceivePacket[A]) Collect() []ChunkOrEvent[A] {
	clone := r.Clone()
	var out []ChunkOrEvent[A]
	for {
		e, ok := clone.Next()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// hasDisconnect reports whether this iterator's clone contains a
// Disconnect observation, without consuming the original. Net uses this
// during feed to decide whether to remove the peer eagerly, before the
// caller has consumed anything.
func (r ReceivePacket[A]) hasDisconnect() bool {
	clone := r.Clone()
	for {
		e, ok := clone.Next()
		if !ok {
			return false
		}
		if _, _, isDC := e.IsDisconnect(); isDC {
			return true
		}
	}
}
