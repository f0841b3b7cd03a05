package peernet

// Address identifies a remote endpoint. It must be a comparable Go type
// (a socket-address struct, a string, a small enum) so it can be used
// directly as a map key and compared for equality.
//
// No ordering is required: nothing in this package sorts peers or
// addresses, so Address only needs equality, never a Less/Compare
// relation. The registry is a linear scan over a map, never a sorted
// structure (see DESIGN.md).
type Address interface {
	comparable
}

// PeerId is a stable, opaque handle to a peer registry entry. It wraps a
// 32-bit counter; Go's unsigned-integer arithmetic wraps on overflow
// without any special handling required.
type PeerId uint32

// ChunkType distinguishes how a Chunk bound for an existing peer should be
// delivered.
type ChunkType int

const (
	// ChunkTypeConnless is delivered without the peer's handshake or
	// reliability guarantees, though it is still addressed to a peer.
	ChunkTypeConnless ChunkType = iota
	// ChunkTypeConnected is delivered best-effort, in no particular order.
	ChunkTypeConnected
	// ChunkTypeVital requires reliable, in-order delivery.
	ChunkTypeVital
)

func (t ChunkType) String() string {
	switch t {
	case ChunkTypeConnless:
		return "connless"
	case ChunkTypeConnected:
		return "connected"
	case ChunkTypeVital:
		return "vital"
	default:
		return "unknown"
	}
}

// ChunkAddress is the destination or origin of a Chunk.
type ChunkAddress[A Address] struct {
	// NonPeer is set when this chunk is a connectionless datagram to or
	// from an address with no active peer. Check HasPeer to distinguish
	// the two variants.
	NonPeer A

	// PID and Type are set when this chunk belongs to a registered peer.
	PID  PeerId
	Type ChunkType

	hasPeer bool
}

// NonPeerConnless builds a ChunkAddress for a connectionless chunk with no
// associated peer.
func NonPeerConnless[A Address](addr A) ChunkAddress[A] {
	return ChunkAddress[A]{NonPeer: addr}
}

// PeerChunk builds a ChunkAddress for a chunk bound to a registered peer.
func PeerChunk[A Address](pid PeerId, t ChunkType) ChunkAddress[A] {
	return ChunkAddress[A]{PID: pid, Type: t, hasPeer: true}
}

// HasPeer reports whether this ChunkAddress names a registered peer.
func (c ChunkAddress[A]) HasPeer() bool {
	return c.hasPeer
}

// Chunk is one unit of application data, tagged with where it came from or
// is going to. Data aliases the buffer the caller passed to Net.Feed and is
// only valid until the next Feed call on the same Net.
type Chunk[A Address] struct {
	Data []byte
	Addr ChunkAddress[A]
}

// ChunkOrEvent is one element of the stream a ReceivePacket yields.
type ChunkOrEvent[A Address] struct {
	kind kindOrEvent

	Chunk Chunk[A]

	ConnectPID PeerId

	DisconnectPID    PeerId
	DisconnectReason []byte
}

type kindOrEvent int

const (
	kindChunk kindOrEvent = iota
	kindConnect
	kindDisconnect
)

func chunkEvent[A Address](c Chunk[A]) ChunkOrEvent[A] {
	return ChunkOrEvent[A]{kind: kindChunk, Chunk: c}
}

func connectEvent[A Address](pid PeerId) ChunkOrEvent[A] {
	return ChunkOrEvent[A]{kind: kindConnect, ConnectPID: pid}
}

func disconnectEvent[A Address](pid PeerId, reason []byte) ChunkOrEvent[A] {
	return ChunkOrEvent[A]{kind: kindDisconnect, DisconnectPID: pid, DisconnectReason: reason}
}

// IsChunk reports whether this is a Chunk observation.
func (e ChunkOrEvent[A]) IsChunk() (Chunk[A], bool) {
	return e.Chunk, e.kind == kindChunk
}

// IsConnect reports whether this is a Connect observation, returning the
// newly registered peer's id.
func (e ChunkOrEvent[A]) IsConnect() (PeerId, bool) {
	return e.ConnectPID, e.kind == kindConnect
}

// IsDisconnect reports whether this is a Disconnect observation, returning
// the peer's id and the reason it gave.
func (e ChunkOrEvent[A]) IsDisconnect() (PeerId, []byte, bool) {
	return e.DisconnectPID, e.DisconnectReason, e.kind == kindDisconnect
}
