package conn

// ReceiveChunk is one observation produced by feeding a datagram into a
// Conn: a connectionless chunk bound to this peer, a connected chunk
// (tagged vital or not), or a disconnect carrying the peer's reason.
type ReceiveChunk struct {
	kind  receiveKind
	data  []byte
	vital bool
}

type receiveKind int

const (
	receiveConnless receiveKind = iota
	receiveConnected
	receiveDisconnect
)

func ConnlessChunk(data []byte) ReceiveChunk {
	return ReceiveChunk{kind: receiveConnless, data: data}
}

func ConnectedChunk(data []byte, vital bool) ReceiveChunk {
	return ReceiveChunk{kind: receiveConnected, data: data, vital: vital}
}

func DisconnectChunk(reason []byte) ReceiveChunk {
	return ReceiveChunk{kind: receiveDisconnect, data: reason}
}

// IsConnless reports whether this is a connectionless chunk, returning its data.
func (r ReceiveChunk) IsConnless() ([]byte, bool) {
	if r.kind == receiveConnless {
		return r.data, true
	}
	return nil, false
}

// IsConnected reports whether this is a connected chunk, returning its data
// and whether it was sent vital.
func (r ReceiveChunk) IsConnected() ([]byte, bool, bool) {
	if r.kind == receiveConnected {
		return r.data, r.vital, true
	}
	return nil, false, false
}

// IsDisconnect reports whether this is a disconnect observation, returning
// the peer's reason.
func (r ReceiveChunk) IsDisconnect() ([]byte, bool) {
	if r.kind == receiveDisconnect {
		return r.data, true
	}
	return nil, false
}

// ReceivePacket is a cheaply cloneable, restartable iterator over the
// ReceiveChunk values one Feed call produced. Cloning copies only the
// cursor, never the backing slice, so a caller may pre-scan a clone (to
// look for a Disconnect, say) without disturbing the original.
type ReceivePacket struct {
	chunks []ReceiveChunk
	cursor int
}

// Next returns the next chunk, or false when exhausted.
func (r *ReceivePacket) Next() (ReceiveChunk, bool) {
	if r.cursor >= len(r.chunks) {
		return ReceiveChunk{}, false
	}
	c := r.chunks[r.cursor]
	r.cursor++
	return c, true
}

// Clone returns an independent copy positioned at the same cursor.
func (r ReceivePacket) Clone() ReceivePacket {
	return ReceivePacket{chunks: r.chunks, cursor: r.cursor}
}

// Len reports the number of chunks remaining.
func (r ReceivePacket) Len() int {
	return len(r.chunks) - r.cursor
}
