// Package wire implements the on-the-wire framing for peernet datagrams.
//
// It is deliberately minimal: one flag byte distinguishing connectionless
// traffic from connected traffic, and for connected traffic a one-byte
// control/chunk tag. Nothing here concerns itself with reliability,
// sequencing guarantees beyond the bare sequence number, or encryption.
package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// MaxPacketSize is the largest encoded datagram this codec will ever
	// produce or accept, sized to stay under a typical UDP-safe MTU.
	MaxPacketSize = 1400

	headerSizeConnless  = 1
	headerSizeConnected = 2
	headerSizeChunk     = headerSizeConnected + 2 // + sequence number

	// MaxPayloadSize is the largest application payload that fits in a
	// single connected chunk once framing overhead is accounted for.
	MaxPayloadSize = MaxPacketSize - headerSizeChunk
)

// ErrTooLongData is returned by Write when the caller's payload does not
// fit in MaxPacketSize once framing overhead is added.
var ErrTooLongData = errors.New("wire: data too long")

// ErrCapacity is returned by Write when the destination buffer is smaller
// than the packet requires. Callers that size their scratch buffer to
// MaxPacketSize, as ConnlessBuilder does, will never observe this.
var ErrCapacity = errors.New("wire: buffer capacity exceeded")

// Flag distinguishes connectionless from connected packets.
type Flag byte

const (
	FlagConnless  Flag = 0x01
	FlagConnected Flag = 0x00
)

// ControlTag identifies a connected-mode control packet.
type ControlTag byte

const (
	ControlConnect ControlTag = iota
	ControlConnectAccept
	ControlAccept
	ControlClose
)

// Kind distinguishes a connected packet's payload: a handshake/teardown
// control packet, or a chunk of application data.
type Kind byte

const (
	KindControl Kind = iota
	KindChunk
)

// Packet is the decoded form of one datagram.
type Packet struct {
	Connless bool
	Data     []byte // connectionless payload when Connless; disconnect reason when Control is ControlClose

	Kind    Kind
	Control ControlTag // valid when Kind == KindControl
	Token   [4]byte    // valid when Kind == KindControl and Control is Connect/ConnectAccept/Accept

	Vital    bool   // valid when Kind == KindChunk
	Sequence uint16 // valid when Kind == KindChunk
	Chunk    []byte // valid when Kind == KindChunk
}

// Read decodes one datagram. The returned Packet's byte slices alias data;
// scratch is unused by this codec (kept for symmetry with the §6 contract,
// which allows a codec to need decoding scratch). ok is false when data is
// too short or carries an unrecognized flag/tag — the caller should treat
// that as a malformed, silently-droppable datagram, not an error.
func Read(data []byte, _ []byte) (Packet, bool) {
	if len(data) < 1 {
		return Packet{}, false
	}
	switch Flag(data[0]) {
	case FlagConnless:
		return Packet{Connless: true, Data: data[1:]}, true
	case FlagConnected:
		return readConnected(data)
	default:
		return Packet{}, false
	}
}

func readConnected(data []byte) (Packet, bool) {
	if len(data) < headerSizeConnected {
		return Packet{}, false
	}
	kind := Kind(data[1] &^ 0x80) // high bit is the chunk's vital flag
	switch kind {
	case KindControl:
		return readControl(data)
	case KindChunk:
		return readChunk(data)
	default:
		return Packet{}, false
	}
}

func readControl(data []byte) (Packet, bool) {
	rest := data[headerSizeConnected:]
	if len(rest) < 1 {
		return Packet{}, false
	}
	tag := ControlTag(rest[0])
	p := Packet{Kind: KindControl, Control: tag}
	rest = rest[1:]
	switch tag {
	case ControlConnect, ControlConnectAccept, ControlAccept:
		if len(rest) < 4 {
			return Packet{}, false
		}
		copy(p.Token[:], rest[:4])
	case ControlClose:
		p.Data = rest // disconnect reason
	default:
		return Packet{}, false
	}
	return p, true
}

func readChunk(data []byte) (Packet, bool) {
	if len(data) < headerSizeChunk {
		return Packet{}, false
	}
	vital := data[1]&0x80 != 0
	seq := binary.BigEndian.Uint16(data[2:4])
	return Packet{
		Kind:     KindChunk,
		Vital:    vital,
		Sequence: seq,
		Chunk:    data[headerSizeChunk:],
	}, true
}

// WriteConnless encodes a connectionless packet into buf, returning the
// written slice.
func WriteConnless(buf []byte, data []byte) ([]byte, error) {
	need := headerSizeConnless + len(data)
	if need > MaxPacketSize {
		return nil, ErrTooLongData
	}
	if len(buf) < need {
		return nil, ErrCapacity
	}
	buf[0] = byte(FlagConnless)
	copy(buf[headerSizeConnless:need], data)
	return buf[:need], nil
}

// WriteControl encodes a connected control packet. token is written for
// Connect/ConnectAccept/Accept and ignored otherwise; reason is written as
// trailing data for Close.
func WriteControl(buf []byte, tag ControlTag, token [4]byte, reason []byte) ([]byte, error) {
	head := []byte{byte(FlagConnected), byte(KindControl), byte(tag)}
	var tail []byte
	switch tag {
	case ControlConnect, ControlConnectAccept, ControlAccept:
		tail = token[:]
	case ControlClose:
		tail = reason
	}
	need := len(head) + len(tail)
	if need > MaxPacketSize {
		return nil, ErrTooLongData
	}
	if len(buf) < need {
		return nil, ErrCapacity
	}
	n := copy(buf, head)
	n += copy(buf[n:], tail)
	return buf[:n], nil
}

// WriteChunk encodes one connected data chunk.
func WriteChunk(buf []byte, vital bool, sequence uint16, data []byte) ([]byte, error) {
	need := headerSizeChunk + len(data)
	if need > MaxPacketSize {
		return nil, ErrTooLongData
	}
	if len(buf) < need {
		return nil, ErrCapacity
	}
	buf[0] = byte(FlagConnected)
	flags := byte(KindChunk)
	if vital {
		flags |= 0x80
	}
	buf[1] = flags
	binary.BigEndian.PutUint16(buf[2:4], sequence)
	n := headerSizeChunk + copy(buf[headerSizeChunk:need], data)
	return buf[:n], nil
}
