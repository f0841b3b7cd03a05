// Package conn implements the reliable-delivery collaborator that sits
// beneath a peernet.Net, one instance per peer. It owns the handshake, the
// vital/non-vital chunk distinction, and the disconnect handshake.
//
// It is deliberately not a full congestion-controlled transport: vital
// chunks carry a sequence number but are neither queued, acknowledged nor
// retransmitted. Retransmission and flow control are a separate concern
// left to a tick/flush API this package does not provide.
package conn

import (
	"crypto/rand"

	"github.com/pkg/errors"

	"github.com/cometbft/peernet/internal/log"
	"github.com/cometbft/peernet/wire"
)

// State is the connection's handshake state.
type State int

const (
	StateUnconnected State = iota
	StateConnecting
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Sender is the minimal send interface Conn requires of its caller. A
// peernet's internal sendAdapter implements this by tunneling a fixed
// Address into a user send callback.
type Sender interface {
	Send(data []byte) error
}

// ErrNotConnected is returned by Send when called before the handshake has
// completed. SendConnless does not check the handshake state.
var ErrNotConnected = errors.New("conn: not connected")

// Conn is one peer's reliable-delivery state machine.
type Conn struct {
	state State

	// outbound is who began the handshake: true if we called Connect,
	// false if we're responding to an inbound Control-Connect.
	outbound bool

	localToken  [4]byte
	remoteToken [4]byte

	nextSequence uint16

	logger log.Logger
}

// New constructs a fresh, unconnected Conn.
func New() *Conn {
	return &Conn{logger: log.NewNopLogger()}
}

// SetLogger overrides the Conn's logger. Net wires its own logger into
// every Conn it creates, mirroring the teacher's SetLogger propagation in
// p2p/peer.go.
func (c *Conn) SetLogger(l log.Logger) {
	c.logger = l
}

// State reports the current handshake state.
func (c *Conn) State() State {
	return c.state
}

func randomToken() ([4]byte, error) {
	var t [4]byte
	_, err := rand.Read(t[:])
	return t, err
}

// Connect begins the client-side handshake by emitting a Control-Connect
// packet carrying a freshly generated liveness token.
func (c *Conn) Connect(cb Sender) error {
	token, err := randomToken()
	if err != nil {
		return errors.Wrap(err, "conn: generate token")
	}
	c.localToken = token
	c.outbound = true
	c.state = StateConnecting

	var buf [wire.MaxPacketSize]byte
	data, err := wire.WriteControl(buf[:], wire.ControlConnect, c.localToken, nil)
	if err != nil {
		return errors.Wrap(err, "conn: encode connect")
	}
	return cb.Send(data)
}

// Disconnect emits a Control-Close packet carrying reason and transitions
// to Disconnected. reason is truncated to wire.MaxPayloadSize.
func (c *Conn) Disconnect(cb Sender, reason []byte) error {
	if len(reason) > wire.MaxPayloadSize {
		reason = reason[:wire.MaxPayloadSize]
	}
	c.state = StateDisconnected

	var buf [wire.MaxPacketSize]byte
	data, err := wire.WriteControl(buf[:], wire.ControlClose, [4]byte{}, reason)
	if err != nil {
		return errors.Wrap(err, "conn: encode close")
	}
	return cb.Send(data)
}

// Send emits one application chunk. Non-vital chunks are never queued for
// resend; vital chunks are tagged with a monotonically increasing sequence
// number but, per this package's scope, are not retransmitted on loss.
func (c *Conn) Send(cb Sender, data []byte, vital bool) error {
	if c.state != StateConnected {
		return ErrNotConnected
	}
	seq := c.nextSequence
	if vital {
		c.nextSequence++
	}
	var buf [wire.MaxPacketSize]byte
	encoded, err := wire.WriteChunk(buf[:], vital, seq, data)
	if err != nil {
		return errors.Wrap(err, "conn: encode chunk")
	}
	return cb.Send(encoded)
}

// SendConnless emits a connectionless chunk bound to this peer's address,
// i.e. without going through the handshake-gated Send path.
func (c *Conn) SendConnless(cb Sender, data []byte) error {
	var buf [wire.MaxPacketSize]byte
	encoded, err := wire.WriteConnless(buf[:], data)
	if err != nil {
		return errors.Wrap(err, "conn: encode connless")
	}
	return cb.Send(encoded)
}

// Feed consumes one inbound datagram and drives the state machine,
// returning a restartable iterator of the chunks/events it produced.
func (c *Conn) Feed(cb Sender, data []byte, scratch []byte) (ReceivePacket, error) {
	p, ok := wire.Read(data, scratch)
	if !ok {
		c.logger.Debug("conn: dropping malformed datagram")
		return ReceivePacket{}, nil
	}
	if p.Connless {
		if c.state != StateConnected {
			c.logger.Debug("conn: dropping connless datagram before handshake completes")
			return ReceivePacket{}, nil
		}
		return ReceivePacket{chunks: []ReceiveChunk{ConnlessChunk(p.Data)}}, nil
	}
	if p.Kind == wire.KindControl {
		return c.feedControl(cb, p)
	}
	return c.feedChunk(p)
}

func (c *Conn) feedControl(cb Sender, p wire.Packet) (ReceivePacket, error) {
	switch p.Control {
	case wire.ControlConnect:
		if c.state != StateUnconnected {
			c.logger.Debug("conn: ignoring Connect outside unconnected state", "state", c.state.String())
			return ReceivePacket{}, nil
		}
		c.remoteToken = p.Token
		c.outbound = false
		c.state = StateConnecting

		token, err := randomToken()
		if err != nil {
			return ReceivePacket{}, errors.Wrap(err, "conn: generate token")
		}
		c.localToken = token

		var buf [wire.MaxPacketSize]byte
		reply, err := wire.WriteControl(buf[:], wire.ControlConnectAccept, c.localToken, nil)
		if err != nil {
			return ReceivePacket{}, errors.Wrap(err, "conn: encode connect-accept")
		}
		return ReceivePacket{}, cb.Send(reply)

	case wire.ControlConnectAccept:
		if c.state != StateConnecting || !c.outbound {
			c.logger.Debug("conn: ignoring ConnectAccept outside client handshake", "state", c.state.String())
			return ReceivePacket{}, nil
		}
		c.remoteToken = p.Token
		c.state = StateConnected

		// Echo the token just received back to the peer: only the
		// party that actually saw this datagram's token can produce
		// the final Accept, so the peer can bind the completed
		// handshake to this address and reject a spoofed one.
		var buf [wire.MaxPacketSize]byte
		reply, err := wire.WriteControl(buf[:], wire.ControlAccept, c.remoteToken, nil)
		if err != nil {
			return ReceivePacket{}, errors.Wrap(err, "conn: encode accept")
		}
		return ReceivePacket{}, cb.Send(reply)

	case wire.ControlAccept:
		if c.state != StateConnecting || c.outbound {
			c.logger.Debug("conn: ignoring Accept outside server handshake", "state", c.state.String())
			return ReceivePacket{}, nil
		}
		if p.Token != c.localToken {
			c.logger.Debug("conn: dropping Accept with mismatched token")
			return ReceivePacket{}, nil
		}
		c.state = StateConnected
		return ReceivePacket{}, nil

	case wire.ControlClose:
		if c.state == StateDisconnected {
			return ReceivePacket{}, nil
		}
		c.state = StateDisconnected
		return ReceivePacket{chunks: []ReceiveChunk{DisconnectChunk(p.Data)}}, nil

	default:
		c.logger.Debug("conn: dropping unknown control tag")
		return ReceivePacket{}, nil
	}
}

func (c *Conn) feedChunk(p wire.Packet) (ReceivePacket, error) {
	if c.state != StateConnected {
		c.logger.Debug("conn: dropping chunk before handshake completes", "state", c.state.String())
		return ReceivePacket{}, nil
	}
	return ReceivePacket{chunks: []ReceiveChunk{ConnectedChunk(p.Chunk, p.Vital)}}, nil
}
