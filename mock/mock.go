// Package mock supplies a symbolic Address type and a queueing Callback
// double for exercising a peernet.Net without a real socket, adapted from
// the construct-once, drive-synchronously style of p2p/mock.NewPeer.
package mock

import "fmt"

// Addr is a small symbolic address space good enough to name the two or
// three endpoints a routing test needs to distinguish, plus an escape
// hatch (Named) for tests that want more than a handful of fixed points.
type Addr struct {
	name string
}

var (
	Client = Addr{name: "client"}
	Server = Addr{name: "server"}
)

// Named returns an Addr identified by an arbitrary string, for tests that
// need more endpoints than Client/Server.
func Named(name string) Addr {
	return Addr{name: name}
}

func (a Addr) String() string {
	return a.name
}

// Datagram is one packet recorded by Callback.Send.
type Datagram struct {
	To   Addr
	Data []byte
}

// Callback is a peernet.Callback[Addr] that records every send into an
// in-order queue instead of touching a real socket. Tests pop datagrams
// off the front and feed them into a Net (possibly a different Net
// instance, modeling the other side of the wire) to drive the exchange.
type Callback struct {
	queue []Datagram

	// WantRecipient, when non-nil, makes Send return an error (and record
	// nothing) if called with any other address — mirrors the recipient
	// check the teacher's own test doubles perform inline.
	WantRecipient *Addr
}

// NewCallback returns an empty Callback.
func NewCallback() *Callback {
	return &Callback{}
}

// Send implements peernet.Callback[Addr].
func (c *Callback) Send(addr Addr, data []byte) error {
	if c.WantRecipient != nil && *c.WantRecipient != addr {
		return fmt.Errorf("mock: unexpected send recipient %v, want %v", addr, *c.WantRecipient)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.queue = append(c.queue, Datagram{To: addr, Data: cp})
	return nil
}

// Empty reports whether the queue has been fully drained.
func (c *Callback) Empty() bool {
	return len(c.queue) == 0
}

// Pop removes and returns the oldest queued datagram.
func (c *Callback) Pop() (Datagram, bool) {
	if len(c.queue) == 0 {
		return Datagram{}, false
	}
	d := c.queue[0]
	c.queue = c.queue[1:]
	return d, true
}

// FailingCallback is a Callback double whose Send always fails, for
// exercising the callback-error propagation paths.
type FailingCallback struct {
	Err error
}

func (c FailingCallback) Send(Addr, []byte) error {
	return c.Err
}
