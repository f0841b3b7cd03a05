// Package peernet is a connection-oriented packet multiplexing layer atop
// an unreliable datagram substrate (conceptually UDP). It manages a set of
// per-remote connections, dispatches incoming datagrams to the correct
// connection state machine, and surfaces a uniform event stream of
// connection/disconnection notices and application chunks.
//
// peernet is the transport demultiplexer and peer registry that sits
// between raw socket I/O and any higher-level protocol: callers supply a
// send function and feed it raw datagrams; Net returns iterators of
// decoded events. The reliable-delivery state machine (package conn) and
// the wire codec (package wire) are separate collaborators.
package peernet
