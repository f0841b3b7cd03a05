package peernet

// Callback is the send side of the boundary between Net and the actual
// socket. Net never performs I/O itself; every outbound datagram is handed
// to a Callback.Send call supplied by the caller of the operation that
// produced it.
//
// Send must not re-enter the Net it was supplied to: peernet is
// single-threaded and non-reentrant.
type Callback[A Address] interface {
	Send(addr A, data []byte) error
}

// sendAdapter binds a Callback and a target Address into the simpler,
// address-agnostic send interface the conn.Conn collaborator expects.
// It is constructed fresh at every call site and never stored, since its
// only purpose is to tunnel an Address through a Callback that doesn't
// know about addresses.
type sendAdapter[A Address] struct {
	cb   Callback[A]
	addr A
}

func adapt[A Address](cb Callback[A], addr A) *sendAdapter[A] {
	return &sendAdapter[A]{cb: cb, addr: addr}
}

func (s *sendAdapter[A]) Send(data []byte) error {
	return s.cb.Send(s.addr, data)
}
