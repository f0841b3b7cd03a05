package peernet

import (
	"github.com/cometbft/peernet/wire"
)

// connlessBuilder owns one fixed-size scratch buffer sized to the wire
// codec's maximum packet size, reused across every connectionless send
// issued by its Net. It is never shared beyond that one Net.
type connlessBuilder[A Address] struct {
	buffer [wire.MaxPacketSize]byte
}

func newConnlessBuilder[A Address]() *connlessBuilder[A] {
	return &connlessBuilder[A]{}
}

// send serializes data as a connectionless packet into the scratch buffer
// and hands the resulting slice to cb.Send. A capacity error from the
// codec would mean the scratch was undersized relative to MaxPacketSize,
// which cannot happen here and is treated as a programming-error panic
// rather than a returned Error.
func (b *connlessBuilder[A]) send(cb Callback[A], addr A, data []byte) *Error {
	encoded, err := wire.WriteConnless(b.buffer[:], data)
	switch err {
	case nil:
	case wire.ErrTooLongData:
		return tooLongDataError(err)
	case wire.ErrCapacity:
		panic("peernet: connless scratch buffer undersized relative to wire.MaxPacketSize")
	default:
		panic(err)
	}
	if sendErr := cb.Send(addr, encoded); sendErr != nil {
		return callbackError(sendErr)
	}
	return nil
}
