package peernet_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cometbft/peernet"
	"github.com/cometbft/peernet/mock"
	"github.com/cometbft/peernet/wire"
)

func scratch() []byte {
	return make([]byte, wire.MaxPacketSize)
}

// TestEstablishAndTearDownConnection walks a full connect/accept/teardown
// handshake. A single Net stands in for both Client and Server,
// distinguished only by which Address each peer entry is keyed under, and
// datagrams are hand-carried between the two roles by the test.
func TestEstablishAndTearDownConnection(t *testing.T) {
	net := peernet.New[mock.Addr]()
	cb := mock.NewCallback()

	// Connect: allocates a peer keyed at Server, emits Control-Connect to
	// Server.
	cPID, sendErr := net.Connect(cb, mock.Server)
	require.Nil(t, sendErr)
	connectPkt, ok := cb.Pop()
	require.True(t, ok)
	require.Equal(t, mock.Server, connectPkt.To)
	require.True(t, cb.Empty())

	// ConnectAccept: feed the Connect packet as though it arrived from
	// Client. No peer is registered at Client yet, so this allocates one
	// and yields a single Connect(sPID) event.
	rp, sendErr := net.Feed(cb, mock.Client, connectPkt.Data, scratch())
	require.Nil(t, sendErr)
	events := rp.Collect()
	require.Len(t, events, 1)
	sPID, isConnect := events[0].IsConnect()
	require.True(t, isConnect)

	acceptPkt, ok := cb.Pop()
	require.True(t, ok)
	require.Equal(t, mock.Client, acceptPkt.To)
	require.True(t, cb.Empty())

	// Accept: feed the ConnectAccept packet at Server (the client-side
	// peer, keyed under Server, is waiting for it).
	rp, sendErr = net.Feed(cb, mock.Server, acceptPkt.Data, scratch())
	require.Nil(t, sendErr)
	require.Empty(t, rp.Collect())

	finalPkt, ok := cb.Pop()
	require.True(t, ok)
	require.Equal(t, mock.Server, finalPkt.To)
	require.True(t, cb.Empty())

	// The final handshake datagram (Control-Accept) is fed at Client and
	// produces no further traffic or events.
	rp, sendErr = net.Feed(cb, mock.Client, finalPkt.Data, scratch())
	require.Nil(t, sendErr)
	require.Empty(t, rp.Collect())
	require.True(t, cb.Empty())

	// Disconnect: tear down the client-held peer.
	sendErr = net.Disconnect(cb, cPID, []byte("foobar"))
	require.Nil(t, sendErr)
	closePkt, ok := cb.Pop()
	require.True(t, ok)
	require.Equal(t, mock.Server, closePkt.To)
	require.True(t, cb.Empty())

	rp, sendErr = net.Feed(cb, mock.Client, closePkt.Data, scratch())
	require.Nil(t, sendErr)
	events = rp.Collect()
	require.Len(t, events, 1)
	pid, reason, isDC := events[0].IsDisconnect()
	require.True(t, isDC)
	require.Equal(t, sPID, pid)
	require.Equal(t, []byte("foobar"), reason)
	require.True(t, cb.Empty())

	// The peer is gone on both sides: peer_addr returns false for cPID,
	// and any indexing-contract operation on it panics.
	_, ok = net.PeerAddr(cPID)
	require.False(t, ok)
	require.Panics(t, func() {
		_ = net.Disconnect(cb, cPID, nil)
	})
}

// TestConnectionlessBypass sends a connectionless datagram between two
// separate Net instances so there is genuinely no peer at either end.
func TestConnectionlessBypass(t *testing.T) {
	sender := peernet.New[mock.Addr]()
	cb := mock.NewCallback()

	addrX := mock.Named("X")
	sendErr := sender.SendConnless(cb, addrX, []byte("ping"))
	require.Nil(t, sendErr)

	pkt, ok := cb.Pop()
	require.True(t, ok)
	require.Equal(t, addrX, pkt.To)
	require.True(t, cb.Empty())

	receiver := peernet.New[mock.Addr]()
	rp, sendErr := receiver.Feed(cb, addrX, pkt.Data, scratch())
	require.Nil(t, sendErr)
	events := rp.Collect()
	require.Len(t, events, 1)

	chunk, isChunk := events[0].IsChunk()
	require.True(t, isChunk)
	require.Equal(t, []byte("ping"), chunk.Data)
	require.False(t, chunk.Addr.HasPeer())
	require.Equal(t, addrX, chunk.Addr.NonPeer)
}

// TestConnectionlessThroughExistingPeer checks that sending a
// NonPeerConnless chunk to an address that already has a peer succeeds and
// delivers one connectionless datagram carrying the data to that address.
// The peer's Connection and the no-peer builder frame connectionless
// datagrams identically, so the body does not tell which path was taken.
func TestConnectionlessThroughExistingPeer(t *testing.T) {
	net := peernet.New[mock.Addr]()
	cb := mock.NewCallback()
	establishOneSidedPeer(t, net, cb, mock.Server)

	chunk := peernet.Chunk[mock.Addr]{
		Data: []byte("hello"),
		Addr: peernet.NonPeerConnless(mock.Server),
	}
	sendErr := net.Send(cb, chunk)
	require.Nil(t, sendErr)

	pkt, ok := cb.Pop()
	require.True(t, ok)
	require.Equal(t, mock.Server, pkt.To)

	decoded, ok := wire.Read(pkt.Data, scratch())
	require.True(t, ok)
	require.True(t, decoded.Connless)
	require.Equal(t, []byte("hello"), decoded.Data)
}

// TestStrayDatagramIgnored checks that a malformed datagram from an
// address with no registered peer is dropped silently, with no event and
// no error.
func TestStrayDatagramIgnored(t *testing.T) {
	net := peernet.New[mock.Addr]()
	cb := mock.NewCallback()

	rp, sendErr := net.Feed(cb, mock.Named("ghost"), []byte{0xff, 0xff, 0xff}, scratch())
	require.Nil(t, sendErr)
	require.Empty(t, rp.Collect())
	require.True(t, cb.Empty())

	_, ok := net.PeerAddr(0)
	require.False(t, ok)
}

// TestTooLongConnectionlessData checks that a connectionless payload
// exceeding the wire codec's capacity is rejected with ErrTooLongData and
// never reaches the callback.
func TestTooLongConnectionlessData(t *testing.T) {
	net := peernet.New[mock.Addr]()
	cb := mock.NewCallback()

	oversized := make([]byte, wire.MaxPacketSize+1)
	sendErr := net.SendConnless(cb, mock.Named("X"), oversized)
	require.NotNil(t, sendErr)
	require.Equal(t, peernet.ErrTooLongData, sendErr.Kind)
	require.True(t, cb.Empty())
}

// TestConnectCallbackFailureWrapped checks that a Callback.Send failure
// during Connect surfaces as an ErrCallback Error wrapping the original
// cause, rather than being swallowed or returned as a bare error.
func TestConnectCallbackFailureWrapped(t *testing.T) {
	net := peernet.New[mock.Addr]()
	boom := errors.New("boom")
	cb := mock.FailingCallback{Err: boom}

	_, sendErr := net.Connect(cb, mock.Server)
	require.NotNil(t, sendErr)
	require.Equal(t, peernet.ErrCallback, sendErr.Kind)
	require.ErrorIs(t, sendErr, boom)
}

// TestSendCallbackRecipientMismatchFails checks that a peer-addressed
// Send whose Callback rejects the recipient propagates that failure as an
// ErrCallback Error.
func TestSendCallbackRecipientMismatchFails(t *testing.T) {
	net := peernet.New[mock.Addr]()
	cb := mock.NewCallback()
	pid := establishOneSidedPeer(t, net, cb, mock.Server)

	wantRecipient := mock.Named("not-server")
	cb.WantRecipient = &wantRecipient

	chunk := peernet.Chunk[mock.Addr]{
		Data: []byte("x"),
		Addr: peernet.PeerChunk[mock.Addr](pid, peernet.ChunkTypeConnless),
	}
	sendErr := net.Send(cb, chunk)
	require.NotNil(t, sendErr)
	require.Equal(t, peernet.ErrCallback, sendErr.Kind)
}

// establishOneSidedPeer drives just enough of the handshake to register a
// peer at addr without needing a second Net, for tests that only care
// about post-connect routing.
func establishOneSidedPeer(t *testing.T, net *peernet.Net[mock.Addr], cb *mock.Callback, addr mock.Addr) peernet.PeerId {
	t.Helper()
	pid, sendErr := net.Connect(cb, addr)
	require.Nil(t, sendErr)
	_, ok := cb.Pop()
	require.True(t, ok)
	return pid
}
