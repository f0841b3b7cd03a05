package peernet

import (
	"fmt"

	"github.com/cometbft/peernet/conn"
)

// peer pairs an Address with its Connection collaborator. addr is
// immutable for the peer's lifetime; conn is owned exclusively by this
// peer entry.
type peer[A Address] struct {
	addr A
	conn *conn.Conn
}

// registry is the mapping from PeerId to peer, supporting allocation,
// removal, forward lookup by PeerId, and reverse lookup by Address.
//
// Invariant: no two live entries carry the same Address. newPeer never
// checks this itself — avoiding a duplicate Address is the caller's
// responsibility — but pidFromAddr only ever returns at most one PeerId
// as a consequence.
type registry[A Address] struct {
	peers      map[PeerId]*peer[A]
	nextPeerID PeerId
}

func newRegistry[A Address]() *registry[A] {
	return &registry[A]{peers: make(map[PeerId]*peer[A])}
}

// newPeer allocates the next vacant PeerId and inserts a freshly
// constructed peer at addr. Allocation is a linear probe over the
// wrapping counter: on collision with a live entry it skips forward until
// a vacant slot is found. With tens to low thousands of live peers this
// never probes more than a handful of times; as the live count approaches
// 2^32 it degrades toward a full scan per allocation, and when all 2^32
// ids are live it panics after one full scan.
func (r *registry[A]) newPeer(addr A) (PeerId, *peer[A]) {
	for probes := uint64(0); probes <= uint64(^PeerId(0)); probes++ {
		pid := r.nextPeerID
		r.nextPeerID++
		if _, exists := r.peers[pid]; !exists {
			p := &peer[A]{addr: addr, conn: conn.New()}
			r.peers[pid] = p
			return pid, p
		}
	}
	panic("peernet: PeerId space exhausted")
}

// removePeer deletes the entry for pid. It panics if pid is not live,
// consistent with the indexing-style panics elsewhere in this package.
func (r *registry[A]) removePeer(pid PeerId) {
	if _, ok := r.peers[pid]; !ok {
		panic(fmt.Sprintf("peernet: invalid pid %d", pid))
	}
	delete(r.peers, pid)
}

// pidFromAddr performs the reverse lookup, a linear scan accepted for
// tens-to-low-thousands of live peers. A caller scaling past that should
// add a secondary map[Address]PeerId kept in lockstep inside
// newPeer/removePeer; this package does not, since nothing in its test or
// usage profile exercises that scale (see DESIGN.md).
func (r *registry[A]) pidFromAddr(addr A) (PeerId, bool) {
	for pid, p := range r.peers {
		if p.addr == addr {
			return pid, true
		}
	}
	return 0, false
}

func (r *registry[A]) get(pid PeerId) (*peer[A], bool) {
	p, ok := r.peers[pid]
	return p, ok
}

// mustGet returns the peer for pid, panicking if it is not live. Used by
// callers (Disconnect, Send, Feed) that expect the peer to already exist.
func (r *registry[A]) mustGet(pid PeerId) *peer[A] {
	p, ok := r.peers[pid]
	if !ok {
		panic(fmt.Sprintf("peernet: invalid pid %d", pid))
	}
	return p
}

func (r *registry[A]) len() int {
	return len(r.peers)
}
