package loadbalance

import (
	"fmt"
	"hash/crc32"
	"sort"
	"sync"

	"appgw/registry"
)

// ConsistentHashBalancer maps request keys to worker slots using a hash ring.
// The same key always maps to the same slot (until the ring changes),
// providing worker affinity — useful when an AppRuntime keeps per-key
// in-process state (e.g. a session cache) that should always be hit on the
// same worker.
//
// Virtual nodes: each real slot is mapped to N virtual nodes on the ring.
// Without virtual nodes, a handful of slots might cluster together on the
// ring, causing uneven load distribution. 100 virtual nodes per slot ensures
// statistical uniformity.
//
//	Hash Ring:
//	                  0
//	                ╱   ╲
//	              ╱       ╲
//	         B ●               ● A
//	           │    key ◆──►   │   (clockwise to nearest node → A)
//	         C ●               ● A' (virtual node of A)
//	              ╲       ╱
//	                ╲   ╱
//
// The ring is rebuilt from scratch on every Pick call against the slot list
// handed in, rather than maintained incrementally via Add/Remove calls: the
// registry already hands the dispatcher a fresh slot list on every request,
// and workers churn rarely enough that rebuilding a few hundred ring entries
// per request is not a hot-path concern.
type ConsistentHashBalancer struct {
	replicas int // Virtual nodes per real slot

	mu    sync.Mutex
	ring  []uint32                  // Sorted hash values on the ring, cached for the last slot list seen
	nodes map[uint32]registry.WorkerSlot // Hash value → slot mapping
}

// NewConsistentHashBalancer creates a hash ring with 100 virtual nodes per slot.
func NewConsistentHashBalancer() *ConsistentHashBalancer {
	return &ConsistentHashBalancer{replicas: 100}
}

func (b *ConsistentHashBalancer) rebuild(slots []registry.WorkerSlot) {
	ring := make([]uint32, 0, len(slots)*b.replicas)
	nodes := make(map[uint32]registry.WorkerSlot, len(slots)*b.replicas)

	for _, slot := range slots {
		for i := 0; i < b.replicas; i++ {
			key := fmt.Sprintf("%s#%d", slot.SocketPath, i)
			hash := crc32.ChecksumIEEE([]byte(key))
			ring = append(ring, hash)
			nodes[hash] = slot
		}
	}
	sort.Slice(ring, func(i, j int) bool { return ring[i] < ring[j] })

	b.ring = ring
	b.nodes = nodes
}

// Pick hashes key and binary-searches for the first node >= hash on the
// ring. If the hash is larger than all nodes, it wraps around to the first
// node (ring property).
func (b *ConsistentHashBalancer) Pick(key string, slots []registry.WorkerSlot) (*registry.WorkerSlot, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("no worker slots available")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.rebuild(slots)

	hash := crc32.ChecksumIEEE([]byte(key))
	idx := sort.Search(len(b.ring), func(i int) bool {
		return b.ring[i] >= hash
	})
	if idx == len(b.ring) {
		idx = 0
	}

	slot := b.nodes[b.ring[idx]]
	return &slot, nil
}

func (b *ConsistentHashBalancer) Name() string {
	return "ConsistentHash"
}
