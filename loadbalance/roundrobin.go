package loadbalance

import (
	"fmt"
	"sync/atomic"

	"appgw/registry"
)

// RoundRobinBalancer distributes requests evenly across all worker slots in
// order. Uses an atomic counter for lock-free, goroutine-safe operation.
// This is the default Balancer: simplest to reason about, and adequate for
// a pool of equal-capacity workers.
type RoundRobinBalancer struct {
	counter int64 // Atomic counter, incremented on each Pick()
}

// Pick selects the next slot in round-robin order, ignoring key.
func (b *RoundRobinBalancer) Pick(key string, slots []registry.WorkerSlot) (*registry.WorkerSlot, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("no worker slots available")
	}
	index := (atomic.AddInt64(&b.counter, 1) - 1) % int64(len(slots))
	return &slots[index], nil
}

func (b *RoundRobinBalancer) Name() string {
	return "RoundRobin"
}
