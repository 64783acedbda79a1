// Package loadbalance provides worker-selection strategies for distributing
// incoming requests across a pool of worker slots.
//
// Three strategies are implemented:
//   - RoundRobin:      default. Equal-capacity workers, simplest to reason about.
//   - WeightedRandom:  heterogeneous workers (e.g., some configured with more concurrency).
//   - ConsistentHash:  request-key affinity to a worker, for an AppRuntime that keeps
//     per-key in-process state.
package loadbalance

import "appgw/registry"

// Balancer is the interface for worker-selection strategies.
// The dispatcher calls Pick() before each request to select a target worker.
// key is the request's affinity key (e.g. its path); strategies that don't
// need one (RoundRobin, WeightedRandom) ignore it.
type Balancer interface {
	// Pick selects one worker slot from the available list.
	// Called on every dispatched request — must be goroutine-safe.
	Pick(key string, slots []registry.WorkerSlot) (*registry.WorkerSlot, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}

// ParseBalancerName maps a -balancer flag value to a constructor for a fresh
// Balancer instance. ok is false for anything else.
func ParseBalancerName(name string) (newBalancer func() Balancer, ok bool) {
	switch name {
	case "", "roundrobin":
		return func() Balancer { return &RoundRobinBalancer{} }, true
	case "weighted":
		return func() Balancer { return &WeightedRandomBalancer{} }, true
	case "consistenthash":
		return func() Balancer { return NewConsistentHashBalancer() }, true
	default:
		return nil, false
	}
}
