// Package registry provides the etcd-based implementation of the Registry interface.
//
// etcd is a distributed key-value store that provides strong consistency (Raft protocol).
// We use it as a "distributed phonebook" for worker slots:
//
//	Key:   /appgw/{poolName}/{SocketPath}
//	Value: JSON-encoded WorkerSlot
//
// Registration uses TTL-based leases: if a worker (or the front-end holding
// the lease on its behalf) dies without deregistering, the lease expires and
// the entry is automatically removed — preventing "ghost" slots. This
// backend is opt-in (-registry=etcd): the default MemRegistry is sufficient
// whenever worker membership never needs to be visible outside the
// front-end's own process.
package registry

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdRegistry implements the Registry interface using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // etcd client connection (thread-safe, shared across goroutines)
}

// NewEtcdRegistry creates a new registry connected to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

// Register adds a worker slot to etcd with a TTL lease.
//
// Flow:
//  1. Create a lease with the given TTL (e.g., 10 seconds)
//  2. Put the key-value pair with the lease attached
//  3. Start KeepAlive to automatically renew the lease
//
// Note: leaseID is a local variable, NOT stored on the struct.
// This prevents a data race when multiple goroutines share one EtcdRegistry
// instance.
func (r *EtcdRegistry) Register(poolName string, slot WorkerSlot, ttl int64) error {
	ctx := context.TODO()

	// Create a TTL-based lease — if KeepAlive stops, the entry auto-expires
	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	// Serialize the slot metadata
	val, err := json.Marshal(slot)
	if err != nil {
		return err
	}

	// Store in etcd: key = /appgw/{pool}/{socket path}, value = JSON metadata
	_, err = r.client.Put(ctx, "/appgw/"+poolName+"/"+slot.SocketPath, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	// Start background lease renewal — KeepAlive sends heartbeats to etcd
	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}

	// Consume KeepAlive responses to prevent the channel from filling up
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes a worker slot from etcd.
// Called by the supervisor once it has observed the worker process exit.
func (r *EtcdRegistry) Deregister(poolName string, socketPath string) error {
	ctx := context.TODO()
	_, err := r.client.Delete(ctx, "/appgw/"+poolName+"/"+socketPath)
	if err != nil {
		return err
	}
	return nil
}

// Watch monitors a pool prefix in etcd and emits updated slot lists
// whenever changes occur (new registrations, deregistrations, lease expirations).
//
// Uses etcd's Watch API (server-push), which is more efficient than polling.
func (r *EtcdRegistry) Watch(poolName string) <-chan []WorkerSlot {
	ctx := context.TODO()
	ch := make(chan []WorkerSlot, 1)
	prefix := "/appgw/" + poolName + "/"

	go func() {
		// Watch all keys under the pool prefix
		watchChan := r.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchChan {
			// On any change, re-fetch the full slot list
			// (simpler than parsing individual watch events)
			slots, _ := r.Discover(poolName)
			ch <- slots
		}
	}()

	return ch
}

// Discover returns all currently registered slots for a pool.
// Queries etcd with a key prefix to find all slots under /appgw/{poolName}/.
func (r *EtcdRegistry) Discover(poolName string) ([]WorkerSlot, error) {
	ctx := context.TODO()
	prefix := "/appgw/" + poolName + "/"

	// Get all keys with the prefix
	resp, err := r.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	// Deserialize each value into a WorkerSlot
	slots := make([]WorkerSlot, 0)
	for _, kv := range resp.Kvs {
		var slot WorkerSlot
		if err := json.Unmarshal(kv.Value, &slot); err != nil {
			continue // Skip malformed entries
		}
		slots = append(slots, slot)
	}

	return slots, nil
}
