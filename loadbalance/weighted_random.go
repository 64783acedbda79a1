package loadbalance

import (
	"fmt"
	"math/rand"

	"appgw/registry"
)

// WeightedRandomBalancer selects a worker slot probabilistically based on its
// weight. A slot with weight 10 gets roughly 2x the traffic of one with
// weight 5.
//
// Best for: a worker pool spawned with -respawn at different concurrency
// levels, where slot.Weight reflects each worker's relative capacity.
//
// Algorithm:
//  1. Sum all weights → totalWeight
//  2. Generate random number r in [0, totalWeight)
//  3. Subtract each slot's weight from r until r < 0
//  4. The slot that makes r negative is selected
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(key string, slots []registry.WorkerSlot) (*registry.WorkerSlot, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("no worker slots available")
	}

	totalWeight := 0
	for _, v := range slots {
		totalWeight += v.Weight
	}
	if totalWeight <= 0 {
		return nil, fmt.Errorf("no worker slots with positive weight")
	}

	r := rand.Intn(totalWeight)
	for i := range slots {
		r -= slots[i].Weight
		if r < 0 {
			return &slots[i], nil
		}
	}

	return nil, fmt.Errorf("unexpected error in weighted random selection")
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
