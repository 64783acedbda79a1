package loadbalance

import (
	"fmt"
	"testing"

	"appgw/registry"
)

var testSlots = []registry.WorkerSlot{
	{SocketPath: "/tmp/w1.sock", Weight: 10, Index: 0},
	{SocketPath: "/tmp/w2.sock", Weight: 5, Index: 1},
	{SocketPath: "/tmp/w3.sock", Weight: 10, Index: 2},
}

func TestRoundRobin(t *testing.T) {
	b := &RoundRobinBalancer{}

	results := make([]string, 3)
	for i := 0; i < 3; i++ {
		slot, err := b.Pick("", testSlots)
		if err != nil {
			t.Fatal(err)
		}
		results[i] = slot.SocketPath
	}

	slot, _ := b.Pick("", testSlots)
	if slot.SocketPath != results[0] {
		t.Fatalf("expect wrap around to %s, got %s", results[0], slot.SocketPath)
	}
}

func TestRoundRobinEmpty(t *testing.T) {
	b := &RoundRobinBalancer{}
	_, err := b.Pick("", []registry.WorkerSlot{})
	if err == nil {
		t.Fatal("expect error for empty slot list")
	}
}

func TestWeightedRandom(t *testing.T) {
	b := &WeightedRandomBalancer{}

	counts := map[string]int{}
	n := 10000
	for i := 0; i < n; i++ {
		slot, err := b.Pick("", testSlots)
		if err != nil {
			t.Fatal(err)
		}
		counts[slot.SocketPath]++
	}

	// Weight ratio is 10:5:10, so w1 and w3 should be ~2x of w2
	ratio := float64(counts["/tmp/w1.sock"]) / float64(counts["/tmp/w2.sock"])
	if ratio < 1.5 || ratio > 2.5 {
		t.Fatalf("weight ratio w1/w2 = %.2f, expect ~2.0", ratio)
	}
}

func TestConsistentHash(t *testing.T) {
	b := NewConsistentHashBalancer()

	slot1, _ := b.Pick("user-123", testSlots)
	slot2, _ := b.Pick("user-123", testSlots)
	if slot1.SocketPath != slot2.SocketPath {
		t.Fatalf("same key mapped to different slots: %s vs %s", slot1.SocketPath, slot2.SocketPath)
	}

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		slot, _ := b.Pick(fmt.Sprintf("key-%d", i), testSlots)
		seen[slot.SocketPath] = true
	}

	// With 100 different keys and 3 slots, we should hit at least 2
	if len(seen) < 2 {
		t.Fatalf("expect at least 2 different slots, got %d", len(seen))
	}
}

func TestParseBalancerName(t *testing.T) {
	for _, name := range []string{"", "roundrobin", "weighted", "consistenthash"} {
		newBalancer, ok := ParseBalancerName(name)
		if !ok {
			t.Fatalf("ParseBalancerName(%q) should be ok", name)
		}
		if newBalancer() == nil {
			t.Fatalf("ParseBalancerName(%q) constructor returned nil", name)
		}
	}

	if _, ok := ParseBalancerName("magic"); ok {
		t.Fatal("ParseBalancerName(magic) should not be ok")
	}
}
