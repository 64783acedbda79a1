package registry

import "testing"

func TestMemRegistryRegisterAndDiscover(t *testing.T) {
	reg := NewMemRegistry()

	slot1 := WorkerSlot{SocketPath: "/tmp/appgw-worker-1.sock", Weight: 10, Index: 0}
	slot2 := WorkerSlot{SocketPath: "/tmp/appgw-worker-2.sock", Weight: 5, Index: 1}

	if err := reg.Register("workers", slot1, 10); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("workers", slot2, 10); err != nil {
		t.Fatal(err)
	}

	slots, err := reg.Discover("workers")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("expect 2 slots, got %d", len(slots))
	}

	if err := reg.Deregister("workers", slot1.SocketPath); err != nil {
		t.Fatal(err)
	}
	slots, err = reg.Discover("workers")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0].SocketPath != slot2.SocketPath {
		t.Fatalf("expected only %s to remain, got %+v", slot2.SocketPath, slots)
	}
}

func TestMemRegistryRegisterReplacesBySocketPath(t *testing.T) {
	reg := NewMemRegistry()
	slot := WorkerSlot{SocketPath: "/tmp/appgw-worker-1.sock", Weight: 1, Index: 0}

	reg.Register("workers", slot, 10)
	slot.Weight = 99
	reg.Register("workers", slot, 10)

	slots, _ := reg.Discover("workers")
	if len(slots) != 1 {
		t.Fatalf("expected re-registering the same socket path to replace, not append: got %d slots", len(slots))
	}
	if slots[0].Weight != 99 {
		t.Fatalf("expected updated weight 99, got %d", slots[0].Weight)
	}
}

func TestMemRegistryWatch(t *testing.T) {
	reg := NewMemRegistry()
	ch := reg.Watch("workers")

	slot := WorkerSlot{SocketPath: "/tmp/appgw-worker-1.sock", Weight: 1, Index: 0}
	reg.Register("workers", slot, 10)

	select {
	case slots := <-ch:
		if len(slots) != 1 || slots[0].SocketPath != slot.SocketPath {
			t.Fatalf("unexpected watch payload: %+v", slots)
		}
	default:
		t.Fatal("expected a watch notification after Register")
	}
}

func TestMemRegistryDiscoverEmptyPool(t *testing.T) {
	reg := NewMemRegistry()
	slots, err := reg.Discover("nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected empty slice for unknown pool, got %+v", slots)
	}
}
