package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected hit immediately after Set")
	}
	if string(value) != "v" {
		t.Errorf("Expected %q, got %q", "v", value)
	}
}

func TestMemory_ExpiredEntryIsMiss(t *testing.T) {
	// Long cleanup interval: expiry must be enforced lazily on Get.
	m := NewMemory(time.Hour)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	_, ok, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected expired entry to behave as absent")
	}

	// Lazy expiry also removes the entry
	if m.Size() != 0 {
		t.Errorf("Expected expired entry removed on read, size %d", m.Size())
	}
}

func TestMemory_CleanupSweep(t *testing.T) {
	m := NewMemory(30 * time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "short", []byte("a"), 20*time.Millisecond)
	m.Set(ctx, "long", []byte("b"), time.Minute)

	time.Sleep(100 * time.Millisecond)

	if m.Size() != 1 {
		t.Errorf("Expected sweep to purge the expired entry, size %d", m.Size())
	}
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), time.Minute)
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("Expected entry removed after Delete")
	}

	// Deleting an absent key is not an error
	if err := m.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of absent key returned error: %v", err)
	}
}

func TestMemory_ClearResetsCounters(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), time.Minute)
	m.Get(ctx, "k")       // hit
	m.Get(ctx, "missing") // miss

	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, _ := m.Stats(ctx)
	if stats.Size != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Expected zeroed stats after Clear, got %+v", stats)
	}
}

func TestMemory_Stats(t *testing.T) {
	m := NewMemory(time.Minute)
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "k", []byte("v"), time.Minute)
	m.Get(ctx, "k")
	m.Get(ctx, "k")
	m.Get(ctx, "missing")

	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Expected 2 hits / 1 miss, got %d/%d", stats.Hits, stats.Misses)
	}

	expected := 2.0 / 3.0
	if stats.HitRate < expected-0.001 || stats.HitRate > expected+0.001 {
		t.Errorf("Expected hit rate ~%.3f, got %.3f", expected, stats.HitRate)
	}
}
