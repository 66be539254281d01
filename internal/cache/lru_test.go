// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package cache

import (
	"testing"
	"time"
)

func TestLRU_AddGet(t *testing.T) {
	t.Parallel()

	c := NewLRU[string](4, time.Minute)

	c.Add("a", "alpha")
	c.Add("b", "beta")

	if v, ok := c.Get("a"); !ok || v != "alpha" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 2 {
		t.Errorf("Stats = %d/%d/%d, want 1/1/2", hits, misses, size)
	}
}

func TestLRU_EvictsOldest(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](2, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}

	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("Recently used a was evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](4, 10*time.Millisecond)
	c.Add("a", 1)

	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("Expired entry still returned")
	}
}

func TestLRU_UpdateExistingKey(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](2, time.Minute)
	c.Add("a", 1)
	c.Add("a", 2)

	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestLRU_Clear(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](4, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Cleared entry still returned")
	}

	// Cache stays usable after Clear.
	c.Add("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after Clear = %d, %v", v, ok)
	}
}

func TestLRU_Remove(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](4, time.Minute)
	c.Add("a", 1)

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("Second Remove(a) = true, want false")
	}
}
