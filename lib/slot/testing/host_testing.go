package testing

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/dynDB/lib/slot"
)

// ProviderFactory creates a new, empty provider.
// The suite closes every provider it creates.
type ProviderFactory func(t testing.TB) slot.Provider

// RunHostTests runs the conformance suite for a slot.Provider implementation.
func RunHostTests(t *testing.T, name string, factory ProviderFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory(t))
		})

		t.Run("Numbers", func(t *testing.T) {
			testNumbers(t, factory(t))
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory(t))
		})

		t.Run("HostIsolation", func(t *testing.T) {
			testHostIsolation(t, factory(t))
		})

		t.Run("Hosts", func(t *testing.T) {
			testHosts(t, factory(t))
		})

		t.Run("InvalidInput", func(t *testing.T) {
			testInvalidInput(t, factory(t))
		})

		t.Run("ByteLimit", func(t *testing.T) {
			testByteLimit(t, factory(t))
		})

		t.Run("UsedSlots", func(t *testing.T) {
			testUsedSlots(t, factory(t))
		})

		t.Run("Unicode", func(t *testing.T) {
			testUnicode(t, factory(t))
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustHost(t testing.TB, p slot.Provider, id string) slot.Host {
	t.Helper()
	h, err := p.Host(id)
	if err != nil {
		t.Fatalf("Host(%q) failed: %v", id, err)
	}
	if h.ID() != id {
		t.Fatalf("Expected host id %q, got %q", id, h.ID())
	}
	return h
}

func mustSet(t testing.TB, h slot.Host, name string, v slot.Value) {
	t.Helper()
	if err := h.Set(name, v); err != nil {
		t.Fatalf("Set(%q) failed: %v", name, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, p slot.Provider) {
	defer p.Close()

	h := mustHost(t, p, slot.WorldID)

	mustSet(t, h, "test-slot", slot.String("value1"))

	v, ok, err := h.Get("test-slot")
	if err != nil || !ok {
		t.Fatalf("Expected slot to exist after Set (ok=%v, err=%v)", ok, err)
	}
	if s, isStr := v.Str(); !isStr || s != "value1" {
		t.Errorf("Expected \"value1\", got %s", v)
	}

	mustSet(t, h, "test-slot", slot.String("value2"))

	v, _, _ = h.Get("test-slot")
	if s, _ := v.Str(); s != "value2" {
		t.Errorf("Expected overwritten value \"value2\", got %s", v)
	}

	_, ok, err = h.Get("nonexistent-slot")
	if err != nil {
		t.Errorf("Get of an empty slot should not fail: %v", err)
	}
	if ok {
		t.Errorf("Expected empty slot to return ok=false")
	}

	// empty strings are values too
	mustSet(t, h, "empty", slot.String(""))
	v, ok, _ = h.Get("empty")
	if !ok || v.Kind() != slot.KindString {
		t.Errorf("Expected empty string slot to exist, got ok=%v kind=%s", ok, v.Kind())
	}
}

func testNumbers(t *testing.T, p slot.Provider) {
	defer p.Close()

	h := mustHost(t, p, slot.WorldID)

	for _, n := range []float64{0, 1, 42, 1e9, -3.5} {
		name := fmt.Sprintf("num-%v", n)
		mustSet(t, h, name, slot.Number(n))

		v, ok, err := h.Get(name)
		if err != nil || !ok {
			t.Fatalf("Expected number slot %s to exist (ok=%v, err=%v)", name, ok, err)
		}
		got, isNum := v.Num()
		if !isNum || got != n {
			t.Errorf("Expected %v, got %s", n, v)
		}
	}

	// a slot may change its kind
	mustSet(t, h, "mixed", slot.Number(7))
	mustSet(t, h, "mixed", slot.String("seven"))
	v, _, _ := h.Get("mixed")
	if v.Kind() != slot.KindString {
		t.Errorf("Expected kind string after overwrite, got %s", v.Kind())
	}
}

func testDelete(t *testing.T, p slot.Provider) {
	defer p.Close()

	h := mustHost(t, p, slot.WorldID)

	mustSet(t, h, "to-delete", slot.String("x"))

	if err := h.Delete("to-delete"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := h.Get("to-delete"); ok {
		t.Errorf("Expected slot to be empty after Delete")
	}

	// deleting twice or deleting an empty slot is fine
	if err := h.Delete("to-delete"); err != nil {
		t.Errorf("Deleting an empty slot should not fail: %v", err)
	}
	if err := h.Delete("never-set"); err != nil {
		t.Errorf("Deleting an unknown slot should not fail: %v", err)
	}

	// a fresh host has nothing to delete either
	fresh := mustHost(t, p, "fresh-host")
	if err := fresh.Delete("anything"); err != nil {
		t.Errorf("Deleting on a fresh host should not fail: %v", err)
	}
}

func testHostIsolation(t *testing.T, p slot.Provider) {
	defer p.Close()

	a := mustHost(t, p, "entity-a")
	b := mustHost(t, p, "entity-b")

	mustSet(t, a, "shared-name", slot.String("from a"))

	if _, ok, _ := b.Get("shared-name"); ok {
		t.Errorf("Slots of one host must not be visible on another host")
	}

	mustSet(t, b, "shared-name", slot.String("from b"))

	va, _, _ := a.Get("shared-name")
	vb, _, _ := b.Get("shared-name")
	if s, _ := va.Str(); s != "from a" {
		t.Errorf("Expected host a to keep its value, got %s", va)
	}
	if s, _ := vb.Str(); s != "from b" {
		t.Errorf("Expected host b to hold its value, got %s", vb)
	}

	// a second handle to the same host sees the same slots
	again := mustHost(t, p, "entity-a")
	v, ok, _ := again.Get("shared-name")
	if s, _ := v.Str(); !ok || s != "from a" {
		t.Errorf("Expected second handle to see %q, got %s", "from a", v)
	}
}

func testHosts(t *testing.T, p slot.Provider) {
	defer p.Close()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		mustSet(t, mustHost(t, p, id), "k", slot.Number(1))
	}

	ids, err := p.Hosts()
	if err != nil {
		t.Fatalf("Hosts failed: %v", err)
	}

	want := map[string]bool{"zeta": true, "alpha": true, "mid": true}
	found := 0
	for _, id := range ids {
		if want[id] {
			found++
		}
	}
	if found != len(want) {
		t.Errorf("Expected hosts %v to be listed, got %v", want, ids)
	}
}

func testInvalidInput(t *testing.T, p slot.Provider) {
	defer p.Close()

	if _, err := p.Host(""); err == nil {
		t.Errorf("Expected an error for an empty host id")
	}

	h := mustHost(t, p, slot.WorldID)
	if err := h.Set("invalid", slot.Value{}); err == nil {
		t.Errorf("Expected an error for the zero value")
	}
	if _, ok, _ := h.Get("invalid"); ok {
		t.Errorf("A rejected value must not populate the slot")
	}
}

func testByteLimit(t *testing.T, p slot.Provider) {
	defer p.Close()

	h := mustHost(t, p, slot.WorldID)
	limits, ok := h.(slot.Limits)
	if !ok || limits.MaxSlotBytes() <= 0 {
		t.Skip("host does not limit slot bytes")
	}
	limit := limits.MaxSlotBytes()

	mustSet(t, h, "exact", slot.String(strings.Repeat("a", limit)))

	err := h.Set("too-large", slot.String(strings.Repeat("a", limit+1)))
	if err == nil {
		t.Fatalf("Expected an error for a value of %d bytes", limit+1)
	}
	if !errors.Is(err, slot.ErrValueTooLarge) {
		t.Errorf("Expected ErrValueTooLarge, got %v", err)
	}
	if _, ok, _ := h.Get("too-large"); ok {
		t.Errorf("A rejected value must not populate the slot")
	}
}

func testUsedSlots(t *testing.T, p slot.Provider) {
	defer p.Close()

	h := mustHost(t, p, slot.WorldID)
	limits, ok := h.(slot.Limits)
	if !ok {
		t.Skip("host does not report limits")
	}

	used := func() int {
		t.Helper()
		n, err := limits.UsedSlots()
		if err != nil {
			t.Fatalf("UsedSlots failed: %v", err)
		}
		return n
	}

	if n := used(); n != 0 {
		t.Errorf("Expected 0 used slots on a fresh host, got %d", n)
	}
	mustSet(t, h, "a", slot.Number(1))
	mustSet(t, h, "b", slot.String("b"))
	mustSet(t, h, "a", slot.Number(2))
	if n := used(); n != 2 {
		t.Errorf("Expected 2 used slots, got %d", n)
	}

	// other hosts do not count
	mustSet(t, mustHost(t, p, "other"), "c", slot.Number(3))
	if err := h.Delete("b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n := used(); n != 1 {
		t.Errorf("Expected 1 used slot, got %d", n)
	}
}

func testUnicode(t *testing.T, p slot.Provider) {
	defer p.Close()

	h := mustHost(t, p, slot.WorldID)

	values := []string{"héllo", "日本語", "emoji 😀🎉", "null\x00byte"}
	for i, s := range values {
		mustSet(t, h, fmt.Sprintf("u%d", i), slot.String(s))
	}
	for i, s := range values {
		v, ok, err := h.Get(fmt.Sprintf("u%d", i))
		if err != nil || !ok {
			t.Fatalf("Expected slot u%d to exist (ok=%v, err=%v)", i, ok, err)
		}
		if got, _ := v.Str(); got != s {
			t.Errorf("Expected %q, got %q", s, got)
		}
	}
}

func testConcurrent(t *testing.T, p slot.Provider) {
	defer p.Close()

	const (
		workers = 8
		perW    = 50
	)

	var wg sync.WaitGroup
	errs := make(chan error, workers*perW)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			h, err := p.Host(fmt.Sprintf("host-%d", w%2))
			if err != nil {
				errs <- err
				return
			}
			for i := 0; i < perW; i++ {
				if err := h.Set(fmt.Sprintf("w%d-%d", w, i), slot.Number(float64(i))); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent Set failed: %v", err)
	}

	for w := 0; w < workers; w++ {
		h := mustHost(t, p, fmt.Sprintf("host-%d", w%2))
		for i := 0; i < perW; i++ {
			v, ok, _ := h.Get(fmt.Sprintf("w%d-%d", w, i))
			if n, _ := v.Num(); !ok || n != float64(i) {
				t.Errorf("Expected w%d-%d to hold %d, got %s", w, i, i, v)
			}
		}
	}
}
