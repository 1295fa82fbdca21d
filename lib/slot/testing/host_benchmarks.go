package testing

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/dynDB/lib/slot"
)

// RunHostBenchmarks runs all benchmarks for a slot.Provider implementation
func RunHostBenchmarks(b *testing.B, name string, factory ProviderFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory(b))
	})

	b.Run("SetFragment", func(b *testing.B) {
		benchmarkSetFragment(b, factory(b))
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory(b))
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory(b))
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for small Set operations spread over many slots
func benchmarkSet(b *testing.B, p slot.Provider) {
	b.Cleanup(func() {
		p.Close()
	})

	h := mustHost(b, p, slot.WorldID)
	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			if err := h.Set(fmt.Sprintf("slot-%d", i%1000), slot.Number(float64(i))); err != nil {
				b.Error(err)
			}
		}
	})
}

// Benchmark for Set operations writing full sized fragments
func benchmarkSetFragment(b *testing.B, p slot.Provider) {
	b.Cleanup(func() {
		p.Close()
	})

	h := mustHost(b, p, slot.WorldID)
	size := slot.DefaultMaxSlotBytes
	if l, ok := h.(slot.Limits); ok && l.MaxSlotBytes() > 0 {
		size = l.MaxSlotBytes()
	}
	payload := slot.String(strings.Repeat("x", size))

	b.SetBytes(int64(size))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := h.Set(fmt.Sprintf("fragment-%d", i%16), payload); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark for Get operations on populated slots
func benchmarkGet(b *testing.B, p slot.Provider) {
	b.Cleanup(func() {
		p.Close()
	})

	h := mustHost(b, p, slot.WorldID)
	for i := 0; i < 1000; i++ {
		mustSet(b, h, fmt.Sprintf("slot-%d", i), slot.String("value"))
	}
	var counter atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			if _, _, err := h.Get(fmt.Sprintf("slot-%d", i%1000)); err != nil {
				b.Error(err)
			}
		}
	})
}

// Benchmark for Delete operations (set and delete pairs)
func benchmarkDelete(b *testing.B, p slot.Provider) {
	b.Cleanup(func() {
		p.Close()
	})

	h := mustHost(b, p, slot.WorldID)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		name := fmt.Sprintf("slot-%d", i%1000)
		if err := h.Set(name, slot.Number(1)); err != nil {
			b.Fatal(err)
		}
		if err := h.Delete(name); err != nil {
			b.Fatal(err)
		}
	}
}
