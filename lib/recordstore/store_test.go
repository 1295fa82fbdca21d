package recordstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ValentinKolb/dynDB/lib/jsonv"
	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/lib/slot/memhost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// countingHost counts the writes reaching the wrapped host
type countingHost struct {
	slot.Host
	sets    int
	deletes int
}

func (h *countingHost) Set(name string, v slot.Value) error {
	h.sets++
	return h.Host.Set(name, v)
}

func (h *countingHost) Delete(name string) error {
	h.deletes++
	return h.Host.Delete(name)
}

// failingHost fails every write after the first okWrites
type failingHost struct {
	slot.Host
	okWrites int
}

var errHostDown = errors.New("host down")

func (h *failingHost) Set(name string, v slot.Value) error {
	if h.okWrites == 0 {
		return errHostDown
	}
	h.okWrites--
	return h.Host.Set(name, v)
}

func newHost(t *testing.T) *memhost.Host {
	t.Helper()
	return memhost.NewHost(slot.WorldID, nil)
}

func snapshot(h *memhost.Host) map[string]string {
	out := map[string]string{}
	for _, name := range h.Names() {
		v, _, _ := h.Get(name)
		out[name] = v.String()
	}
	return out
}

func mustOpen(t *testing.T, id string, host slot.Host, opts ...Option) *Store {
	t.Helper()
	s, err := Open(id, host, opts...)
	require.NoError(t, err)
	return s
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestOpenFresh(t *testing.T) {
	h := newHost(t)
	s := mustOpen(t, "fresh", h)

	v, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.False(t, s.Has("missing"))
	assert.Equal(t, 0, s.Size())
	assert.Empty(t, s.Keys())
	assert.Equal(t, "{}", s.String())

	// opening never writes
	assert.Equal(t, 0, h.Len())
}

func TestSaveExample(t *testing.T) {
	h := newHost(t)
	s := mustOpen(t, "ex", h, WithMaxSlotBytes(10))
	s.Set("a", jsonv.String("hello"))

	_, err := s.Save()
	require.NoError(t, err)

	v, ok, _ := h.Get("dynamicdb:ex_length")
	require.True(t, ok)
	n, _ := v.Int()
	assert.Equal(t, 2, n)

	f0, _, _ := h.Get("dynamicdb:ex_0")
	f1, _, _ := h.Get("dynamicdb:ex_1")
	s0, _ := f0.Str()
	s1, _ := f1.Str()
	assert.LessOrEqual(t, len(s0), 10)
	assert.LessOrEqual(t, len(s1), 10)
	assert.Equal(t, `{"a":"hello"}`, s0+s1)
}

func TestRoundTrip(t *testing.T) {
	payload, err := jsonv.Parse(`{
		"player": "Zoë 😀",
		"scores": [1, 2.5, -3, 1e21],
		"flags": {"pvp": true, "hardcore": false, "note": null},
		"long": "` + strings.Repeat("日本語 ", 40) + `"
	}`)
	require.NoError(t, err)

	for _, maxBytes := range []int{1, 3, 7, 64, slot.DefaultMaxSlotBytes} {
		t.Run(fmt.Sprintf("max=%d", maxBytes), func(t *testing.T) {
			h := newHost(t)
			s := mustOpen(t, "rt", h, WithMaxSlotBytes(maxBytes))
			for k, v := range payload.(*jsonv.Object).All() {
				s.Set(k, v)
			}
			_, err := s.Save()
			require.NoError(t, err)

			loaded := mustOpen(t, "rt", h, WithMaxSlotBytes(maxBytes))
			assert.Equal(t, s.Keys(), loaded.Keys())
			assert.True(t, jsonv.Equal(payload, mustParse(t, loaded.String())))
		})
	}
}

func mustParse(t *testing.T, text string) jsonv.Value {
	t.Helper()
	v, err := jsonv.Parse(text)
	require.NoError(t, err)
	return v
}

func TestSaveIdempotent(t *testing.T) {
	h := newHost(t)
	s := mustOpen(t, "idem", h, WithMaxSlotBytes(8))
	s.Set("k", jsonv.String(strings.Repeat("x", 50)))

	_, err := s.Save()
	require.NoError(t, err)
	first := snapshot(h)

	_, err = s.Save()
	require.NoError(t, err)
	assert.Equal(t, first, snapshot(h))
}

func TestSaveRemovesStaleSlots(t *testing.T) {
	h := newHost(t)
	s := mustOpen(t, "shrink", h, WithMaxSlotBytes(10))
	s.Set("big", jsonv.String(strings.Repeat("y", 95)))
	_, err := s.Save()
	require.NoError(t, err)
	assert.Equal(t, 12, h.Len()) // 11 fragments + length

	s.Delete("big")
	s.Set("s", jsonv.Number(1))
	_, err = s.Save()
	require.NoError(t, err)

	// {"s":1} fits into one fragment
	assert.Equal(t, []string{"dynamicdb:shrink_0", "dynamicdb:shrink_length"}, h.Names())

	info, err := s.Slots()
	require.NoError(t, err)
	assert.True(t, info.Present)
	assert.Equal(t, 1, info.Count)
	assert.Equal(t, []int{7}, info.Sizes)
}

func TestDeletedKeyIsGone(t *testing.T) {
	h := newHost(t)
	s := mustOpen(t, "del", h)
	s.Set("a", jsonv.Number(1))
	s.Set("b", jsonv.Number(2))
	s.Delete("a")
	s.Set("c", nil)

	assert.False(t, s.Has("a"))
	assert.False(t, s.Has("c"))
	assert.Equal(t, `{"b":2}`, s.String())

	_, err := s.Save()
	require.NoError(t, err)

	loaded := mustOpen(t, "del", h)
	assert.Equal(t, []string{"b"}, loaded.Keys())
}

func TestInsertionOrder(t *testing.T) {
	s := mustOpen(t, "order", newHost(t))
	s.Set("z", jsonv.Number(1))
	s.Set("a", jsonv.Number(2))
	require.NoError(t, s.SetAny("m", map[string]any{"x": 1}))
	s.Set("z", jsonv.Number(3))

	assert.Equal(t, []string{"z", "a", "m"}, s.Keys())
	assert.Equal(t, []jsonv.Value{jsonv.Number(3), jsonv.Number(2), s.Values()[2]}, s.Values())

	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Key: "z", Value: jsonv.Number(3)}, entries[0])

	var keys []string
	s.Range(func(key string, _ jsonv.Value) bool {
		keys = append(keys, key)
		return len(keys) < 2
	})
	assert.Equal(t, []string{"z", "a"}, keys)

	assert.ErrorIs(t, s.SetAny("bad", make(chan int)), ErrInvalidValue)
}

func TestExistsAndDelete(t *testing.T) {
	h := &countingHost{Host: newHost(t)}

	ok, err := Exists("rec", h)
	require.NoError(t, err)
	assert.False(t, ok)

	deleted, err := Delete("rec", h)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, h.sets)
	assert.Zero(t, h.deletes)

	s := mustOpen(t, "rec", h, WithMaxSlotBytes(4))
	s.Set("key", jsonv.String("value"))
	_, err = s.Save()
	require.NoError(t, err)

	ok, err = Exists("rec", h)
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err = Delete("rec", h)
	require.NoError(t, err)
	assert.True(t, deleted)

	ok, _ = Exists("rec", h)
	assert.False(t, ok)
	assert.Equal(t, 0, h.Host.(*memhost.Host).Len())
}

func TestExistsIgnoresContent(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.Set("dynamicdb:broken_length", slot.Number(3)))

	ok, err := Exists("broken", h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCorrupted(t *testing.T) {
	tests := []struct {
		name  string
		slots map[string]slot.Value
	}{
		{"length not a number", map[string]slot.Value{
			"dynamicdb:c_length": slot.String("2"),
		}},
		{"length negative", map[string]slot.Value{
			"dynamicdb:c_length": slot.Number(-1),
		}},
		{"length fractional", map[string]slot.Value{
			"dynamicdb:c_length": slot.Number(1.5),
		}},
		{"missing fragment", map[string]slot.Value{
			"dynamicdb:c_length": slot.Number(2),
			"dynamicdb:c_0":      slot.String(`{"a":`),
		}},
		{"fragment not a string", map[string]slot.Value{
			"dynamicdb:c_length": slot.Number(1),
			"dynamicdb:c_0":      slot.Number(5),
		}},
		{"invalid json", map[string]slot.Value{
			"dynamicdb:c_length": slot.Number(2),
			"dynamicdb:c_0":      slot.String(`{"a":`),
			"dynamicdb:c_1":      slot.String(`1`),
		}},
		{"not an object", map[string]slot.Value{
			"dynamicdb:c_length": slot.Number(1),
			"dynamicdb:c_0":      slot.String(`[1,2]`),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHost(t)
			for name, v := range tt.slots {
				require.NoError(t, h.Set(name, v))
			}
			before := snapshot(h)

			s, err := Open("c", h)
			assert.Nil(t, s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorrupted)
			assert.NotErrorIs(t, err, ErrHost)

			var rsErr *Error
			require.True(t, errors.As(err, &rsErr))
			assert.Equal(t, RetCCorrupted, rsErr.Code)

			// nothing was touched
			assert.Equal(t, before, snapshot(h))

			// a corrupt record can still be deleted
			deleted, err := Delete("c", h)
			require.NoError(t, err)
			assert.True(t, deleted)
			assert.Equal(t, 0, h.Len())
		})
	}
}

func TestZeroLength(t *testing.T) {
	h := newHost(t)
	require.NoError(t, h.Set("dynamicdb:z_length", slot.Number(0)))

	s := mustOpen(t, "z", h)
	assert.Equal(t, 0, s.Size())
}

func TestTooManySlots(t *testing.T) {
	mem := newHost(t)
	h := &countingHost{Host: mem}

	s := mustOpen(t, "big", h, WithMaxSlotBytes(4), WithMaxSlots(3))
	s.Set("k", jsonv.String("v"))
	_, err := s.Save()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManySlots)

	// nothing reached the host
	assert.Zero(t, h.sets)
	assert.Zero(t, h.deletes)
	assert.Equal(t, 0, mem.Len())
}

func TestTooManySlotsFromHost(t *testing.T) {
	h := memhost.NewHost(slot.WorldID, &memhost.Options{MaxSlotBytes: 4, MaxSlots: 4})

	s := mustOpen(t, "r", h)
	s.Set("a", jsonv.Number(1)) // {"a":1} = 7 bytes = 2 fragments + length
	_, err := s.Save()
	require.NoError(t, err)

	s.Set("bb", jsonv.Number(22)) // {"a":1,"bb":22} = 15 bytes = 4 fragments + length
	_, err = s.Save()
	assert.ErrorIs(t, err, ErrTooManySlots)

	// the previous record is untouched
	loaded := mustOpen(t, "r", h)
	assert.Equal(t, []string{"a"}, loaded.Keys())
}

func TestTooManySlotsOnSharedHost(t *testing.T) {
	h := memhost.NewHost(slot.WorldID, &memhost.Options{MaxSlotBytes: 10, MaxSlots: 5})

	a := mustOpen(t, "a", h)
	a.Set("x", jsonv.String("abcdefghij")) // 18 bytes = 2 fragments + length
	_, err := a.Save()
	require.NoError(t, err)

	b := mustOpen(t, "b", h)
	b.Set("y", jsonv.String("a")) // 9 bytes = 1 fragment + length
	_, err = b.Save()
	require.NoError(t, err)
	require.Equal(t, 5, h.Len())

	// rewriting b in place frees its own slots first
	b.Set("y", jsonv.String("b"))
	_, err = b.Save()
	require.NoError(t, err)

	// a second fragment for b does not fit next to a
	before := snapshot(h)
	b.Set("y", jsonv.String("abcd"))
	_, err = b.Save()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManySlots)
	assert.Equal(t, before, snapshot(h))

	loaded := mustOpen(t, "b", h)
	v, ok := loaded.Get("y")
	require.True(t, ok)
	assert.Equal(t, jsonv.String("b"), v)

	// once a is gone there is room
	deleted, err := Delete("a", h)
	require.NoError(t, err)
	require.True(t, deleted)
	_, err = b.Save()
	require.NoError(t, err)
	assert.Equal(t, `{"y":"abcd"}`, mustOpen(t, "b", h).String())
}

func TestHostLimitsAreDefaults(t *testing.T) {
	h := memhost.NewHost(slot.WorldID, &memhost.Options{MaxSlotBytes: 16})

	s := mustOpen(t, "lim", h)
	s.Set("text", jsonv.String(strings.Repeat("ü", 20)))
	_, err := s.Save()
	require.NoError(t, err)

	info, err := s.Slots()
	require.NoError(t, err)
	for _, size := range info.Sizes {
		assert.LessOrEqual(t, size, 16)
	}
	assert.Equal(t, len(s.String()), info.Bytes)
}

func TestHostFailure(t *testing.T) {
	h := &failingHost{Host: newHost(t), okWrites: 1}

	s := mustOpen(t, "f", h, WithMaxSlotBytes(4))
	s.Set("a", jsonv.String("abcdef"))
	_, err := s.Save()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHost)
	assert.ErrorIs(t, err, errHostDown)
}

func TestClear(t *testing.T) {
	h := newHost(t)
	s := mustOpen(t, "clr", h, WithMaxSlotBytes(5))
	s.Set("a", jsonv.String("some text"))
	_, err := s.Save()
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, 0, h.Len())

	// clearing a store that was never saved is fine
	require.NoError(t, mustOpen(t, "other", h).Clear())

	// the store stays usable
	s.Set("b", jsonv.Bool(true))
	_, err = s.Save()
	require.NoError(t, err)
	loaded := mustOpen(t, "clr", h, WithMaxSlotBytes(5))
	assert.Equal(t, `{"b":true}`, loaded.String())
}

func TestSaveAsync(t *testing.T) {
	h := newHost(t)
	s := mustOpen(t, "async", h)
	s.Set("a", jsonv.Number(1))

	done := s.SaveAsync()

	// later changes do not leak into the pending save
	s.Set("b", jsonv.Number(2))

	res := <-done
	require.NoError(t, res.Err)
	assert.GreaterOrEqual(t, res.Elapsed.Nanoseconds(), int64(0))

	loaded := mustOpen(t, "async", h)
	assert.Equal(t, `{"a":1}`, loaded.String())
}

func TestNamespaces(t *testing.T) {
	h := newHost(t)

	a := mustOpen(t, "rec", h, WithNamespace("one"))
	a.Set("v", jsonv.Number(1))
	_, err := a.Save()
	require.NoError(t, err)

	b := mustOpen(t, "rec", h, WithNamespace("two"))
	assert.Equal(t, 0, b.Size())

	ok, _ := Exists("rec", h, WithNamespace("one"))
	assert.True(t, ok)
	ok, _ = Exists("rec", h)
	assert.False(t, ok)

	assert.Contains(t, h.Names(), "one:rec_length")
}

func TestErrorMessage(t *testing.T) {
	err := NewError(RetCHost, "write length of x", errHostDown)
	assert.Equal(t, "RecordStoreError (code Host): write length of x: host down", err.Error())
	assert.True(t, errors.Is(err, ErrHost))
	assert.False(t, errors.Is(err, ErrCorrupted))
}
