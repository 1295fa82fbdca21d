package memhost

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/dynDB/lib/slot"
	slottesting "github.com/ValentinKolb/dynDB/lib/slot/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test(t *testing.T) {
	slottesting.RunHostTests(t, "MemHost", func(testing.TB) slot.Provider {
		return NewProvider(nil)
	})
}

func Benchmark(b *testing.B) {
	slottesting.RunHostBenchmarks(b, "MemHost", func(testing.TB) slot.Provider {
		return NewProvider(nil)
	})
}

func TestSlotLimit(t *testing.T) {
	h := NewHost("limited", &Options{MaxSlots: 2})

	require.NoError(t, h.Set("a", slot.Number(1)))
	require.NoError(t, h.Set("b", slot.Number(2)))

	err := h.Set("c", slot.Number(3))
	assert.True(t, errors.Is(err, slot.ErrTooManySlots), "got %v", err)
	assert.Equal(t, 2, h.Len())

	// overwriting an existing slot is always allowed
	assert.NoError(t, h.Set("a", slot.String("x")))

	// freeing a slot makes room again
	require.NoError(t, h.Delete("b"))
	assert.NoError(t, h.Set("c", slot.Number(3)))
	assert.Equal(t, []string{"a", "c"}, h.Names())
}

func TestClosed(t *testing.T) {
	p := NewProvider(nil)
	h, err := p.Host(slot.WorldID)
	require.NoError(t, err)
	require.NoError(t, p.Close())

	_, _, err = h.Get("a")
	assert.ErrorIs(t, err, slot.ErrClosed)
	assert.ErrorIs(t, h.Set("a", slot.Number(1)), slot.ErrClosed)
	assert.ErrorIs(t, h.Delete("a"), slot.ErrClosed)

	_, err = p.Host("other")
	assert.ErrorIs(t, err, slot.ErrClosed)
	_, err = p.Hosts()
	assert.ErrorIs(t, err, slot.ErrClosed)
}

func populate(t *testing.T, p *Provider) {
	t.Helper()
	world, err := p.Host(slot.WorldID)
	require.NoError(t, err)
	require.NoError(t, world.Set("dynamicdb:scores_length", slot.Number(1)))
	require.NoError(t, world.Set("dynamicdb:scores_0", slot.String(`{"steve":3}`)))

	entity, err := p.Host("entity-42")
	require.NoError(t, err)
	require.NoError(t, entity.Set("dynamicdb:bedrock-identity_0", slot.String(`{"pronouns":"they/them"}`)))
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := NewProvider(nil)
	populate(t, src)

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	// equal content yields equal bytes
	var again bytes.Buffer
	require.NoError(t, src.Save(&again))
	assert.Equal(t, buf.Bytes(), again.Bytes())

	dst := NewProvider(nil)
	stale, err := dst.Host("stale")
	require.NoError(t, err)
	require.NoError(t, stale.Set("old", slot.String("gone after load")))

	require.NoError(t, dst.Load(bytes.NewReader(buf.Bytes())))

	world, _ := dst.Host(slot.WorldID)
	v, ok, err := world.Get("dynamicdb:scores_0")
	require.NoError(t, err)
	require.True(t, ok)
	s, _ := v.Str()
	assert.Equal(t, `{"steve":3}`, s)

	v, _, _ = world.Get("dynamicdb:scores_length")
	n, _ := v.Int()
	assert.Equal(t, 1, n)

	// hosts missing from the snapshot are emptied, handles stay valid
	_, ok, _ = stale.Get("old")
	assert.False(t, ok)
}

func TestSnapshotRejectsGarbage(t *testing.T) {
	p := NewProvider(nil)
	populate(t, p)

	err := p.Load(bytes.NewReader([]byte("NOTASNAPSHOT")))
	assert.Error(t, err)

	// a truncated snapshot leaves the provider unchanged
	var buf bytes.Buffer
	require.NoError(t, p.Save(&buf))
	other := NewProvider(nil)
	populate(t, other)
	world, _ := other.Host(slot.WorldID)
	require.NoError(t, world.Set("extra", slot.Number(9)))

	assert.Error(t, other.Load(bytes.NewReader(buf.Bytes()[:buf.Len()-3])))
	_, ok, _ := world.Get("extra")
	assert.True(t, ok)
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.snap")

	src := NewProvider(nil)
	populate(t, src)
	require.NoError(t, src.SaveFile(path))

	dst := NewProvider(nil)
	require.NoError(t, dst.LoadFile(path))

	ids, err := dst.Hosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"entity-42", slot.WorldID}, ids)

	// a missing file is not an error
	empty := NewProvider(nil)
	assert.NoError(t, empty.LoadFile(filepath.Join(t.TempDir(), "missing.snap")))
}

func TestSnapshotFileFailedSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts.snap")

	src := NewProvider(nil)
	populate(t, src)
	require.NoError(t, src.SaveFile(path))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// a failed save keeps the previous snapshot and leaves nothing behind
	require.NoError(t, src.Close())
	assert.ErrorIs(t, src.SaveFile(path), slot.ErrClosed)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
