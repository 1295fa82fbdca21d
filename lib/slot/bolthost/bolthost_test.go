package bolthost

import (
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/dynDB/lib/slot"
	slottesting "github.com/ValentinKolb/dynDB/lib/slot/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() *Options {
	opts := DefaultOptions()
	opts.IsTesting = true
	return opts
}

func newProvider(t testing.TB) slot.Provider {
	p, err := Open(filepath.Join(t.TempDir(), "hosts.db"), testOptions())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return p
}

func Test(t *testing.T) {
	slottesting.RunHostTests(t, "BoltHost", newProvider)
}

func Benchmark(b *testing.B) {
	slottesting.RunHostBenchmarks(b, "BoltHost", newProvider)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts.db")

	p, err := Open(path, testOptions())
	require.NoError(t, err)
	h, err := p.Host("entity-7")
	require.NoError(t, err)
	require.NoError(t, h.Set("dynamicdb:inv_length", slot.Number(2)))
	require.NoError(t, h.Set("dynamicdb:inv_0", slot.String(`{"sword":`)))
	require.NoError(t, p.Close())

	p, err = Open(path, testOptions())
	require.NoError(t, err)
	defer p.Close()

	ids, err := p.Hosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"entity-7"}, ids)

	h, err = p.Host("entity-7")
	require.NoError(t, err)
	v, ok, err := h.Get("dynamicdb:inv_length")
	require.NoError(t, err)
	require.True(t, ok)
	n, ok := v.Int()
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	v, _, _ = h.Get("dynamicdb:inv_0")
	s, _ := v.Str()
	assert.Equal(t, `{"sword":`, s)
}

func TestGetOnUnknownHost(t *testing.T) {
	p := newProvider(t)
	defer p.Close()

	h, err := p.Host("never-written")
	require.NoError(t, err)
	_, ok, err := h.Get("anything")
	assert.NoError(t, err)
	assert.False(t, ok)

	// reading does not create the bucket
	ids, err := p.Hosts()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestClosed(t *testing.T) {
	p := newProvider(t)
	h, err := p.Host(slot.WorldID)
	require.NoError(t, err)
	require.NoError(t, p.Close())

	assert.ErrorIs(t, h.Set("a", slot.Number(1)), slot.ErrClosed)
	_, _, err = h.Get("a")
	assert.ErrorIs(t, err, slot.ErrClosed)
}
