package client

import (
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/dynDB/lib/recordstore"
	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/lib/slot/memhost"
	slottesting "github.com/ValentinKolb/dynDB/lib/slot/testing"
	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/serializer"
	"github.com/ValentinKolb/dynDB/rpc/server"
	"github.com/ValentinKolb/dynDB/rpc/transport/transporttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startRemote serves backend over a loopback transport and returns a connected RPC provider
func startRemote(t testing.TB, backend slot.Provider, s serializer.IRPCSerializer) slot.Provider {
	serverTransport, clientTransport := transporttest.NewLoopback()

	srv := server.NewRPCServer(common.ServerConfig{}, serverTransport, s, backend)
	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	t.Cleanup(func() {
		_ = srv.Close()
		<-done
		_ = backend.Close()
	})

	p, err := NewRPCProvider(common.ClientConfig{Endpoints: []string{"loopback"}}, clientTransport, s)
	require.NoError(t, err)

	// Serve runs asynchronously
	require.Eventually(t, func() bool {
		_, err := p.Hosts()
		return err == nil
	}, 5*time.Second, 5*time.Millisecond)
	return p
}

func TestRPCProvider(t *testing.T) {
	for _, name := range []string{"binary", "json", "gob"} {
		s, _ := serializer.FromName(name)
		slottesting.RunHostTests(t, name, func(t testing.TB) slot.Provider {
			return startRemote(t, memhost.NewProvider(nil), s)
		})
	}
}

func BenchmarkRPCProvider(b *testing.B) {
	slottesting.RunHostBenchmarks(b, "binary", func(t testing.TB) slot.Provider {
		return startRemote(t, memhost.NewProvider(nil), serializer.NewBinarySerializer())
	})
}

func TestRemoteLimits(t *testing.T) {
	backend := memhost.NewProvider(&memhost.Options{MaxSlotBytes: 16, MaxSlots: 3})
	p := startRemote(t, backend, serializer.NewBinarySerializer())

	h, err := p.Host(slot.WorldID)
	require.NoError(t, err)

	limits, ok := h.(slot.Limits)
	require.True(t, ok)
	assert.Equal(t, 16, limits.MaxSlotBytes())
	assert.Equal(t, 3, limits.MaxSlots())

	require.NoError(t, h.Set("a", slot.Number(1)))
	require.NoError(t, h.Set("b", slot.Number(2)))
	require.NoError(t, h.Set("c", slot.Number(3)))
	err = h.Set("d", slot.Number(4))
	assert.True(t, errors.Is(err, slot.ErrTooManySlots), "got %v", err)

	used, err := limits.UsedSlots()
	require.NoError(t, err)
	assert.Equal(t, 3, used)

	require.NoError(t, h.Delete("a"))
	used, err = limits.UsedSlots()
	require.NoError(t, err)
	assert.Equal(t, 2, used)
}

func TestRemoteRecordStore(t *testing.T) {
	backend := memhost.NewProvider(&memhost.Options{MaxSlotBytes: 10})
	p := startRemote(t, backend, serializer.NewJSONSerializer())

	h, err := p.Host(slot.WorldID)
	require.NoError(t, err)

	// the limits of the remote host drive the fragmentation
	store, err := recordstore.Open("settings", h)
	require.NoError(t, err)
	require.NoError(t, store.SetAny("a", "hello"))
	_, err = store.Save()
	require.NoError(t, err)

	local, err := backend.Host(slot.WorldID)
	require.NoError(t, err)
	v, ok, err := local.Get("dynamicdb:settings_length")
	require.NoError(t, err)
	require.True(t, ok)
	n, _ := v.Int()
	assert.Equal(t, 2, n)

	again, err := recordstore.Open("settings", h)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"hello"}`, again.String())
}

func TestHostsOverRPC(t *testing.T) {
	backend := memhost.NewProvider(nil)
	p := startRemote(t, backend, serializer.NewBinarySerializer())

	for _, id := range []string{"b", "a"} {
		h, err := p.Host(id)
		require.NoError(t, err)
		require.NoError(t, h.Set("x", slot.String("y")))
	}

	ids, err := p.Hosts()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	_, err = p.Host("")
	assert.ErrorIs(t, err, slot.ErrInvalidHostID)
}

func TestRemoteError(t *testing.T) {
	err := remoteError("memhost: " + slot.ErrValueTooLarge.Error() + ": slot \"x\"")
	assert.ErrorIs(t, err, slot.ErrValueTooLarge)

	err = remoteError("something else broke")
	assert.Error(t, err)
	for _, sentinel := range remoteErrors {
		assert.NotErrorIs(t, err, sentinel)
	}
}

func TestClosedBackend(t *testing.T) {
	backend := memhost.NewProvider(nil)
	p := startRemote(t, backend, serializer.NewBinarySerializer())
	h, err := p.Host(slot.WorldID)
	require.NoError(t, err)

	require.NoError(t, backend.Close())

	err = h.Set("x", slot.Number(1))
	assert.ErrorIs(t, err, slot.ErrClosed)
}
