// Package transporttest holds a conformance suite every transport pair must pass.
package transporttest

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler answers with "<host>|<request>"
func echoHandler(hostID string, req []byte) []byte {
	return append([]byte(hostID+"|"), req...)
}

// Start runs the server transport with an echo handler and connects the client
// transport to it. Both are closed when the test ends.
func Start(t *testing.T, server transport.IRPCServerTransport, client transport.IRPCClientTransport,
	serverConfig common.ServerConfig, clientConfig common.ClientConfig) {
	t.Helper()

	server.RegisterHandler(echoHandler)

	done := make(chan error, 1)
	go func() {
		done <- server.Listen(serverConfig)
	}()
	t.Cleanup(func() {
		_ = client.Close()
		require.NoError(t, server.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Errorf("server did not stop")
		}
	})

	// the server listens asynchronously
	require.Eventually(t, func() bool {
		if err := client.Connect(clientConfig); err != nil {
			return false
		}
		_, err := client.Send("", nil)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

// RunTransportTests sends requests through a connected client transport and checks
// that every response reaches the right caller.
func RunTransportTests(t *testing.T, client transport.IRPCClientTransport) {
	t.Run("Send", func(t *testing.T) {
		resp, err := client.Send("world", []byte("ping"))
		require.NoError(t, err)
		assert.Equal(t, "world|ping", string(resp))
	})

	t.Run("ProviderRequest", func(t *testing.T) {
		resp, err := client.Send("", []byte("hosts"))
		require.NoError(t, err)
		assert.Equal(t, "|hosts", string(resp))
	})

	t.Run("LargePayload", func(t *testing.T) {
		payload := bytes.Repeat([]byte("€"), 40000)
		resp, err := client.Send("big", payload)
		require.NoError(t, err)
		assert.Equal(t, append([]byte("big|"), payload...), resp)
	})

	t.Run("Concurrent", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				host := fmt.Sprintf("host-%d", i)
				for j := 0; j < 20; j++ {
					req := fmt.Sprintf("req-%d", j)
					resp, err := client.Send(host, []byte(req))
					if assert.NoError(t, err) {
						assert.Equal(t, host+"|"+req, string(resp))
					}
				}
			}(i)
		}
		wg.Wait()
	})
}

// --------------------------------------------------------------------------
// Loopback Transport
// --------------------------------------------------------------------------

// NewLoopback returns a connected server and client transport pair that hands
// requests to the server handler in process, without any network in between.
func NewLoopback() (transport.IRPCServerTransport, transport.IRPCClientTransport) {
	lb := &loopback{stop: make(chan struct{})}
	return &loopbackServer{lb}, &loopbackClient{lb}
}

type loopback struct {
	mu        sync.RWMutex
	handler   transport.ServerHandleFunc
	listening bool
	stop      chan struct{}
	stopOnce  sync.Once
}

type loopbackServer struct{ *loopback }

func (s *loopbackServer) RegisterHandler(handler transport.ServerHandleFunc) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

func (s *loopbackServer) Listen(common.ServerConfig) error {
	s.mu.Lock()
	s.listening = true
	s.mu.Unlock()
	<-s.stop
	return nil
}

func (s *loopbackServer) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

type loopbackClient struct{ *loopback }

func (c *loopbackClient) Connect(common.ClientConfig) error {
	return nil
}

func (c *loopbackClient) Send(hostID string, req []byte) ([]byte, error) {
	c.mu.RLock()
	handler, listening := c.handler, c.listening
	c.mu.RUnlock()
	if !listening || handler == nil {
		return nil, fmt.Errorf("loopback server is not listening")
	}
	// the server must not keep the caller's buffer
	return handler(hostID, bytes.Clone(req)), nil
}

func (c *loopbackClient) Close() error {
	return nil
}
