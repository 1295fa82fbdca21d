package base

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection represents a single net connection
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{} // Close signal for the reader goroutine
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // Protects the connection itself
	parent       *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex atomic.Uint64 // Round Robin counter
	nextRequestID atomic.Uint64 // Unique request IDs
	stopping      atomic.Bool   // Signals shutdown
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Close all existing connections
	t.closeConnections()

	t.config = config
	t.stopping.Store(false)

	connectionsPerEP := max(config.ConnectionsPerEndpoint, 1)
	connections := make([]*clientConnection, 0, len(config.Endpoints)*connectionsPerEP)

	for _, endpoint := range config.Endpoints {
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint:     endpoint,
				stopCh:       make(chan struct{}),
				requestChans: xsync.NewMapOf[uint64, chan responseResult](),
				parent:       t,
			}

			// Establish the initial connection using reconnect
			if err := clientConn.reconnect(); err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, connectionsPerEP, err)
				continue
			}
			connections = append(connections, clientConn)
			Logger.Debugf("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)

			// Start the response reader
			go clientConn.readResponses()
		}
	}

	// Check if we have at least one connection
	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	Logger.Infof("Connected to %d out of %d connections to %d endpoints using %s transport",
		len(connections), len(config.Endpoints)*connectionsPerEP, len(config.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(hostID string, req []byte) (resp []byte, err error) {
	// Retry logic with exponential backoff
	var lastErr error

	// We always try at least once
	maxRetries := max(t.config.RetryCount, 1)

	// Initial backoff duration in milliseconds
	backoffMs := 50

	for i := 0; i < maxRetries; i++ {
		if t.stopping.Load() {
			return nil, fmt.Errorf("transport is closed")
		}

		conn := t.getNextConnection()
		if conn == nil {
			return nil, fmt.Errorf("no active connections available")
		}

		// Every attempt gets its own id, a late answer to an earlier attempt is dropped
		data, err := conn.send(hostID, t.nextRequestID.Add(1), req)
		if err == nil {
			return data, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d failed: %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	// All attempts failed
	return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, lastErr)
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	switch len(t.connections) {
	case 0:
		return nil
	case 1:
		return t.connections[0]
	default:
		return t.connections[t.nextConnIndex.Add(1)%uint64(len(t.connections))]
	}
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, c := range t.connections {
		// Signal reader goroutine to stop
		close(c.stopCh)

		c.connMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.connMu.Unlock()
	}

	t.connections = nil
}

// timeout returns the configured request timeout (0 = none)
func (t *clientTransport) timeout() time.Duration {
	return time.Duration(t.config.TimeoutSecond) * time.Second
}

// send writes one request frame and waits for the matching response
func (c *clientConnection) send(hostID string, requestID uint64, req []byte) ([]byte, error) {
	timeout := c.parent.timeout()

	// Register the request before writing, the answer may come back fast
	respCh := make(chan responseResult, 1)
	c.requestChans.Store(requestID, respCh)
	defer c.requestChans.Delete(requestID)

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		return nil, fmt.Errorf("connection to %s is closed", c.endpoint)
	}
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	err := writeFrame(c.conn, hostID, requestID, req)
	c.connMu.Unlock()
	if err != nil {
		return nil, err
	}

	// Wait for response or timeout
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case result := <-respCh:
		return result.data, result.err
	case <-timeoutCh:
		return nil, fmt.Errorf("request timed out")
	case <-c.stopCh:
		return nil, fmt.Errorf("connection to %s is closed", c.endpoint)
	}
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses() {
	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		// Read the response frame
		hostID, requestID, data, err := readFrame(conn, nil)

		if err != nil {
			select {
			case <-c.stopCh:
				return
			default:
			}

			// The stream is broken, fail everything in flight on this connection
			c.failPending(fmt.Errorf("error reading response: %w", err))

			Logger.Warningf("Connection to %s lost: %v", c.endpoint, err)
			if err := c.reconnect(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
				return
			}
			continue
		}

		// Find the corresponding request channel
		if respCh, found := c.requestChans.Load(requestID); found {
			respCh <- responseResult{data, nil}
		} else {
			Logger.Warningf("Received response for unknown request ID %d of host %q", requestID, hostID)
		}
	}
}

// failPending sends err to every request waiting on this connection
func (c *clientConnection) failPending(err error) {
	c.requestChans.Range(func(id uint64, ch chan responseResult) bool {
		select {
		case ch <- responseResult{nil, err}:
		default:
		}
		return true
	})
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Close the old connection if it exists
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	// Connect to the endpoint
	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", c.endpoint, err)
	}

	c.conn = conn
	return nil
}
