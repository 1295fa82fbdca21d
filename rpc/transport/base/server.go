package base

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the core server transport functionality
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	config            common.ServerConfig
	listener          net.Listener
	listenerMu        sync.Mutex
	conns             *xsync.MapOf[net.Conn, struct{}]
	closed            atomic.Bool
	bufferPool        *sync.Pool
	bufferSize        int
	maxWorkersPerConn int
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with per-connection worker pool
func NewBaseServerTransport(connector IServerConnector, bufferSize int, maxWorkersPerConn int) transport.IRPCServerTransport {
	// minimum one worker per connection
	maxWorkersPerConn = max(maxWorkersPerConn, 1)

	return &serverTransport{
		connector:         connector,
		conns:             xsync.NewMapOf[net.Conn, struct{}](),
		bufferSize:        bufferSize,
		maxWorkersPerConn: maxWorkersPerConn,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	t.listenerMu.Lock()
	t.listener = listener
	t.listenerMu.Unlock()

	// Close may have run before the listener existed
	if t.closed.Load() {
		_ = listener.Close()
		return nil
	}

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), config.Endpoint, t.maxWorkersPerConn)

	// Accept connections
	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, config); err != nil {
			Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
		}

		// Handle the connection in a goroutine
		t.conns.Store(conn, struct{}{})
		go t.handleConnection(conn)
	}
}

func (t *serverTransport) Close() error {
	t.closed.Store(true)

	t.listenerMu.Lock()
	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}
	t.listenerMu.Unlock()

	t.conns.Range(func(conn net.Conn, _ struct{}) bool {
		_ = conn.Close()
		return true
	})

	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection handles incoming requests for one connection
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer func() {
		t.conns.Delete(conn)
		_ = conn.Close()
	}()

	// Timeout in seconds
	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// Counting semaphore limiting concurrent workers for this connection
	workerSemaphore := make(chan struct{}, t.maxWorkersPerConn)

	// Create a wait group to wait for all workers to finish
	var wg sync.WaitGroup

	// Create a mutex to protect writes to the connection
	var connMutex sync.Mutex

	// Handler function that processes requests in worker goroutines
	handleResponse := func(hostID string, requestID uint64, data []byte) {
		// Process the request
		start := time.Now()
		resp := t.handler(hostID, data)
		Logger.Debugf("Processed request %d for host %q took %s", requestID, hostID, time.Since(start))

		// Protect writes to the connection with a mutex
		connMutex.Lock()
		defer connMutex.Unlock()

		if timeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Errorf("Failed to set write deadline: %v", err)
				return
			}
		}

		// Write the response with the same requestID
		if err := writeFrame(conn, hostID, requestID, resp); err != nil {
			Logger.Errorf("Failed to write response: %v", err)
		}
	}

	// Function to handle incoming requests
	handleRequest := func() error {
		// Get a buffer from the pool
		buf := t.bufferPool.Get().([]byte)

		// Read the frame with requestID
		hostID, requestID, data, err := readFrame(conn, buf)
		if err != nil {
			t.bufferPool.Put(buf)
			return err
		}

		// Acquire a slot in the semaphore (blocks if maxWorkersPerConn is reached)
		workerSemaphore <- struct{}{}
		wg.Add(1)

		go func() {
			defer func() {
				<-workerSemaphore
				t.bufferPool.Put(buf)
				wg.Done()
			}()
			handleResponse(hostID, requestID, data)
		}()

		return nil
	}

	// Handle requests in a loop
	for {
		err := handleRequest()

		// Case EOF: Connection closed by client
		if errors.Is(err, io.EOF) {
			Logger.Debugf("Connection closed by client")
			break
		}

		// Case error: log and close connection
		if err != nil {
			if !t.closed.Load() {
				Logger.Errorf("Error handling request: %v", err)
			}
			break
		}
	}

	// Wait for all workers to finish before closing the connection
	wg.Wait()
}
