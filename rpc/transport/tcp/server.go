package tcp

import (
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/ValentinKolb/dynDB/rpc/transport/base"
)

const (
	defaultBufferSize = 512 * 1024 // 512 KB
)

// serverConnector implements the IServerConnector interface for TCP sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %w", err)
	}
	return listener, nil
}

// UpgradeConnection applies the socket options of the config to a TCP connection
func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm if configured
	if err := tcpConn.SetNoDelay(config.TCPNoDelay); err != nil {
		return err
	}

	if config.SocketWriteBuffer > 0 {
		if err := tcpConn.SetWriteBuffer(config.SocketWriteBuffer); err != nil {
			return err
		}
	}

	if config.SocketReadBuffer > 0 {
		if err := tcpConn.SetReadBuffer(config.SocketReadBuffer); err != nil {
			return err
		}
	}

	if config.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(config.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPDefaultServerTransport creates a new TCP server transport with default buffer size
func NewTCPDefaultServerTransport(workersPerConn int) transport.IRPCServerTransport {
	return NewTCPServerTransport(defaultBufferSize, workersPerConn)
}

// NewTCPServerTransport creates a new TCP server transport with specified buffer size
func NewTCPServerTransport(bufferSize int, workersPerConn int) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize, workersPerConn)
}
