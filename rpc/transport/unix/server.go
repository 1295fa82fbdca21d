package unix

import (
	"fmt"
	"net"
	"os"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/ValentinKolb/dynDB/rpc/transport/base"
)

const (
	defaultBufferSize = 64 * 1024 // 64 KB
)

// serverConnector implements the IServerConnector interface for Unix sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	socketPath := config.Endpoint

	// Remove existing socket file if it exists
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Unix socket: %w", err)
	}

	return listener, nil
}

func (c *serverConnector) UpgradeConnection(net.Conn, common.ServerConfig) error {
	return nil
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixDefaultServerTransport creates a new Unix server transport with default buffer size
func NewUnixDefaultServerTransport(workersPerConn int) transport.IRPCServerTransport {
	return NewUnixServerTransport(defaultBufferSize, workersPerConn)
}

// NewUnixServerTransport creates a new Unix server transport with specified buffer size
func NewUnixServerTransport(bufferSize int, workersPerConn int) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize, workersPerConn)
}
