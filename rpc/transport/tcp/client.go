package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/ValentinKolb/dynDB/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.DialTimeout("tcp", endpoint, 5*time.Second)
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, _ common.ClientConfig) error {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		// slot requests are tiny, never wait for more data
		return tcpConn.SetNoDelay(true)
	}
	return nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
