package transport

import (
	"github.com/ValentinKolb/dynDB/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes the id of the addressed host object and a request and returns a response.
// Requests addressing the provider itself carry an empty host id.
type ServerHandleFunc func(hostID string, req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer
// It must accept a ServerConfig as a parameter
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and blocks while serving requests.
	// It returns nil once Close was called.
	Listen(config common.ServerConfig) error
	// Close stops listening and drops open connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request for a host object to the server and returns the response
	Send(hostID string, req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
