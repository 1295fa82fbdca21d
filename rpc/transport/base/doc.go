// Package base implements the stream transport shared by the tcp and unix
// transports. Protocol specific details (dialing, listening, socket options)
// are injected through connectors.
//
// Frame format (big endian):
//
//	request id u64 | payload length u32 | host id length u16 | host id | payload
//
// Responses echo the request id and host id of their request, so a single
// connection carries any number of requests in flight.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - clientTransport: Manages several connections per endpoint with round-robin
//     selection. Retries failed requests with exponential backoff and reconnects
//     broken connections.
//
//   - serverTransport: Accepts connections and hands requests to the registered
//     handler. Each connection runs a bounded number of workers, read buffers come
//     from a sync.Pool.
//
// Thread Safety:
//
//	All public methods are thread-safe. The server creates a dedicated goroutine
//	for each connection.
package base
