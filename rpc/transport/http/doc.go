// Package http implements the HTTP transport of the RPC system. Every request is a
// POST whose path names the addressed host object ("/" addresses the provider);
// body and response are serialized messages.
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. Spreads requests over
//     all endpoints round-robin and retries failed requests on the next endpoint.
//
//   - httpServerTransport: Implements IRPCServerTransport. Besides the RPC routes it
//     serves GET /metrics in the prometheus text format.
//
// Thread Safety:
//
//	The client transport is safe for concurrent use after Connect returned.
package http
