// Package transport defines the contract between the RPC server and client and
// the medium carrying their messages. Implementations live in the subpackages:
// http, tcp and unix (the latter two built on base).
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and hands them to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks. Every request
//     names the host object it addresses, the empty id addresses the provider.
package transport
