// Package server implements the RPC server of dynDB. It exposes the host objects
// of a slot.Provider over any transport, so that several processes can share the
// slots of one backend.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters, with
//     the Handle method running a request against a slot.Host.
//
//   - NewHostServerAdapter: Adapter translating slot requests (get, set, delete,
//     limits) into slot.Host method calls.
//
//   - RPCServer: Decodes requests, routes them to the addressed host object (or to
//     the provider for the empty host id) and records request metrics.
//
// Usage Example:
//
//	provider := memhost.NewProvider(nil)
//	s := server.NewRPCServer(config, tcp.NewTCPDefaultServerTransport(4),
//		serializer.NewBinarySerializer(), provider)
//	go func() { _ = s.Serve() }()
//	// ...
//	_ = s.Close()
//	_ = provider.Close()
package server
