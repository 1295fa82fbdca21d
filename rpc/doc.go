// Package rpc shares host objects across processes. A dyndb server exposes the
// slots of its backend, clients use them through a slot.Provider.
//
// The package is organized into several subpackages:
//
//   - common: The Message protocol, configuration structures and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB).
//
//   - client: The remote slot.Provider.
//
//   - server: Routes incoming requests to the host objects of a local provider.
package rpc
