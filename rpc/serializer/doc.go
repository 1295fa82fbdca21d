// Package serializer turns RPC messages into bytes and back. It defines a common
// interface and three implementations that client and server agree on by name.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format. A flag byte records which fields
//     are present and only those are written, so a slot read costs a few bytes of
//     overhead on top of the slot name.
//
//   - jsonSerializerImpl: JSON encoding via goccy/go-json. Human readable, handy
//     when poking at the http transport with curl.
//
//   - gobSerializerImpl: Go's gob encoding. Larger and slower than the others, kept
//     for compatibility with Go only tooling.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	serializer, _ := serializer.FromName("binary")
//	data, err := serializer.Serialize(*common.NewGetRequest("dynamicdb:world_length"))
//	// ... send data ...
//	var resp common.Message
//	err = serializer.Deserialize(respData, &resp)
package serializer
