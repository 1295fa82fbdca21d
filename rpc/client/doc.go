// Package client implements the RPC client of dynDB: a slot.Provider whose host
// objects live on a remote dyndb server. Record stores opened on these hosts work
// exactly like stores on local hosts.
//
// Key Components:
//
//   - NewRPCProvider: Connects a transport and returns the remote provider. Every
//     slot operation becomes one request to the server.
//
//   - rpcHost: The remote host object. It implements slot.Limits by asking the
//     server once for the limits of the backend. The used slot count is asked for
//     on every call.
//
// Errors returned by the server keep their identity where a slot error exists,
// so errors.Is(err, slot.ErrValueTooLarge) works across the wire.
//
// Usage Example:
//
//	config := common.ClientConfig{
//		Endpoints:     []string{"localhost:8080"},
//		TimeoutSecond: 5,
//		RetryCount:    3,
//	}
//	provider, err := client.NewRPCProvider(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//		return err
//	}
//	defer provider.Close()
//
//	world, _ := provider.Host(slot.WorldID)
//	store, err := recordstore.Open("settings", world)
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
