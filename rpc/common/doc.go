// Package common provides the data structures shared by the RPC server, the RPC
// client and the transports.
//
// The package focuses on:
//   - Message protocol definition for slot operations on remote host objects
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with the dragonboat logger facade
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. A request names a
//     slot (Get, Set, Delete) or asks the provider (Hosts, Limits). Responses carry
//     the slot value, the host list or the limits plus an error string.
//
//   - ServerConfig / ClientConfig: Backend, limits and transport settings of a
//     server and connection settings of a client.
//
//   - Logger: A logger.ILogger implementation writing "LEVEL | package | message"
//     lines. InitLoggers installs it and sets the level of all application loggers.
package common
