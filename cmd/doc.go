// Package cmd implements the command-line interface of dynDB. It provides a
// hierarchical command structure for serving host objects and for working
// with the records stored on them.
//
// The package is organized into several subpackages:
//
//   - serve: Starts a dyndb server for a memory or bolt backend
//   - db: Record operations (get, set, del, dump, slots, perf, ...)
//   - chat: An interactive chat session running the chat commands of a world
//   - util: Shared utilities for flags, configuration and backends (internal use)
//
// See dyndb -help for a list of all commands.
package cmd
