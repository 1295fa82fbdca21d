// Package unix implements the Unix domain socket transport of the RPC system on
// top of the base package. It is the fastest option when server and clients share
// a machine. Listen removes a stale socket file before binding.
package unix
