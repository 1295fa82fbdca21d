// Package tcp implements the TCP socket transport of the RPC system on top of
// the base package. It adds dialing, listening and the socket options of the
// server configuration (no delay, keep alive, buffer sizes).
//
// The default server buffer size is 512 KB, large enough for a full slot
// fragment and its framing.
package tcp
