package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type BackendType string

const (
	BackendMemory BackendType = "memory" // in-memory hosts, snapshot file on shutdown
	BackendBolt   BackendType = "bolt"   // bbolt file, every slot write is durable
)

// ServerConfig holds all configuration parameters of a dyndb server.
type ServerConfig struct {
	// Storage backend serving the host objects
	Backend             BackendType
	DataPath            string // snapshot file (memory) or database file (bolt)
	SnapshotIntervalSec int    // memory only, 0 = snapshot on shutdown only

	// Host limits
	MaxSlotBytes int
	MaxSlots     int

	// Transport settings
	Endpoint          string
	TimeoutSecond     int64
	WorkersPerConn    int
	BufferSize        int
	TCPNoDelay        bool
	TCPKeepAliveSec   int
	SocketReadBuffer  int
	SocketWriteBuffer int

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers per Connection", strconv.Itoa(c.WorkersPerConn))

	// Storage
	addSection("Storage")
	addField("Backend", string(c.Backend))
	addField("Data Path", c.DataPath)
	if c.Backend == BackendMemory {
		addField("Snapshot Interval", fmt.Sprintf("%d sec", c.SnapshotIntervalSec))
	}

	// Host limits
	addSection("Host Limits")
	addField("Max Slot Bytes", limitString(c.MaxSlotBytes))
	addField("Max Slots", limitString(c.MaxSlots))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

func limitString(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(n)
}
