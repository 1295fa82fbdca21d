package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/lib/slot/bolthost"
	"github.com/ValentinKolb/dynDB/lib/slot/memhost"
	"github.com/ValentinKolb/dynDB/rpc/client"
	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/serializer"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/ValentinKolb/dynDB/rpc/transport/http"
	"github.com/ValentinKolb/dynDB/rpc/transport/tcp"
	"github.com/ValentinKolb/dynDB/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cli")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Flags
// --------------------------------------------------------------------------

// SetupBackendFlags adds the flags selecting the host storage of a client command
func SetupBackendFlags(cmd *cobra.Command) {
	key := "backend"
	cmd.PersistentFlags().String(key, "memory", WrapString("Where host objects live: memory (snapshot file), bolt (database file) or remote (a dyndb server)"))

	key = "data"
	cmd.PersistentFlags().String(key, "dyndb.snap", WrapString("Snapshot file (memory) or database file (bolt). Empty disables persistence of the memory backend"))

	key = "max-slot-bytes"
	cmd.PersistentFlags().Int(key, slot.DefaultMaxSlotBytes, WrapString("Largest string per slot in bytes for local backends (0 = unlimited)"))

	key = "max-slots"
	cmd.PersistentFlags().Int(key, 0, WrapString("Largest number of slots per host for the memory backend (0 = unlimited)"))

	SetupRPCClientFlags(cmd)
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "transport-endpoints"
	cmd.PersistentFlags().String(key, "localhost:8080", WrapString("The address of the dyndb server. Multiple endpoints can be specified as a comma-separated list"))

	key = "transport-conn-per-endpoint"
	cmd.PersistentFlags().Int(key, 1, WrapString("Simultaneous connections per endpoint - for transports that support this feature"))

	key = "transport-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry the request"))
}

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// InitConfig loads .env files and maps DYNDB_* environment variables onto flags
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("dyndb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// InitLogging installs the log format with the configured level
func InitLogging() error {
	return common.InitLoggers(viper.GetString("log-level"))
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond:          viper.GetInt("timeout"),
		RetryCount:             viper.GetInt("transport-retries"),
		Endpoints:              strings.Split(viper.GetString("transport-endpoints"), ","),
		ConnectionsPerEndpoint: viper.GetInt("transport-conn-per-endpoint"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	name := viper.GetString("serializer")
	s, ok := serializer.FromName(name)
	if !ok {
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
	return s, nil
}

// GetClientTransport creates the client transport based on configuration
func GetClientTransport() (transport.IRPCClientTransport, error) {
	switch viper.GetString("transport") {
	case "http":
		return http.NewHttpClientTransport(), nil
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetServerTransport creates the server transport based on configuration
func GetServerTransport(config common.ServerConfig) (transport.IRPCServerTransport, error) {
	switch viper.GetString("transport") {
	case "http":
		return http.NewHttpServerTransport(), nil
	case "tcp":
		if config.BufferSize > 0 {
			return tcp.NewTCPServerTransport(config.BufferSize, config.WorkersPerConn), nil
		}
		return tcp.NewTCPDefaultServerTransport(config.WorkersPerConn), nil
	case "unix":
		if config.BufferSize > 0 {
			return unix.NewUnixServerTransport(config.BufferSize, config.WorkersPerConn), nil
		}
		return unix.NewUnixDefaultServerTransport(config.WorkersPerConn), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// --------------------------------------------------------------------------
// Backends
// --------------------------------------------------------------------------

// Backend is an opened slot provider plus what has to happen when it is released
type Backend struct {
	slot.Provider
	snapshotPath string
	mem          *memhost.Provider
}

// Snapshot writes the memory backend to its snapshot file. Other backends persist
// every write already and ignore the call.
func (b *Backend) Snapshot() error {
	if b.mem == nil || b.snapshotPath == "" {
		return nil
	}
	if err := b.mem.SaveFile(b.snapshotPath); err != nil {
		return fmt.Errorf("write snapshot %s: %w", b.snapshotPath, err)
	}
	Logger.Debugf("wrote snapshot %s", b.snapshotPath)
	return nil
}

// Close snapshots the memory backend and closes the provider
func (b *Backend) Close() error {
	snapErr := b.Snapshot()
	if err := b.Provider.Close(); err != nil {
		return err
	}
	return snapErr
}

// OpenBackend opens the provider selected by the backend flags
func OpenBackend(backend common.BackendType, dataPath string, maxSlotBytes, maxSlots int) (*Backend, error) {
	switch backend {
	case common.BackendMemory:
		p := memhost.NewProvider(&memhost.Options{MaxSlotBytes: maxSlotBytes, MaxSlots: maxSlots})
		if dataPath != "" {
			if err := p.LoadFile(dataPath); err != nil {
				return nil, fmt.Errorf("load snapshot %s: %w", dataPath, err)
			}
		}
		return &Backend{Provider: p, snapshotPath: dataPath, mem: p}, nil

	case common.BackendBolt:
		opts := bolthost.DefaultOptions()
		opts.MaxSlotBytes = maxSlotBytes
		p, err := bolthost.Open(dataPath, opts)
		if err != nil {
			return nil, err
		}
		return &Backend{Provider: p}, nil

	case BackendRemote:
		s, err := GetSerializer()
		if err != nil {
			return nil, err
		}
		t, err := GetClientTransport()
		if err != nil {
			return nil, err
		}
		p, err := client.NewRPCProvider(*GetClientConfig(), t, s)
		if err != nil {
			return nil, err
		}
		return &Backend{Provider: p}, nil

	default:
		return nil, fmt.Errorf("invalid backend %s (expected memory, bolt or remote)", backend)
	}
}

// BackendRemote selects a dyndb server as backend of client commands
const BackendRemote common.BackendType = "remote"

// OpenConfiguredBackend opens the backend named by the backend flags
func OpenConfiguredBackend() (*Backend, error) {
	return OpenBackend(
		common.BackendType(viper.GetString("backend")),
		viper.GetString("data"),
		viper.GetInt("max-slot-bytes"),
		viper.GetInt("max-slots"),
	)
}
