package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cmdUtil "github.com/ValentinKolb/dynDB/cmd/util"
	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start the dyndb server",
		Long: `Start the dyndb server. It serves the host objects of a local backend to remote clients.
The configuration can be set via command line flags or environment variables. The format of the environment variables is DYNDB_<flag> (e.g. DYNDB_MAX_SLOT_BYTES=1024)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "backend"
	ServeCmd.PersistentFlags().String(key, "memory", cmdUtil.WrapString("Storage of the served host objects: memory (snapshot file) or bolt (database file)"))

	key = "data"
	ServeCmd.PersistentFlags().String(key, "dyndb.snap", cmdUtil.WrapString("Snapshot file (memory) or database file (bolt). Empty disables persistence of the memory backend"))

	key = "snapshot-interval"
	ServeCmd.PersistentFlags().Int(key, 60, cmdUtil.WrapString("(memory backend) Seconds between snapshots, 0 writes a snapshot on shutdown only"))

	key = "max-slot-bytes"
	ServeCmd.PersistentFlags().Int(key, slot.DefaultMaxSlotBytes, cmdUtil.WrapString("Largest string per slot in bytes (0 = unlimited)"))

	key = "max-slots"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("(memory backend) Largest number of slots per host (0 = unlimited)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for reading and writing socket frames"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/dyndb.sock, ...)"))

	key = "workers"
	ServeCmd.PersistentFlags().Int(key, 8, cmdUtil.WrapString("Concurrent requests per connection (tcp and unix only)"))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Read buffer size in KB per request (tcp and unix only, 0 = transport default)"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY (tcp only)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds (tcp only, 0 = off)"))

	key = "socket-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Size of the kernel read and write buffers in KB (tcp only, 0 = system default)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Backend = common.BackendType(viper.GetString("backend"))
	serveCmdConfig.DataPath = viper.GetString("data")
	serveCmdConfig.SnapshotIntervalSec = viper.GetInt("snapshot-interval")
	serveCmdConfig.MaxSlotBytes = viper.GetInt("max-slot-bytes")
	serveCmdConfig.MaxSlots = viper.GetInt("max-slots")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.WorkersPerConn = viper.GetInt("workers")
	serveCmdConfig.BufferSize = viper.GetInt("buffer-size") * 1024
	serveCmdConfig.TCPNoDelay = viper.GetBool("tcp-nodelay")
	serveCmdConfig.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	serveCmdConfig.SocketReadBuffer = viper.GetInt("socket-buffer") * 1024
	serveCmdConfig.SocketWriteBuffer = serveCmdConfig.SocketReadBuffer
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	switch serveCmdConfig.Backend {
	case common.BackendMemory:
	case common.BackendBolt:
		if serveCmdConfig.DataPath == "" {
			return fmt.Errorf("the bolt backend needs a data file")
		}
	default:
		return fmt.Errorf("invalid backend: %s (expected one of: memory, bolt)", serveCmdConfig.Backend)
	}

	return nil
}

// run starts the dyndb server
func run(_ *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport(*serveCmdConfig)
	if err != nil {
		return err
	}

	backend, err := cmdUtil.OpenBackend(
		serveCmdConfig.Backend,
		serveCmdConfig.DataPath,
		serveCmdConfig.MaxSlotBytes,
		serveCmdConfig.MaxSlots,
	)
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(*serveCmdConfig, t, s, backend)
	cmdUtil.Logger.Infof("%s", serveCmdConfig.String())

	// stop the transport on SIGINT / SIGTERM, the backend is closed below
	stop := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		select {
		case received := <-sig:
			cmdUtil.Logger.Infof("received %s, shutting down", received)
			if err := serv.Close(); err != nil {
				cmdUtil.Logger.Errorf("failed to stop transport: %v", err)
			}
		case <-stop:
		}
	}()

	// periodic snapshots of the memory backend
	if serveCmdConfig.Backend == common.BackendMemory && serveCmdConfig.SnapshotIntervalSec > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(serveCmdConfig.SnapshotIntervalSec) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := backend.Snapshot(); err != nil {
						cmdUtil.Logger.Errorf("periodic snapshot failed: %v", err)
					}
				case <-stop:
					return
				}
			}
		}()
	}

	serveErr := serv.Serve()
	close(stop)

	if err := backend.Close(); err != nil {
		cmdUtil.Logger.Errorf("failed to close backend: %v", err)
		if serveErr == nil {
			serveErr = err
		}
	}
	cmdUtil.Logger.Infof("dyndb server stopped")
	return serveErr
}
