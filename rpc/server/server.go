package server

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/serializer"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

var requestErrors = metrics.NewCounter(`dyndb_rpc_request_errors_total`)

// NewRPCServer creates a new RPC server serving the host objects of provider
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//		memhost.NewProvider(nil),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	provider slot.Provider,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Debugf(config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		provider:   provider,
		adapter:    NewHostServerAdapter(),
		hosts:      xsync.NewMapOf[string, slot.Host](),
	}
}

// RPCServer routes requests arriving on a transport to the host objects of a provider
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	provider   slot.Provider
	adapter    IRPCServerAdapter
	hosts      *xsync.MapOf[string, slot.Host] // host handles by id
}

// Serve registers the request handler and starts the transport layer.
// It blocks until the transport stops.
func (s *RPCServer) Serve() error {
	s.transport.RegisterHandler(s.handle)
	Logger.Infof("dynDB server ready (pid %d)", os.Getpid())
	return s.transport.Listen(s.config)
}

// Close stops the transport. The provider stays open, it belongs to the caller.
func (s *RPCServer) Close() error {
	return s.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handle decodes a request, runs it and encodes the response
func (s *RPCServer) handle(hostID string, req []byte) []byte {
	start := time.Now()

	var msg common.Message
	var respMsg *common.Message

	if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else if hostID == "" {
		respMsg = s.handleProvider(&msg)
	} else if host, err := s.host(hostID); err != nil {
		respMsg = common.NewErrorResponse(err.Error())
	} else {
		respMsg = s.adapter.Handle(&msg, host)
	}

	if respMsg.Err != "" {
		requestErrors.Inc()
		Logger.Debugf("request %s for host %q failed: %s", msg.MsgType, hostID, respMsg.Err)
	}

	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		requestErrors.Inc()
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(
			fmt.Sprintf("failed to serialize response: %s", err),
		))
	}

	metrics.GetOrCreateHistogram(
		fmt.Sprintf(`dyndb_rpc_request_duration_seconds{type=%q}`, msg.MsgType),
	).UpdateDuration(start)
	return val
}

// handleProvider runs requests addressing the provider itself
func (s *RPCServer) handleProvider(msg *common.Message) *common.Message {
	switch msg.MsgType {
	case common.MsgTHosts:
		ids, err := s.provider.Hosts()
		return common.NewHostsResponse(ids, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC Server - Unsupported provider message type: %s", msg.MsgType),
		)
	}
}

// host returns the cached handle of a host object
func (s *RPCServer) host(id string) (slot.Host, error) {
	if h, ok := s.hosts.Load(id); ok {
		return h, nil
	}
	h, err := s.provider.Host(id)
	if err != nil {
		return nil, err
	}
	h, _ = s.hosts.LoadOrStore(id, h)
	return h, nil
}
