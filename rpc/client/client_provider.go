package client

import (
	"sync"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/serializer"
	"github.com/ValentinKolb/dynDB/rpc/transport"
)

// NewRPCProvider creates a slot.Provider whose host objects live on a dyndb server
// The function takes a config, a transport and a serializer as parameters
// It connects the transport and returns the provider or the connection error
func NewRPCProvider(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (slot.Provider, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcProvider{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcProvider struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see slot.Provider)
// --------------------------------------------------------------------------

func (p *rpcProvider) Host(id string) (slot.Host, error) {
	if err := slot.ValidateHostID(id); err != nil {
		return nil, err
	}
	return &rpcHost{adapter: &p.rpcClientAdapter, id: id}, nil
}

func (p *rpcProvider) Hosts() ([]string, error) {
	resp, err := p.invokeRPCRequest("", common.NewHostsRequest())
	if err != nil {
		return nil, err
	}
	return resp.Names, nil
}

func (p *rpcProvider) Close() error {
	return p.transport.Close()
}

// --------------------------------------------------------------------------
// Host
// --------------------------------------------------------------------------

// rpcHost forwards every slot operation to the server.
// The limits are fetched once, on first use.
type rpcHost struct {
	adapter *rpcClientAdapter
	id      string

	limitsOnce sync.Once
	maxBytes   int
	maxSlots   int
}

func (h *rpcHost) ID() string {
	return h.id
}

func (h *rpcHost) Get(name string) (slot.Value, bool, error) {
	resp, err := h.adapter.invokeRPCRequest(h.id, common.NewGetRequest(name))
	if err != nil {
		return slot.Value{}, false, err
	}
	if !resp.Ok {
		return slot.Value{}, false, nil
	}
	v, err := resp.SlotValue()
	if err != nil {
		return slot.Value{}, false, err
	}
	return v, true, nil
}

func (h *rpcHost) Set(name string, value slot.Value) error {
	_, err := h.adapter.invokeRPCRequest(h.id, common.NewSetRequest(name, value))
	return err
}

func (h *rpcHost) Delete(name string) error {
	_, err := h.adapter.invokeRPCRequest(h.id, common.NewDeleteRequest(name))
	return err
}

func (h *rpcHost) MaxSlotBytes() int {
	h.loadLimits()
	return h.maxBytes
}

func (h *rpcHost) MaxSlots() int {
	h.loadLimits()
	return h.maxSlots
}

// UsedSlots is not cached, every call asks the server.
func (h *rpcHost) UsedSlots() (int, error) {
	resp, err := h.adapter.invokeRPCRequest(h.id, common.NewLimitsRequest())
	if err != nil {
		return 0, err
	}
	return int(resp.Used), nil
}

// loadLimits asks the server for the limits of the host. On failure the host
// reports no limits and the caller falls back to its own defaults.
func (h *rpcHost) loadLimits() {
	h.limitsOnce.Do(func() {
		resp, err := h.adapter.invokeRPCRequest(h.id, common.NewLimitsRequest())
		if err != nil {
			Logger.Warningf("failed to load limits of host %q: %v", h.id, err)
			return
		}
		h.maxBytes = int(resp.MaxBytes)
		h.maxSlots = int(resp.MaxSlots)
	})
}

// compile time interface checks
var (
	_ slot.Host     = (*rpcHost)(nil)
	_ slot.Limits   = (*rpcHost)(nil)
	_ slot.Provider = (*rpcProvider)(nil)
)
