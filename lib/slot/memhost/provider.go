package memhost

import (
	"sort"
	"sync/atomic"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/puzpuzpuz/xsync/v3"
)

// Provider keeps any number of in-memory host objects.
// All hosts share the options of the provider.
type Provider struct {
	opts   Options
	hosts  *xsync.MapOf[string, *Host]
	closed *atomic.Bool
}

// NewProvider creates an empty provider (nil options = DefaultOptions)
func NewProvider(opts *Options) *Provider {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Provider{
		opts:   *opts,
		hosts:  xsync.NewMapOf[string, *Host](),
		closed: &atomic.Bool{},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see slot.Provider)
// --------------------------------------------------------------------------

func (p *Provider) Host(id string) (slot.Host, error) {
	return p.host(id)
}

func (p *Provider) Hosts() ([]string, error) {
	if p.closed.Load() {
		return nil, slot.ErrClosed
	}
	ids := make([]string, 0, p.hosts.Size())
	p.hosts.Range(func(id string, _ *Host) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids, nil
}

func (p *Provider) Close() error {
	p.closed.Store(true)
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// host returns the concrete host for an id, creating it on first use
func (p *Provider) host(id string) (*Host, error) {
	if p.closed.Load() {
		return nil, slot.ErrClosed
	}
	if err := slot.ValidateHostID(id); err != nil {
		return nil, err
	}
	h, _ := p.hosts.LoadOrCompute(id, func() *Host {
		return &Host{
			id:     id,
			opts:   p.opts,
			slots:  xsync.NewMapOf[string, slot.Value](),
			closed: p.closed,
		}
	})
	return h, nil
}
