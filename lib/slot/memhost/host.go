package memhost

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("slot")

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures the limits of in-memory hosts
type Options struct {
	MaxSlotBytes int // Largest string per slot in bytes (0 = unlimited)
	MaxSlots     int // Largest number of populated slots per host (0 = unlimited)
}

// DefaultOptions returns options mirroring the limits of a typical game host
func DefaultOptions() *Options {
	return &Options{
		MaxSlotBytes: slot.DefaultMaxSlotBytes,
		MaxSlots:     0,
	}
}

// --------------------------------------------------------------------------
// Host
// --------------------------------------------------------------------------

// Host is an in-memory host object
type Host struct {
	id     string
	opts   Options
	slots  *xsync.MapOf[string, slot.Value]
	closed *atomic.Bool // shared with the owning provider
}

// NewHost creates a standalone in-memory host object (nil options = DefaultOptions)
func NewHost(id string, opts *Options) *Host {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Host{
		id:     id,
		opts:   *opts,
		slots:  xsync.NewMapOf[string, slot.Value](),
		closed: &atomic.Bool{},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see slot.Host and slot.Limits)
// --------------------------------------------------------------------------

func (h *Host) ID() string {
	return h.id
}

func (h *Host) Get(name string) (slot.Value, bool, error) {
	if h.closed.Load() {
		return slot.Value{}, false, slot.ErrClosed
	}
	v, ok := h.slots.Load(name)
	return v, ok, nil
}

func (h *Host) Set(name string, value slot.Value) error {
	if h.closed.Load() {
		return slot.ErrClosed
	}
	if !value.IsValid() {
		return fmt.Errorf("memhost: invalid value for slot %q", name)
	}
	if s, ok := value.Str(); ok && h.opts.MaxSlotBytes > 0 && len(s) > h.opts.MaxSlotBytes {
		return fmt.Errorf("%w: slot %q holds %d bytes (limit %d)", slot.ErrValueTooLarge, name, len(s), h.opts.MaxSlotBytes)
	}

	var err error
	h.slots.Compute(name, func(_ slot.Value, loaded bool) (slot.Value, bool) {
		// new slots count against the slot limit
		if !loaded && h.opts.MaxSlots > 0 && h.slots.Size() >= h.opts.MaxSlots {
			err = fmt.Errorf("%w: host %q already holds %d slots", slot.ErrTooManySlots, h.id, h.opts.MaxSlots)
			return slot.Value{}, true
		}
		return value, false
	})
	return err
}

func (h *Host) Delete(name string) error {
	if h.closed.Load() {
		return slot.ErrClosed
	}
	h.slots.Delete(name)
	return nil
}

func (h *Host) MaxSlotBytes() int {
	return h.opts.MaxSlotBytes
}

func (h *Host) MaxSlots() int {
	return h.opts.MaxSlots
}

func (h *Host) UsedSlots() (int, error) {
	if h.closed.Load() {
		return 0, slot.ErrClosed
	}
	return h.slots.Size(), nil
}

// --------------------------------------------------------------------------
// Inspection
// --------------------------------------------------------------------------

// Len returns the number of populated slots
func (h *Host) Len() int {
	return h.slots.Size()
}

// Names returns the names of all populated slots in sorted order
func (h *Host) Names() []string {
	names := make([]string, 0, h.slots.Size())
	h.slots.Range(func(name string, _ slot.Value) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
