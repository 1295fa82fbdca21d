package recordstore

import "github.com/ValentinKolb/dynDB/lib/slot"

// Option configures how a record is laid out on its host.
type Option func(*options)

type options struct {
	namespace    string
	maxSlotBytes int
	maxSlots     int
}

// WithNamespace sets the slot name prefix (default "dynamicdb").
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithMaxSlotBytes sets the largest fragment in bytes (default 32767 or the host limit).
func WithMaxSlotBytes(n int) Option {
	return func(o *options) {
		o.maxSlotBytes = n
	}
}

// WithMaxSlots limits the number of slots one record may occupy, the length slot
// included (0 = unlimited, default is the host limit).
func WithMaxSlots(n int) Option {
	return func(o *options) {
		o.maxSlots = n
	}
}

// resolveOptions starts from the defaults, takes the limits of the host if it
// announces any and applies opts on top
func resolveOptions(host slot.Host, opts []Option) options {
	o := options{
		namespace:    slot.DefaultNamespace,
		maxSlotBytes: slot.DefaultMaxSlotBytes,
	}
	if l, ok := host.(slot.Limits); ok {
		if n := l.MaxSlotBytes(); n > 0 {
			o.maxSlotBytes = n
		}
		o.maxSlots = l.MaxSlots()
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
