package bolthost

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var Logger = logger.GetLogger("slot")

// bucketPrefix prefixes the bucket of every host object
const bucketPrefix = "host:"

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a bolt backed provider
type Options struct {
	MaxSlotBytes int           // Largest string per slot in bytes (0 = unlimited)
	Timeout      time.Duration // How long to wait for the file lock (0 = wait forever)
	IsTesting    bool          // Skip fsync, meant for tests only
}

// DefaultOptions returns the default bolt provider options
func DefaultOptions() *Options {
	return &Options{
		MaxSlotBytes: slot.DefaultMaxSlotBytes,
		Timeout:      10 * time.Second,
	}
}

// --------------------------------------------------------------------------
// Provider
// --------------------------------------------------------------------------

// Provider stores host objects in a single bbolt file, one bucket per host
type Provider struct {
	bdb  *bbolt.DB
	opts Options
}

// Open opens (or creates) the bolt file at path (nil options = DefaultOptions)
func Open(path string, opts *Options) (*Provider, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opts.Timeout
	if opts.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("bolthost: open %s: %w", path, err)
	}

	Logger.Infof("opened bolt host file %s", path)
	return &Provider{bdb: bdb, opts: *opts}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see slot.Provider)
// --------------------------------------------------------------------------

func (p *Provider) Host(id string) (slot.Host, error) {
	if err := slot.ValidateHostID(id); err != nil {
		return nil, err
	}
	return &Host{p: p, id: id, bucket: []byte(bucketPrefix + id)}, nil
}

func (p *Provider) Hosts() ([]string, error) {
	var ids []string
	err := p.bdb.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if bytes.HasPrefix(name, []byte(bucketPrefix)) {
				ids = append(ids, string(name[len(bucketPrefix):]))
			}
			return nil
		})
	})
	if err != nil {
		return nil, mapErr(err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *Provider) Close() error {
	return p.bdb.Close()
}

// --------------------------------------------------------------------------
// Host
// --------------------------------------------------------------------------

// Host is one host object stored in a bolt bucket.
// Every Set and Delete runs in its own write transaction.
type Host struct {
	p      *Provider
	id     string
	bucket []byte
}

// record is the msgpack encoding of a slot value
type record struct {
	Kind uint8   `msgpack:"k"`
	Str  string  `msgpack:"s,omitempty"`
	Num  float64 `msgpack:"n,omitempty"`
}

func (h *Host) ID() string {
	return h.id
}

func (h *Host) Get(name string) (slot.Value, bool, error) {
	var (
		value slot.Value
		ok    bool
	)
	err := h.p.bdb.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(h.bucket)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(name))
		if raw == nil {
			return nil
		}
		v, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("bolthost: slot %q of host %q: %w", name, h.id, err)
		}
		value, ok = v, true
		return nil
	})
	if err != nil {
		return slot.Value{}, false, mapErr(err)
	}
	return value, ok, nil
}

func (h *Host) Set(name string, value slot.Value) error {
	if !value.IsValid() {
		return fmt.Errorf("bolthost: invalid value for slot %q", name)
	}
	if s, ok := value.Str(); ok && h.p.opts.MaxSlotBytes > 0 && len(s) > h.p.opts.MaxSlotBytes {
		return fmt.Errorf("%w: slot %q holds %d bytes (limit %d)", slot.ErrValueTooLarge, name, len(s), h.p.opts.MaxSlotBytes)
	}

	raw, err := encodeValue(value)
	if err != nil {
		return err
	}

	return mapErr(h.p.bdb.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(h.bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(name), raw)
	}))
}

func (h *Host) Delete(name string) error {
	return mapErr(h.p.bdb.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(h.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(name))
	}))
}

func (h *Host) MaxSlotBytes() int {
	return h.p.opts.MaxSlotBytes
}

func (h *Host) MaxSlots() int {
	return 0
}

func (h *Host) UsedSlots() (int, error) {
	var n int
	err := h.p.bdb.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(h.bucket); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, mapErr(err)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func encodeValue(v slot.Value) ([]byte, error) {
	rec := record{Kind: uint8(v.Kind())}
	if s, ok := v.Str(); ok {
		rec.Str = s
	} else {
		rec.Num, _ = v.Num()
	}
	return msgpack.Marshal(&rec)
}

func decodeValue(raw []byte) (slot.Value, error) {
	var rec record
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		return slot.Value{}, err
	}
	switch slot.Kind(rec.Kind) {
	case slot.KindString:
		return slot.String(rec.Str), nil
	case slot.KindNumber:
		return slot.Number(rec.Num), nil
	default:
		return slot.Value{}, fmt.Errorf("unknown slot kind %d", rec.Kind)
	}
}

// mapErr translates bolt errors into slot errors where one exists
func mapErr(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return slot.ErrClosed
	}
	return err
}

// compile time interface checks
var (
	_ slot.Host     = (*Host)(nil)
	_ slot.Limits   = (*Host)(nil)
	_ slot.Provider = (*Provider)(nil)
)
