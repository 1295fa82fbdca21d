package memhost

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/zstd"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	magicNum        = "DYNSLOT\x00" // File format identifier
	snapshotVersion = 1             // Snapshot format version
	maxFieldLen     = 1 << 30       // Upper bound for length prefixed fields
)

// hostSnapshot is the decoded content of one host
type hostSnapshot struct {
	id    string
	slots map[string]slot.Value
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save writes all hosts and their slots to the writer.
// Hosts and slots are written in sorted order, so equal content yields equal bytes.
//
// Format (little endian):
//
//	magic | version u8 | host count u64 |
//	  per host:  id (u32 len + bytes) | slot count u64 |
//	    per slot: name (u32 len + bytes) | kind u8 | string (u32 len + bytes) or number (f64 bits u64)
func (p *Provider) Save(w io.Writer) error {
	if p.closed.Load() {
		return slot.ErrClosed
	}

	bw := bufio.NewWriterSize(w, 64*1024)

	ids, _ := p.Hosts()

	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(snapshotVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(ids))); err != nil {
		return err
	}

	for _, id := range ids {
		h, ok := p.hosts.Load(id)
		if !ok {
			// removed concurrently, keep the announced host count intact
			h = NewHost(id, &p.opts)
		}

		// take a consistent copy of the slot names first
		names := h.Names()
		values := make([]slot.Value, 0, len(names))
		kept := names[:0]
		for _, name := range names {
			if v, ok := h.slots.Load(name); ok {
				kept = append(kept, name)
				values = append(values, v)
			}
		}

		if err := writeString(bw, id); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint64(len(kept))); err != nil {
			return err
		}
		for i, name := range kept {
			if err := writeString(bw, name); err != nil {
				return err
			}
			if err := writeValue(bw, values[i]); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// Load replaces the content of all hosts with the snapshot read from r.
// Hosts handed out before stay valid and see the loaded slots.
// On error the provider is left unchanged.
func (p *Provider) Load(r io.Reader) error {
	if p.closed.Load() {
		return slot.ErrClosed
	}

	br := bufio.NewReaderSize(r, 64*1024)

	// Read and verify magic number
	magicBytes := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magicBytes); err != nil {
		return err
	}
	if string(magicBytes) != magicNum {
		return fmt.Errorf("invalid snapshot format: magic number mismatch")
	}

	// Read and verify version
	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %d (expected %d)", version, snapshotVersion)
	}

	var hostCount uint64
	if err := binary.Read(br, binary.LittleEndian, &hostCount); err != nil {
		return err
	}

	// decode everything before touching live hosts
	snapshots := make([]hostSnapshot, 0, min(hostCount, 1024))
	for i := uint64(0); i < hostCount; i++ {
		id, err := readString(br)
		if err != nil {
			return err
		}
		if err := slot.ValidateHostID(id); err != nil {
			return fmt.Errorf("invalid snapshot: %w", err)
		}
		var slotCount uint64
		if err := binary.Read(br, binary.LittleEndian, &slotCount); err != nil {
			return err
		}
		snap := hostSnapshot{id: id, slots: make(map[string]slot.Value, min(slotCount, 1024))}
		for j := uint64(0); j < slotCount; j++ {
			name, err := readString(br)
			if err != nil {
				return err
			}
			v, err := readValue(br)
			if err != nil {
				return err
			}
			snap.slots[name] = v
		}
		snapshots = append(snapshots, snap)
	}

	// apply
	loaded := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		h, err := p.host(snap.id)
		if err != nil {
			return err
		}
		h.slots.Clear()
		for name, v := range snap.slots {
			h.slots.Store(name, v)
		}
		loaded[snap.id] = struct{}{}
	}
	p.hosts.Range(func(id string, h *Host) bool {
		if _, ok := loaded[id]; !ok {
			h.slots.Clear()
		}
		return true
	})

	Logger.Debugf("loaded snapshot with %d hosts", len(snapshots))
	return nil
}

// SaveFile writes a zstd compressed snapshot to path.
// The file is replaced atomically, a failed save leaves the old file in place.
func (p *Provider) SaveFile(path string) error {
	f, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return err
	}
	defer f.Cleanup()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if err := p.Save(zw); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.CloseAtomicallyReplace()
}

// LoadFile reads a snapshot written by SaveFile. A missing file is not an error.
func (p *Provider) LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		Logger.Infof("no snapshot at %s, starting empty", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer zr.Close()

	return p.Load(zr)
}

// --------------------------------------------------------------------------
// Encoding Helpers
// --------------------------------------------------------------------------

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n > maxFieldLen {
		return "", fmt.Errorf("invalid snapshot: field length %d too large", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeValue(w io.Writer, v slot.Value) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(v.Kind())); err != nil {
		return err
	}
	if s, ok := v.Str(); ok {
		return writeString(w, s)
	}
	n, _ := v.Num()
	return binary.Write(w, binary.LittleEndian, math.Float64bits(n))
}

func readValue(r io.Reader) (slot.Value, error) {
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return slot.Value{}, err
	}
	switch slot.Kind(kind) {
	case slot.KindString:
		s, err := readString(r)
		if err != nil {
			return slot.Value{}, err
		}
		return slot.String(s), nil
	case slot.KindNumber:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return slot.Value{}, err
		}
		return slot.Number(math.Float64frombits(bits)), nil
	default:
		return slot.Value{}, fmt.Errorf("invalid snapshot: unknown slot kind %d", kind)
	}
}

// compile time interface checks
var (
	_ slot.Host     = (*Host)(nil)
	_ slot.Limits   = (*Host)(nil)
	_ slot.Provider = (*Provider)(nil)
)
