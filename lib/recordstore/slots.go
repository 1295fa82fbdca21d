package recordstore

import (
	"fmt"

	"github.com/ValentinKolb/dynDB/lib/slot"
)

// --------------------------------------------------------------------------
// Slot Level Operations
// --------------------------------------------------------------------------

// Exists reports whether a record with the given id has a length slot on host.
// The fragments are neither read nor validated.
func Exists(id string, host slot.Host, opts ...Option) (bool, error) {
	o := resolveOptions(host, opts)
	_, ok, err := host.Get(slot.LengthName(o.namespace, id))
	if err != nil {
		return false, hostError("read length of "+id, err)
	}
	return ok, nil
}

// Delete removes the record with the given id from host: every fragment and the
// length slot. It reports false (and writes nothing) if no record exists.
func Delete(id string, host slot.Host, opts ...Option) (bool, error) {
	o := resolveOptions(host, opts)
	return deleteRecord(host, o.namespace, id)
}

// SlotInfo describes how a record is currently laid out on its host.
type SlotInfo struct {
	Namespace string // Slot name prefix
	ID        string // Record id
	Present   bool   // Whether the length slot exists
	Count     int    // Number of fragments announced by the length slot
	Sizes     []int  // Byte size of each fragment present, in index order
	Bytes     int    // Sum of Sizes
}

// Inspect reads the layout of a record without parsing it.
// A length slot that is not a valid count results in a corruption error.
func Inspect(id string, host slot.Host, opts ...Option) (SlotInfo, error) {
	o := resolveOptions(host, opts)
	info := SlotInfo{Namespace: o.namespace, ID: id}

	count, present, err := readCount(host, o.namespace, id)
	if err != nil {
		return info, err
	}
	info.Present, info.Count = present, count

	for i := 0; i < count; i++ {
		v, ok, err := host.Get(slot.FragmentName(o.namespace, id, i))
		if err != nil {
			return info, hostError(fmt.Sprintf("read fragment %d of %s", i, id), err)
		}
		if !ok {
			break
		}
		info.Sizes = append(info.Sizes, v.Size())
		info.Bytes += v.Size()
	}
	return info, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// readCount reads the length slot of a record.
// A missing slot reports present=false, a slot that is not a non-negative integer is corrupt.
func readCount(host slot.Host, namespace, id string) (count int, present bool, err error) {
	v, ok, err := host.Get(slot.LengthName(namespace, id))
	if err != nil {
		return 0, false, hostError("read length of "+id, err)
	}
	if !ok {
		return 0, false, nil
	}
	n, ok := v.Int()
	if !ok {
		return 0, true, NewError(RetCCorrupted, fmt.Sprintf("length slot of %s holds %s", id, v), nil)
	}
	return n, true, nil
}

// clearFragments deletes the fragments of a record.
// With a corrupt length slot the fragments are swept from index 0 up to the first gap.
func clearFragments(host slot.Host, namespace, id string, count int, countValid bool) error {
	if countValid {
		for i := 0; i < count; i++ {
			name := slot.FragmentName(namespace, id, i)
			if err := host.Delete(name); err != nil {
				return hostError("delete "+name, err)
			}
		}
		return nil
	}

	for i := 0; ; i++ {
		name := slot.FragmentName(namespace, id, i)
		_, ok, err := host.Get(name)
		if err != nil {
			return hostError("read "+name, err)
		}
		if !ok {
			return nil
		}
		if err := host.Delete(name); err != nil {
			return hostError("delete "+name, err)
		}
	}
}

// deleteRecord removes fragments and the length slot of a record
func deleteRecord(host slot.Host, namespace, id string) (bool, error) {
	count, present, err := readCount(host, namespace, id)
	if !present {
		return false, err
	}
	if err := clearFragments(host, namespace, id, count, err == nil); err != nil {
		return false, err
	}
	if err := host.Delete(slot.LengthName(namespace, id)); err != nil {
		return false, hostError("delete length of "+id, err)
	}

	deletesTotal.Inc()
	Logger.Debugf("deleted record %s on host %s (%d fragments)", id, host.ID(), count)
	return true, nil
}

func hostError(action string, err error) *Error {
	return NewError(RetCHost, action, err)
}
