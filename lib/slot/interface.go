package slot

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DefaultNamespace is the prefix of every slot name written by a record store.
	DefaultNamespace = "dynamicdb"

	// DefaultMaxSlotBytes is the largest UTF-8 string (in bytes) a single slot may hold.
	DefaultMaxSlotBytes = 32767

	// WorldID is the id of the host object every provider offers by convention.
	WorldID = "world"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrValueTooLarge is returned by hosts that enforce a byte limit per slot.
	ErrValueTooLarge = errors.New("slot value exceeds the host byte limit")
	// ErrTooManySlots is returned by hosts that limit the number of slots they carry.
	ErrTooManySlots = errors.New("host slot limit reached")
	// ErrClosed is returned when a host is used after its provider was closed.
	ErrClosed = errors.New("host provider is closed")
	// ErrInvalidHostID is returned for empty host ids.
	ErrInvalidHostID = errors.New("invalid host id")
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Host is a long-lived object (a world, an entity or an item) carrying a flat
// namespace of independent, size limited slots. Each slot holds a string or a number.
//
// Hosts make no promise about atomicity across slots: every Set and Delete is an
// independent write.
type Host interface {
	// ID returns the id of the host object.
	ID() string
	// Get returns the value of a slot. The boolean reports whether the slot is populated.
	Get(name string) (value Value, ok bool, err error)
	// Set populates a slot, replacing any previous value.
	Set(name string, value Value) (err error)
	// Delete clears a slot. Clearing an empty slot is not an error.
	Delete(name string) (err error)
}

// Limits is implemented by hosts that constrain their slots.
// A zero value means the host imposes no limit.
type Limits interface {
	// MaxSlotBytes returns the largest string (in bytes) one slot accepts.
	MaxSlotBytes() int
	// MaxSlots returns the largest number of slots the host carries.
	MaxSlots() int
	// UsedSlots returns the number of slots the host currently carries.
	UsedSlots() (int, error)
}

// Provider hands out host objects by id.
type Provider interface {
	// Host returns the host object with the given id, creating it if needed.
	Host(id string) (host Host, err error)
	// Hosts lists the ids of all known host objects.
	Hosts() (ids []string, err error)
	// Close releases the provider. Hosts obtained from it must not be used afterwards.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Slot Naming
// --------------------------------------------------------------------------

// LengthName returns the name of the slot holding the fragment count of a record.
func LengthName(namespace, id string) string {
	return fmt.Sprintf("%s:%s_length", namespace, id)
}

// FragmentName returns the name of the slot holding fragment i of a record.
func FragmentName(namespace, id string, i int) string {
	return fmt.Sprintf("%s:%s_%d", namespace, id, i)
}

// ValidateHostID returns ErrInvalidHostID for ids no provider accepts.
func ValidateHostID(id string) error {
	if id == "" {
		return ErrInvalidHostID
	}
	return nil
}
