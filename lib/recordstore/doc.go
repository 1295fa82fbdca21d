// Package recordstore provides a key-value mapping that is persisted inside the
// small, size limited slots of a host object (see package slot).
//
// A record is the JSON text of the mapping, split into fragments of at most
// MaxSlotBytes UTF-8 bytes. The fragments and their count are written to the host:
//
//	<namespace>:<id>_length   number of fragments
//	<namespace>:<id>_<i>      fragment i, for i in [0, length)
//
// Fragment boundaries never split a multi-byte code point, so every fragment is
// valid UTF-8 on its own and the concatenation of all fragments is the JSON text.
//
// Usage:
//
//	world, _ := provider.Host(slot.WorldID)
//	settings, err := recordstore.Open("settings", world)
//	if errors.Is(err, recordstore.ErrCorrupted) {
//		// slots exist but do not form a record
//	}
//	settings.Set("command-prefix", jsonv.String("!"))
//	elapsed, err := settings.Save()
//
// Mutations only change the in-memory mapping. Nothing reaches the host until Save
// (or SaveAsync) is called, which rewrites all fragments of the record.
//
// Error Handling:
//
//	All errors are of type *Error and carry a RetCode. Use errors.Is with
//	ErrCorrupted, ErrHost, ErrTooManySlots and ErrInvalidValue to branch on them.
//
// Metrics:
//
//	Loads, saves, errors, written fragments and save durations are exported via
//	github.com/VictoriaMetrics/metrics under the dyndb_store_ prefix.
package recordstore
