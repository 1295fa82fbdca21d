package recordstore

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/ValentinKolb/dynDB/lib/jsonv"
	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("recordstore")

// Store is a key-value mapping persisted as a chunked JSON record in the slots of
// one host object. All reads and writes happen in memory, only Save, Clear and the
// package level Delete touch the host.
//
// A Store is not safe for concurrent use and there must be at most one live Store
// per (id, host) pair.
type Store struct {
	id   string
	host slot.Host
	opts options
	data *jsonv.Object
}

// Entry is one key-value pair of a Store.
type Entry struct {
	Key   string
	Value jsonv.Value
}

// SaveResult is delivered by SaveAsync once the save finished.
type SaveResult struct {
	Elapsed time.Duration
	Err     error
}

// Open loads the record with the given id from host. A record that was never saved
// yields an empty store. Slots that do not form a valid record yield an error
// matching ErrCorrupted, the slots are left untouched in that case.
func Open(id string, host slot.Host, opts ...Option) (*Store, error) {
	s := &Store{
		id:   id,
		host: host,
		opts: resolveOptions(host, opts),
		data: jsonv.NewObject(),
	}
	if err := s.load(); err != nil {
		loadErrorsTotal.Inc()
		Logger.Warningf("failed to load record %s on host %s: %v", id, host.ID(), err)
		return nil, err
	}
	loadsTotal.Inc()
	return s, nil
}

func (s *Store) load() error {
	count, present, err := readCount(s.host, s.opts.namespace, s.id)
	if err != nil {
		return err
	}
	if !present || count == 0 {
		return nil
	}

	var sb strings.Builder
	for i := 0; i < count; i++ {
		v, ok, err := s.host.Get(s.fragmentName(i))
		if err != nil {
			return hostError(fmt.Sprintf("read fragment %d of %s", i, s.id), err)
		}
		if !ok {
			return NewError(RetCCorrupted, fmt.Sprintf("fragment %d of %d of %s is missing", i, count, s.id), nil)
		}
		str, ok := v.Str()
		if !ok {
			return NewError(RetCCorrupted, fmt.Sprintf("fragment %d of %s holds a %s", i, s.id, v.Kind()), nil)
		}
		sb.WriteString(str)
	}

	obj, err := jsonv.ParseObject(sb.String())
	if err != nil {
		return NewError(RetCCorrupted, "record "+s.id+" is not a JSON object", err)
	}
	s.data = obj
	Logger.Debugf("loaded record %s on host %s (%d fragments, %d keys)", s.id, s.host.ID(), count, obj.Len())
	return nil
}

// --------------------------------------------------------------------------
// Persistence
// --------------------------------------------------------------------------

// Save writes the mapping to the host and returns how long it took.
//
// The record is chunked first, a record needing more slots than allowed (for the record
// or, next to the other slots of the host, for the host) fails with ErrTooManySlots
// before anything is written. Then the fragments announced by the old
// length slot are deleted, the new fragments are written and finally the new length.
// A host failure after the old fragments were deleted leaves the record incomplete,
// it is not rolled back.
func (s *Store) Save() (time.Duration, error) {
	return s.write(time.Now(), jsonv.Marshal(s.data))
}

// SaveAsync serializes the mapping immediately and writes it in the background.
// The mapping may be changed as soon as SaveAsync returns, but no other save of
// this record may run before the result was received.
func (s *Store) SaveAsync() <-chan SaveResult {
	start := time.Now()
	text := jsonv.Marshal(s.data)

	ch := make(chan SaveResult, 1)
	go func() {
		elapsed, err := s.write(start, text)
		ch <- SaveResult{Elapsed: elapsed, Err: err}
		close(ch)
	}()
	return ch
}

func (s *Store) write(start time.Time, text string) (time.Duration, error) {
	elapsed, n, err := s.writeSlots(start, text)
	if err != nil {
		saveErrorsTotal.Inc()
		Logger.Errorf("failed to save record %s on host %s: %v", s.id, s.host.ID(), err)
		return elapsed, err
	}

	savesTotal.Inc()
	fragmentsWrittenTotal.Add(n)
	saveDuration.Update(elapsed.Seconds())
	Logger.Debugf("saved record %s on host %s (%d fragments, %d bytes) in %s", s.id, s.host.ID(), n, len(text), elapsed)
	return elapsed, nil
}

func (s *Store) writeSlots(start time.Time, text string) (time.Duration, int, error) {
	fragments := Chunk(text, s.opts.maxSlotBytes)
	if s.opts.maxSlots > 0 && len(fragments)+1 > s.opts.maxSlots {
		return time.Since(start), 0, NewError(RetCTooManySlots,
			fmt.Sprintf("record %s needs %d slots, at most %d allowed", s.id, len(fragments)+1, s.opts.maxSlots), nil)
	}

	oldCount, present, err := readCount(s.host, s.opts.namespace, s.id)
	if err != nil && !errors.Is(err, ErrCorrupted) {
		return time.Since(start), 0, err
	}
	countValid := err == nil
	if err := s.checkCapacity(len(fragments), oldCount, present, countValid); err != nil {
		return time.Since(start), 0, err
	}
	if err := clearFragments(s.host, s.opts.namespace, s.id, oldCount, countValid); err != nil {
		return time.Since(start), 0, err
	}

	for i, fragment := range fragments {
		if err := s.host.Set(s.fragmentName(i), slot.String(fragment)); err != nil {
			return time.Since(start), i, s.setError(fmt.Sprintf("write fragment %d of %s", i, s.id), err)
		}
	}
	if err := s.host.Set(s.lengthName(), slot.Number(float64(len(fragments)))); err != nil {
		return time.Since(start), len(fragments), s.setError("write length of "+s.id, err)
	}
	return time.Since(start), len(fragments), nil
}

// checkCapacity fails when the host cannot carry the new record next to the
// slots of other records. The slots of the old record count as free.
func (s *Store) checkCapacity(fragments, oldCount int, present, countValid bool) error {
	limits, ok := s.host.(slot.Limits)
	if !ok || limits.MaxSlots() <= 0 {
		return nil
	}
	used, err := limits.UsedSlots()
	if err != nil {
		return hostError("count slots of "+s.host.ID(), err)
	}

	freed := 0
	if present {
		freed = 1
		if countValid {
			freed += oldCount
		}
	}
	if need := used - freed + fragments + 1; need > limits.MaxSlots() {
		return NewError(RetCTooManySlots,
			fmt.Sprintf("record %s needs %d slots, host %s has %d of %d in use", s.id, fragments+1, s.host.ID(), used-freed, limits.MaxSlots()), nil)
	}
	return nil
}

// setError classifies a failed slot write
func (s *Store) setError(action string, err error) *Error {
	if errors.Is(err, slot.ErrTooManySlots) {
		return NewError(RetCTooManySlots, action, err)
	}
	return hostError(action, err)
}

// Clear deletes the record from the host and empties the mapping.
// The store stays usable, the mapping is emptied even if the host fails.
func (s *Store) Clear() error {
	s.data = jsonv.NewObject()
	_, err := deleteRecord(s.host, s.opts.namespace, s.id)
	return err
}

// Slots reports how the record is currently laid out on the host.
func (s *Store) Slots() (SlotInfo, error) {
	return Inspect(s.id, s.host, WithNamespace(s.opts.namespace))
}

// --------------------------------------------------------------------------
// Key-Value Surface
// --------------------------------------------------------------------------

// ID returns the record id.
func (s *Store) ID() string { return s.id }

// Host returns the host object the record lives on.
func (s *Store) Host() slot.Host { return s.host }

// Namespace returns the slot name prefix of the record.
func (s *Store) Namespace() string { return s.opts.namespace }

// Get returns the value stored under key.
func (s *Store) Get(key string) (jsonv.Value, bool) {
	return s.data.Get(key)
}

// Set stores value under key, a nil value removes the key.
func (s *Store) Set(key string, value jsonv.Value) {
	if value == nil {
		s.data.Delete(key)
		return
	}
	s.data.Set(key, value)
}

// SetAny converts value with jsonv.FromAny and stores it under key.
func (s *Store) SetAny(key string, value any) error {
	v, err := jsonv.FromAny(value)
	if err != nil {
		return NewError(RetCInvalidValue, "set "+key, err)
	}
	s.Set(key, v)
	return nil
}

// Delete removes key from the mapping.
func (s *Store) Delete(key string) {
	s.data.Delete(key)
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	return s.data.Has(key)
}

// Keys returns all keys in insertion order.
func (s *Store) Keys() []string {
	return s.data.Keys()
}

// Values returns all values in insertion order.
func (s *Store) Values() []jsonv.Value {
	return s.data.Values()
}

// Entries returns all key-value pairs in insertion order.
func (s *Store) Entries() []Entry {
	entries := make([]Entry, 0, s.data.Len())
	for k, v := range s.data.All() {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return entries
}

// Size returns the number of keys.
func (s *Store) Size() int {
	return s.data.Len()
}

// Range calls fn for every entry in insertion order until fn returns false.
func (s *Store) Range(fn func(key string, value jsonv.Value) bool) {
	s.data.Range(fn)
}

// All returns an iterator over all entries in insertion order.
func (s *Store) All() iter.Seq2[string, jsonv.Value] {
	return s.data.All()
}

// String returns the mapping as compact JSON.
func (s *Store) String() string {
	return jsonv.Marshal(s.data)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *Store) lengthName() string {
	return slot.LengthName(s.opts.namespace, s.id)
}

func (s *Store) fragmentName(i int) string {
	return slot.FragmentName(s.opts.namespace, s.id, i)
}
