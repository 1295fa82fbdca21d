package serializer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasName   byte = 1 << 0
	hasValue  byte = 1 << 1
	hasNames  byte = 1 << 2
	hasLimits byte = 1 << 3
	hasOk     byte = 1 << 4
	hasErr    byte = 1 << 5
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

// Serialize writes the message as
//
//	type u8 | flags u8 | name? | kind u8 + (string | f64)? | names? | max bytes u32 + max slots u32? | ok u8? | err?
//
// Strings are prefixed with their u32 length, all integers are big endian.
func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var flags byte
	result := make([]byte, 2, b.sizeBytes(msg))
	result[0] = byte(msg.MsgType)

	// Handle Name
	if msg.Name != "" {
		flags |= hasName
		result = appendString(result, msg.Name)
	}

	// Handle Value
	if msg.Kind != 0 {
		flags |= hasValue
		result = append(result, msg.Kind)
		switch slot.Kind(msg.Kind) {
		case slot.KindString:
			result = appendString(result, msg.Str)
		case slot.KindNumber:
			result = binary.BigEndian.AppendUint64(result, math.Float64bits(msg.Num))
		default:
			return nil, fmt.Errorf("cannot serialize unknown value kind %d", msg.Kind)
		}
	}

	// Handle Names
	if len(msg.Names) > 0 {
		flags |= hasNames
		result = binary.BigEndian.AppendUint32(result, uint32(len(msg.Names)))
		for _, name := range msg.Names {
			result = appendString(result, name)
		}
	}

	// Handle Limits
	if msg.MaxBytes != 0 || msg.MaxSlots != 0 || msg.Used != 0 {
		flags |= hasLimits
		result = binary.BigEndian.AppendUint32(result, msg.MaxBytes)
		result = binary.BigEndian.AppendUint32(result, msg.MaxSlots)
		result = binary.BigEndian.AppendUint32(result, msg.Used)
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result = append(result, 1)
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		result = appendString(result, msg.Err)
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := data[1]
	r := reader{data: data, pos: 2}

	// Read Name if present
	if flags&hasName != 0 {
		msg.Name = r.string("name")
	}

	// Read Value if present
	if flags&hasValue != 0 {
		msg.Kind = r.byte("value kind")
		switch slot.Kind(msg.Kind) {
		case slot.KindString:
			msg.Str = r.string("string value")
		case slot.KindNumber:
			msg.Num = math.Float64frombits(r.uint64("number value"))
		default:
			if r.err == nil {
				r.err = fmt.Errorf("unknown value kind %d", msg.Kind)
			}
		}
	}

	// Read Names if present
	if flags&hasNames != 0 {
		count := r.uint32("names count")
		// every name needs at least its length prefix
		if r.err == nil && int(count) > (len(data)-r.pos)/4 {
			r.err = fmt.Errorf("data too short for %d names", count)
		}
		if r.err == nil {
			msg.Names = make([]string, 0, count)
			for i := uint32(0); i < count && r.err == nil; i++ {
				msg.Names = append(msg.Names, r.string("name list entry"))
			}
		}
	}

	// Read Limits if present
	if flags&hasLimits != 0 {
		msg.MaxBytes = r.uint32("max bytes")
		msg.MaxSlots = r.uint32("max slots")
		msg.Used = r.uint32("used slots")
	}

	// Read Ok if present
	if flags&hasOk != 0 {
		msg.Ok = r.byte("ok flag") != 0
	}

	// Read Err if present
	if flags&hasErr != 0 {
		msg.Err = r.string("error")
	}

	return r.err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the exact size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := 2 // MsgType + flags
	if msg.Name != "" {
		size += 4 + len(msg.Name)
	}
	if msg.Kind != 0 {
		size += 1 + max(4+len(msg.Str), 8)
	}
	if len(msg.Names) > 0 {
		size += 4
		for _, name := range msg.Names {
			size += 4 + len(name)
		}
	}
	if msg.MaxBytes != 0 || msg.MaxSlots != 0 || msg.Used != 0 {
		size += 12
	}
	if msg.Ok {
		size++
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	return size
}

func appendString(b []byte, s string) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(s)))
	return append(b, s...)
}

// reader reads fields from a serialized message and keeps the first error
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) need(n int, field string) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = fmt.Errorf("data too short for %s", field)
		return false
	}
	return true
}

func (r *reader) byte(field string) byte {
	if !r.need(1, field) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) uint32(field string) uint32 {
	if !r.need(4, field) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) uint64(field string) uint64 {
	if !r.need(8, field) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}

func (r *reader) string(field string) string {
	n := r.uint32(field + " length")
	if !r.need(int(n), field) {
		return ""
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s
}
