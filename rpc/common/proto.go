package common

import (
	"fmt"

	"github.com/ValentinKolb/dynDB/lib/slot"
	json "github.com/goccy/go-json"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message. The host object a
// message addresses is not part of the message, the transport carries it.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Name string  `json:"name,omitempty"` // Used for: Get, Set, Delete (slot name)
	Kind uint8   `json:"kind,omitempty"` // Used for: Set (request), Get (response); 0 = no value
	Str  string  `json:"str,omitempty"`  // String payload if Kind is slot.KindString
	Num  float64 `json:"num,omitempty"`  // Number payload if Kind is slot.KindNumber

	// Response only fields
	Names    []string `json:"names,omitempty"`     // Used for: Hosts responses
	MaxBytes uint32   `json:"max_bytes,omitempty"` // Used for: Limits responses
	MaxSlots uint32   `json:"max_slots,omitempty"` // Used for: Limits responses
	Used     uint32   `json:"used,omitempty"`      // Used for: Limits responses (slots in use)
	Ok       bool     `json:"ok,omitempty"`        // Used for: Get responses
	Err      string   `json:"err,omitempty"`       // Empty if no error, otherwise contains the error message
}

// SlotValue returns the slot value carried by the message.
func (m *Message) SlotValue() (slot.Value, error) {
	switch slot.Kind(m.Kind) {
	case slot.KindString:
		return slot.String(m.Str), nil
	case slot.KindNumber:
		return slot.Number(m.Num), nil
	default:
		return slot.Value{}, fmt.Errorf("message carries no slot value (kind %d)", m.Kind)
	}
}

// setSlotValue stores v in the message
func (m *Message) setSlotValue(v slot.Value) {
	m.Kind = uint8(v.Kind())
	if s, ok := v.Str(); ok {
		m.Str = s
	} else if n, ok := v.Num(); ok {
		m.Num = n
	}
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewGetRequest creates a new Get request
func NewGetRequest(name string) *Message {
	return &Message{
		MsgType: MsgTSlotGet,
		Name:    name,
	}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value slot.Value, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTSlotGet,
		Ok:      ok,
	}
	if ok {
		msg.setSlotValue(value)
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewSetRequest creates a new Set request
func NewSetRequest(name string, value slot.Value) *Message {
	msg := &Message{
		MsgType: MsgTSlotSet,
		Name:    name,
	}
	msg.setSlotValue(value)
	return msg
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTSlotSet,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(name string) *Message {
	return &Message{
		MsgType: MsgTSlotDelete,
		Name:    name,
	}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTSlotDelete,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewHostsRequest creates a new Hosts request
func NewHostsRequest() *Message {
	return &Message{
		MsgType: MsgTHosts,
	}
}

// NewHostsResponse creates a new Hosts response
func NewHostsResponse(ids []string, err error) *Message {
	msg := &Message{
		MsgType: MsgTHosts,
		Names:   ids,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewLimitsRequest creates a new Limits request
func NewLimitsRequest() *Message {
	return &Message{
		MsgType: MsgTLimits,
	}
}

// NewLimitsResponse creates a new Limits response
func NewLimitsResponse(maxBytes, maxSlots, used int, err error) *Message {
	msg := &Message{
		MsgType:  MsgTLimits,
		MaxBytes: uint32(max(maxBytes, 0)),
		MaxSlots: uint32(max(maxSlots, 0)),
		Used:     uint32(max(used, 0)),
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTSlotGet:
		return "get"
	case MsgTSlotSet:
		return "set"
	case MsgTSlotDelete:
		return "delete"
	case MsgTHosts:
		return "hosts"
	case MsgTLimits:
		return "limits"
	case MsgTError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "get":
		*t = MsgTSlotGet
	case "set":
		*t = MsgTSlotSet
	case "delete":
		*t = MsgTSlotDelete
	case "hosts":
		*t = MsgTHosts
	case "limits":
		*t = MsgTLimits
	case "error":
		*t = MsgTError
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTError               // Indicates an error occurred

	// slot.Host operations

	MsgTSlotGet    // Read a slot
	MsgTSlotSet    // Write a slot
	MsgTSlotDelete // Clear a slot

	// slot.Provider operations

	MsgTHosts  // List host objects
	MsgTLimits // Query the slot limits of the served hosts
)
