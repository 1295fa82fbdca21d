package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSlotDelete},

		// Requests built by the factories
		*common.NewGetRequest("dynamicdb:world_length"),
		*common.NewSetRequest("dynamicdb:world_0", slot.String(`{"a":"hell`)),
		*common.NewSetRequest("dynamicdb:world_length", slot.Number(2)),
		*common.NewHostsRequest(),

		// Get responses
		*common.NewGetResponse(slot.String("o\"}"), true, nil),
		*common.NewGetResponse(slot.Number(-1.5), true, nil),
		*common.NewGetResponse(slot.Value{}, false, nil),

		// Provider responses
		*common.NewHostsResponse([]string{"world", "2c9f1a7e-0f7e-4a6d-9b1e-5b2f3c4d5e6f"}, nil),
		*common.NewLimitsResponse(slot.DefaultMaxSlotBytes, 0, 0, nil),
		*common.NewLimitsResponse(10, 4, 3, nil),
		*common.NewLimitsResponse(0, 0, 7, nil),

		// Error response
		*common.NewErrorResponse("test error message"),

		// Unicode payload
		*common.NewSetRequest("ns:h€llo_0", slot.String("日本語 🙂")),
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			// MsgTUnknown is skipped since json rejects it
			for msgType := common.MsgTError; msgType <= common.MsgTLimits; msgType++ {
				msg := common.Message{MsgType: msgType}

				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Check type
				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestDeserializeResetsMessage tests that fields of a reused message do not leak into the next one
func TestDeserializeResetsMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			first, err := serializer.Serialize(*common.NewGetResponse(slot.String("payload"), true, nil))
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			second, err := serializer.Serialize(*common.NewDeleteResponse(nil))
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			var msg common.Message
			if err := serializer.Deserialize(first, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if err := serializer.Deserialize(second, &msg); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if msg.Ok || msg.Kind != 0 || msg.Str != "" {
				t.Errorf("Stale fields after reuse: %+v", msg)
			}
		})
	}
}

// TestSlotValue tests the conversion between messages and slot values
func TestSlotValue(t *testing.T) {
	v, err := common.NewSetRequest("n", slot.Number(42)).SlotValue()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n, ok := v.Num(); !ok || n != 42 {
		t.Errorf("Expected number 42, got %v", v)
	}

	v, err = common.NewSetRequest("s", slot.String("")).SlotValue()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s, ok := v.Str(); !ok || s != "" {
		t.Errorf("Expected empty string, got %v", v)
	}

	if _, err := common.NewGetRequest("x").SlotValue(); err == nil {
		t.Errorf("Expected error for message without value")
	}
}

// TestFromName tests the serializer lookup by name
func TestFromName(t *testing.T) {
	for _, name := range []string{"binary", "json", "gob"} {
		if s, ok := FromName(name); !ok || s == nil {
			t.Errorf("Expected serializer for %q", name)
		}
	}
	if _, ok := FromName("xml"); ok {
		t.Errorf("Expected no serializer for xml")
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for name",
			data:        []byte{2, 1, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims name length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Missing number payload",
			data:        []byte{3, 2, 2, 0, 0}, // Number kind but only 2 of 8 bytes
			expectError: true,
		},
		{
			name:        "Unknown value kind",
			data:        []byte{3, 2, 9},
			expectError: true,
		},
		{
			name:        "Too many names",
			data:        []byte{6, 4, 0xff, 0xff, 0xff, 0xff}, // Claims 4 billion names
			expectError: true,
		},
		{
			name:        "Truncated limits",
			data:        []byte{7, 8, 0, 0, 0x7f},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}

// TestBinaryRejectsUnknownKind tests that a message with an unknown value kind is not serialized
func TestBinaryRejectsUnknownKind(t *testing.T) {
	_, err := NewBinarySerializer().Serialize(common.Message{MsgType: common.MsgTSlotSet, Kind: 9})
	if err == nil {
		t.Errorf("Expected error for unknown kind")
	}
}
