package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
)

// headerSize is the fixed part of a frame
const headerSize = 14

// writeFrame writes a frame to the connection with the format:
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - 2 bytes: host id length (uint16, big endian)
// - M bytes: host id
// - N bytes: data payload
func writeFrame(conn net.Conn, hostID string, requestID uint64, data []byte) error {
	if len(hostID) > math.MaxUint16 {
		return fmt.Errorf("host id too long (%d bytes)", len(hostID))
	}

	header := make([]byte, headerSize, headerSize+len(hostID))
	binary.BigEndian.PutUint64(header[:8], requestID)
	binary.BigEndian.PutUint32(header[8:12], uint32(len(data)))
	binary.BigEndian.PutUint16(header[12:14], uint16(len(hostID)))
	header = append(header, hostID...)

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a frame from the connection using the provided buffer
// If the buffer is too small, it will allocate a new temporary buffer for the data
func readFrame(r io.Reader, buf []byte) (hostID string, requestID uint64, data []byte, err error) {
	var header [headerSize]byte

	// Read header
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return "", 0, nil, err
	}

	// Parse header
	requestID = binary.BigEndian.Uint64(header[:8])
	contentLength := binary.BigEndian.Uint32(header[8:12])
	hostLength := binary.BigEndian.Uint16(header[12:14])

	// Read host id
	if hostLength > 0 {
		id := make([]byte, hostLength)
		if _, err := io.ReadFull(r, id); err != nil {
			return "", requestID, nil, err
		}
		hostID = string(id)
	}

	// If no data, return empty slice
	if contentLength == 0 {
		return hostID, requestID, []byte{}, nil
	}

	// Check if buffer is large enough for data
	if len(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}

	// Read data
	if _, err := io.ReadFull(r, buf[:contentLength]); err != nil {
		return "", requestID, nil, err
	}

	return hostID, requestID, buf[:contentLength], nil
}
