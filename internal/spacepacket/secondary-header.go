package spacepacket

import (
	"encoding/binary"
	"fmt"
)

// SecondaryHeaderSize is the fixed size of the optional secondary header in bytes.
const SecondaryHeaderSize = 8

// SecondaryHeader carries the packet timestamp: a GPS-style week number
// and the millisecond offset into that week, both big-endian.
type SecondaryHeader struct {
	TimeWeek uint32
	TimeMS   uint32
}

// DecodeSecondaryHeader parses the 8-byte secondary header.
func DecodeSecondaryHeader(buf []byte) (SecondaryHeader, error) {
	if len(buf) != SecondaryHeaderSize {
		return SecondaryHeader{}, fmt.Errorf("%w: need %d bytes, got %d", ErrMalformedHeader, SecondaryHeaderSize, len(buf))
	}

	return SecondaryHeader{
		TimeWeek: binary.BigEndian.Uint32(buf[0:4]),
		TimeMS:   binary.BigEndian.Uint32(buf[4:8]),
	}, nil
}

// Encode serializes the header back to its 8-byte wire form.
func (h SecondaryHeader) Encode() []byte {
	buf := make([]byte, SecondaryHeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.TimeWeek)
	binary.BigEndian.PutUint32(buf[4:8], h.TimeMS)
	return buf
}
