package spacepacket

import (
	"encoding/binary"
	"fmt"
)

// PrimaryHeaderSize is the fixed size of the primary header in bytes.
const PrimaryHeaderSize = 6

// PacketType distinguishes telemetry (downlink) from telecommand (uplink) packets.
type PacketType uint8

const (
	Telemetry   PacketType = 0
	Telecommand PacketType = 1
)

func (t PacketType) String() string {
	switch t {
	case Telemetry:
		return "telemetry"
	case Telecommand:
		return "telecommand"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Bit masks for the fields packed into the first two 16-bit words
// of the primary header.
const (
	maskVersionNumber       = 0xE000
	maskPacketType          = 0x1000
	maskSecondaryHeaderFlag = 0x0800
	maskAPID                = 0x07FF

	maskSequenceFlags   = 0xC000
	maskSequenceCounter = 0x3FFF
)

// PrimaryHeader is the fixed 6-byte packet prefix. Fields are bit-packed
// across two big-endian 16-bit words, followed by a 16-bit length word.
type PrimaryHeader struct {
	VersionNumber       uint8      // 3 bits
	PacketType          PacketType // 1 bit
	SecondaryHeaderFlag bool       // 1 bit
	APID                uint16     // 11 bits
	SequenceFlags       uint8      // 2 bits
	SequenceCounter     uint16     // 14 bits
	DataLength          uint16     // 16 bits, stored as count minus one
}

// DataFieldLength returns the actual byte length of the data field that
// follows the primary header. The wire encodes it as a count-minus-one
// value, so a DataLength of 0 still means one data byte.
func (h PrimaryHeader) DataFieldLength() int {
	return int(h.DataLength) + 1
}

// DecodePrimaryHeader parses the 6-byte primary header.
func DecodePrimaryHeader(buf []byte) (PrimaryHeader, error) {
	if len(buf) != PrimaryHeaderSize {
		return PrimaryHeader{}, fmt.Errorf("%w: need %d bytes, got %d", ErrMalformedHeader, PrimaryHeaderSize, len(buf))
	}

	word := binary.BigEndian.Uint16(buf[0:2])
	packetType, err := packetTypeFromCode(uint8((word & maskPacketType) >> 12))
	if err != nil {
		return PrimaryHeader{}, err
	}

	header := PrimaryHeader{
		VersionNumber:       uint8((word & maskVersionNumber) >> 13),
		PacketType:          packetType,
		SecondaryHeaderFlag: (word&maskSecondaryHeaderFlag)>>11 != 0,
		APID:                word & maskAPID,
	}

	word = binary.BigEndian.Uint16(buf[2:4])
	header.SequenceFlags = uint8((word & maskSequenceFlags) >> 14)
	header.SequenceCounter = word & maskSequenceCounter

	header.DataLength = binary.BigEndian.Uint16(buf[4:6])

	return header, nil
}

// Encode serializes the header back to its 6-byte wire form.
// Encode is the exact inverse of DecodePrimaryHeader.
func (h PrimaryHeader) Encode() []byte {
	buf := make([]byte, PrimaryHeaderSize)

	word := uint16(h.VersionNumber) << 13
	word |= uint16(h.PacketType) << 12
	if h.SecondaryHeaderFlag {
		word |= maskSecondaryHeaderFlag
	}
	word |= h.APID & maskAPID
	binary.BigEndian.PutUint16(buf[0:2], word)

	word = uint16(h.SequenceFlags) << 14
	word |= h.SequenceCounter & maskSequenceCounter
	binary.BigEndian.PutUint16(buf[2:4], word)

	binary.BigEndian.PutUint16(buf[4:6], h.DataLength)

	return buf
}

// packetTypeFromCode validates the decoded packet type bit. A single bit
// cannot carry any other value today, but the domain is checked anyway so
// a widened enum can never slip through undetected.
func packetTypeFromCode(code uint8) (PacketType, error) {
	switch code {
	case 0:
		return Telemetry, nil
	case 1:
		return Telecommand, nil
	default:
		return 0, fmt.Errorf("%w: packet type code %d out of range", ErrMalformedHeader, code)
	}
}
