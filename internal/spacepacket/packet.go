// Package spacepacket implements the CCSDS-style space packet data model:
// a 6-byte bit-packed primary header followed by a variable-length data
// field holding an optional secondary header, an optional user payload and
// a mandatory trailing checksum.
package spacepacket

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrMalformedHeader reports a header field outside its defined domain.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrDataFieldTooShort reports a data field shorter than its mandatory parts.
	ErrDataFieldTooShort = errors.New("data field too short")

	// ErrChecksumMismatch reports a frame whose accumulated checksum is not
	// self-consistent. Distinct from truncation so callers can tell wrong
	// bytes from missing bytes.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Packet is one complete decoded space packet. Packets are immutable value
// objects once constructed.
//
// The optional parts are derived from the rest of the frame, never stored
// redundantly: the secondary header is present iff the primary header flags
// it, user data is present iff the data field has bytes left after the
// secondary header and the trailing checksum are removed.
type Packet struct {
	PrimaryHeader   PrimaryHeader
	SecondaryHeader *SecondaryHeader
	UserData        *UserDataField
	Checksum        uint16
}

// NewPacket composes a packet from already-decoded components and computes
// its checksum. The checksum is stored on the packet, not yet appended to
// any buffer.
func NewPacket(pri PrimaryHeader, sec *SecondaryHeader, data *UserDataField) Packet {
	state := NewChecksumState().Update(pri.Encode())
	if sec != nil {
		state = state.Update(sec.Encode())
	}
	if data != nil {
		state = state.Update(data.Data)
	}

	return Packet{
		PrimaryHeader:   pri,
		SecondaryHeader: sec,
		UserData:        data,
		Checksum:        state.Sum(),
	}
}

// DecodePacket builds a packet from the 6-byte header buffer and the data
// field buffer exactly as they were framed off the wire. The frame reader
// guarantees len(dataBuf) matches the header's length field; this function
// guards only the minimum lengths it needs to slice safely.
func DecodePacket(headerBuf, dataBuf []byte) (Packet, error) {
	pri, err := DecodePrimaryHeader(headerBuf)
	if err != nil {
		return Packet{}, err
	}

	hasSecHeader := pri.SecondaryHeaderFlag
	minLen := ChecksumSize
	if hasSecHeader {
		minLen += SecondaryHeaderSize
	}
	if len(dataBuf) < minLen {
		return Packet{}, fmt.Errorf("%w: need at least %d bytes, got %d", ErrDataFieldTooShort, minLen, len(dataBuf))
	}

	// The last two bytes of the data field are always the checksum.
	end := len(dataBuf) - ChecksumSize
	hasUserData := end > minLen-ChecksumSize

	var secHeader *SecondaryHeader
	var userData *UserDataField

	// The four presence cases, kept as an explicit closed set.
	switch {
	case hasSecHeader && hasUserData:
		sec, err := DecodeSecondaryHeader(dataBuf[0:SecondaryHeaderSize])
		if err != nil {
			return Packet{}, err
		}
		data := NewUserDataField(dataBuf[SecondaryHeaderSize:end])
		secHeader, userData = &sec, &data
	case hasSecHeader && !hasUserData:
		sec, err := DecodeSecondaryHeader(dataBuf[0:SecondaryHeaderSize])
		if err != nil {
			return Packet{}, err
		}
		secHeader = &sec
	case !hasSecHeader && hasUserData:
		data := NewUserDataField(dataBuf[0:end])
		userData = &data
	case !hasSecHeader && !hasUserData:
		// Nothing but the checksum.
	}

	// Accumulating over the whole frame, trailing checksum bytes included,
	// must land on the valid sentinel.
	state := NewChecksumState().Update(headerBuf).Update(dataBuf)
	if !state.Valid() {
		return Packet{}, fmt.Errorf("%w: residue 0x%04X", ErrChecksumMismatch, state.Sum())
	}

	return Packet{
		PrimaryHeader:   pri,
		SecondaryHeader: secHeader,
		UserData:        userData,
		Checksum:        binary.BigEndian.Uint16(dataBuf[end:]),
	}, nil
}

// Encode serializes the packet to its full wire form: primary header,
// optional secondary header, optional user data, trailing checksum.
func (p Packet) Encode() []byte {
	buf := p.PrimaryHeader.Encode()
	if p.SecondaryHeader != nil {
		buf = append(buf, p.SecondaryHeader.Encode()...)
	}
	if p.UserData != nil {
		buf = append(buf, p.UserData.Data...)
	}
	return AppendChecksum(buf)
}

// EncodeParts serializes the packet split the same way the frame reader
// splits it: the 6-byte header and the complete data field. The checksum
// is accumulated over the header first, then continued over the data
// field, which gives the same result as checksumming the whole frame.
func (p Packet) EncodeParts() (header, data []byte) {
	header = p.PrimaryHeader.Encode()
	state := NewChecksumState().Update(header)

	if p.SecondaryHeader != nil {
		data = append(data, p.SecondaryHeader.Encode()...)
	}
	if p.UserData != nil {
		data = append(data, p.UserData.Data...)
	}
	data = state.AppendTo(data)

	return header, data
}
