package spacepacket

// ChecksumSize is the size of the trailing checksum field in bytes.
const ChecksumSize = 2

// CRC-16/CCITT-FALSE, the CCSDS packet error control algorithm.
const (
	checksumInitial    = 0xFFFF
	checksumPolynomial = 0x1021
)

// ChecksumState is a running CRC over the bytes of a frame. It is a plain
// value, so a partial state over the header can be continued over the body
// and the result is identical to checksumming the whole frame at once.
type ChecksumState uint16

// NewChecksumState returns the initial accumulator state.
func NewChecksumState() ChecksumState {
	return checksumInitial
}

// Update folds data into the running state and returns the new state.
func (s ChecksumState) Update(data []byte) ChecksumState {
	crc := uint16(s)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ checksumPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return ChecksumState(crc)
}

// Sum returns the checksum value for everything accumulated so far. This
// is the value appended to a frame on the wire.
func (s ChecksumState) Sum() uint16 {
	return uint16(s)
}

// Valid reports whether the state is self-consistent. Running the
// accumulator over a full frame including its trailing checksum bytes
// lands on zero exactly when the frame is intact.
func (s ChecksumState) Valid() bool {
	return s == 0
}

// AppendTo finalizes the state, continued over buf, and returns buf with
// the big-endian checksum appended.
func (s ChecksumState) AppendTo(buf []byte) []byte {
	sum := s.Update(buf).Sum()
	return append(buf, byte(sum>>8), byte(sum))
}

// AppendChecksum checksums buf from the initial state and returns buf with
// the checksum appended.
func AppendChecksum(buf []byte) []byte {
	return NewChecksumState().AppendTo(buf)
}
