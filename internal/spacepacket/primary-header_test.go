package spacepacket

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

var (
	sp1Header = []byte{0x08, 0x73, 0xC1, 0x23, 0x00, 0x0F}
	sp2Header = []byte{0x17, 0x54, 0xC6, 0x82, 0x00, 0x04}
)

func TestDecodePrimaryHeader(t *testing.T) {
	testCases := []struct {
		name string
		buf  []byte
		want PrimaryHeader
	}{
		{
			name: "TelemetryWithSecondaryHeader",
			buf:  sp1Header,
			want: PrimaryHeader{
				VersionNumber:       0,
				PacketType:          Telemetry,
				SecondaryHeaderFlag: true,
				APID:                0x0073,
				SequenceFlags:       0x03,
				SequenceCounter:     0x0123,
				DataLength:          0x000F,
			},
		},
		{
			name: "TelecommandWithoutSecondaryHeader",
			buf:  sp2Header,
			want: PrimaryHeader{
				VersionNumber:       0,
				PacketType:          Telecommand,
				SecondaryHeaderFlag: false,
				APID:                0x0754,
				SequenceFlags:       0x03,
				SequenceCounter:     0x0682,
				DataLength:          0x0004,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := DecodePrimaryHeader(tc.buf)
			if err != nil {
				t.Fatalf("DecodePrimaryHeader failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("header mismatch: got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestPrimaryHeaderEncodeIsInverse(t *testing.T) {
	for _, buf := range [][]byte{sp1Header, sp2Header} {
		header, err := DecodePrimaryHeader(buf)
		if err != nil {
			t.Fatalf("DecodePrimaryHeader failed: %v", err)
		}
		if got := header.Encode(); !bytes.Equal(got, buf) {
			t.Fatalf("encode(decode(b)) != b: got %X, want %X", got, buf)
		}
	}
}

func TestPrimaryHeaderRoundTripRandom(t *testing.T) {
	// Every 6-byte buffer is a decodable header (the 1-bit packet type can
	// only be 0 or 1), so encode(decode(b)) == b must hold for any input.
	for i := 0; i < 256; i++ {
		buf := make([]byte, PrimaryHeaderSize)
		if _, err := rand.Read(buf); err != nil {
			t.Fatalf("failed to generate random header: %v", err)
		}

		header, err := DecodePrimaryHeader(buf)
		if err != nil {
			t.Fatalf("DecodePrimaryHeader(%X) failed: %v", buf, err)
		}
		if got := header.Encode(); !bytes.Equal(got, buf) {
			t.Fatalf("round trip mismatch: got %X, want %X", got, buf)
		}

		again, err := DecodePrimaryHeader(header.Encode())
		if err != nil {
			t.Fatalf("DecodePrimaryHeader failed on re-encoded header: %v", err)
		}
		if again != header {
			t.Fatalf("decode(encode(h)) != h: got %+v, want %+v", again, header)
		}
	}
}

func TestDecodePrimaryHeaderWrongSize(t *testing.T) {
	for _, size := range []int{0, 1, 5, 7} {
		_, err := DecodePrimaryHeader(make([]byte, size))
		if !errors.Is(err, ErrMalformedHeader) {
			t.Fatalf("size %d: expected ErrMalformedHeader, got %v", size, err)
		}
	}
}

func TestDataFieldLengthIsCountMinusOne(t *testing.T) {
	header := PrimaryHeader{DataLength: 0x000F}
	if got := header.DataFieldLength(); got != 16 {
		t.Fatalf("DataFieldLength: got %d, want 16", got)
	}

	header.DataLength = 0
	if got := header.DataFieldLength(); got != 1 {
		t.Fatalf("DataFieldLength with zero field: got %d, want 1", got)
	}
}

func TestPacketTypeString(t *testing.T) {
	if Telemetry.String() != "telemetry" || Telecommand.String() != "telecommand" {
		t.Fatalf("unexpected PacketType strings: %q, %q", Telemetry, Telecommand)
	}
}
