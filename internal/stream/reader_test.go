package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/groundsegment/space-packets/internal/spacepacket"
)

var (
	sp1Frame = []byte{
		0x08, 0x73, 0xC1, 0x23, 0x00, 0x0F,
		0x00, 0x00, 0x12, 0x34, 0x00, 0xAB, 0xCD, 0xEF,
		0xA5, 0xA5, 0x5A, 0x5A, 0xC3, 0x3C, 0xC1, 0xF8,
	}
	sp2Frame = []byte{0x17, 0x54, 0xC6, 0x82, 0x00, 0x04, 0x01, 0x02, 0x00, 0x2D, 0xDD}
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runReader(t *testing.T, source []byte) ([]spacepacket.Packet, error) {
	t.Helper()

	reader, packets := NewReader(bytes.NewReader(source), testLogger(), 0)
	err := reader.Run(context.Background())

	var got []spacepacket.Packet
	for pkt := range packets {
		got = append(got, pkt)
	}

	return got, err
}

func TestReaderDecodesFrames(t *testing.T) {
	source := append(append([]byte(nil), sp1Frame...), sp2Frame...)

	packets, err := runReader(t, source)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}

	first, second := packets[0], packets[1]
	if first.PrimaryHeader.APID != 0x0073 || first.PrimaryHeader.PacketType != spacepacket.Telemetry {
		t.Fatalf("unexpected first packet: %+v", first.PrimaryHeader)
	}
	if second.PrimaryHeader.APID != 0x0754 || second.PrimaryHeader.PacketType != spacepacket.Telecommand {
		t.Fatalf("unexpected second packet: %+v", second.PrimaryHeader)
	}

	// Re-encoding must reproduce the reader's own header/body split.
	header, data := first.EncodeParts()
	if !bytes.Equal(header, sp1Frame[:spacepacket.PrimaryHeaderSize]) {
		t.Fatalf("header mismatch: got %X", header)
	}
	if !bytes.Equal(data, sp1Frame[spacepacket.PrimaryHeaderSize:]) {
		t.Fatalf("data field mismatch: got %X", data)
	}
}

func TestReaderDeliversWireOrder(t *testing.T) {
	const frameCount = 50

	var source []byte
	for i := 0; i < frameCount; i++ {
		data := spacepacket.NewUserDataField([]byte{byte(i), byte(i >> 8)})
		pkt := spacepacket.NewPacket(spacepacket.PrimaryHeader{
			PacketType:      spacepacket.Telemetry,
			APID:            0x0073,
			SequenceFlags:   0x03,
			SequenceCounter: uint16(i),
			DataLength:      uint16(len(data.Data) + spacepacket.ChecksumSize - 1),
		}, nil, &data)
		source = append(source, pkt.Encode()...)
	}

	packets, err := runReader(t, source)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(packets) != frameCount {
		t.Fatalf("expected %d packets, got %d", frameCount, len(packets))
	}
	for i, pkt := range packets {
		if pkt.PrimaryHeader.SequenceCounter != uint16(i) {
			t.Fatalf("packet %d out of order: sequence counter %d", i, pkt.PrimaryHeader.SequenceCounter)
		}
	}
}

func TestReaderCleanTerminationAtBoundary(t *testing.T) {
	testCases := []struct {
		name    string
		source  []byte
		packets int
	}{
		{name: "EmptySource", source: nil, packets: 0},
		{name: "AfterOneFrame", source: sp2Frame, packets: 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			packets, err := runReader(t, tc.source)
			if err != nil {
				t.Fatalf("expected clean termination, got %v", err)
			}
			if len(packets) != tc.packets {
				t.Fatalf("expected %d packets, got %d", tc.packets, len(packets))
			}
		})
	}
}

func TestReaderTruncatedFrames(t *testing.T) {
	testCases := []struct {
		name   string
		source []byte
	}{
		{name: "PartialHeader", source: sp1Frame[:3]},
		{name: "MissingBody", source: sp1Frame[:spacepacket.PrimaryHeaderSize]},
		{name: "PartialBody", source: sp1Frame[:8]},
		{name: "SecondFrameCutShort", source: append(append([]byte(nil), sp1Frame...), sp2Frame[:4]...)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := runReader(t, tc.source)
			if !errors.Is(err, ErrTruncatedFrame) {
				t.Fatalf("expected ErrTruncatedFrame, got %v", err)
			}
		})
	}
}

func TestReaderChecksumFailureStopsRun(t *testing.T) {
	corrupted := append([]byte(nil), sp1Frame...)
	corrupted[len(corrupted)-1] ^= 0x01

	packets, err := runReader(t, corrupted)
	if !errors.Is(err, spacepacket.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
	if len(packets) != 0 {
		t.Fatalf("expected no packets from a corrupted frame, got %d", len(packets))
	}
}

func TestReaderObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader, packets := NewReader(bytes.NewReader(sp1Frame), testLogger(), 0)
	if err := reader.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The channel must be closed even on a cancelled run.
	if _, open := <-packets; open {
		t.Fatal("expected output channel to be closed")
	}
}

func TestReaderBlocksWithoutDropping(t *testing.T) {
	// Capacity 1 with two frames on the wire: the producer must block on
	// the second packet until the consumer makes room, and both packets
	// must arrive.
	source := append(append([]byte(nil), sp1Frame...), sp2Frame...)
	reader, packets := NewReader(bytes.NewReader(source), testLogger(), 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- reader.Run(context.Background())
	}()

	var got []spacepacket.Packet
	for pkt := range packets {
		got = append(got, pkt)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(got))
	}
}
