// Package stream frames a continuous byte stream into space packets: a
// fixed 6-byte primary header announces the length of the data field that
// follows, so the reader alternates between an exact header read and an
// exact body read, decoding and publishing one packet per frame.
package stream

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/groundsegment/space-packets/internal/spacepacket"
)

const (
	// MaxDataFieldSize is the largest data field a header can announce
	// (the 16-bit length field is count minus one).
	MaxDataFieldSize = 65536

	// bufferSize covers one maximum-size frame.
	bufferSize = spacepacket.PrimaryHeaderSize + MaxDataFieldSize

	// DefaultChannelCapacity is the default bound on pending packets.
	DefaultChannelCapacity = 1024
)

// ErrTruncatedFrame reports a source that ended (or failed) in the middle
// of a frame. The protocol has no end-of-stream marker, so only an exact
// boundary read is distinguishable from corruption; any other truncation
// means the source was cut mid-frame and is never silently tolerated.
var ErrTruncatedFrame = errors.New("truncated frame")

// Reader frames packets off a byte source and publishes them, in wire
// order, to a bounded output channel.
//
// The channel is a must-deliver queue: the reader blocks when it is full,
// no packet is ever dropped, and the channel is closed on every exit path
// so consumers ranging over it observe end-of-stream instead of blocking
// forever. The reader is the sole owner of the source; opening and closing
// the source belongs to the caller.
type Reader struct {
	src  *bufio.Reader
	log  *slog.Logger
	out  chan spacepacket.Packet
	hbuf [spacepacket.PrimaryHeaderSize]byte
	dbuf []byte
}

// NewReader wraps src and returns the reader together with the receive
// side of its output channel. A capacity below 1 selects
// DefaultChannelCapacity.
func NewReader(src io.Reader, logger *slog.Logger, capacity int) (*Reader, <-chan spacepacket.Packet) {
	if capacity < 1 {
		capacity = DefaultChannelCapacity
	}

	reader := &Reader{
		src:  bufio.NewReaderSize(src, bufferSize),
		log:  logger,
		out:  make(chan spacepacket.Packet, capacity),
		dbuf: make([]byte, 0, MaxDataFieldSize),
	}

	return reader, reader.out
}

// Run frames packets until the source is exhausted, a frame-level error
// occurs or ctx is cancelled. A source that ends exactly at a header
// boundary terminates the run cleanly; every other short read is fatal.
// There is no resynchronization: the caller decides whether to restart
// framing from a fresh stream position.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err := r.readFrame()
		if err != nil {
			return err
		}
		if done {
			r.log.Debug("source exhausted at frame boundary")
			return nil
		}

		pkt, err := spacepacket.DecodePacket(r.hbuf[:], r.dbuf)
		if err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}

		select {
		case r.out <- pkt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// readFrame performs the two-phase read: exactly 6 header bytes, then
// exactly the data-field length the header announces. It reports done
// only when the source offered zero bytes at the header boundary.
func (r *Reader) readFrame() (done bool, err error) {
	if _, err := io.ReadFull(r.src, r.hbuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			// Zero bytes at the boundary: clean end of stream.
			return true, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return false, fmt.Errorf("%w: header cut short of %d bytes", ErrTruncatedFrame, spacepacket.PrimaryHeaderSize)
		}
		return false, fmt.Errorf("read header: %w", err)
	}

	// The last header word carries the data-field length as count minus one.
	dataLen := int(binary.BigEndian.Uint16(r.hbuf[4:6])) + 1
	r.dbuf = r.dbuf[:dataLen]

	if _, err := io.ReadFull(r.src, r.dbuf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, fmt.Errorf("%w: body cut short of %d bytes", ErrTruncatedFrame, dataLen)
		}
		return false, fmt.Errorf("read body: %w", err)
	}

	return false, nil
}
