package decoder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/groundsegment/space-packets/internal/database"
	"github.com/groundsegment/space-packets/internal/spacepacket"
)

const archiveTimeout = 5 * time.Second

// consumePackets drains the reader's output channel in wire order: every
// packet is logged, then optionally relayed over NATS and archived. The
// loop ends when the reader closes the channel.
func (s *DecodeService) consumePackets(ctx context.Context, wg *sync.WaitGroup, packets <-chan spacepacket.Packet) {
	defer wg.Done()

	logger := s.Logger().With("component", "consumer")

	var count uint64
	for pkt := range packets {
		count++

		logger.Info("packet decoded",
			"count", count,
			"type", pkt.PrimaryHeader.PacketType.String(),
			"apid", pkt.PrimaryHeader.APID,
			"sequence_counter", pkt.PrimaryHeader.SequenceCounter,
			"data_field_length", pkt.PrimaryHeader.DataFieldLength(),
			"checksum", fmt.Sprintf("0x%04X", pkt.Checksum),
		)

		if s.Config().RelayEnabled {
			s.PublishPacketFrame(pkt.Encode())
		}

		if s.Config().ArchiveEnabled {
			s.archivePacket(ctx, logger, pkt)
		}
	}

	logger.Info("packet stream ended", "count", count)
}

func (s *DecodeService) archivePacket(ctx context.Context, logger *slog.Logger, pkt spacepacket.Packet) {
	record := packetToRecord(s.runID.String(), pkt)

	// buffered packets are still archived while the run is shutting down,
	// so the insert must survive the run context being cancelled
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	if _, err := s.DB().InsertPacketRecord(insertCtx, record); err != nil {
		logger.Error("failed to archive packet", "error", err)
	}
}

func packetToRecord(runID string, pkt spacepacket.Packet) *database.PacketRecord {
	record := &database.PacketRecord{
		RunID:           runID,
		PacketType:      uint8(pkt.PrimaryHeader.PacketType),
		APID:            pkt.PrimaryHeader.APID,
		SequenceFlags:   pkt.PrimaryHeader.SequenceFlags,
		SequenceCounter: pkt.PrimaryHeader.SequenceCounter,
		DataLength:      pkt.PrimaryHeader.DataLength,
		Checksum:        pkt.Checksum,
	}

	if pkt.SecondaryHeader != nil {
		week, ms := pkt.SecondaryHeader.TimeWeek, pkt.SecondaryHeader.TimeMS
		record.TimeWeek, record.TimeMS = &week, &ms
	}
	if pkt.UserData != nil {
		record.UserData = pkt.UserData.Data
	}

	return record
}
