package database

import (
	"context"
	"time"
)

// PacketRecord is one archived decoded packet. RunID groups the rows of a
// single frame-reader run.
type PacketRecord struct {
	ID    uint   `bun:"id,pk,autoincrement,type:int(10) unsigned"`
	RunID string `bun:"type:varchar(36),notnull"`

	PacketType      uint8  `bun:"type:tinyint unsigned,notnull"`
	APID            uint16 `bun:"apid,type:smallint unsigned,notnull"`
	SequenceFlags   uint8  `bun:"type:tinyint unsigned,notnull"`
	SequenceCounter uint16 `bun:"type:smallint unsigned,notnull"`
	DataLength      uint16 `bun:"type:smallint unsigned,notnull"`

	// Timestamp fields from the secondary header, NULL when the packet
	// carried none.
	TimeWeek *uint32 `bun:"type:int unsigned"`
	TimeMS   *uint32 `bun:"type:int unsigned"`

	UserData []byte `bun:"type:blob"`
	Checksum uint16 `bun:"type:smallint unsigned,notnull"`

	CreatedAt time.Time `bun:"type:timestamp,notnull,default:current_timestamp"`
}

type PacketRecordQueries interface {
	InsertPacketRecord(ctx context.Context, record *PacketRecord) (PacketRecord, error)
	CountPacketRecordsByRun(ctx context.Context, runID string) (int, error)
}

func (q *queriesImpl) InsertPacketRecord(ctx context.Context, record *PacketRecord) (PacketRecord, error) {
	_, err := q.db.NewInsert().Model(record).Exec(ctx)
	if err != nil {
		return PacketRecord{}, err
	}

	return *record, nil
}

func (q *queriesImpl) CountPacketRecordsByRun(ctx context.Context, runID string) (int, error) {
	return q.db.NewSelect().
		Model((*PacketRecord)(nil)).
		Where("run_id = ?", runID).
		Count(ctx)
}
