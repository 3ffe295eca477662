package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

//nolint:gochecknoinits // this is the typical way to register bun migrations
func init() {
	migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*PacketRecord20260823101500)(nil)).
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*PacketRecord20260823101500)(nil)).
			IfExists().
			Exec(ctx)
		return err
	})
}

// PacketRecord20260823101500 is a frozen copy of the packet archive model
// as of this migration. Later schema changes get their own copies so old
// migrations keep producing the schema they were written against.
type PacketRecord20260823101500 struct {
	bun.BaseModel `bun:"table:packet_records"`

	ID    uint   `bun:"id,pk,autoincrement,type:int(10) unsigned"`
	RunID string `bun:"type:varchar(36),notnull"`

	PacketType      uint8  `bun:"type:tinyint unsigned,notnull"`
	APID            uint16 `bun:"apid,type:smallint unsigned,notnull"`
	SequenceFlags   uint8  `bun:"type:tinyint unsigned,notnull"`
	SequenceCounter uint16 `bun:"type:smallint unsigned,notnull"`
	DataLength      uint16 `bun:"type:smallint unsigned,notnull"`

	TimeWeek *uint32 `bun:"type:int unsigned"`
	TimeMS   *uint32 `bun:"type:int unsigned"`

	UserData []byte `bun:"type:blob"`
	Checksum uint16 `bun:"type:smallint unsigned,notnull"`

	CreatedAt time.Time `bun:"type:timestamp,notnull,default:current_timestamp"`
}
