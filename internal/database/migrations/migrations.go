package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//nolint:gochecknoglobals // migrations are global
var migrations = migrate.NewMigrations()

func Migrate(ctx context.Context, db *bun.DB) error {
	// Bun marks failed migrations as applied by default, which hides
	// failures from restart loops (the retry "succeeds" because the bad
	// migration already counts as applied) and only surfaces them later as
	// runtime query errors. Only mark on success instead.
	// See: https://bun.uptrace.dev/guide/migrations.html#migration-names
	migrator := migrate.NewMigrator(db, migrations, migrate.WithMarkAppliedOnSuccess(true))

	err := migrator.Init(ctx)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err = migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck // nothing we can really do if this fails

	_, err = migrator.Migrate(ctx)
	return err
}
