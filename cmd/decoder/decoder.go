package decoder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/groundsegment/space-packets/internal/config"
	"github.com/groundsegment/space-packets/internal/database/migrations"
	"github.com/groundsegment/space-packets/internal/service"
	"github.com/groundsegment/space-packets/internal/stream"
)

type DecodeService struct {
	*service.Service
	runID uuid.UUID
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	// setup wait group for goroutines
	var wg sync.WaitGroup

	// create a context for graceful shutdown
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	// every decode run gets its own identifier; archived rows and log
	// records carry it so runs can be told apart
	runID := uuid.New()
	logger = logger.With("run", runID.String())

	decodeService := &DecodeService{
		Service: service.New(cfg, logger),
		runID:   runID,
	}
	defer decodeService.Close()

	// connect to NATS when decoded frames are relayed downstream
	if cfg.RelayEnabled {
		if err := decodeService.CreateNATSConnection(); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
	}

	// connect to the database and run migrations when archiving is enabled
	if cfg.ArchiveEnabled {
		if err := decodeService.CreateDBConnection(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := migrations.Migrate(ctx, decodeService.DB().BunDB()); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	// the byte source is opened here and owned exclusively by the reader
	source, closeSource, err := openSource(cfg.SourcePath)
	if err != nil {
		return err
	}
	defer closeSource()

	reader, packets := stream.NewReader(source, logger.With("component", "reader"), cfg.ChannelCapacity)

	// start the frame reader goroutine: the sole producer on the channel
	runErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr <- reader.Run(ctx)
	}()

	// start the consumer goroutine
	wg.Add(1)
	go decodeService.consumePackets(ctx, &wg, packets)

	// wait for the run to finish or a shutdown signal
	return decodeService.WaitForShutdown(cancelCtx, &wg, runErr)
}

// openSource resolves the configured byte source. "-" selects stdin, which
// is not closed by the returned func; anything else is opened as a file.
func openSource(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open source: %w", err)
	}

	return file, func() { _ = file.Close() }, nil
}
