package service

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/groundsegment/space-packets/internal/config"
	"github.com/groundsegment/space-packets/internal/database"
)

// Service bundles the shared collaborators of a decode run: configuration,
// logging, the optional NATS relay connection and the optional packet
// archive. The frame reader itself is constructed per run and handed its
// byte source explicitly, so multiple independent readers can coexist in
// one process.
type Service struct {
	log      *slog.Logger
	cfg      *config.Config
	natsConn *nats.Conn
	db       *database.DBImpl
}

func New(cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		log: logger,
		cfg: cfg,
	}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

func (s *Service) Logger() *slog.Logger {
	return s.log
}

func (s *Service) NATS() *nats.Conn {
	return s.natsConn
}

func (s *Service) DB() *database.DBImpl {
	return s.db
}

// Close releases the service's external connections.
func (s *Service) Close() {
	if s.natsConn != nil {
		s.natsConn.Close()
	}
	if s.db != nil {
		if err := s.db.BunDB().Close(); err != nil {
			s.log.Error("failed to close database", "error", err)
		}
	}
}

// WaitForShutdown blocks until either a shutdown signal arrives or the
// frame reader run completes, then cancels the context and drains the
// remaining goroutines. The reader's error, if any, is returned so the
// process exit status reflects a mid-frame failure.
func (s *Service) WaitForShutdown(cancelCtx func(), wg *sync.WaitGroup, runErr <-chan error) error {
	// setup signal handling
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var readerErr error

	// block until a signal arrives or the reader finishes on its own
	select {
	case sig := <-signalChannel:
		s.Logger().Info("shutdown signal received", "signal", sig.String())
	case readerErr = <-runErr:
		if readerErr != nil {
			s.Logger().Error("frame reader stopped", "error", readerErr)
		} else {
			s.Logger().Info("frame reader finished")
		}
	}

	// cancel context to signal all goroutines to stop
	cancelCtx()

	// wait for all goroutines to finish
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.Logger().Info("all goroutines have finished")
		return readerErr
	case <-time.After(time.Duration(s.Config().ShutdownTimeoutSeconds) * time.Second):
		s.Logger().Warn("shutdown timeout reached, forcing exit")
		return fmt.Errorf("shutdown timeout reached")
	}
}
