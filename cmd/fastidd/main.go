// Command fastidd exposes a fastid worker over HTTP. The core library
// needs no process around it; this binary is the reference wiring of
// configuration, machine-ID allocation and transport for deployments
// that want IDs as a service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lzww0608/fastid"
	"github.com/Lzww0608/fastid/machineid"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := newLogger(cfg.Log)
	logger.Info().Msg("starting fastidd")

	alloc, err := newAllocator(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create machine-id allocator")
	}
	defer alloc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	machineID, err := alloc.Allocate(ctx)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to allocate machine id")
	}

	worker := fastid.WithBitsAndEpoch(
		cfg.Worker.TimeBits,
		cfg.Worker.MachineBits,
		cfg.Worker.SequenceBits,
		machineID,
		cfg.Worker.EpochNanos,
	)
	logger.Info().
		Uint64("machine_id", worker.MachineID()).
		Uint64("time_bits", cfg.Worker.TimeBits).
		Uint64("machine_bits", cfg.Worker.MachineBits).
		Uint64("sequence_bits", cfg.Worker.SequenceBits).
		Msg("worker initialized")

	srv := newServer(cfg.Server, worker, logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()
	logger.Info().Str("addr", srv.Addr).Msg("listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down fastidd")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
	logger.Info().Msg("fastidd stopped")
}

// newAllocator picks the machine-ID source: ZooKeeper registration when
// an ensemble is configured, a MySQL lease when a DSN is, otherwise the
// statically configured ID.
func newAllocator(cfg *config, logger zerolog.Logger) (machineid.Allocator, error) {
	switch {
	case len(cfg.ZooKeeper.Servers) > 0:
		logger.Info().Strs("servers", cfg.ZooKeeper.Servers).Msg("allocating machine id via zookeeper")
		return machineid.NewZooKeeper(machineid.ZooKeeperConfig{
			Servers:     cfg.ZooKeeper.Servers,
			Service:     cfg.ZooKeeper.Service,
			Instance:    cfg.ZooKeeper.Instance,
			MachineBits: cfg.Worker.MachineBits,
		})
	case cfg.MySQL.DSN != "":
		logger.Info().Msg("allocating machine id via mysql lease")
		capacity := uint64(0)
		if cfg.Worker.MachineBits < 64 {
			capacity = 1 << cfg.Worker.MachineBits
		}
		return machineid.NewMySQL(machineid.MySQLConfig{
			DSN:      cfg.MySQL.DSN,
			Owner:    cfg.MySQL.Owner,
			Capacity: capacity,
		})
	default:
		return machineid.Static(cfg.Worker.MachineID), nil
	}
}

func newLogger(cfg logConfig) zerolog.Logger {
	var out = os.Stdout
	w := zerolog.New(out)
	if cfg.Pretty {
		w = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen})
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return w.Level(level).With().Timestamp().Str("service", "fastidd").Logger()
}
