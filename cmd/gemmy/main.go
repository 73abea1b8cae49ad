// Command gemmy runs the matching engine process: one instrument, one
// OrderDispatcher/StatStream listener, one execution event publisher.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gemmy/internal/config"
	"gemmy/internal/engine"
	"gemmy/internal/publisher"
	"gemmy/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	tomb "gopkg.in/tomb.v2"
)

var configPath string

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:   "gemmy",
		Short: "gemmy runs a single-instrument limit order book matching engine",
		RunE:  runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (optional; env GEMMY_* and defaults otherwise)")

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("gemmy exited with error")
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pub publisher.Publisher
	if cfg.HasBroker() {
		log.Info().Str("broker", cfg.BrokerAddress).Str("topic", cfg.KafkaTopic).Msg("publishing execution events to kafka")
		pub = publisher.NewKafkaPublisher(cfg.BrokerAddress, cfg.KafkaTopic)
	} else {
		log.Info().Msg("no broker configured, publishing execution events to the log")
		pub = publisher.NewLogPublisher(log.Logger)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("error closing publisher")
		}
	}()

	eng := engine.New()
	streamInterval := time.Duration(cfg.StreamIntervalMillis) * time.Millisecond
	srv := server.New(cfg.ListenAddress, cfg.Symbol, eng, pub, cfg.WorkerPoolSize, streamInterval)

	t, ctx := tomb.WithContext(ctx)
	t.Go(func() error {
		srv.Run(ctx)
		return nil
	})

	log.Info().Str("symbol", cfg.Symbol).Str("address", cfg.ListenAddress).Msg("gemmy started")
	<-ctx.Done()
	srv.Shutdown()
	return t.Wait()
}
