package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/jarodlopez/homemartshop/internal/config"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/kafka"
	"github.com/jarodlopez/homemartshop/internal/orderfeed"
	logx "github.com/jarodlopez/homemartshop/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logx.Init(cfg.Environment)

	if !cfg.Kafka.Enabled() {
		log.Fatal().Msg("order feed requires HOMEMART_KAFKA_BROKERS")
	}

	log.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Msg("order feed starting")

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	defer consumer.Close()

	handler := orderfeed.NewHandler()

	go func() {
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("consumer error")
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()
}
