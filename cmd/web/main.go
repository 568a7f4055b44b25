package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jarodlopez/homemartshop/internal/api"
	"github.com/jarodlopez/homemartshop/internal/auth"
	"github.com/jarodlopez/homemartshop/internal/catalog"
	"github.com/jarodlopez/homemartshop/internal/checkout"
	"github.com/jarodlopez/homemartshop/internal/config"
	"github.com/jarodlopez/homemartshop/internal/domain/cart"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/kafka"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
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

	log.Info().
		Str("backend", cfg.Store.Backend).
		Str("addr", cfg.HTTPAddr).
		Msg("HomeMart storefront starting")

	docs, closeStore, err := store.FromConfig(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document store")
	}
	defer closeStore()

	catalogSvc := catalog.NewService(docs)
	var cache *catalog.Cache
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis URL")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()

		cache = catalog.NewCache(client, time.Duration(cfg.Redis.CacheTTLSeconds)*time.Second)
		catalogSvc.WithCache(cache)
		log.Info().Msg("catalog cache enabled")
	}

	cartStore := cart.New()
	orchestrator := checkout.NewOrchestrator(docs, cartStore, cfg.WhatsApp.Phone)

	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		orchestrator.WithPublisher(producer)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("order feed enabled")
	}

	routerCfg := api.RouterConfig{
		Handlers: api.NewHandlers(catalogSvc, cartStore, orchestrator),
	}
	if cfg.Admin.Enabled() {
		jwtService := auth.NewJWTService(cfg.Admin.JWTSecret, time.Duration(cfg.Admin.TokenTTLMinutes)*time.Minute)
		admin := api.NewAdminHandlers(docs, jwtService, cfg.Admin.PasswordHash)
		if cache != nil {
			admin.WithCache(cache)
		}
		routerCfg.AdminHandlers = admin
		routerCfg.JWTService = jwtService
		log.Info().Msg("admin surface enabled")
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(routerCfg),
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
