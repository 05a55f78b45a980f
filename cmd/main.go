package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fathima-sithara/session-broker/internal/api"
	"github.com/fathima-sithara/session-broker/internal/broker"
	"github.com/fathima-sithara/session-broker/internal/config"
	"github.com/fathima-sithara/session-broker/internal/events"
	"github.com/fathima-sithara/session-broker/internal/httpclient"
	"github.com/fathima-sithara/session-broker/internal/lingua"
	"github.com/fathima-sithara/session-broker/internal/logging"
	"github.com/fathima-sithara/session-broker/internal/presence"
	"github.com/fathima-sithara/session-broker/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	b := broker.New(logger, cfg.WS.SendBufferSize)

	var pres *presence.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pres = presence.NewStore(rdb, cfg.Redis.Prefix, 24*time.Hour)
	}

	var prod *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		prod = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicRoomEvents)
		defer func() { _ = prod.Close() }()
	}

	hc := httpclient.New(httpclient.Config{
		Timeout:      cfg.UpstreamTimeout,
		MaxRetries:   uint64(cfg.Upstream.RetryMax),
		InitialDelay: cfg.RetryInitial,
	})
	lc := lingua.New(hc, cfg.Upstream, logger)

	gw := ws.NewGateway(b, pres, prod, logger, cfg.PingInterval, cfg.WriteDeadline, cfg.WS.MaxMessageSizeBytes)
	app := api.NewServer(b, gw, lc, logger)

	errs := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infow("starting session broker", "addr", addr, "env", cfg.App.Env)
		errs <- app.Listen(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case e := <-errs:
		logger.Fatalw("server error", "err", e)
	case s := <-sig:
		logger.Infow("signal received", "signal", s.String())
	}

	if err := app.Shutdown(); err != nil {
		logger.Warnw("shutdown", "err", err)
	}
	logger.Info("shutting down")
}
