package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/adapter/auth"
	"github.com/srgjo27/lodging_booking/internal/adapter/events"
	"github.com/srgjo27/lodging_booking/internal/adapter/handler"
	"github.com/srgjo27/lodging_booking/internal/adapter/lock"
	"github.com/srgjo27/lodging_booking/internal/config"
	"github.com/srgjo27/lodging_booking/internal/core/ports"
	"github.com/srgjo27/lodging_booking/internal/core/services"
	"github.com/srgjo27/lodging_booking/internal/platform/logger"
	"github.com/srgjo27/lodging_booking/internal/platform/tracing"
)

type publisher interface {
	ports.EventPublisher
	Close() error
}

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Env != logger.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.close()

	checks := map[string]handler.HealthCheck{
		"database": func(c *gin.Context) error { return store.ping(c.Request.Context()) },
	}

	var locker ports.ListingLocker
	switch cfg.Lock.Backend {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))

		locker = lock.NewRedisLocker(redisClient, cfg.Lock.TTL, cfg.Lock.AcquireTimeout, log)
		checks["redis"] = func(c *gin.Context) error { return redisClient.Ping(c.Request.Context()).Err() }
	default:
		locker = lock.NewMemoryLocker(cfg.Lock.AcquireTimeout)
	}

	var eventPublisher publisher
	if len(cfg.Kafka.Brokers) > 0 {
		eventPublisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		log.Info("publishing reservation events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		eventPublisher = events.NewNoopPublisher(log)
	}
	defer eventPublisher.Close()

	reservationService := services.NewReservationService(store.listings, store.reservations, store.tx, locker, eventPublisher, log)
	listingService := services.NewListingService(store.listings, store.reservations, store.tx, log)

	if cfg.Sweeper.Interval > 0 {
		sweeper := services.NewReservationSweeper(store.reservations, eventPublisher, log)
		go sweeper.RunBackgroundCleanup(ctx, cfg.Sweeper.Interval)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Reservations: handler.NewReservationHandler(reservationService, log),
		Listings:     handler.NewListingHandler(listingService, log),
		Tokens:       auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Logger:       log,
		Checks:       checks,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage.Engine), zap.String("lock", cfg.Lock.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server startup failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
