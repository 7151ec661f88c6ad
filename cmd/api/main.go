package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	"github.com/BruksfildServices01/booking-api/internal/config"
	dbpkg "github.com/BruksfildServices01/booking-api/internal/db"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/infra/lock"
	"github.com/BruksfildServices01/booking-api/internal/logging"
	"github.com/BruksfildServices01/booking-api/internal/media"
	"github.com/BruksfildServices01/booking-api/internal/monitoring"
	"github.com/BruksfildServices01/booking-api/internal/payments"
	"github.com/BruksfildServices01/booking-api/internal/routes"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer dbpkg.Close(db)

	monitoring.InitMetrics()

	// ======================================================
	// 🔧 INTEGRATIONS
	// ======================================================
	locker, closeLocker := newLocker(cfg)
	defer closeLocker()

	publisher, err := events.Connect(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer publisher.Close()

	var gateway payments.Gateway
	mp, err := payments.NewMercadoPago(cfg.MercadoPagoToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure MercadoPago")
	}
	if mp != nil {
		gateway = mp
	} else {
		log.Info().Msg("MERCADOPAGO_ACCESS_TOKEN not set, checkout disabled")
	}

	var store media.Store
	if s3 := media.NewS3Store(cfg.S3); s3 != nil {
		store = s3
	} else {
		log.Info().Msg("S3 not configured, avatar upload disabled")
	}

	auditDispatcher := audit.NewDispatcher(audit.New(db))
	defer auditDispatcher.Close()

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.RegisterRoutes(r, routes.Deps{
		DB:        db,
		Config:    cfg,
		Audit:     auditDispatcher,
		Locker:    locker,
		Publisher: publisher,
		Gateway:   gateway,
		Store:     store,
		Clock:     time.Now,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newLocker uses Redis when REDIS_ADDR is set so several API replicas share
// the per-provider booking lock. A single process falls back to memory.
func newLocker(cfg *config.Config) (domain.Locker, func()) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not set, using in-process booking lock")
		return lock.NewLocalLocker(), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to Redis")
	}

	return lock.NewRedisLocker(rdb, cfg.BookingLockTTL), func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}
}
