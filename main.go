package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tecace/axpro-metrics/internal/activity"
	"github.com/tecace/axpro-metrics/internal/aggregates"
	"github.com/tecace/axpro-metrics/internal/auth"
	"github.com/tecace/axpro-metrics/internal/cache"
	"github.com/tecace/axpro-metrics/internal/config"
	"github.com/tecace/axpro-metrics/internal/handlers"
	"github.com/tecace/axpro-metrics/internal/logging"
	"github.com/tecace/axpro-metrics/internal/repository"
	"github.com/tecace/axpro-metrics/internal/sheets"
	"github.com/tecace/axpro-metrics/internal/telemetry"
	"github.com/tecace/axpro-metrics/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		runRecorder usecase.RunRecorder
		runLister   handlers.RunLister
	)
	if cfg.DatabaseDSN != "" {
		repo := repository.NewAggregationRunRepository(initDatabase(ctx, cfg.DatabaseDSN, logger), logger)
		if err := repo.AutoMigrate(ctx); err != nil {
			logger.Fatal("auto migrate failed", zap.Error(err))
		}
		runRecorder, runLister = repo, repo
	} else {
		logger.Info("DATABASE_DSN not set, aggregation runs will not be recorded")
	}

	var store cache.Cache
	if cfg.RedisAddr != "" {
		redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
		defer redisCancel()
		store = cache.NewRedisCache(initRedis(redisCtx, cfg.RedisAddr, logger))
	} else {
		logger.Info("REDIS_ADDR not set, using in-process cache")
		store = cache.NewMemoryCache(cache.DefaultMemoryEntries)
	}

	loader := sheets.NewLoader(cfg.SheetURL, nil, cfg.SheetTimeout, logger)
	aggregatesUC := usecase.NewAggregatesUseCase(loader, runRecorder, logger,
		usecase.WithBuilder(aggregates.Builder{Days: cfg.WindowDays, Anchor: aggregates.ParseAnchor(cfg.WindowAnchor)}),
		usecase.WithStrictSource(cfg.StrictSource),
	)

	upstream := activity.NewHTTPUpstream(cfg.UpstreamURL, nil, cfg.UpstreamRPS)
	activitySvc := activity.NewService(upstream, store, cfg.ActivityCacheTTL, nil, logger)

	r := gin.New()
	r.Use(gin.Recovery(), telemetry.Middleware())

	handlers.RegisterRoutes(r, handlers.Services{
		Aggregates: aggregatesUC,
		Activity:   activitySvc,
		Runs:       runLister,
		Logger:     logger,
	}, auth.JWTMiddleware(cfg.JWTSecret, cfg.JWTAudience))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("metrics API listening", zap.String("addr", cfg.Addr))
	if err := serveHTTPServer(server, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func initDatabase(ctx context.Context, dsn string, zapLogger *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("failed to access db handle", zap.Error(err))
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		zapLogger.Fatal("database ping failed", zap.Error(err))
	}

	return db
}

func initRedis(ctx context.Context, addr string, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	return client
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
