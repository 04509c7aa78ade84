package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/action"
	"github.com/Ramsey-B/fern/internal/repositories/person"
	"github.com/Ramsey-B/fern/internal/repositories/ticket"
	"github.com/Ramsey-B/fern/pkg/checkpoint"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/logger"
	"github.com/Ramsey-B/fern/pkg/movidesk"
	"github.com/Ramsey-B/fern/pkg/normalize"
	"github.com/Ramsey-B/fern/pkg/ratelimit"
	"github.com/Ramsey-B/fern/pkg/redis"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	fernsync "github.com/Ramsey-B/fern/pkg/sync"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const version = "1.0.0"

const runLockKey = "fern:sync"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("fern exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log ectologger.Logger) error {
	if cfg.TracingEnabled {
		tp := tracing.Init(cfg.AppName)
		defer tp.Shutdown(context.Background())
	}

	sqlxDB, err := database.Connect(database.Config{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		RetryCount:      cfg.DatabaseReconnectRetryCount,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, log)
	if err != nil {
		return err
	}
	defer sqlxDB.Close()

	migrationDriver, err := postgres.WithInstance(sqlxDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	migrations := database.NewMigrationService(log, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, migrationDriver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := database.NewDatabaseInstance(sqlxDB, log)

	var redisClient *redis.Client
	var locker *redis.Locker
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		locker = redis.NewLocker(redisClient, "fern:lock:")
	}

	var emitter *events.Emitter
	if cfg.KafkaProducerEnabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, log)
		defer producer.Close()
		emitter = events.NewEmitter(producer, log)
	}

	httpClient := httpclient.NewClient(httpclient.Config{
		Timeout:         time.Duration(cfg.MovideskTimeoutSeconds) * time.Second,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}, log)

	source := movidesk.NewClient(movidesk.Config{
		BaseURL: cfg.MovideskBaseURL,
		Token:   cfg.MovideskToken,
	}, httpClient, log)

	deps := fernsync.Dependencies{
		Source:     source,
		Checkpoint: checkpoint.NewStore(cfg.CheckpointPath, log),
		Limiter:    ratelimit.NewFixedWindow(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowSeconds)*time.Second, log),
		Normalizer: normalize.New(),
		Persons:    person.NewRepository(db, log),
		Tickets:    ticket.NewRepository(db, log),
		Actions:    action.NewRepository(db, log),
		Logger:     log,
	}
	if emitter != nil {
		deps.Emitter = emitter
	}
	driver := fernsync.NewDriver(deps)

	checker := health.NewChecker(db, nil, version)
	if redisClient != nil {
		checker = health.NewChecker(db, redisClient, version)
	}

	runOnce := func(ctx context.Context) error {
		if locker != nil {
			lock, err := locker.Acquire(ctx, runLockKey, time.Duration(cfg.RunLockTTLMinutes)*time.Minute)
			if errors.Is(err, redis.ErrLockNotAcquired) {
				log.Warn("another sync run holds the lock, skipping this pass")
				return nil
			}
			if err != nil {
				return err
			}
			defer lock.Release(ctx)

			// keep the lock alive for runs that outlast the TTL
			keepAliveCtx, stopKeepAlive := context.WithCancel(ctx)
			defer stopKeepAlive()
			go lock.KeepAlive(keepAliveCtx)
		}

		summary, err := driver.Run(ctx)
		if summary != nil {
			checker.SetLastRun(summary)
		}
		return err
	}

	if cfg.SyncIntervalMinutes <= 0 {
		return runOnce(ctx)
	}

	// daemon mode: health server plus a fixed-interval sync loop
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(otelecho.Middleware(cfg.AppName))
	checker.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Infof("health server listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("health server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		e.Shutdown(shutdownCtx)
	}()

	checker.SetReady(true)

	interval := time.Duration(cfg.SyncIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := runOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			log.WithError(err).Error("sync run failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
