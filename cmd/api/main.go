// @title           Unity Nodes API
// @version         1.0
// @description     License allocation, rewards and statistics for Unity Nodes.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/unitynodes/unity-nodes-api/internal/api"
	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
	"github.com/unitynodes/unity-nodes-api/internal/core/service"
	"github.com/unitynodes/unity-nodes-api/internal/infrastructure/config"
	"github.com/unitynodes/unity-nodes-api/internal/infrastructure/db/gormdb"
	mongodb "github.com/unitynodes/unity-nodes-api/internal/infrastructure/db/mongo"
	redisdb "github.com/unitynodes/unity-nodes-api/internal/infrastructure/db/redis"
	"github.com/unitynodes/unity-nodes-api/internal/infrastructure/events"
	"github.com/unitynodes/unity-nodes-api/internal/infrastructure/http/handlers"
	"github.com/unitynodes/unity-nodes-api/internal/infrastructure/queue"
	"github.com/unitynodes/unity-nodes-api/pkg/logger"
)

const (
	serviceName     = "unity-nodes-api"
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

// stores groups the repositories of the selected backend.
type stores struct {
	licenses  ports.LicenseRepository
	rewards   ports.RewardRepository
	operators ports.OperatorRepository
	ping      handlers.Check
	close     func(context.Context) error
}

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: serviceName})
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
		Version: version,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	checks := map[string]handlers.Check{"database": st.ping}

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
		} else {
			defer client.Close()
			store := redisdb.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
			idem = store
			checks["redis"] = store.Ping
		}
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	dispatcher := queue.NewDispatcher(cfg.Kafka.Workers, publisher, logger.Component("events"))
	dispatcher.Start(ctx)

	simulated := service.NewSimulatedMetrics(nil)
	licenses := service.NewLicenseService(st.licenses, dispatcher, logger.Component("licenses"),
		service.WithMaxAttempts(cfg.Allocation.MaxAttempts))
	rewards := service.NewRewardService(st.rewards, idem, simulated, dispatcher, logger.Component("rewards"))
	stats := service.NewStatsService(st.licenses, simulated)
	auth := service.NewAuthService(st.operators, cfg.JWTSecret, cfg.TokenTTL)

	if cfg.Bootstrap.AdminEmail != "" && cfg.Bootstrap.AdminPassword != "" {
		op, created, err := auth.EnsureOperator(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, string(domain.RoleAdmin))
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", op.Email).Msg("bootstrap admin created")
		}
	}

	e := api.NewRouter(api.Dependencies{
		Licenses:        licenses,
		Rewards:         rewards,
		Stats:           stats,
		Auth:            auth,
		JWTSecret:       cfg.JWTSecret,
		RateLimitRPS:    cfg.HTTP.RateLimitRPS,
		RateLimitBurst:  cfg.HTTP.RateLimitBurst,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		ReadinessChecks: checks,
		Version:         version,
		Logger:          log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	// Handlers are done; flush what they enqueued.
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("event dispatcher did not drain")
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Database.Driver == "mongo" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			AppName:     serviceName,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &stores{
			licenses:  mongodb.NewLicenseRepository(db),
			rewards:   mongodb.NewRewardRepository(db),
			operators: mongodb.NewOperatorRepository(db),
			ping:      func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:     client.Disconnect,
		}, nil
	}

	db, err := gormdb.Connect(ctx, gormdb.Config{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
	}, logger.Component("store"))
	if err != nil {
		return nil, err
	}
	return &stores{
		licenses:  gormdb.NewLicenseRepository(db),
		rewards:   gormdb.NewRewardRepository(db),
		operators: gormdb.NewOperatorRepository(db),
		ping:      func(ctx context.Context) error { return gormdb.Ping(ctx, db) },
		close:     func(context.Context) error { return gormdb.Close(db) },
	}, nil
}

func newPublisher(cfg *config.Config, log zerolog.Logger) (ports.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info().Msg("no kafka brokers configured, events are logged")
		return events.NewLogPublisher(logger.Component("events")), nil
	}
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}
