package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	adapter "entitycore/src/adapters/http"
	"entitycore/src/domain/model"
	"entitycore/src/domain/users"
	"entitycore/src/helper/env"
	"entitycore/src/infra/kafka"
	"entitycore/src/infra/postgres"
	"entitycore/src/infra/redis"
	"entitycore/src/infra/sqlite"
	"entitycore/src/repositories"
	"entitycore/src/services/events"

	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting API server with Uber Fx...")

	app := fx.New(
		fx.Provide(
			newLogger,
			newStore,
			newBus,
			newEmitter,
			newUserType,
			newServer,
		),

		fx.Invoke(registerEventLogger),
		fx.Invoke(registerServerHooks),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-app.Done()
}

func newLogger() *slog.Logger {
	var level slog.Level

	switch env.GetString("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// newStore opens the configured database (DB_DRIVER postgres or sqlite) and
// puts the redis row cache in front of it when REDIS_ADDRS is set.
func newStore(lc fx.Lifecycle, logger *slog.Logger) (repositories.RowStore, error) {
	var store repositories.RowStore

	switch env.GetString("DB_DRIVER", "postgres") {
	case "sqlite":
		db, err := sqlite.Open(context.Background(), env.GetString("DB_PATH", "entitycore.db"))
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(db.Close))
		store = repositories.NewSQLBackend(db)

	default:
		write := postgres.Config{
			Host:           env.MustGetString("DB_HOST"),
			Port:           env.GetString("DB_PORT", "5432"),
			Database:       env.MustGetString("DB_NAME"),
			User:           env.MustGetString("DB_USER"),
			Password:       env.MustGetString("DB_PASSWORD"),
			MaxConnections: env.GetInt("DB_MAX_POOL_CONNECTIONS", 25),
		}
		read := write
		read.Host = env.GetString("DB_READ_HOST", write.Host)

		client, err := postgres.NewReadWriteClient(context.Background(), read, write)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(client.Close))
		store = repositories.NewPostgresBackend(client)
	}

	addrs := env.GetString("REDIS_ADDRS")
	if addrs == "" {
		return store, nil
	}

	cache := redis.NewRedisClient(
		addrs,
		env.GetInt("REDIS_POOL_SIZE", 10),
		env.GetDuration("REDIS_TTL", 5*time.Minute),
	).WithPrefix(env.GetString("REDIS_PREFIX", "entitycore:"))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := cache.HealthCheck(ctx); err != nil {
				logger.Warn("Redis unavailable, reads fall back to the database", "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return cache.Close()
		},
	})

	return repositories.NewCachedBackend(logger, store, cache), nil
}

func newBus() *events.Bus {
	return events.NewBus()
}

// newEmitter fans lifecycle events out to the in-process bus and, when
// KAFKA_BROKERS is set, to the lifecycle topic.
func newEmitter(lc fx.Lifecycle, logger *slog.Logger, bus *events.Bus) (model.Emitter, error) {
	brokers := env.GetString("KAFKA_BROKERS")
	if brokers == "" {
		return bus, nil
	}

	kafkaClient, err := kafka.NewKafkaClient(logger, brokers)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(kafkaClient.Close))

	topic := env.GetString("KAFKA_LIFECYCLE_TOPIC", "entity-lifecycle")
	publisher := events.NewLifecyclePublisher(logger, kafkaClient, topic)

	return events.NewFanOut(bus, publisher), nil
}

func newUserType(store repositories.RowStore, emitter model.Emitter) *model.Type {
	return users.NewType(model.Config{Backend: store, Emitter: emitter})
}

func newServer(logger *slog.Logger, userType *model.Type) *adapter.Server {
	return adapter.NewServer(logger, env.GetInt("SERVER_ADDR", 8888), userType)
}

func registerEventLogger(logger *slog.Logger, bus *events.Bus) {
	bus.SubscribeAll(func(ctx context.Context, topic string, payload []any) {
		for _, item := range payload {
			if entity, ok := item.(*model.Entity); ok {
				logger.InfoContext(ctx, "Entity lifecycle event",
					"topic", topic,
					"table", entity.Type().TableName(),
					"fields_changed", entity.MutatedAttributes().Keys())
			}
		}
	})
}

func registerServerHooks(lc fx.Lifecycle, logger *slog.Logger, srv *adapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", "error", err)
				return err
			}
			logger.Info("Server exited gracefully")
			return nil
		},
	})
}
