package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/conference-api/internal/application/notification"
	"github.com/conference-api/internal/config"
	"github.com/conference-api/internal/infrastructure/dynamo"
	"github.com/conference-api/internal/infrastructure/expo"
	"github.com/conference-api/internal/infrastructure/fcm"
	jwtinfra "github.com/conference-api/internal/infrastructure/jwt"
	"github.com/conference-api/internal/infrastructure/kafka"
	"github.com/conference-api/internal/infrastructure/logpush"
	"github.com/conference-api/internal/infrastructure/postgres"
	"github.com/conference-api/internal/infrastructure/sns"
	"github.com/conference-api/internal/pkg/eventbus"
	"github.com/conference-api/internal/pkg/logger"
	transporthttp "github.com/conference-api/internal/transport/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeStores, err := openStores(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer closeStores()

	push, err := newPushGateway(ctx, cfg, zl)
	if err != nil {
		return err
	}

	bus, runBus, closeBus, err := newBus(cfg, zl)
	if err != nil {
		return err
	}
	defer closeBus()

	deps.Push = push
	deps.Bus = bus
	deps.Logger = zl
	svc := notification.NewService(deps)
	if err := svc.Subscribe(bus); err != nil {
		return fmt.Errorf("subscribe notification handler: %w", err)
	}

	// Without a JWT provider the admin routes answer 401; production refuses to start.
	httpDeps := &transporthttp.Deps{Notifications: svc, Logger: zl}
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		httpDeps.Verifier = p
	} else if cfg.IsProduction() {
		return fmt.Errorf("jwt provider: %w", err)
	} else {
		zl.Warn("JWT provider not available, admin routes disabled", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, httpDeps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		zl.Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := runBus(ctx); err != nil {
			errCh <- fmt.Errorf("event bus: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		zl.Error("shutting down after failure", zap.Error(err))
		stop()
	}

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	zl.Info("server stopped")
	return nil
}

// openStores connects the configured store driver, makes sure its tables
// exist and returns service deps with the repos filled in.
func openStores(ctx context.Context, cfg *config.Config, zl *zap.Logger) (notification.ServiceDeps, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			return notification.ServiceDeps{}, nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			return notification.ServiceDeps{}, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return notification.ServiceDeps{
			UserRepo:   postgres.NewUserRepo(db),
			DeviceRepo: postgres.NewDeviceRepo(db),
			RecordRepo: postgres.NewNotificationRepo(db),
		}, closeDB, nil
	default:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return notification.ServiceDeps{}, nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables, zl)
		return notification.ServiceDeps{
			UserRepo:   dynamo.NewUserRepo(client, cfg.DynamoTables.Users),
			DeviceRepo: dynamo.NewDeviceRepo(client, cfg.DynamoTables.Devices),
			RecordRepo: dynamo.NewNotificationRepo(client, cfg.DynamoTables.ConferenceNotifications),
		}, func() {}, nil
	}
}

func newPushGateway(ctx context.Context, cfg *config.Config, zl *zap.Logger) (notification.PushGateway, error) {
	switch cfg.PushProvider {
	case config.PushExpo:
		return expo.NewGateway(cfg.ExpoPushURL, cfg.ExpoAccessToken, zl), nil
	case config.PushSNS:
		client, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sns.NewGateway(client, zl), nil
	case config.PushFCM:
		client, err := fcm.NewClient(ctx, zl, cfg.FCMCredentialsFile)
		if err != nil {
			return nil, err
		}
		return fcm.NewGateway(client, zl), nil
	default:
		return logpush.NewGateway(zl), nil
	}
}

// newBus returns the configured bus along with its consume loop and closer.
func newBus(cfg *config.Config, zl *zap.Logger) (eventbus.Bus, func(context.Context) error, func(), error) {
	if cfg.EventBus == config.BusKafka {
		b, err := kafka.Dial(cfg.KafkaBrokers, cfg.KafkaGroupID, zl)
		if err != nil {
			return nil, nil, nil, err
		}
		closeBus := func() {
			if err := b.Close(); err != nil {
				zl.Warn("close kafka bus", zap.Error(err))
			}
		}
		return b, b.Run, closeBus, nil
	}
	idle := func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}
	return eventbus.NewMemory(zl), idle, func() {}, nil
}
