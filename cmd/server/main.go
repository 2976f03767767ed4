package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"gesher/internal/admin"
	authmetrics "gesher/internal/auth/metrics"
	"gesher/internal/auth/service"
	"gesher/internal/identity/devprovider"
	"gesher/internal/jwtsession"
	"gesher/internal/legacy"
	"gesher/internal/platform/config"
	"gesher/internal/platform/httpserver"
	"gesher/internal/platform/logger"
	platformredis "gesher/internal/platform/redis"
	"gesher/internal/profile"
	"gesher/internal/session"
	"gesher/internal/session/cache"
	httptransport "gesher/internal/transport/http"
	"gesher/pkg/platform/audit"
	auditkafka "gesher/pkg/platform/audit/kafka"
	"gesher/pkg/platform/audit/publisher"
	auditmemory "gesher/pkg/platform/audit/store/memory"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Credential and profile stores: Postgres when configured, in-memory
	// otherwise so the server runs standalone in development.
	var (
		profiles    profile.Store
		legacyCreds legacy.Store
	)
	if cfg.Postgres.URL != "" {
		db, err := sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
		profiles = profile.NewPostgres(db)
		legacyCreds = legacy.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		profiles = profile.NewInMemoryStore()
		legacyCreds = legacy.NewInMemoryStore()
		log.Info("using in-memory stores")
	}

	// Session snapshot store: Redis when configured, a local file otherwise.
	var snapshots cache.Store
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		snapshots = cache.NewRedis(redisClient.Client)
		log.Info("using redis session snapshot store")
	} else {
		snapshots = cache.NewFileStore("session_snapshot.json")
	}

	// Audit trail: Kafka when brokers are configured, in-memory otherwise.
	var auditStore audit.Store
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.DefaultProduceTopic(cfg.Kafka.Topic),
		)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaClient.Close()
		auditStore = auditkafka.New(kafkaClient, cfg.Kafka.Topic)
		log.Info("audit events go to kafka", "topic", cfg.Kafka.Topic)
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditPub := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	defer auditPub.Close()

	g, gctx := errgroup.WithContext(ctx)

	provider := devprovider.New()
	synchronizer := session.New(provider, profiles, snapshots, log)
	synchronizer.Start(gctx)
	defer synchronizer.Wait()

	authSvc := service.New(provider, profiles, legacyCreds, auditPub, log,
		service.WithMetrics(authmetrics.New()),
		service.WithSessionClearer(synchronizer),
	)

	tokens := jwtsession.NewService(cfg.Auth.JWTSigningKey, "gesher", cfg.Auth.TokenTTL)
	checker := admin.NewChecker(cfg.Admin.Phones)

	handler := httptransport.New(authSvc, profiles, tokens, checker, log)
	router := httptransport.NewRouter(handler, tokens,
		httptransport.RouterConfig{AllowedOrigins: cfg.Server.AllowedOrigins}, log)

	srv := httpserver.New(cfg.Server.Addr, router)

	g.Go(func() error {
		log.Info("starting gesher", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
