package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/survey/backend/internal/api"
	"github.com/survey/backend/internal/cache"
	"github.com/survey/backend/internal/config"
	"github.com/survey/backend/internal/pkg/logger"
	"github.com/survey/backend/internal/repository/dynamo"
	"github.com/survey/backend/internal/repository/memory"
	"github.com/survey/backend/internal/repository/postgres"
	"github.com/survey/backend/internal/service/trainee"
	"github.com/survey/backend/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %w", port, addr, err)
	}
	return ln.Close()
}

// extractHost returns the host:port part of a postgres URL for logging
// without credentials.
func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(cfg.Log.RedactEnabled())

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		logger.Fatal("pre-flight check failed", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *sql.DB
	if cfg.Database.URL != "" {
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("database unavailable", "host", extractHost(cfg.Database.URL), "error", err)
		}
		defer db.Close()
		logger.Info("database connected", "host", extractHost(cfg.Database.URL))
	}

	redisClient := connectRedis(ctx, cfg.Redis.URL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var awsClients *storage.AWSClients
	if cfg.Storage.Backend == config.BackendDynamoDB || cfg.Export.S3Bucket != "" {
		awsClients, err = storage.NewAWSClients(ctx, cfg.Storage.AWSRegion, cfg.Storage.GetAWSProfile())
		if err != nil {
			logger.Fatal("failed to initialize AWS clients", "error", err)
		}
	}

	repo, err := buildRepository(cfg, db, awsClients)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	if cfg.Cache.Enabled && redisClient != nil {
		repo = cache.NewTraineeRepo(repo, redisClient, cfg.Cache.KeyPrefix, cfg.Cache.TTL())
		logger.Info("trainee cache enabled", "ttl", cfg.Cache.TTL().String())
	}

	var exporter api.Exporter
	var health *api.HealthChecker
	if cfg.Export.S3Bucket != "" {
		exporter = storage.NewS3Exporter(awsClients.S3, cfg.Export.S3Bucket, cfg.Export.Prefix)
		health = api.NewHealthChecker(db, redisClient, awsClients.S3, cfg.Export.S3Bucket)
		logger.Info("S3 export enabled", "bucket", cfg.Export.S3Bucket)
	} else {
		health = api.NewHealthChecker(db, redisClient, nil, "")
	}

	trainees := api.NewTraineeAPI(trainee.NewService(repo), exporter)
	server := api.NewServer(cfg.Server, api.SetupRoutes(trainees, health, cfg.CORS))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", server.Addr(), "storage", cfg.Storage.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "error", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// connectRedis returns nil when Redis is not configured or unreachable;
// the service runs without a cache in that case.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		logger.Info("redis not configured, cache disabled")
		return nil
	}
	var client *redis.Client
	if opts, err := redis.ParseURL(url); err != nil {
		client = redis.NewClient(&redis.Options{Addr: url})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, cache disabled", "error", err)
		client.Close()
		return nil
	}
	logger.Info("redis connected")
	return client
}

func buildRepository(cfg *config.Config, db *sql.DB, awsClients *storage.AWSClients) (trainee.Repository, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewTraineeRepo(), nil
	case config.BackendPostgres:
		if db == nil {
			return nil, errors.New("postgres backend requires database.url")
		}
		return postgres.NewTraineeRepo(db), nil
	case config.BackendDynamoDB:
		return dynamo.NewTraineeRepo(awsClients.DynamoDB, cfg.Storage.DynamoDBTable), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
