package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/attribution-engine/internal/api"
	"github.com/ignite/attribution-engine/internal/config"
	"github.com/ignite/attribution-engine/internal/pkg/logger"
	"github.com/ignite/attribution-engine/internal/repository/postgres"
	"github.com/ignite/attribution-engine/internal/repository/warehouse"
	"github.com/ignite/attribution-engine/internal/service/report"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

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
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Primary event store
	log.Printf("DB URL host portion: ...@%s/...", extractHost(cfg.Database.URL))
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if cfg.Database.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	pingCancel()
	log.Println("Database connected")

	// Optional report cache
	var cache report.Cache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		var redisClient *redis.Client
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — report caching disabled", cfg.Redis.URL, err)
			redisClient.Close()
		} else {
			cache = report.NewRedisCache(redisClient)
			log.Printf("Redis connected: %s (report caching enabled)", cfg.Redis.URL)
		}
		pingCancel()
	} else {
		log.Println("Redis not configured (REDIS_URL not set) — report caching disabled")
	}

	// Optional warehouse event source for ranges past hot retention
	var warehouseRepo report.EventRepository
	if cfg.Warehouse.Enabled && cfg.Warehouse.DSN != "" {
		repo, err := warehouse.Open(cfg.Warehouse.DSN)
		if err != nil {
			log.Printf("Warning: Snowflake connection failed: %v — long-range reports limited to hot store", err)
		} else {
			defer repo.Close()
			warehouseRepo = repo
			log.Println("Snowflake warehouse connected")
		}
	}

	svc := report.NewService(report.Deps{
		Events:     postgres.NewEventRepo(db),
		Warehouse:  warehouseRepo,
		Identities: postgres.NewIdentityRepo(db),
		Connectors: postgres.NewConnectorRepo(db),
		Platforms:  postgres.NewPlatformMetricsRepo(db),
		Settings:   postgres.NewSettingsRepo(db),
		Cache:      cache,
	}, report.Defaults{
		Model:            cfg.Attribution.DefaultModel,
		WindowDays:       cfg.Attribution.DefaultWindowDays,
		HalfLifeDays:     cfg.Attribution.DefaultHalfLifeDays,
		TopN:             cfg.Attribution.ComparisonTopN,
		MaxDateRangeDays: cfg.Attribution.MaxDateRangeDays,
		HotRetentionDays: cfg.Warehouse.RetentionDays,
	}, cfg.Redis.CacheTTL())

	handlers := api.NewHandlers(svc, cfg)
	router := api.SetupRoutes(handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	db.Close()
	log.Println("Server stopped")
}
