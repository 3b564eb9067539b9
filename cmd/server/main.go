/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the lending engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load TOML config
  2. Initialize SQLite store, seed the default rate table
  3. Build the schedule cache (memory or redis)
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  TOML config file (optional, see config package)
  -port    HTTP server port, overrides [server].port
  -db      SQLite database path, overrides [database].path
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests ([server].shutdown_timeout)
  3. Close cache and database connections
  4. Exit

EXAMPLES:
  # Run with defaults
  ./server

  # Run with a config file and in-memory database
  ./server -config=lending.toml -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Config file format
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/warp/lending-engine/api"
	"github.com/warp/lending-engine/cache"
	"github.com/warp/lending-engine/config"
	"github.com/warp/lending-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "TOML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize cache
	var scheduleCache cache.Cache
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rc := cache.NewRedis(cfg.Cache.RedisAddr)
		defer rc.Close()
		if err := rc.Ping(context.Background()); err != nil {
			log.Printf("Warning: redis at %s unreachable, schedules will be recomputed: %v", cfg.Cache.RedisAddr, err)
		}
		scheduleCache = rc
	default:
		scheduleCache = cache.NewMemory()
	}

	// Initialize handler
	handler := api.NewHandler(store, scheduleCache, cfg.Cache.Expiry())
	if err := handler.SeedDefaultRateTable(context.Background()); err != nil {
		log.Printf("Warning: Failed to seed default rate table: %v", err)
	}

	// Create router
	opts := api.RouterOptions{AllowedOrigins: cfg.CORS.AllowedOrigins}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}
	router := api.NewRouter(handler, opts)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Read(),
		WriteTimeout: cfg.Server.Write(),
		IdleTimeout:  cfg.Server.Idle(),
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api (cache: %s)", cfg.Server.Port, cfg.Cache.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Shutdown())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
