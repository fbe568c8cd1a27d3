/*
main.go - Application entry point

PURPOSE:

	Initializes and starts the fiscal projection dashboard server. Handles
	configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
 1. Load configuration (flags > environment > defaults)
 2. Build the zap logger
 3. Initialize SQLite store
 4. Create API handler and router
 5. Start server with graceful shutdown

CONFIGURATION:

	Flags and FISCAL_-prefixed environment variables share keys:

	  -port / FISCAL_PORT       HTTP server port (default: 8080)
	  -db   / FISCAL_DB         SQLite database path (default: fiscal.db)
	                            Use ":memory:" for in-memory database
	  -log  / FISCAL_LOG        Log level: debug, info, warn, error

GRACEFUL SHUTDOWN:

	On SIGINT/SIGTERM:
	1. Stop accepting new connections
	2. Wait for active requests to complete (30s timeout)
	3. Close database connection
	4. Exit

EXAMPLES:

	# Run with file database
	./server -db="./data/fiscal.db"

	# Run with in-memory database
	FISCAL_DB=":memory:" ./server

	# Run on different port
	./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atlas/fiscal-engine/api"
	"github.com/atlas/fiscal-engine/store/sqlite"
)

func main() {
	pflag.Int("port", 8080, "HTTP server port")
	pflag.String("db", "fiscal.db", "SQLite database path")
	pflag.String("log", "info", "log level (debug, info, warn, error)")
	pflag.Parse()

	v := viper.New()
	v.SetEnvPrefix("FISCAL")
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("db", "fiscal.db")
	v.SetDefault("log", "info")
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(v.GetString("log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(v.GetString("db"))
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	handler := api.NewHandler(store, logger)
	router := api.NewRouter(handler)

	port := v.GetInt("port")
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", port),
			zap.String("db", v.GetString("db")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func buildLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
