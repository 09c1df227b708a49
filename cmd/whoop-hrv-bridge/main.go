package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"

	"github.com/wrale/whoop-hrv-bridge/internal/authflow"
	"github.com/wrale/whoop-hrv-bridge/internal/authstate"
	"github.com/wrale/whoop-hrv-bridge/internal/recovery"
	"github.com/wrale/whoop-hrv-bridge/internal/tokens"
	"github.com/wrale/whoop-hrv-bridge/internal/whoop"
)

// Version is set by the build process
var Version = "dev"

func main() {
	// Load configuration from environment
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	scope := authflow.NormalizeScope(cfg.WhoopScope)

	// Select the token store: Redis when configured, JSON file otherwise
	var store tokens.Store
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Error parsing Redis URL: %v", err)
		}
		redisClient = redis.NewClient(redisOpts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("Error connecting to Redis: %v", err)
		}
		store = tokens.NewRedisStore(redisClient)
	} else {
		store = tokens.NewFileStore(cfg.TokenStorePath)
	}

	// Create the WHOOP API client
	whoopClient, err := whoop.NewClient(cfg.whoopClientConfig())
	if err != nil {
		log.Fatalf("Error creating WHOOP client: %v", err)
	}

	// Wire up the token lifecycle and aggregation pipeline
	manager := tokens.NewManager(store, whoopClient, scope)
	states := authstate.New(cfg.StateExpiry)
	flow := authflow.New(authflow.Config{
		ClientID:     cfg.WhoopClientID,
		ClientSecret: cfg.WhoopClientSecret,
		RedirectURI:  cfg.WhoopRedirectURI,
		AuthURL:      cfg.WhoopAuthURL,
		TokenURL:     cfg.WhoopTokenURL,
		Scope:        scope,
		Timeout:      cfg.UpstreamTimeout,
	}, states, store)
	aggregator := recovery.NewAggregator(whoopClient)

	srv := newServer(cfg, store, manager, flow, aggregator)

	// Create HTTP server with proper timeout configurations
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start server
	go func() {
		log.Printf("WHOOP HRV bridge %s listening on port %d", Version, cfg.Port)
		serverErrors <- httpServer.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-serverErrors:
		log.Fatalf("Error starting server: %v", err)

	case <-shutdown:
		log.Println("Starting shutdown")

		// Create context with timeout for shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Shutdown server
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
			if err := httpServer.Close(); err != nil {
				log.Printf("Error closing server: %v", err)
			}
		}

		// Close Redis connection if one was opened
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing Redis connection: %v", err)
			}
		}
	}
}
