package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/EliabLM/pos-system-api/internal/auth"
	"github.com/EliabLM/pos-system-api/internal/db/bunx"
	"github.com/EliabLM/pos-system-api/internal/gateway"
	"github.com/EliabLM/pos-system-api/internal/repository"
	"github.com/EliabLM/pos-system-api/internal/server"
	"github.com/EliabLM/pos-system-api/internal/services/onboarding"
	"github.com/EliabLM/pos-system-api/internal/services/session"
	"github.com/EliabLM/pos-system-api/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the POS API server",
	Long:  `Starts the HTTP server with the session gateway in front of the auth, onboarding, catalog and sales endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Telemetry first so startup work below is already traceable
		shutdownTelemetry, err := telemetry.Init(cmd.Context(), cfg.Observability)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTelemetry(ctx); err != nil {
				log.Printf("Warning: telemetry shutdown: %v", err)
			}
		}()

		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		// Initialize repositories
		userRepo := repository.NewBunUserRepository(db)
		productRepo := repository.NewBunProductRepository(db)
		saleRepo := repository.NewBunSaleRepository(db)

		// Session token codec and the access gateway. The policy table is
		// embedded in the binary and immutable from here on.
		codec, err := auth.NewTokenCodec(cfg.Session.Secret)
		if err != nil {
			return fmt.Errorf("failed to create token codec: %w", err)
		}
		policy, err := gateway.NewPolicy()
		if err != nil {
			return fmt.Errorf("failed to load access policy: %w", err)
		}
		engine := gateway.NewEngine(codec, policy, cfg.Gateway.UnauthorizedPath)

		// Initialize services
		sessionService := session.NewService(userRepo, codec)
		onboardingService := onboarding.NewService(db, userRepo)

		serverMetrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("failed to create server metrics: %w", err)
		}
		gatewayMetrics, err := telemetry.NewGatewayMetrics()
		if err != nil {
			return fmt.Errorf("failed to create gateway metrics: %w", err)
		}
		authMetrics, err := telemetry.NewAuthMetrics()
		if err != nil {
			return fmt.Errorf("failed to create auth metrics: %w", err)
		}

		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, `{"status":"ok","environment":%q}`, cfg.Environment)
		}

		// Assemble the shared router
		routerOpts := server.RouterOptions{
			Users:          userRepo,
			Products:       productRepo,
			Sales:          saleRepo,
			Sessions:       sessionService,
			Onboarding:     onboardingService,
			Engine:         engine,
			Cfg:            cfg,
			ServerMetrics:  serverMetrics,
			GatewayMetrics: gatewayMetrics,
			AuthMetrics:    authMetrics,
			HealthHandler:  healthHandler,
		}
		r, err := server.NewRouter(routerOpts)
		if err != nil {
			return fmt.Errorf("failed to build router: %w", err)
		}

		// Create HTTP server
		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s (environment: %s)", cfg.ServerAddr, cfg.Environment)
			serverErrors <- srv.ListenAndServe()
		}()

		// Wait for interrupt signal
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			// Graceful shutdown with timeout
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
