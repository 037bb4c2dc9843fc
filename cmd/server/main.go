package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	grpcapi "rentacar-backend/internal/api/grpc"
	httpapi "rentacar-backend/internal/api/http"
	"rentacar-backend/internal/config"
	"rentacar-backend/internal/events"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository/postgres"
	"rentacar-backend/internal/security"
	"rentacar-backend/internal/service"
	"rentacar-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentacar Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Reservation rules", "timezone", cfg.Reservation.Timezone, "auto_cancel_minutes", cfg.Reservation.AutoCancelMinutes)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Document Storage
	docStore, err := storage.New(cfg.Storage, cfg.JWT.Secret)
	if err != nil {
		logger.Error("Failed to initialize document storage", "error", err, "type", cfg.Storage.Type)
		log.Fatalf("Failed to initialize document storage: %v", err)
	}
	var localDocs *storage.LocalStore
	switch s := docStore.(type) {
	case *storage.MinioStore:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := s.EnsureBucket(ctx)
		cancel()
		if err != nil {
			logger.Error("Failed to prepare document bucket", "error", err, "bucket", cfg.Storage.Bucket)
			log.Fatalf("Failed to prepare document bucket: %v", err)
		}
		logger.Info("Using MinIO document storage", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)
	case *storage.LocalStore:
		localDocs = s
		logger.Info("Using local document storage", "upload_dir", cfg.Storage.UploadDir)
	}

	// Reservation change feed
	publisher := events.NewPublisher(cfg.Redis)
	defer publisher.Close()

	// Initialize Services
	loc := cfg.Location()
	tx := store.Transactor()
	customerSvc := service.NewCustomerService(store.CustomerRepository)
	availabilitySvc := service.NewAvailabilityService(store.ReservationRepository, store.MaintenanceRepository, loc)
	reservationSvc := service.NewReservationService(
		tx,
		store.ReservationRepository,
		store.VehicleRepository,
		store.AlertRepository,
		store.AuditRepository,
		customerSvc,
		availabilitySvc,
		publisher,
		service.ReservationSettings{Location: loc, AutoCancelWindow: cfg.AutoCancelWindow()},
	)
	emailSvc := service.NewEmailService(cfg)
	contractSvc := service.NewContractService(
		tx,
		store.ReservationRepository,
		store.VehicleRepository,
		store.ContractRepository,
		store.CustomerRepository,
		store.AlertRepository,
		store.AuditRepository,
		customerSvc,
		availabilitySvc,
		docStore,
		emailSvc,
		publisher,
		service.ContractSettings{Location: loc, URLExpiry: cfg.URLExpiry()},
	)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Reservations: reservationSvc,
		Contracts:    contractSvc,
		Customers:    customerSvc,
		Availability: availabilitySvc,
		Tokens:       tokenManager,
		Documents:    localDocs,
	})
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer, healthServer := grpcapi.NewServer(tokenManager)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Wait for interrupt signal or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	// Graceful shutdown
	logger.Info("Shutting down servers...")
	healthServer.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Servers stopped. Goodbye!")
}
