package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orangefrog/internal/config"
	"orangefrog/internal/database"
	"orangefrog/internal/handlers"
	"orangefrog/internal/repository"
	"orangefrog/internal/security"
	"orangefrog/internal/service"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	contractorRepo := repository.NewContractorRepository(db)
	eventRepo := repository.NewEventRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)

	tokens := security.NewInviteTokens(cfg.InviteSecret)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.SupportEmail, cfg.AppBaseURL, tokens, cfg.Debug)
	if err != nil {
		log.Printf("Warning: Email service initialization failed, sending disabled: %v", err)
		emailService, _ = service.NewEmailService(cfg.AWSRegion, "", cfg.SESFromName, cfg.SupportEmail, cfg.AppBaseURL, tokens, cfg.Debug)
	}

	notifier := service.NewNotifier(eventRepo, contractorRepo, emailService, cfg.NotifyQueueSize, cfg.Debug)

	var publisher service.Publisher = service.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := service.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Debug)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Printf("Error closing lifecycle publisher: %v", err)
			}
		}()
		publisher = kafkaPublisher
		log.Printf("Publishing lifecycle events to %s", cfg.KafkaTopic)
	}

	// Initialize services
	eventService := service.NewEventService(eventRepo, contractorRepo, notifier, publisher, tokens, cfg.MaxWriteAttempts, cfg.Debug)
	contractorService := service.NewContractorService(contractorRepo, emailService, cfg.Debug)
	incidentService := service.NewIncidentService(incidentRepo)

	limiter := security.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)

	handler := handlers.Routes(
		db,
		handlers.NewEventHandler(eventService),
		handlers.NewContractorHandler(contractorService),
		handlers.NewIncidentHandler(incidentService),
		handlers.NewMiddleware(limiter, cfg.Debug),
	)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return notifier.Run(gctx) })
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(func() error {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}
