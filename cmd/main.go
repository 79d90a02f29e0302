package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/DevCamper/internal/config"
	"github.com/arzan03/DevCamper/internal/db"
	"github.com/arzan03/DevCamper/internal/handlers"
	"github.com/arzan03/DevCamper/internal/services"
	"github.com/arzan03/DevCamper/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := log.New(os.Stdout, "[devcamper] ", log.LstdFlags)
	ctx := context.Background()

	// Connect to the document store
	store, err := db.OpenStore(ctx, cfg.StoreDriver, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}

	// Photo storage
	var photos storage.PhotoStore
	switch cfg.PhotoStorage {
	case "local":
		photos, err = storage.NewLocalStore(cfg.FileUploadPath)
	default:
		photos, err = storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	}
	if err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}

	geocoder, err := services.NewGeocoder(cfg.GeocoderProvider, cfg.GeocoderAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize geocoder: %v", err)
	}
	mailer := services.NewEmailClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName, logger)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpire)
	auth := services.NewAuthService(store.Users, tokens, mailer, logger)
	aggregates := services.NewAggregateService(store, logger)
	bootcamps := services.NewBootcampService(store, geocoder, photos, logger)
	bootcamps.SinglePerPublisher = cfg.SingleBootcampPerPublisher

	bodyLimit := fiber.DefaultBodyLimit
	if limit := int(cfg.MaxFileUpload) + 1<<20; limit > bodyLimit {
		bodyLimit = limit
	}
	app := handlers.NewApp(logger, cfg.IsDevelopment(), bodyLimit)
	if cfg.PhotoStorage == "local" {
		app.Static("/uploads", cfg.FileUploadPath)
	}
	handlers.RegisterRoutes(app, handlers.Handlers{
		Auth:      handlers.NewAuthHandler(auth, cfg.CookieTTL(), cfg.IsProduction()),
		Bootcamps: handlers.NewBootcampHandler(bootcamps, services.NewPhotoService(store.Bootcamps, photos, cfg.MaxFileUpload, logger)),
		Courses:   handlers.NewCourseHandler(services.NewCourseService(store, aggregates)),
		Reviews:   handlers.NewReviewHandler(services.NewReviewService(store, aggregates)),
		Users:     handlers.NewUserHandler(services.NewUserService(store.Users)),
	}, auth)

	// Start server
	listenErr := make(chan error, 1)
	go func() {
		logger.Printf("Server running in %s mode on port %s", cfg.Env, cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		logger.Printf("Received %s, shutting down", sig)
	case err := <-listenErr:
		// a server in an unknown state should not keep serving
		logger.Printf("Server error: %v", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Printf("Server shutdown failed: %v", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Printf("Closing store failed: %v", err)
	}
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
