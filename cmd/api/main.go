package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/config"
	"github.com/GTDGit/gtd_catalog/internal/database"
	"github.com/GTDGit/gtd_catalog/internal/handler"
	"github.com/GTDGit/gtd_catalog/internal/metrics"
	"github.com/GTDGit/gtd_catalog/internal/middleware"
	"github.com/GTDGit/gtd_catalog/internal/repository"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/worker"
	"github.com/GTDGit/gtd_catalog/pkg/gog"
	"github.com/GTDGit/gtd_catalog/pkg/upload"
)

// main is the entrypoint for the GTD catalog ingestion service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting gtd catalog")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect database
	db, err := database.Connect(ctx, &cfg.DB, cfg.Pipeline.Concurrency)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	detailCache := cache.NewDetailCache(redisClient, cfg.Pipeline.DetailCacheTTL)
	runLock := cache.NewRunLock(redisClient, cfg.Pipeline.RunLockTTL)

	// 4. Storefront client
	gogClient := gog.NewClient(gog.Config{
		CatalogURL:    cfg.GOG.CatalogURL,
		StorefrontURL: cfg.GOG.StorefrontURL,
		DefaultLimit:  cfg.GOG.DefaultLimit,
		DefaultOrder:  cfg.GOG.DefaultOrder,
		Timeout:       cfg.GOG.Timeout,
		RateLimit:     cfg.GOG.RateLimit,
	})

	// 5. Initialize repositories
	referenceRepo := repository.NewReferenceRepository(db)
	gameRepo := repository.NewGameRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	// 6. Initialize services
	var uploader service.MediaUploader
	switch cfg.Media.Backend {
	case config.MediaBackendS3:
		s3Svc, err := service.NewS3Service(ctx, &cfg.S3, mediaRepo)
		if err != nil {
			log.Error().Err(err).Msg("S3 service initialization failed")
			os.Exit(1)
		}
		uploader = s3Svc
	default:
		uploader = upload.NewClient(cfg.Media.UploadURL, cfg.GOG.Timeout)
	}
	log.Info().Str("backend", cfg.Media.Backend).Msg("media backend configured")

	scraper := service.NewDetailScraper(gogClient, detailCache)
	mediaSvc := service.NewMediaService(gogClient, uploader, cfg.Media.Ref)
	referenceSvc := service.NewReferenceService(referenceRepo, cfg.Pipeline.Concurrency)
	gameSvc := service.NewGameService(gameRepo, referenceRepo, scraper, mediaSvc, service.GameServiceConfig{
		Concurrency:    cfg.Pipeline.Concurrency,
		GalleryLimit:   cfg.Pipeline.GalleryLimit,
		ImageFormatter: cfg.Pipeline.ImageFormatter,
	})
	populateSvc := service.NewPopulateService(gogClient, referenceSvc, gameSvc, runLock)

	hub := sse.NewHub()
	defer hub.Close()
	populateSvc.SetNotifier(sse.NewHubNotifier(hub))

	// 7. Initialize handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.PingFunc{
			"database": db.PingContext,
			"redis":    redisClient.Ping,
		}, referenceRepo),
		Populate: handler.NewPopulateHandler(populateSvc),
		SSE:      handler.NewSSEHandler(hub),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.HTTP.CORSAllowedHosts))
	setupRoutes(router, handlers, middleware.NewTriggerRateLimiter(cfg.HTTP.TriggerPerMinute))

	// 9. Start workers
	if cfg.Worker.PopulateInterval > 0 {
		go worker.NewPopulateWorker(populateSvc, service.PopulateOptions{}, cfg.Worker.PopulateInterval).Start(ctx)
	}

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health   *handler.HealthHandler
	Populate *handler.PopulateHandler
	SSE      *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, trigger *middleware.TriggerRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	games := router.Group("/v1/games")
	{
		games.POST("/populate", trigger.Middleware(), handlers.Populate.Populate)
		games.GET("/populate", trigger.Middleware(), handlers.Populate.Populate)
		games.GET("/populate/events", handlers.SSE.Stream)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
