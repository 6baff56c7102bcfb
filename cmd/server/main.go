package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/otcheredev/ris-dicom-imaging/internal/cache"
	"github.com/otcheredev/ris-dicom-imaging/internal/config"
	"github.com/otcheredev/ris-dicom-imaging/internal/database"
	"github.com/otcheredev/ris-dicom-imaging/internal/handlers"
	"github.com/otcheredev/ris-dicom-imaging/internal/middleware"
	"github.com/otcheredev/ris-dicom-imaging/internal/models"
	"github.com/otcheredev/ris-dicom-imaging/internal/repository"
	"github.com/otcheredev/ris-dicom-imaging/internal/services"
	"github.com/otcheredev/ris-dicom-imaging/internal/storage"
	"github.com/otcheredev/ris-dicom-imaging/internal/thumbnail"
	"github.com/otcheredev/ris-dicom-imaging/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting imaging catalog")

	ctx := context.Background()
	checks := map[string]handlers.Pinger{}

	// Connect to database
	var (
		studyStore services.StudyStore
		auditStore services.AuditStore
	)
	if cfg.Database.Enabled {
		dbConfig := database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			LogLevel: cfg.Database.LogLevel,
		}

		if err := database.Connect(dbConfig); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close()

		if err := database.AutoMigrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}

		studyStore = repository.NewStudyRepository()
		auditStore = repository.NewAuditRepository()
	} else {
		log.Info().Msg("Database disabled, studies are kept in memory only")
	}

	// Initialize cache
	var cacheImpl cache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		checks["cache"] = redisCache.Ping
		cacheImpl = redisCache
		log.Info().Msg("Redis cache initialized")
	} else {
		memCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
		defer memCache.Close()
		cacheImpl = memCache
		if cfg.Cache.Enabled {
			log.Info().Msg("Memory cache initialized")
		} else {
			log.Info().Msg("Cache disabled, using memory cache as fallback")
		}
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.Storage.Type {
	case "s3":
		s3Store, err := storage.NewS3Storage(storage.S3Config{
			Bucket:   cfg.Storage.S3Bucket,
			Prefix:   cfg.Storage.S3Prefix,
			Region:   cfg.Storage.S3Region,
			Endpoint: cfg.Storage.S3Endpoint,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		store = s3Store
		log.Info().Str("bucket", cfg.Storage.S3Bucket).Msg("S3 storage initialized")
	default:
		store = storage.NewLocalStorage(cfg.Storage.LocalRoot)
		log.Info().Str("root", cfg.Storage.LocalRoot).Msg("Local storage initialized")
	}

	// Initialize services
	catalog := services.NewCatalogService(
		store,
		cacheImpl,
		thumbnail.NewRenderer(store, cfg.Server.ReadTimeout),
		studyStore,
		auditStore,
		services.CatalogConfig{
			LazyLoad:      cfg.Imaging.LazyLoad,
			ThumbnailSize: cfg.Imaging.ThumbnailSize,
			CacheTTL:      cfg.Cache.TTL,
			ReadTimeout:   cfg.Server.ReadTimeout,
		},
	)

	for _, dir := range cfg.Imaging.ScanOnStart {
		study, err := catalog.ScanStudy(ctx, models.ScanRequest{Directory: dir}, uuid.Nil)
		if err != nil {
			log.Error().Err(err).Str("directory", dir).Msg("Startup scan failed")
			continue
		}
		log.Info().Str("study_id", study.StudyID).Int("series", len(study.Series)).Msg("Study indexed")
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(checks)
	catalogHandler := handlers.NewCatalogHandler(catalog)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	// Catalog API; mutating routes require X-User-ID
	r.Route("/api/v1", catalogHandler.Routes)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
