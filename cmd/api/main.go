package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/roadsafety/backend/docs"
	"github.com/roadsafety/backend/internal/cache"
	"github.com/roadsafety/backend/internal/events"
	"github.com/roadsafety/backend/internal/handlers"
	"github.com/roadsafety/backend/internal/pdf"
	"github.com/roadsafety/backend/internal/repositories"
	"github.com/roadsafety/backend/internal/scheduler"
	"github.com/roadsafety/backend/internal/services"
	"github.com/roadsafety/backend/internal/sessions"
	"github.com/roadsafety/backend/internal/storage"
	"github.com/roadsafety/backend/internal/synth"
	"github.com/roadsafety/backend/libs/auth"
	authMiddleware "github.com/roadsafety/backend/libs/auth/middleware"
	authService "github.com/roadsafety/backend/libs/auth/service"
	"github.com/roadsafety/backend/libs/config"
	"github.com/roadsafety/backend/libs/logger"
	loggerMiddleware "github.com/roadsafety/backend/libs/logger/middleware"
	sharedMiddleware "github.com/roadsafety/backend/libs/middlewares"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const jobTimeout = 10 * time.Minute

// @title Road Safety Learning API
// @version 1.0
// @description Courses, lessons, quizzes, progress tracking and analytics for road safety education

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Road Safety API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize JWT token validation (tokens are issued by the auth service)
	tokenGenerator := authService.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Redis is optional; without it every TTS request reaches the engine
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var audioCache services.AudioCache
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn("Redis unavailable, TTS cache disabled", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
	} else {
		audioCache = cache.NewTTSCache(redisClient, cfg.TTS.CacheTTL)
	}
	pingCancel()

	// Initialize storage
	fileStorage, err := newStorage(cfg)
	if err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Initialize event publisher
	var publisher services.EventPublisher = events.NopPublisher{}
	closePublisher := func() error { return nil }
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, logger.Logger)
		publisher = kafkaPublisher
		closePublisher = kafkaPublisher.Close
		logger.Logger.Info("Publishing domain events to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	// Initialize repositories
	courseRepo := repositories.NewCourseRepository(db)
	moduleRepo := repositories.NewModuleRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	questionRepo := repositories.NewQuestionRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	responseRepo := repositories.NewResponseRepository(db)
	userRepo := repositories.NewUserRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)
	audioRepo := repositories.NewAudioRepository(db)
	pdfRepo := repositories.NewPDFRepository(db)

	// Live quiz sessions
	registry := sessions.NewRegistry()

	// Initialize services
	catalogService := services.NewCatalogService(courseRepo, moduleRepo, lessonRepo, quizRepo, questionRepo, logger.Logger)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo, progressRepo, courseRepo, lessonRepo, publisher, logger.Logger)
	quizService := services.NewQuizService(quizRepo, questionRepo, responseRepo, publisher, logger.Logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo, registry, logger.Logger)
	userService := services.NewUserService(userRepo, logger.Logger)
	ttsService := services.NewTTSService(
		synth.NewClient(cfg.TTS.EngineURL, cfg.TTS.Timeout),
		audioCache,
		fileStorage,
		audioRepo,
		lessonRepo,
		cfg.Storage.BaseURL,
		logger.Logger,
	)
	pdfService := services.NewPDFService(pdfRepo, fileStorage, pdf.NewExtractor(), cfg.Storage.BaseURL, cfg.MaxUploadSize, logger.Logger)

	// Schedule audio cleanup
	jobs := scheduler.New(logger.Logger, jobTimeout)
	err = jobs.Add(cfg.TTS.CleanupSchedule, "tts-cleanup", func(ctx context.Context) error {
		result, err := ttsService.Cleanup(ctx, cfg.TTS.MaxAudioAge)
		if err != nil {
			return err
		}
		logger.Logger.Info("Old audio removed", zap.Int("deleted", result.Deleted))
		return nil
	})
	if err != nil {
		logger.Logger.Fatal("Failed to schedule audio cleanup", zap.Error(err))
	}
	jobs.Start()

	// Initialize middleware
	authMw := authMiddleware.AuthMiddleware(tokenGenerator)
	adminMw := authMiddleware.RoleMiddleware(tokenGenerator, auth.RoleAdmin)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger.Logger)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	quizSocketHandler := handlers.NewQuizSocketHandler(quizService, registry, cfg.CORS.AllowedOrigins, logger.Logger)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, logger.Logger)
	userHandler := handlers.NewUserHandler(userService, logger.Logger)
	mediaHandler := handlers.NewMediaHandler(ttsService, pdfService, fileStorage, cfg.MaxUploadSize, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	// Multipart framing needs room on top of the largest accepted PDF
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(cfg.MaxUploadSize + 1<<20))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	healthHandler.RegisterRoutes(r)

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		catalogHandler.RegisterRoutes(r)
		enrollmentHandler.RegisterRoutes(r, authMw)
		quizHandler.RegisterRoutes(r, authMw)
		quizSocketHandler.RegisterRoutes(r, authMw)
		mediaHandler.RegisterRoutes(r, authMw)

		r.Group(func(r chi.Router) {
			r.Use(adminMw)
			catalogHandler.RegisterAdminRoutes(r)
			quizHandler.RegisterAdminRoutes(r)
			analyticsHandler.RegisterAdminRoutes(r)
			userHandler.RegisterAdminRoutes(r)
			mediaHandler.RegisterAdminRoutes(r)
		})

		// Machine callers such as an external scheduler trigger cleanup with the API key
		if cfg.APIKey != "" {
			r.With(authMiddleware.APIKeyMiddleware(cfg.APIKey)).Delete("/internal/tts/cleanup", mediaHandler.Cleanup)
		}
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...", zap.Int("live_quiz_sessions", registry.Count()))

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}
	jobs.Stop()
	if err := closePublisher(); err != nil {
		logger.Logger.Error("Failed to close event publisher", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// newStorage builds the configured media storage backend
func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "minio":
		client, err := storage.NewMinioClient(
			cfg.Storage.MinioEndpoint,
			cfg.Storage.MinioAccessKey,
			cfg.Storage.MinioSecretKey,
			cfg.Storage.MinioUseSSL,
		)
		if err != nil {
			return nil, err
		}
		minioStorage := storage.NewMinioStorage(client, cfg.Storage.MinioBucket)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := minioStorage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Logger.Info("Using MinIO storage", zap.String("endpoint", cfg.Storage.MinioEndpoint), zap.String("bucket", cfg.Storage.MinioBucket))
		return minioStorage, nil
	default:
		if err := os.MkdirAll(cfg.Storage.BasePath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create media directory: %w", err)
		}
		logger.Logger.Info("Using local storage", zap.String("path", cfg.Storage.BasePath))
		return storage.NewLocalStorage(cfg.Storage.BasePath), nil
	}
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "roadsafety_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Try the working directory first, then the repository root when running from cmd/api
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
