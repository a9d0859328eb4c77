package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cirrus/internal/auth"
	"cirrus/internal/config"
	"cirrus/internal/domain/repositories"
	wsRepo "cirrus/internal/domain/repositories/workspace"
	"cirrus/internal/handler"
	"cirrus/internal/middleware"
	"cirrus/internal/mimetypes"
	"cirrus/internal/repository/memory"
	"cirrus/internal/repository/postgres"
	postgresWorkspace "cirrus/internal/repository/postgres/workspace"
	serviceWorkspace "cirrus/internal/service/workspace"
	"cirrus/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := config.NewLogger(logOutput, cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage_backend", cfg.StorageBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, cfg.JWTSecret, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Tree store
	var (
		folderRepo wsRepo.FolderRepository
		fileRepo   wsRepo.FileRepository
		txManager  repositories.TransactionManager
	)
	if cfg.DatabaseURL == "" {
		store := memory.New()
		folderRepo, fileRepo, txManager = store.Folders(), store.Files(), store.TxManager()
		logger.Warn("DATABASE_URL not set, using in-memory tree store (data is lost on restart)")
	} else {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.RunMigrations(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("database connected", "max_conns", 25, "min_conns", 5)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		folderRepo = postgresWorkspace.NewFolderRepository(repoConfig)
		fileRepo = postgresWorkspace.NewFileRepository(repoConfig)
		txManager = postgres.NewTransactionManager(pool, logger)
	}

	// Object store
	var (
		objects   storage.ObjectStore
		blobStore *storage.MemoryStore
	)
	switch cfg.StorageBackend {
	case "memory":
		blobStore = storage.NewMemoryStore(cfg.PublicURL)
		objects = blobStore
		logger.Warn("using in-memory object store", "public_url", cfg.PublicURL)
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 store: %v", err)
		}
		objects = s3Store
		logger.Info("S3 object store configured", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q (want memory or s3)", cfg.StorageBackend)
	}

	mimes, err := mimetypes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize media type registry: %v", err)
	}

	// Services
	treeService := serviceWorkspace.NewTreeService(folderRepo, fileRepo, objects, mimes, txManager, cfg.DownloadURLTTL, logger)
	moveService := serviceWorkspace.NewMoveService(folderRepo, fileRepo, txManager, logger)
	trashService := serviceWorkspace.NewTrashService(folderRepo, fileRepo, objects, txManager, logger)
	ingestService := serviceWorkspace.NewIngestService(treeService, logger)

	// Handlers
	folderHandler := handler.NewFolderHandler(treeService, moveService, trashService, logger)
	fileHandler := handler.NewFileHandler(treeService, moveService, trashService, ingestService, cfg.MaxUploadBytes, logger)
	trashHandler := handler.NewTrashHandler(trashService, logger)

	logger.Info("services initialized")

	api := http.NewServeMux()
	handler.RegisterRoutes(api, folderHandler, fileHandler, trashHandler)

	// Public routes sit outside the auth middleware
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.HealthCheck)
	if blobStore != nil {
		mux.Handle(storage.BlobPathPrefix, blobStore)
	}
	mux.Handle("/", middleware.Auth(jwtVerifier)(api))

	// Order: CORS → Recovery → RequestLogger → Routes
	var h http.Handler = mux
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 0, // uploads may be large; bounded by MAX_UPLOAD_BYTES instead
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
