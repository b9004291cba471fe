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

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	adminpkg "github.com/mikios34/customer-admin/admin"
	adminrepo "github.com/mikios34/customer-admin/admin/repository"
	adminsvc "github.com/mikios34/customer-admin/admin/service"
	authpkg "github.com/mikios34/customer-admin/auth"
	authrepo "github.com/mikios34/customer-admin/auth/repository"
	authsvc "github.com/mikios34/customer-admin/auth/service"
	"github.com/mikios34/customer-admin/config"
	customerpkg "github.com/mikios34/customer-admin/customer"
	customerrepo "github.com/mikios34/customer-admin/customer/repository"
	customersvc "github.com/mikios34/customer-admin/customer/service"
	api "github.com/mikios34/customer-admin/handler"
	"github.com/mikios34/customer-admin/intake"
	"github.com/mikios34/customer-admin/layout"
	"github.com/mikios34/customer-admin/middleware"
	"github.com/mikios34/customer-admin/preview"
	"github.com/mikios34/customer-admin/realtime"
	"github.com/mikios34/customer-admin/storage"
)

const previewPrefix = "/dashboard/previews"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := initDatabase(cfg.Database, cfg.Server.Mode, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = initRedis(cfg.Redis)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	docs, err := initObjectStore(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to init document storage", zap.Error(err))
	}

	// auth
	var tokens authpkg.TokenStore = authrepo.NewMemoryTokenStore()
	var previews api.PreviewStore = preview.NewMemoryStore(previewPrefix)
	if rdb != nil {
		tokens = authrepo.NewRedisTokenStore(rdb)
		previews = preview.NewRedisStore(rdb, cfg.Intake.PreviewTTL, previewPrefix)
	}
	authRepo := authrepo.NewGormAuthRepo(db)
	fbClient, err := authpkg.InitFirebaseAuth(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		zapLogger.Warn("Firebase auth disabled", zap.Error(err))
	}
	verifiers := []authpkg.TokenVerifier{authpkg.NewJWTVerifier(cfg.JWT.Secret, tokens)}
	var idTokens authpkg.IDTokenVerifier
	if fbClient != nil {
		idTokens = fbClient
		verifiers = append(verifiers, authpkg.NewFirebaseVerifier(fbClient, authRepo))
	}
	authService := authsvc.NewAuthService(authRepo, tokens, idTokens, authsvc.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTokenExpire,
		RefreshTTL: cfg.JWT.RefreshTokenExpire,
	}, zapLogger)
	sessions := authsvc.NewSessionService(authsvc.SessionConfig{CookieName: cfg.Session.CookieName}, zapLogger, verifiers...)

	// admin
	adminService := adminsvc.NewAdminService(adminrepo.NewGormAdminRepo(db), zapLogger)
	if created, err := adminService.EnsureBootstrapAdmin(ctx, adminpkg.RegisterAdminRequest{
		FullName: cfg.Bootstrap.FullName,
		Email:    cfg.Bootstrap.Email,
		Password: cfg.Bootstrap.Password,
	}); err != nil {
		zapLogger.Error("Failed to create bootstrap admin", zap.Error(err))
	} else if created {
		zapLogger.Info("Bootstrap admin created", zap.String("email", cfg.Bootstrap.Email))
	}

	// customers and intake forms
	customerService := customersvc.NewCustomerService(customerrepo.NewGormCustomerRepo(db), docs, zapLogger)
	registry := intake.NewRegistry(cfg.Intake.FormTTL, zapLogger)
	go registry.Run(ctx, cfg.Intake.SweepInterval)
	hub := realtime.NewHub(zapLogger)

	handlers := &api.Handlers{
		Auth:     api.NewAuthHandler(authService, cfg.Session.CookieName),
		Admin:    api.NewAdminHandler(adminService),
		Customer: api.NewCustomerHandler(customerService),
		Form: api.NewFormHandler(registry, customerService, customerpkg.NewSchema(nil), previews, hub, api.FormConfig{
			PlaceholderURL: cfg.Intake.PlaceholderURL,
			MaxUploadBytes: cfg.Intake.MaxUploadBytes,
		}),
		WS:        api.NewWSHandler(hub, registry, cfg.CORS.AllowOrigins),
		Dashboard: api.NewDashboardHandler(nil),
	}
	gate := layout.NewGate(sessions, layout.Options{
		Required: cfg.Session.Required,
		Redirect: cfg.Session.Redirect,
		Roles:    cfg.Session.Roles,
	}, nil)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(zapLogger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: !containsWildcard(cfg.CORS.AllowOrigins),
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{previewPrefix}),
		gzip.WithExcludedPathsRegexs([]string{`/ws$`}),
	))

	if cfg.Storage.Driver == "local" {
		api.RegisterDocuments(router, gate, cfg.Storage.URLPrefix, cfg.Storage.LocalDir)
	}
	api.RegisterRoutes(router, handlers, gate, middleware.RequireAuth(cfg.Session.CookieName, verifiers...))

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.Storage.Driver == "minio" {
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:      cfg.MinIO.Endpoint,
			AccessKey:     cfg.MinIO.AccessKey,
			SecretKey:     cfg.MinIO.SecretKey,
			Bucket:        cfg.MinIO.Bucket,
			UseSSL:        cfg.MinIO.UseSSL,
			PublicBaseURL: cfg.MinIO.PublicBaseURL,
		})
	}
	return storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.URLPrefix)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
