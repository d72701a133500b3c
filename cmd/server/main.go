// @title           AI Tools Backend API
// @version         1.0.0
// @description     Text and image generation operations with per-user entitlements and a shared creations ledger.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-tools-backend/docs"
	"ai-tools-backend/internal/artifacts"
	"ai-tools-backend/internal/cloudinary"
	"ai-tools-backend/internal/config"
	"ai-tools-backend/internal/database"
	"ai-tools-backend/internal/entitlement"
	"ai-tools-backend/internal/fallback"
	"ai-tools-backend/internal/handlers"
	"ai-tools-backend/internal/llm"
	"ai-tools-backend/internal/logging"
	"ai-tools-backend/internal/metrics"
	"ai-tools-backend/internal/middleware"
	"ai-tools-backend/internal/models"
	"ai-tools-backend/internal/providers"
	"ai-tools-backend/internal/services"
	"ai-tools-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "go.uber.org/automaxprocs"
)

const (
	cloudinaryFolder    = "ai-tools"
	usageKeyPrefix      = "ai-tools"
	rateLimitMaxKeys    = 10000
	rateLimitSweep      = 5 * time.Minute
	multipartOverhead   = 1 << 20
	jsonBodyLimit       = 1 << 20
	shutdownGracePeriod = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Environment, cfg.LogLevel)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx := context.Background()
	httpClient := providers.NewHTTPClient(cfg.ProviderTimeout)

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database client")
	}
	defer dbClient.Close()

	if err := database.NewMigrator(dbClient.DB(), logger).Run(ctx); err != nil {
		logger.WithError(err).Fatal("Migration failed")
	}

	checks := map[string]handlers.HealthCheck{"database": dbClient.Ping}

	var usage entitlement.UsageStore
	if cfg.RedisURL != "" {
		redisStore, err := entitlement.NewRedisUsageStore(cfg.RedisURL, usageKeyPrefix)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize redis usage store")
		}
		defer redisStore.Close()
		usage = redisStore
		checks["redis"] = redisStore.Ping
	} else {
		logger.Warn("REDIS_URL not set, usage counters are kept in memory and reset on restart")
		usage = entitlement.NewMemoryUsageStore()
	}
	gate := entitlement.NewGate(usage, cfg.FreeUsageLimit, premiumOnly(cfg, logger))

	store, err := newArtifactStore(cfg, httpClient)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize artifact store")
	}

	var opts []services.Option
	opts = append(opts, services.WithLimits(services.Limits{
		MaxImageBytes: cfg.MaxImageBytes,
		MaxPDFBytes:   cfg.MaxPDFBytes,
		MaxPromptLen:  services.DefaultLimits().MaxPromptLen,
	}))

	var likes handlers.LikePublisher
	if cfg.RealtimeEnabled {
		realtime := supabase.NewRealtimeClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, httpClient)
		opts = append(opts, services.WithPublisher(realtime))
		likes = realtime
	}

	textClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, httpClient)
	svc := services.NewOperationService(textClient, newChains(cfg, httpClient, store, logger), dbClient, gate, logger, opts...)

	limits := services.Limits{MaxImageBytes: cfg.MaxImageBytes, MaxPDFBytes: cfg.MaxPDFBytes}
	operationsHandler := handlers.NewOperationsHandler(svc, limits, logger)
	creationsHandler := handlers.NewCreationsHandler(dbClient, likes, logger)
	healthHandler := handlers.NewHealthHandler(store.Name(), checks)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.RequestLogger(logger, middleware.UserIDKey))
	router.Use(middleware.CORS([]string{cfg.ClientURL}))
	router.Use(metrics.Middleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	done := make(chan struct{})
	defer close(done)
	limiter.StartCleanup(rateLimitSweep, rateLimitMaxKeys, done)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))
	api.Use(limiter.Handler())

	uploadCap := middleware.BodyLimit(cfg.MaxImageBytes + multipartOverhead)
	jsonCap := middleware.BodyLimit(jsonBodyLimit)
	gated := func(op models.OperationType) gin.HandlerFunc {
		return middleware.RequireEntitlement(gate, op, logger)
	}

	ops := api.Group("/operations")
	ops.POST("/article", jsonCap, gated(models.OperationArticle), operationsHandler.GenerateArticle)
	ops.POST("/blog-title", jsonCap, gated(models.OperationBlogTitle), operationsHandler.GenerateBlogTitle)
	ops.POST("/image", jsonCap, gated(models.OperationImage), operationsHandler.GenerateImage)
	ops.POST("/bg-removal", uploadCap, gated(models.OperationBgRemoval), operationsHandler.RemoveBackground)
	ops.POST("/object-removal", uploadCap, gated(models.OperationObjectRemoval), operationsHandler.RemoveObject)
	ops.POST("/resume-review", uploadCap, gated(models.OperationResumeReview), operationsHandler.ReviewResume)

	api.GET("/creations", creationsHandler.ListMine)
	api.GET("/creations/published", creationsHandler.ListPublished)
	api.POST("/creations/:id/toggle-like", creationsHandler.ToggleLike)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":             cfg.Port,
			"artifact_backend": store.Name(),
			"realtime":         cfg.RealtimeEnabled,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
	logger.Info("Server stopped")
}

func premiumOnly(cfg *config.Config, logger logrus.FieldLogger) []models.OperationType {
	var ops []models.OperationType
	for _, name := range cfg.PremiumOnlyOperations {
		op, ok := models.ParseOperationType(name)
		if !ok {
			logger.WithField("operation", name).Warn("ignoring unknown operation in PREMIUM_ONLY_OPERATIONS")
			continue
		}
		ops = append(ops, op)
	}
	return ops
}

func newArtifactStore(cfg *config.Config, httpClient *http.Client) (artifacts.Store, error) {
	if cfg.ArtifactBackend == config.BackendSupabase {
		root, err := supabase.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return supabase.NewStorageClient(root, cfg.SupabaseStorageBucket), nil
	}

	var prober *artifacts.EffectProber
	if cfg.ProbeEffects {
		prober = artifacts.NewEffectProber(httpClient, cfg.EffectProbeTimeout)
	}
	return cloudinary.NewStore(cfg.CloudinaryURL, cloudinaryFolder, prober)
}

func newChains(cfg *config.Config, httpClient *http.Client, store artifacts.Store, logger logrus.FieldLogger) map[models.OperationType]services.ChainRunner {
	chainOpts := []fallback.Option{
		fallback.WithAttemptTimeout(cfg.ProviderTimeout),
		fallback.WithLogger(logger),
	}

	var image, background, object []providers.Provider
	if cfg.ClipDropAPIKey != "" {
		clipdrop := providers.NewClipDrop(cfg.ClipDropBaseURL, cfg.ClipDropAPIKey, httpClient)
		image = append(image, clipdrop.TextToImage())
		object = append(object, clipdrop.RemoveObject())
		if cfg.ClipDropRemoveBackground {
			background = append(background, clipdrop.RemoveBackground())
		}
	}
	image = append(image,
		providers.NewPollinations(cfg.PollinationsBaseURL, httpClient),
		providers.NewPicsum(cfg.PicsumBaseURL, httpClient),
	)

	return map[models.OperationType]services.ChainRunner{
		models.OperationImage: fallback.New("image", image, providers.Placeholder{}, store, chainOpts...),
		models.OperationBgRemoval: fallback.New("bg-removal", background,
			providers.Passthrough{Effect: providers.EffectBackgroundRemoval}, store, chainOpts...),
		models.OperationObjectRemoval: fallback.New("object-removal", object,
			providers.Passthrough{Effect: providers.EffectObjectRemoval}, store, chainOpts...),
	}
}
