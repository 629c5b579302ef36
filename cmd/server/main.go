package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/punkontrol/backend/internal/auth"
	"github.com/punkontrol/backend/internal/cache"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/handlers"
	"github.com/punkontrol/backend/internal/logger"
	"github.com/punkontrol/backend/internal/metrics"
	"github.com/punkontrol/backend/internal/middleware"
	"github.com/punkontrol/backend/internal/storage"
	"github.com/punkontrol/backend/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize structured logging
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Punkontrol server starting ===")

	// Initialize database
	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	// Initialize auth service
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}

	authService := auth.NewService(
		jwtSecret,
		os.Getenv("GOOGLE_CLIENT_ID"),
		os.Getenv("GOOGLE_CLIENT_SECRET"),
	)

	// Initialize Redis (optional - caching degrades gracefully)
	redisClient, err := cache.NewRedisClient(
		os.Getenv("REDIS_HOST"),
		os.Getenv("REDIS_PORT"),
		os.Getenv("REDIS_PASSWORD"),
	)
	if err != nil {
		logger.WarnWithFields("Redis unavailable, continuing without response caching", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Initialize S3 image store
	var imageStore storage.ImageStore
	s3Store, err := storage.NewS3Store(
		os.Getenv("AWS_REGION"),
		os.Getenv("AWS_BUCKET"),
		os.Getenv("CDN_BASE_URL"),
	)
	if err != nil {
		logger.WarnWithFields("Failed to initialize S3 store, uploads will fail", err)
	} else {
		if err := s3Store.CheckBucketAccess(context.Background()); err != nil {
			logger.WarnWithFields("S3 bucket access failed, uploads will fail", err)
		}
		imageStore = s3Store
	}

	// Initialize OpenTelemetry tracing (optional)
	samplingRate := 1.0
	if raw := os.Getenv("OTEL_SAMPLING_RATE"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			samplingRate = parsed
		}
	}
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "punkontrol-backend",
		Environment:  os.Getenv("ENVIRONMENT"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Enabled:      os.Getenv("OTEL_ENABLED") == "true",
		SamplingRate: samplingRate,
	})
	if err != nil {
		logger.WarnWithFields("Failed to initialize tracing", err)
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	// Register Prometheus metrics
	metrics.Initialize()

	// Initialize handlers
	h := handlers.NewHandlers(authService)
	h.SetImageStore(imageStore)
	h.SetRedisClient(redisClient)

	// Setup Gin router
	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if tp != nil {
		r.Use(otelgin.Middleware("punkontrol-backend"))
	}

	// CORS middleware
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"} // Configure properly for production
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(config))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "punkontrol-backend",
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		// Authentication routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/google", h.GoogleLogin)
			authGroup.GET("/google/callback", h.GoogleCallback)
			authGroup.GET("/me", h.AuthMiddleware(), h.Me)
			authGroup.PATCH("/me", h.AuthMiddleware(), h.UpdateMe)
		}

		// Artwork gallery (public reads)
		artworks := api.Group("/artworks")
		{
			artworks.GET("", h.GetLatestArtworks)
			artworks.GET("/categories", h.GetCategories)
			artworks.GET("/:idOrSlug", h.GetArtwork)
			artworks.POST("", h.AuthMiddleware(), h.UploadArtwork)
			artworks.DELETE("/:idOrSlug", h.AuthMiddleware(), h.DeleteArtwork)
		}

		// Post feed (public reads)
		posts := api.Group("/posts")
		{
			posts.GET("/feed", h.GetFeed)
			posts.GET("/:id", h.GetPost)
			posts.GET("/:id/comments", h.GetComments)
			posts.POST("", h.AuthMiddleware(), h.CreatePost)
			posts.DELETE("/:id", h.AuthMiddleware(), h.DeletePost)
			posts.POST("/:id/comments", h.AuthMiddleware(), h.CreateComment)
			posts.DELETE("/:id/comments/:commentId", h.AuthMiddleware(), h.DeleteComment)
		}

		// Likes (post or artwork targets)
		likes := api.Group("/likes")
		likes.Use(h.AuthMiddleware())
		{
			likes.POST("/:targetType/:targetId", h.ToggleLike)
			likes.GET("/:targetType/:targetId", h.GetLikeStatus)
		}

		// Follows
		follows := api.Group("/follows")
		{
			follows.GET("/:userId/followers", h.GetFollowers)
			follows.GET("/:userId/following", h.GetFollowing)
			follows.POST("/:userId", h.AuthMiddleware(), h.ToggleFollow)
			follows.GET("/:userId", h.AuthMiddleware(), h.GetFollowStatus)
		}

		// Profiles (public)
		users := api.Group("/users")
		{
			users.GET("/:username", h.GetUserByUsername)
			users.GET("/:username/artworks", h.GetUserArtworks)
			users.GET("/:username/posts", h.GetUserPosts)
		}

		// Discover / search (public)
		api.GET("/search", h.Search)

		// Admin
		admin := api.Group("/admin")
		admin.Use(h.AuthMiddleware(), h.AdminMiddleware())
		{
			admin.POST("/fix-counts", h.FixCounts)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithFields("HTTP server failed", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithFields("Forced shutdown", err)
	}
	logger.Log.Info("Server exited")
}
