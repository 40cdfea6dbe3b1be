package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/coursepub/coursepub/handlers"
	"github.com/coursepub/coursepub/internal/config"
	"github.com/coursepub/coursepub/internal/course/repository"
	"github.com/coursepub/coursepub/internal/course/service"
	"github.com/coursepub/coursepub/internal/database"
	"github.com/coursepub/coursepub/internal/storage"
	"github.com/coursepub/coursepub/pkg/logger"
	"github.com/coursepub/coursepub/pkg/metrics"
	"github.com/coursepub/coursepub/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())

	// Lightweight CORS middleware: the admin page is served from the site's
	// own origin in production, but dev/test hosts it separately.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("Connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Blob store: MinIO when configured, in-memory fallback for development.
	var blobs service.BlobStore
	blobsDurable := false
	minioCfg := storage.LoadMinIOConfig()
	if minioCfg.Endpoint != "" {
		store, err := storage.NewMinIOStore(minioCfg)
		if err != nil {
			logger.Fatalf("failed to initialize MinIO blob store: %v", err)
		}
		blobs = store
		blobsDurable = true
	} else {
		logger.Warnf("MINIO_ENDPOINT not set — using in-memory blob store (uploads will not survive restarts)")
		blobs = storage.NewMemoryStore()
	}

	// Metadata table: MongoDB when configured, in-memory fallback otherwise.
	// Retry/backoff tolerates container startup races.
	var records service.Records
	recordsDurable := false
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		col := client.Database(cfg.MongoDB.Database).Collection("courses")
		records = repository.NewMongoRepo(col)
		recordsDurable = true
	} else {
		logger.Warnf("MONGODB_URI not set — using in-memory course index")
		records = repository.NewMemoryRepo()
	}

	svc := service.New(blobs, records)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when both halves of the two-phase write are durable
	// (or the service was deliberately started storage-less for development)
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"blobs":   blobs != nil,
			"records": records != nil,
			"redis":   !cfg.RateLimit.UseRedis || redisClient != nil,
		}
		ready := deps["blobs"] && deps["records"] && deps["redis"]
		status := gin.H{
			"deps":    deps,
			"durable": gin.H{"blobs": blobsDurable, "records": recordsDurable},
			"uptime":  time.Since(startTime).String(),
		}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		c.JSON(http.StatusOK, status)
	})

	handlers.NewUploadHandler(svc).Register(r)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: mongo=%v minio=%v redis=%v", cfg.MongoDB.URI != "", minioCfg.Endpoint != "", cfg.Redis.Host != "")
	logger.Infof("Starting coursepub on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
