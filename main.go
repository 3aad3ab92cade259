package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"finlit-service/internal/cache"
	"finlit-service/internal/catalog"
	"finlit-service/internal/db"
	"finlit-service/internal/event"
	"finlit-service/internal/handlers"
	"finlit-service/internal/repository"
	"finlit-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(mongoURI)

	contentDir := os.Getenv("CONTENT_DIR")
	if contentDir == "" {
		contentDir = "content"
	}
	cat, err := catalog.Load(contentDir)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.EventPublisher
	if rabbitURL != "" && eventExchange != "" {
		publisher, err = event.NewEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, learning events will not be published")
	}

	// Redis for rate limiting; the service runs without it
	var limiter *cache.Cache
	if redisURI := os.Getenv("REDIS_URI"); redisURI != "" {
		limiter, err = cache.New(context.Background(), redisURI)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer limiter.Close()
	} else {
		log.Println("Redis not configured, rate limiting disabled")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database("finlit_service")

	// Progress ledger and completion records
	progressRepo := repository.NewProgressRepository(database)
	progressService := service.NewProgressService(progressRepo, cat)
	progressHandler := handlers.NewProgressHandler(progressService)

	// Catalog
	catalogService := service.NewCatalogService(cat)
	catalogHandler := handlers.NewCatalogHandler(catalogService)

	// Sessions
	sessionRepo := repository.NewSessionRepository(database)
	sessionService := service.NewSessionService(
		sessionRepo,
		progressRepo,
		cat,
		publisher,
	)
	sessionHandler := handlers.NewSessionHandler(sessionService, catalogService)

	// Login stub
	authHandler := handlers.NewAuthHandler(loginDelay())

	// Public routes - Catalog
	publicCatalog := r.Group("/public/finlit/catalog")
	{
		publicCatalog.GET("/", catalogHandler.ListTopics)
		publicCatalog.GET("/:topicId", catalogHandler.GetTopic)
		publicCatalog.GET("/:topicId/sublevels/:subLevelId", catalogHandler.GetSubLevel)
	}

	// Public routes - login stub (no real verification)
	r.POST("/public/finlit/auth/login", authHandler.Login)

	setupSessionRoutes(r, sessionHandler, limiter)

	protectedProgress := r.Group("/protected/finlit/progress")
	protectedProgress.Use(requireUser())
	{
		protectedProgress.GET("/", progressHandler.GetProgress)
		protectedProgress.GET("/unlocks", progressHandler.GetUnlocks)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "6660"
	}
	r.Run(":" + port)
}

func setupSessionRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler, limiter *cache.Cache) {
	protectedSession := r.Group("/protected/finlit/session")
	protectedSession.Use(requireUser())
	protectedSession.Use(rateLimit(limiter))

	// Request logging for session interactions
	protectedSession.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[SESSION] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
			param.ErrorMessage,
		)
	}))

	{
		// === ATTEMPT LIFECYCLE ===
		protectedSession.POST("/", sessionHandler.StartSession)
		protectedSession.GET("/:id", sessionHandler.GetSession)
		protectedSession.GET("/:id/status", sessionHandler.GetSessionStatus)

		// === ANSWER / ADVANCE CYCLE ===
		protectedSession.POST("/:id/answer", sessionHandler.SubmitAnswer)
		protectedSession.POST("/:id/advance", sessionHandler.Advance)

		// === SESSION CONTROL ===
		protectedSession.POST("/:id/pause", sessionHandler.PauseSession)
		protectedSession.POST("/:id/resume", sessionHandler.ResumeSession)
		protectedSession.POST("/:id/abandon", sessionHandler.AbandonSession)
	}
}

// requireUser rejects protected calls without a learner identity. The
// identity is trusted as-is; authentication itself lives elsewhere.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// rateLimit bounds per-user session traffic with a fixed one-minute window.
// Without Redis it passes everything through.
func rateLimit(limiter *cache.Cache) gin.HandlerFunc {
	const perMinute = 120

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := "ratelimit:" + c.GetHeader("X-User-ID")
		ok, err := limiter.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil {
			log.Printf("rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}
		if !ok {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func loginDelay() time.Duration {
	if v := os.Getenv("LOGIN_DELAY_MS"); v != "" {
		if d, err := time.ParseDuration(v + "ms"); err == nil {
			return d
		}
	}
	return 800 * time.Millisecond
}
