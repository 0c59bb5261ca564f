package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heritage_auth/internal/config"
	"heritage_auth/internal/handler"
	"heritage_auth/internal/middleware"
	"heritage_auth/internal/repository"
	"heritage_auth/internal/service"
	"heritage_auth/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.UsingDefaultSecret() {
		log.Println("WARNING: JWT_SECRET_KEY not set; using the insecure development default. Do NOT deploy like this.")
	}

	// --- Credential Store ---
	var userRepo repository.UserRepository
	var otpRepo repository.OTPRepository

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		defer db.Close()
		userRepo = repository.NewSQLiteUserRepository(db)
		otpRepo = repository.NewSQLiteOTPRepository(db)
		log.Printf("Using sqlite store at %s", cfg.SQLitePath)
	case config.BackendFile:
		// Whole-collection-rewrite backend; not safe under concurrent
		// writers from multiple processes. Development use only.
		userRepo = repository.NewFileUserRepository(cfg.UsersFile)
		otpRepo = repository.NewMemoryOTPRepository()
		log.Printf("Using file store at %s (not safe under concurrent writers)", cfg.UsersFile)
	case config.BackendPostgres:
		dbCfg, err := config.LoadDBConfig()
		if err != nil {
			log.Fatalf("Failed to load DB config: %v", err)
		}
		pool, err := config.ConnectDB(dbCfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := config.AutoMigrate(pool); err != nil {
			log.Fatalf("Failed to auto-migrate database: %v", err)
		}
		userRepo = repository.NewPostgresUserRepository(pool)
		otpRepo = repository.NewMemoryOTPRepository()
		log.Println("Using postgres store")
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiryDays)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil)
	otpService := service.NewOTPService(userRepo, otpRepo)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, otpService)

	// --- Setup Gin Router ---
	router := gin.Default()

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	adminRoleMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Auth server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
