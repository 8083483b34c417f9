package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medialeader/config"
	"medialeader/database"
	"medialeader/routes"
	"medialeader/services"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting MediaLeader backend...")

	cfg := config.Load()

	if cfg.JWT.Secret == "" || cfg.Mongo.URI == "" {
		log.Fatal("JWT_SECRET and MONGODB_URI must be set")
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(cfg); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}

	// ===== GIN MODE =====
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ===== COLLABORATORS =====
	tokens := services.NewTokenService(cfg)

	var mailer services.Mailer
	mailer, err := services.NewSMTPMailer(cfg)
	if err != nil {
		if !errors.Is(err, services.ErrMailerNotConfigured) {
			log.Fatal("Email transport: ", err)
		}
		log.Println("SMTP not configured; signups will be acknowledged without verification email")
		mailer = services.NewDisabledMailer()
	}

	images, err := services.NewCloudinaryStore(cfg)
	if err != nil {
		log.Fatal("Cloudinary configuration error: ", err)
	}

	// ===== ROUTER =====
	router := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		Tokens:   tokens,
		Mailer:   mailer,
		Images:   images,
		FindUser: database.FindUserByID,
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Server is running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// ===== SERVER CONFIG =====
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	if err := database.DisconnectMongo(); err != nil {
		log.Println("MongoDB disconnect: ", err)
	}

	log.Println("Server stopped gracefully")
}
