package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/router"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, continuing without token revocation and rate limiting: %v", err)
		redisClient = nil
	}

	var images service.ImageStore
	if cfg.S3Bucket != "" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
		if err != nil {
			log.Printf("S3 unavailable, recipe images will be stored inline: %v", err)
		} else {
			images = service.NewImageService(s3cfg)
		}
	}

	srv := server.New(cfg, router.New(cfg, db, redisClient, images))

	go func() {
		log.Printf("Starting server on %s", srv.Addr())
		if err := srv.Start(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
