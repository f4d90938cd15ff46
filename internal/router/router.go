package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// New assembles the gin engine with middleware and all API routes.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, images service.ImageStore) *gin.Engine {
	if config.GetEnvironment() == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS())

	api.RegisterRoutes(engine, db, redisClient, images, cfg.JWTSecret)
	return engine
}
