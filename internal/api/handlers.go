package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// RegisterRoutes wires every handler under /api. redisClient and
// images may be nil; token revocation, rate limiting and image upload
// then degrade to no-ops.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, images service.ImageStore, jwtSecret string) {
	authService := service.NewAuthService(db, redisClient, jwtSecret)
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db, images)
	catalogService := service.NewCatalogService(db)

	var creationLimiter *middleware.RateLimiter
	if redisClient != nil {
		creationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	router.GET("/health", HealthCheck(db))

	apiGroup := router.Group("/api")
	NewAuthHandler(authService).RegisterRoutes(apiGroup)
	NewUserHandler(userService, authService).RegisterRoutes(apiGroup)
	NewRecipeHandler(recipeService, userService, authService, creationLimiter).RegisterRoutes(apiGroup)
	NewCatalogHandler(catalogService).RegisterRoutes(apiGroup)
}

// HealthCheck reports liveness and database reachability.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
