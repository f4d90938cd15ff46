package database

import (
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// AutoMigrate creates or updates the schema for every model. Join
// tables are migrated explicitly so their composite unique indexes
// exist even when the parent side is migrated first. Production
// deployments run the SQL files under migrations/ instead; this path
// serves tests and local sqlite runs.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.TagRecipe{},
		&models.IngredientRecipe{},
		&models.FavoriteRecipeUser{},
		&models.ShoppingCartUser{},
	)
}
