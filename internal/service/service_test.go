package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/backend/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.TagRecipe{},
		&models.IngredientRecipe{},
		&models.FavoriteRecipeUser{},
		&models.ShoppingCartUser{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		Role:         models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedRecipe(t *testing.T, db *gorm.DB, author *models.User, name string) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		Name:        name,
		Text:        "text",
		CookingTime: 10,
		AuthorID:    author.ID,
	}
	require.NoError(t, db.Create(&recipe).Error)
	return &recipe
}
