package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FavoriteRecipeUser marks a recipe as a favorite of a user.
type FavoriteRecipeUser struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
}

func (FavoriteRecipeUser) TableName() string {
	return "favorite_recipe_users"
}

func (f *FavoriteRecipeUser) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ShoppingCartUser marks a recipe as present in a user's shopping cart.
type ShoppingCartUser struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe" json:"recipe_id"`
}

func (ShoppingCartUser) TableName() string {
	return "shopping_cart_users"
}

func (s *ShoppingCartUser) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
