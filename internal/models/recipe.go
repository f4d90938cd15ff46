package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe is the central entity. CreatedAt doubles as the publication
// date and is never updated after creation.
type Recipe struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time          `json:"pub_date"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Name        string             `gorm:"size:200;not null;index" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:cooking_time >= 1" json:"cooking_time"`
	Image       string             `gorm:"type:text" json:"image"`
	AuthorID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag              `gorm:"many2many:tag_recipes" json:"-"`
	Ingredients []IngredientRecipe `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TagRecipe is the recipe/tag join table. The composite key keeps the
// (tag, recipe) pair unique.
type TagRecipe struct {
	TagID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"tag_id"`
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
}

func (TagRecipe) TableName() string {
	return "tag_recipes"
}

// IngredientRecipe is the recipe/ingredient join table carrying the
// quantity. (ingredient, recipe) is unique and amount is at least 1.
type IngredientRecipe struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	IngredientID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_recipe" json:"ingredient_id"`
	RecipeID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_recipe" json:"recipe_id"`
	Amount       int        `gorm:"not null;check:amount >= 1" json:"amount"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"-"`
}

func (IngredientRecipe) TableName() string {
	return "ingredient_recipes"
}

func (ir *IngredientRecipe) BeforeCreate(tx *gorm.DB) error {
	if ir.ID == uuid.Nil {
		ir.ID = uuid.New()
	}
	return nil
}
