package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is a catalog entry; recipes reference it through
// IngredientRecipe rows carrying the amount.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Name            string    `gorm:"size:200;not null;index" json:"name"`
	MeasurementUnit string    `gorm:"size:200;not null;default:'g'" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
