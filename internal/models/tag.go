package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Tag labels recipes; color is a hex triplet and slug is URL-safe.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"size:7;not null;default:'#FF0000'" json:"color"`
	Slug      string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return t.Validate()
}

func (t *Tag) BeforeUpdate(tx *gorm.DB) error {
	return t.Validate()
}

// Validate checks the color and slug formats.
func (t *Tag) Validate() error {
	if !hexColorPattern.MatchString(t.Color) {
		return fmt.Errorf("tag color %q is not a hex color code", t.Color)
	}
	if !slugPattern.MatchString(t.Slug) {
		return fmt.Errorf("tag slug %q contains characters outside [-a-zA-Z0-9_]", t.Slug)
	}
	return nil
}
