package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// likeEscaper quotes LIKE metacharacters so user-supplied prefixes
// match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CatalogService serves the tag and ingredient reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Tags lists every tag ordered by name.
func (s *CatalogService) Tags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Tag retrieves a single tag by id.
func (s *CatalogService) Tag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// Ingredients lists ingredients, optionally narrowed by a
// case-insensitive name prefix.
func (s *CatalogService) Ingredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(namePrefix)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Ingredient retrieves a single ingredient by id.
func (s *CatalogService) Ingredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}
