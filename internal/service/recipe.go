package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// Relation selects which user/recipe join table a toggle operates on.
type Relation int

const (
	RelationFavorite Relation = iota
	RelationShoppingCart
)

// String is the list name used in Conflict messages.
func (r Relation) String() string {
	if r == RelationShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

func (r Relation) row(userID, recipeID uuid.UUID) interface{} {
	if r == RelationShoppingCart {
		return &models.ShoppingCartUser{UserID: userID, RecipeID: recipeID}
	}
	return &models.FavoriteRecipeUser{UserID: userID, RecipeID: recipeID}
}

func (r Relation) model() interface{} {
	if r == RelationShoppingCart {
		return &models.ShoppingCartUser{}
	}
	return &models.FavoriteRecipeUser{}
}

// ImageStore persists a submitted recipe image and returns its URL.
type ImageStore interface {
	StoreRecipeImage(ctx context.Context, image string) (string, error)
}

// RecipeView is a recipe together with the requester-dependent flags.
type RecipeView struct {
	Recipe         models.Recipe
	Favorited      bool
	InShoppingCart bool
}

// ShoppingItem is one aggregated line of the shopping-list export.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// RecipeService handles recipe CRUD, list filtering, favorite and
// shopping-cart toggles, and the shopping-list aggregation.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a new RecipeService instance. images may be
// nil, in which case submitted image values are stored as-is.
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

func (s *RecipeService) preload(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").Preload("Tags").Preload("Ingredients.Ingredient")
}

// Get retrieves a recipe with its relations and the viewer's flags.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*RecipeView, error) {
	var recipe models.Recipe
	if err := s.preload(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	views, err := s.annotate(ctx, []models.Recipe{recipe}, viewer)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns the filtered, paginated recipe set ordered by name,
// plus the total match count.
func (s *RecipeService) List(ctx context.Context, filter types.RecipeFilter, viewer *uuid.UUID, page types.PageParams) ([]RecipeView, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)",
			s.db.Table("tag_recipes").
				Select("tag_recipes.recipe_id").
				Joins("JOIN tags ON tags.id = tag_recipes.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}
	if len(filter.AuthorIDs) > 0 {
		q = q.Where("recipes.author_id IN ?", filter.AuthorIDs)
	}
	// Membership filters only apply to authenticated requesters.
	if viewer != nil {
		q = s.applyMembership(q, filter.IsFavorited, "favorite_recipe_users", *viewer)
		q = s.applyMembership(q, filter.IsInShoppingCart, "shopping_cart_users", *viewer)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	q = q.Order("recipes.name")
	if page.Limit > 0 {
		q = q.Offset((page.Page - 1) * page.Limit).Limit(page.Limit)
	}
	if err := s.preload(q).Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	views, err := s.annotate(ctx, recipes, viewer)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecipeService) applyMembership(q *gorm.DB, flag *bool, table string, viewer uuid.UUID) *gorm.DB {
	if flag == nil {
		return q
	}
	sub := s.db.Table(table).Select("recipe_id").Where("user_id = ?", viewer)
	if *flag {
		return q.Where("recipes.id IN (?)", sub)
	}
	return q.Where("recipes.id NOT IN (?)", sub)
}

// annotate computes is_favorited / is_in_shopping_cart for the viewer
// over the given recipes with one query per join table.
func (s *RecipeService) annotate(ctx context.Context, recipes []models.Recipe, viewer *uuid.UUID) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i := range recipes {
		views[i] = RecipeView{Recipe: recipes[i]}
	}
	if viewer == nil || len(recipes) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}
	favorited, err := s.membershipSet(ctx, "favorite_recipe_users", *viewer, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := s.membershipSet(ctx, "shopping_cart_users", *viewer, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Favorited = favorited[views[i].Recipe.ID]
		views[i].InShoppingCart = inCart[views[i].Recipe.ID]
	}
	return views, nil
}

func (s *RecipeService) membershipSet(ctx context.Context, table string, viewer uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	var rows []uuid.UUID
	err := s.db.WithContext(ctx).Table(table).
		Where("user_id = ? AND recipe_id IN ?", viewer, recipeIDs).
		Pluck("recipe_id", &rows).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(rows))
	for _, id := range rows {
		set[id] = true
	}
	return set, nil
}

// validateWrite enforces the nested-payload rules shared by create and
// update: non-empty tag and ingredient sets, positive amounts, no
// duplicate ingredient ids, and all referenced ids resolvable.
func (s *RecipeService) validateWrite(ctx context.Context, req *types.RecipeWriteRequest) error {
	if len(req.Tags) == 0 {
		return &FieldError{Field: "tags", Message: "at least one tag is required"}
	}
	if len(req.Ingredients) == 0 {
		return &FieldError{Field: "ingredients", Message: "at least one ingredient is required"}
	}
	if req.CookingTime < 1 {
		return &FieldError{Field: "cooking_time", Message: "cooking time must be at least 1"}
	}
	seen := make(map[uuid.UUID]bool, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if ing.Amount < 1 {
			return &FieldError{Field: "ingredients", Message: "amount must be at least 1"}
		}
		if seen[ing.ID] {
			return &FieldError{Field: "ingredients", Message: fmt.Sprintf("ingredient %s appears more than once", ing.ID)}
		}
		seen[ing.ID] = true
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", req.Tags).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(uniqueIDs(req.Tags))) {
		return &FieldError{Field: "tags", Message: "one or more tags do not exist"}
	}
	ingredientIDs := make([]uuid.UUID, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ingredientIDs = append(ingredientIDs, ing.ID)
	}
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ingredientIDs)) {
		return &FieldError{Field: "ingredients", Message: "one or more ingredients do not exist"}
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (s *RecipeService) storeImage(ctx context.Context, image string) (string, error) {
	if s.images == nil || !strings.HasPrefix(image, "data:") {
		return image, nil
	}
	return s.images.StoreRecipeImage(ctx, image)
}

// Create validates and persists a recipe with its tag and ingredient
// join rows in one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeWriteRequest) (*RecipeView, error) {
	if err := s.validateWrite(ctx, req); err != nil {
		return nil, err
	}
	image, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to store recipe image: %w", err)
	}

	recipe := models.Recipe{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       image,
		AuthorID:    authorID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return s.replaceJoins(tx, recipe.ID, req)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, recipe.ID, &authorID)
}

// Update replaces the recipe fields and its whole tag/ingredient set.
// Only the author or an admin may update; author and publication date
// are immutable.
func (s *RecipeService) Update(ctx context.Context, id uuid.UUID, actor *models.User, req *types.RecipeWriteRequest) (*RecipeView, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := s.validateWrite(ctx, req); err != nil {
		return nil, err
	}
	image, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to store recipe image: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
			"image":        image,
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		// Full replace: clear the old associations before applying the
		// submitted set.
		if err := tx.Where("recipe_id = ?", id).Delete(&models.TagRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.IngredientRecipe{}).Error; err != nil {
			return err
		}
		return s.replaceJoins(tx, id, req)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id, &actor.ID)
}

func (s *RecipeService) replaceJoins(tx *gorm.DB, recipeID uuid.UUID, req *types.RecipeWriteRequest) error {
	for _, tagID := range uniqueIDs(req.Tags) {
		if err := tx.Create(&models.TagRecipe{TagID: tagID, RecipeID: recipeID}).Error; err != nil {
			return err
		}
	}
	for _, ing := range req.Ingredients {
		row := models.IngredientRecipe{
			IngredientID: ing.ID,
			RecipeID:     recipeID,
			Amount:       ing.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the recipe and every join row referencing it.
func (s *RecipeService) Delete(ctx context.Context, id uuid.UUID, actor *models.User) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, join := range []interface{}{
			&models.TagRecipe{},
			&models.IngredientRecipe{},
			&models.FavoriteRecipeUser{},
			&models.ShoppingCartUser{},
		} {
			if err := tx.Where("recipe_id = ?", id).Delete(join).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
}

// AddToList inserts the (user, recipe) pair into the relation's join
// table and returns the recipe for the summary projection. An existing
// pair fails with a Conflict; racing inserts hitting the unique
// constraint are translated into the same Conflict.
func (s *RecipeService) AddToList(ctx context.Context, userID, recipeID uuid.UUID, rel Relation) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(rel.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictf("recipe %q is already in your %s", recipe.Name, rel)
	}
	if err := s.db.WithContext(ctx).Create(rel.row(userID, recipeID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictf("recipe %q is already in your %s", recipe.Name, rel)
		}
		return nil, err
	}
	return &recipe, nil
}

// RemoveFromList deletes the (user, recipe) pair from the relation's
// join table. A missing pair fails with a Conflict.
func (s *RecipeService) RemoveFromList(ctx context.Context, userID, recipeID uuid.UUID, rel Relation) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(rel.model())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflictf("recipe %q is not in your %s", recipe.Name, rel)
	}
	return nil
}

// ShoppingList aggregates the ingredient rows of every recipe in the
// user's cart, summing amounts per (name, unit) and ordering rows
// alphabetically so the export is deterministic.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingItem, error) {
	var items []ShoppingItem
	err := s.db.WithContext(ctx).
		Table("ingredient_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_recipes.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_recipes.ingredient_id").
		Joins("JOIN shopping_cart_users ON shopping_cart_users.recipe_id = ingredient_recipes.recipe_id").
		Where("shopping_cart_users.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
