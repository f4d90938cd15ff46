package api

import (
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

// Wire representations. Entities are always mapped through these
// explicit builders; computed fields (is_subscribed, is_favorited,
// is_in_shopping_cart, recipes_count) are derived from the requester's
// identity at call time, never stored.

// UserResponse is the read view of a user.
type UserResponse struct {
	Email        string `json:"email"`
	ID           string `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RegisterResponse is the view returned on user creation.
type RegisterResponse struct {
	Email     string `json:"email"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TagResponse is the wire representation of a tag.
type TagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// IngredientResponse is the wire representation of a catalog ingredient.
type IngredientResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// RecipeIngredientResponse is one nested ingredient of a recipe read
// view, carrying the amount from the join row.
type RecipeIngredientResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full read view of a recipe.
type RecipeResponse struct {
	ID               string                     `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// RecipeSummaryResponse is the short projection used by toggle
// responses and nested subscription recipe lists.
type RecipeSummaryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is a followed author with nested recipes.
type SubscriptionResponse struct {
	Email        string                  `json:"email"`
	ID           string                  `json:"id"`
	Username     string                  `json:"username"`
	FirstName    string                  `json:"first_name"`
	LastName     string                  `json:"last_name"`
	IsSubscribed bool                    `json:"is_subscribed"`
	Recipes      []RecipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

func newUserResponse(u models.User, subscribed bool) UserResponse {
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID.String(),
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func newRegisterResponse(u models.User) RegisterResponse {
	return RegisterResponse{
		Email:     u.Email,
		ID:        u.ID.String(),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func newTagResponse(t models.Tag) TagResponse {
	return TagResponse{
		ID:    t.ID.String(),
		Name:  t.Name,
		Color: t.Color,
		Slug:  t.Slug,
	}
}

func newIngredientResponse(i models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:              i.ID.String(),
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}

func newRecipeResponse(view service.RecipeView, authorSubscribed bool) RecipeResponse {
	recipe := view.Recipe
	tags := make([]TagResponse, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, newTagResponse(t))
	}
	ingredients := make([]RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, row := range recipe.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              row.IngredientID.String(),
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}
	return RecipeResponse{
		ID:               recipe.ID.String(),
		Tags:             tags,
		Author:           newUserResponse(recipe.Author, authorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      view.Favorited,
		IsInShoppingCart: view.InShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

func newRecipeSummaryResponse(r models.Recipe) RecipeSummaryResponse {
	return RecipeSummaryResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func newSubscriptionResponse(entry service.SubscriptionEntry, subscribed bool) SubscriptionResponse {
	recipes := make([]RecipeSummaryResponse, 0, len(entry.Recipes))
	for _, r := range entry.Recipes {
		recipes = append(recipes, newRecipeSummaryResponse(r))
	}
	return SubscriptionResponse{
		Email:        entry.User.Email,
		ID:           entry.User.ID.String(),
		Username:     entry.User.Username,
		FirstName:    entry.User.FirstName,
		LastName:     entry.User.LastName,
		IsSubscribed: subscribed,
		Recipes:      recipes,
		RecipesCount: entry.RecipesCount,
	}
}
