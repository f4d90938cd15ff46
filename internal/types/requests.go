package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for creating a user
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=6,max=150"`
}

// LoginRequest represents the request body for issuing a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SetPasswordRequest represents the request body for changing a password
type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=6,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// UpdateMeRequest represents a partial update of the caller's profile.
// Nil fields are left untouched.
type UpdateMeRequest struct {
	Username  *string `json:"username" binding:"omitempty,max=150"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
}

// IngredientAmount is one nested ingredient entry of a recipe write.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required,min=1"`
}

// RecipeWriteRequest represents the request body for creating or
// updating a recipe. Updates replace the tag and ingredient sets
// wholesale, so the full payload is required either way.
type RecipeWriteRequest struct {
	Name        string             `json:"name" binding:"required,max=200"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required,min=1"`
	Image       string             `json:"image"`
	Tags        []uuid.UUID        `json:"tags" binding:"required"`
	Ingredients []IngredientAmount `json:"ingredients" binding:"required,dive"`
}
