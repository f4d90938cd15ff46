package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// UserHandler exposes user profiles and the subscription graph.
type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", middleware.OptionalAuthMiddleware(h.auth), h.List)
		users.POST("", h.Register)
		users.GET("/me", middleware.AuthMiddleware(h.auth), h.Me)
		users.PATCH("/me", middleware.AuthMiddleware(h.auth), h.UpdateMe)
		users.POST("/set_password", middleware.AuthMiddleware(h.auth), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.Get)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}
}

// Register creates a new account.
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRegisterResponse(*user))
}

// List returns all users, newest first.
func (h *UserHandler) List(c *gin.Context) {
	page := pageParams(c)
	users, count, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.userResponses(c, users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPagedResponse(c, page, count, results))
}

// Get returns a single user profile.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	subscribed, err := h.users.IsSubscribed(c.Request.Context(), viewerID(c), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user, subscribed))
}

// Me returns the authenticated user's own profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user, false))
}

// UpdateMe applies a partial update to the caller's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req types.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	user, err := h.users.UpdateMe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(*user, false))
}

// SetPassword changes the caller's password after verifying the
// current one.
func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "new_password and current_password are required"})
		return
	}

	if err := h.auth.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscribe follows an author and returns their profile with nested
// recipes.
func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	followedID, ok := pathID(c)
	if !ok {
		return
	}

	followed, err := h.users.Subscribe(c.Request.Context(), userID, followedID)
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.users.SubscriptionEntry(c.Request.Context(), *followed, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSubscriptionResponse(entry, true))
}

// Unsubscribe removes an existing follow.
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	followedID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.users.Unsubscribe(c.Request.Context(), userID, followedID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows, each with their
// recipes truncated to the recipes_limit query parameter.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	page := pageParams(c)
	authors, count, err := h.users.Subscriptions(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	limit := recipesLimit(c)
	results := make([]SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		entry, err := h.users.SubscriptionEntry(c.Request.Context(), author, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, newSubscriptionResponse(entry, true))
	}
	c.JSON(http.StatusOK, newPagedResponse(c, page, count, results))
}

// userResponses maps users to wire views with is_subscribed resolved
// in one batch query.
func (h *UserHandler) userResponses(c *gin.Context, users []models.User) ([]UserResponse, error) {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := h.users.SubscribedSet(c.Request.Context(), viewerID(c), ids)
	if err != nil {
		return nil, err
	}

	results := make([]UserResponse, 0, len(users))
	for _, u := range users {
		results = append(results, newUserResponse(u, subscribed[u.ID]))
	}
	return results, nil
}

// recipesLimit reads the recipes_limit query parameter. An absent or
// unparseable value means no truncation; zero truncates the nested
// list to nothing.
func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return -1
	}
	return limit
}
