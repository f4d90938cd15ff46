package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

// RecipeHandler exposes recipe CRUD, the favorite/shopping-cart
// toggles, and the shopping list download.
type RecipeHandler struct {
	recipes         *service.RecipeService
	users           *service.UserService
	auth            *service.AuthService
	creationLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipes *service.RecipeService, users *service.UserService, auth *service.AuthService, creationLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, users: users, auth: auth, creationLimiter: creationLimiter}
}

func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recipes := rg.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.auth), h.List)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.auth), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.Get)

		create := []gin.HandlerFunc{middleware.AuthMiddleware(h.auth)}
		if h.creationLimiter != nil {
			create = append(create, h.creationLimiter.RateLimitMiddleware())
		}
		recipes.POST("", append(create, h.Create)...)

		recipes.PATCH("/:id", middleware.AuthMiddleware(h.auth), h.Update)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.auth), h.Delete)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.auth), h.AddFavorite)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.auth), h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.RemoveFromCart)
	}
}

// List returns recipes matching the query filters, newest-independent
// and ordered by name.
func (h *RecipeHandler) List(c *gin.Context) {
	page := pageParams(c)
	filter := parseRecipeFilter(c)

	views, count, err := h.recipes.List(c.Request.Context(), filter, viewerID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.recipeResponses(c, views)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPagedResponse(c, page, count, results))
}

// Get returns a single recipe read view.
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.recipes.Get(c.Request.Context(), id, viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, *view)
}

// Create publishes a new recipe and responds with its full read view.
func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	view, err := h.recipes.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, *view)
}

// Update replaces a recipe's content. Only the author or an admin may
// call it.
func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.RecipeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	actor, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.recipes.Update(c.Request.Context(), id, actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, *view)
}

// Delete removes a recipe. Only the author or an admin may call it.
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	actor, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addToList(c, service.RelationFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeFromList(c, service.RelationFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addToList(c, service.RelationShoppingCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeFromList(c, service.RelationShoppingCart)
}

func (h *RecipeHandler) addToList(c *gin.Context, rel service.Relation) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.AddToList(c.Request.Context(), userID, id, rel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeSummaryResponse(*recipe))
}

func (h *RecipeHandler) removeFromList(c *gin.Context, rel service.Relation) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipes.RemoveFromList(c.Request.Context(), userID, id, rel); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart renders the caller's aggregated shopping list
// as a plain-text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	items, err := h.recipes.ShoppingList(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=my_shopping_cart.txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(renderShoppingList(items)))
}

// renderShoppingList formats aggregated cart ingredients, one line per
// distinct name+unit pair.
func renderShoppingList(items []service.ShoppingItem) string {
	var b strings.Builder
	b.WriteString("Grocery Assistant has prepared a shopping list\n")
	b.WriteString("for your selected recipes:\n")
	b.WriteString(strings.Repeat("_", 50))
	b.WriteString("\n\n")

	if len(items) == 0 {
		b.WriteString("Your shopping list is empty - add some recipes to it first.\n")
		return b.String()
	}
	for _, item := range items {
		fmt.Fprintf(&b, "\t* %s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	return b.String()
}

// respondRecipe serializes a single recipe view, resolving the
// author's is_subscribed flag for the requester.
func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, view service.RecipeView) {
	subscribed, err := h.users.IsSubscribed(c.Request.Context(), viewerID(c), view.Recipe.AuthorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, newRecipeResponse(view, subscribed))
}

// recipeResponses maps recipe views to wire views with the authors'
// is_subscribed flags resolved in one batch query.
func (h *RecipeHandler) recipeResponses(c *gin.Context, views []service.RecipeView) ([]RecipeResponse, error) {
	authorIDs := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		authorIDs = append(authorIDs, v.Recipe.AuthorID)
	}
	subscribed, err := h.users.SubscribedSet(c.Request.Context(), viewerID(c), authorIDs)
	if err != nil {
		return nil, err
	}

	results := make([]RecipeResponse, 0, len(views))
	for _, v := range views {
		results = append(results, newRecipeResponse(v, subscribed[v.Recipe.AuthorID]))
	}
	return results, nil
}

// parseRecipeFilter reads the recipe list query parameters. Boolean
// flags accept 1/0/true/false; anything else leaves the flag unset.
func parseRecipeFilter(c *gin.Context) types.RecipeFilter {
	return types.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		AuthorIDs:        c.QueryArray("author"),
		IsFavorited:      parseBoolParam(c.Query("is_favorited")),
		IsInShoppingCart: parseBoolParam(c.Query("is_in_shopping_cart")),
	}
}

func parseBoolParam(v string) *bool {
	switch strings.ToLower(v) {
	case "1", "true":
		t := true
		return &t
	case "0", "false":
		f := false
		return &f
	}
	return nil
}
