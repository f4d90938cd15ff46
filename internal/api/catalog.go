package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/service"
)

// CatalogHandler exposes the read-only tag and ingredient catalogs.
// Both are unauthenticated and unpaginated.
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tags := rg.Group("/tags")
	{
		tags.GET("", h.Tags)
		tags.GET("/:id", h.Tag)
	}
	ingredients := rg.Group("/ingredients")
	{
		ingredients.GET("", h.Ingredients)
		ingredients.GET("/:id", h.Ingredient)
	}
}

func (h *CatalogHandler) Tags(c *gin.Context) {
	tags, err := h.catalog.Tags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	results := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		results = append(results, newTagResponse(t))
	}
	c.JSON(http.StatusOK, results)
}

func (h *CatalogHandler) Tag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tag, err := h.catalog.Tag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTagResponse(*tag))
}

// Ingredients lists catalog ingredients, optionally narrowed by a
// case-insensitive name prefix.
func (h *CatalogHandler) Ingredients(c *gin.Context) {
	ingredients, err := h.catalog.Ingredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	results := make([]IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		results = append(results, newIngredientResponse(i))
	}
	c.JSON(http.StatusOK, results)
}

func (h *CatalogHandler) Ingredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ingredient, err := h.catalog.Ingredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newIngredientResponse(*ingredient))
}
