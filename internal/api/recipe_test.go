package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
)

func recipePayload(name string, tags []models.Tag, ingredients map[models.Ingredient]int) map[string]interface{} {
	tagIDs := make([]string, 0, len(tags))
	for _, t := range tags {
		tagIDs = append(tagIDs, t.ID.String())
	}
	ingredientRows := make([]map[string]interface{}, 0, len(ingredients))
	for ing, amount := range ingredients {
		ingredientRows = append(ingredientRows, map[string]interface{}{
			"id":     ing.ID.String(),
			"amount": amount,
		})
	}
	return map[string]interface{}{
		"name":         name,
		"text":         "Cook it well.",
		"cooking_time": 30,
		"image":        "http://example.com/image.jpg",
		"tags":         tagIDs,
		"ingredients":  ingredientRows,
	}
}

func TestCreateRecipe(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	tag := createTestTag(t, env, "Breakfast", "breakfast")
	flour := createTestIngredient(t, env, "flour", "g")
	milk := createTestIngredient(t, env, "milk", "ml")

	payload := recipePayload("Pancakes", []models.Tag{tag}, map[models.Ingredient]int{flour: 200, milk: 300})
	w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp RecipeResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Pancakes", resp.Name)
	assert.Equal(t, 30, resp.CookingTime)
	assert.Equal(t, "chef", resp.Author.Username)
	assert.False(t, resp.Author.IsSubscribed)
	assert.False(t, resp.IsFavorited)
	assert.False(t, resp.IsInShoppingCart)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "breakfast", resp.Tags[0].Slug)
	require.Len(t, resp.Ingredients, 2)

	amounts := map[string]int{}
	for _, ing := range resp.Ingredients {
		amounts[ing.Name] = ing.Amount
	}
	assert.Equal(t, 200, amounts["flour"])
	assert.Equal(t, 300, amounts["milk"])
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	env := setupTestEnv(t)
	tag := createTestTag(t, env, "Lunch", "lunch")
	flour := createTestIngredient(t, env, "flour", "g")

	payload := recipePayload("Bread", []models.Tag{tag}, map[models.Ingredient]int{flour: 500})
	w := performRequest(env.Router, "POST", "/api/recipes", payload, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecipeUnknownReferences(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	tag := createTestTag(t, env, "Lunch", "lunch")
	flour := createTestIngredient(t, env, "flour", "g")

	// Unknown tag id
	payload := recipePayload("Bread", []models.Tag{tag}, map[models.Ingredient]int{flour: 500})
	payload["tags"] = []string{uuid.New().String()}
	w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp, "tags")

	// Unknown ingredient id
	payload = recipePayload("Bread", []models.Tag{tag}, map[models.Ingredient]int{flour: 500})
	payload["ingredients"] = []map[string]interface{}{{"id": uuid.New().String(), "amount": 1}}
	w = performRequest(env.Router, "POST", "/api/recipes", payload, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp = map[string]interface{}{}
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp, "ingredients")
}

func TestCreateRecipeRejectsNonPositiveCookingTime(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	tag := createTestTag(t, env, "Lunch", "lunch")
	flour := createTestIngredient(t, env, "flour", "g")

	for _, cookingTime := range []int{0, -3} {
		payload := recipePayload("Bread", []models.Tag{tag}, map[models.Ingredient]int{flour: 500})
		payload["cooking_time"] = cookingTime
		w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, "cooking_time=%d", cookingTime)
	}
}

func TestCreateRecipeDuplicateIngredient(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	tag := createTestTag(t, env, "Lunch", "lunch")
	flour := createTestIngredient(t, env, "flour", "g")

	payload := recipePayload("Bread", []models.Tag{tag}, map[models.Ingredient]int{flour: 500})
	payload["ingredients"] = []map[string]interface{}{
		{"id": flour.ID.String(), "amount": 100},
		{"id": flour.ID.String(), "amount": 200},
	}
	w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	decodeJSON(t, w, &resp)
	assert.Contains(t, resp, "ingredients")
}

func TestGetRecipeAnonymous(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	tag := createTestTag(t, env, "Dinner", "dinner")
	potato := createTestIngredient(t, env, "potato", "g")

	payload := recipePayload("Mash", []models.Tag{tag}, map[models.Ingredient]int{potato: 400})
	w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeJSON(t, w, &created)

	w = performRequest(env.Router, "GET", "/api/recipes/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp RecipeResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Mash", resp.Name)
	assert.False(t, resp.IsFavorited)
	assert.False(t, resp.IsInShoppingCart)
}

func TestGetRecipeNotFound(t *testing.T) {
	env := setupTestEnv(t)

	w := performRequest(env.Router, "GET", "/api/recipes/"+uuid.New().String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(env.Router, "GET", "/api/recipes/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRecipeByNonOwner(t *testing.T) {
	env := setupTestEnv(t)
	_, ownerToken := createTestUser(t, env, "owner")
	_, otherToken := createTestUser(t, env, "other")
	tag := createTestTag(t, env, "Dinner", "dinner")
	potato := createTestIngredient(t, env, "potato", "g")

	payload := recipePayload("Mash", []models.Tag{tag}, map[models.Ingredient]int{potato: 400})
	w := performRequest(env.Router, "POST", "/api/recipes", payload, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeJSON(t, w, &created)

	payload["name"] = "Stolen Mash"
	w = performRequest(env.Router, "PATCH", "/api/recipes/"+created.ID, payload, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateRecipeReplacesNestedSets(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	breakfast := createTestTag(t, env, "Breakfast", "breakfast")
	dinner := createTestTag(t, env, "Dinner", "dinner")
	flour := createTestIngredient(t, env, "flour", "g")
	milk := createTestIngredient(t, env, "milk", "ml")

	payload := recipePayload("Pancakes", []models.Tag{breakfast, dinner}, map[models.Ingredient]int{flour: 200, milk: 300})
	w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeJSON(t, w, &created)

	update := recipePayload("Crepes", []models.Tag{breakfast}, map[models.Ingredient]int{milk: 500})
	w = performRequest(env.Router, "PATCH", "/api/recipes/"+created.ID, update, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp RecipeResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "Crepes", resp.Name)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "breakfast", resp.Tags[0].Slug)
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, "milk", resp.Ingredients[0].Name)
	assert.Equal(t, 500, resp.Ingredients[0].Amount)
}

func TestDeleteRecipe(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	tag := createTestTag(t, env, "Dinner", "dinner")
	potato := createTestIngredient(t, env, "potato", "g")

	payload := recipePayload("Mash", []models.Tag{tag}, map[models.Ingredient]int{potato: 400})
	w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeJSON(t, w, &created)

	w = performRequest(env.Router, "DELETE", "/api/recipes/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(env.Router, "GET", "/api/recipes/"+created.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoriteToggle(t *testing.T) {
	env := setupTestEnv(t)
	_, authorToken := createTestUser(t, env, "author")
	_, readerToken := createTestUser(t, env, "reader")
	tag := createTestTag(t, env, "Dinner", "dinner")
	potato := createTestIngredient(t, env, "potato", "g")

	payload := recipePayload("Mash", []models.Tag{tag}, map[models.Ingredient]int{potato: 400})
	w := performRequest(env.Router, "POST", "/api/recipes", payload, authorToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created RecipeResponse
	decodeJSON(t, w, &created)

	// First add succeeds with a summary body.
	w = performRequest(env.Router, "POST", "/api/recipes/"+created.ID+"/favorite", nil, readerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var summary RecipeSummaryResponse
	decodeJSON(t, w, &summary)
	assert.Equal(t, created.ID, summary.ID)
	assert.Equal(t, "Mash", summary.Name)

	// Second add is a conflict.
	w = performRequest(env.Router, "POST", "/api/recipes/"+created.ID+"/favorite", nil, readerToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var conflict map[string]interface{}
	decodeJSON(t, w, &conflict)
	assert.Contains(t, conflict, "errors")

	// The flag is requester-dependent.
	w = performRequest(env.Router, "GET", "/api/recipes/"+created.ID, nil, readerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var resp RecipeResponse
	decodeJSON(t, w, &resp)
	assert.True(t, resp.IsFavorited)

	w = performRequest(env.Router, "GET", "/api/recipes/"+created.ID, nil, authorToken)
	require.Equal(t, http.StatusOK, w.Code)
	resp = RecipeResponse{}
	decodeJSON(t, w, &resp)
	assert.False(t, resp.IsFavorited)

	// Remove, then removing again is a conflict.
	w = performRequest(env.Router, "DELETE", "/api/recipes/"+created.ID+"/favorite", nil, readerToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = performRequest(env.Router, "DELETE", "/api/recipes/"+created.ID+"/favorite", nil, readerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoriteMissingRecipe(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "reader")

	w := performRequest(env.Router, "POST", "/api/recipes/"+uuid.New().String()+"/favorite", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeListFilters(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := createTestUser(t, env, "alice")
	_, bobToken := createTestUser(t, env, "bob")
	breakfast := createTestTag(t, env, "Breakfast", "breakfast")
	dinner := createTestTag(t, env, "Dinner", "dinner")
	flour := createTestIngredient(t, env, "flour", "g")

	w := performRequest(env.Router, "POST", "/api/recipes",
		recipePayload("Pancakes", []models.Tag{breakfast}, map[models.Ingredient]int{flour: 200}), aliceToken)
	require.Equal(t, http.StatusCreated, w.Code)
	w = performRequest(env.Router, "POST", "/api/recipes",
		recipePayload("Bread", []models.Tag{dinner}, map[models.Ingredient]int{flour: 500}), bobToken)
	require.Equal(t, http.StatusCreated, w.Code)

	// Tag filter matches any of the given slugs.
	w = performRequest(env.Router, "GET", "/api/recipes?tags=breakfast", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page PagedResponse
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(1), page.Count)

	w = performRequest(env.Router, "GET", "/api/recipes?tags=breakfast&tags=dinner", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = PagedResponse{}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(2), page.Count)

	// Author filter.
	w = performRequest(env.Router, "GET", "/api/recipes?author="+alice.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = PagedResponse{}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(1), page.Count)

	// Membership filters are a no-op for anonymous requesters.
	w = performRequest(env.Router, "GET", "/api/recipes?is_favorited=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = PagedResponse{}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(2), page.Count)

	// But narrow the list for an authenticated one.
	w = performRequest(env.Router, "GET", "/api/recipes?is_favorited=1", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	page = PagedResponse{}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(0), page.Count)
}

func TestRecipeListPagination(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "chef")
	tag := createTestTag(t, env, "Dinner", "dinner")
	flour := createTestIngredient(t, env, "flour", "g")

	for i := 0; i < 3; i++ {
		payload := recipePayload(fmt.Sprintf("Recipe %d", i), []models.Tag{tag}, map[models.Ingredient]int{flour: 100})
		w := performRequest(env.Router, "POST", "/api/recipes", payload, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := performRequest(env.Router, "GET", "/api/recipes?limit=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Count    int64            `json:"count"`
		Next     *string          `json:"next"`
		Previous *string          `json:"previous"`
		Results  []RecipeResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Nil(t, page.Previous)

	w = performRequest(env.Router, "GET", "/api/recipes?limit=2&page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &page)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Contains(t, *page.Previous, "page=1")
}

func TestDownloadShoppingCart(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "shopper")
	tag := createTestTag(t, env, "Dinner", "dinner")
	flour := createTestIngredient(t, env, "flour", "g")
	milk := createTestIngredient(t, env, "milk", "ml")

	w := performRequest(env.Router, "POST", "/api/recipes",
		recipePayload("Pancakes", []models.Tag{tag}, map[models.Ingredient]int{flour: 200, milk: 300}), token)
	require.Equal(t, http.StatusCreated, w.Code)
	var first RecipeResponse
	decodeJSON(t, w, &first)

	w = performRequest(env.Router, "POST", "/api/recipes",
		recipePayload("Bread", []models.Tag{tag}, map[models.Ingredient]int{flour: 500}), token)
	require.Equal(t, http.StatusCreated, w.Code)
	var second RecipeResponse
	decodeJSON(t, w, &second)

	for _, id := range []string{first.ID, second.ID} {
		w = performRequest(env.Router, "POST", "/api/recipes/"+id+"/shopping_cart", nil, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = performRequest(env.Router, "GET", "/api/recipes/download_shopping_cart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=my_shopping_cart.txt", w.Header().Get("Content-Disposition"))

	body := w.Body.String()
	// Amounts of the shared ingredient are summed across recipes.
	assert.Contains(t, body, "flour (g) - 700")
	assert.Contains(t, body, "milk (ml) - 300")
	// Alphabetical ordering of the export lines.
	assert.Less(t, strings.Index(body, "flour"), strings.Index(body, "milk"))
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	env := setupTestEnv(t)
	_, token := createTestUser(t, env, "shopper")

	w := performRequest(env.Router, "GET", "/api/recipes/download_shopping_cart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "empty")
}
