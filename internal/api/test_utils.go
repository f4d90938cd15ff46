package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

// testEnv bundles the in-memory database, the wired router and the
// auth service for issuing test tokens.
type testEnv struct {
	DB     *gorm.DB
	Router *gin.Engine
	Auth   *service.AuthService
}

// setupTestEnv creates a fresh in-memory database and a fully wired
// router. Each call gets its own database, so tests stay independent.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// A named shared-cache DSN keeps the schema visible across the
	// connections gorm pools.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	router := gin.New()
	RegisterRoutes(router, db, nil, nil, "test-secret")

	return &testEnv{
		DB:     db,
		Router: router,
		Auth:   service.NewAuthService(db, nil, "test-secret"),
	}
}

// createTestUser inserts a user with a known password and returns the
// user plus a valid bearer token.
func createTestUser(t *testing.T, env *testEnv, username string) (*models.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	require.NoError(t, env.DB.Create(&user).Error)

	token, err := env.Auth.GenerateToken(&user)
	require.NoError(t, err)
	return &user, token
}

func createTestTag(t *testing.T, env *testEnv, name, slug string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(t, env.DB.Create(&tag).Error)
	return tag
}

func createTestIngredient(t *testing.T, env *testEnv, name, unit string) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, env.DB.Create(&ingredient).Error)
	return ingredient
}

// performRequest issues an HTTP request against the test router. An
// empty token leaves the request anonymous.
func performRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
