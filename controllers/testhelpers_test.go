package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/middleware"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Dish{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// The cart handlers expect a session store on the context
	store := cookie.NewStore([]byte("test-session-secret"))
	router.Use(sessions.Sessions("canteen_session", store))

	return router
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken does.
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		mockClaims := &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{
				Role: role,
			},
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// testClient performs requests against a router while carrying session
// cookies between calls, the way a browser would.
type testClient struct {
	router  *gin.Engine
	cookies []*http.Cookie
}

func (tc *testClient) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		tc.cookies = cookies
	}

	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "response should be valid JSON")
	return response
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()

	response := parseResponse(t, w)
	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, expectedCode, errorData["code"])
}

func seedUser(t *testing.T, db *gorm.DB, auth0ID, username string, role models.Role) models.User {
	t.Helper()

	user := models.User{
		Auth0ID:  auth0ID,
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user %s: %v", username, err)
	}
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to seed category %s: %v", name, err)
	}
	return category
}

func seedDish(t *testing.T, db *gorm.DB, categoryID uint, name, price string, available bool) models.Dish {
	t.Helper()

	dish := models.Dish{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
		IsAvailable: available,
	}
	if err := db.Create(&dish).Error; err != nil {
		t.Fatalf("Failed to seed dish %s: %v", name, err)
	}
	return dish
}

func seedOrder(t *testing.T, db *gorm.DB, customerID uint, status models.OrderStatus, total string) models.Order {
	t.Helper()

	order := models.Order{
		CustomerID: customerID,
		Status:     status,
		TotalPrice: decimal.RequireFromString(total),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}
