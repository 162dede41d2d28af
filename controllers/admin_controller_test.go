package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/stretchr/testify/assert"
)

func setupAdminRouter(auth0ID, role string) *testClient {
	router := setupTestRouter()
	auth := mockAuthMiddleware(auth0ID, role, "mock-token")
	router.GET("/admin/dashboard", auth, AdminDashboard)
	router.GET("/admin/dishes", auth, ListAllDishes)
	router.POST("/admin/dishes", auth, CreateDish)
	router.PUT("/admin/dishes/:id", auth, UpdateDish)
	router.DELETE("/admin/dishes/:id", auth, DeleteDish)
	router.POST("/admin/categories", auth, CreateCategory)
	router.DELETE("/admin/categories/:id", auth, DeleteCategory)
	router.GET("/admin/orders", auth, ListAllOrders)
	router.GET("/admin/users", auth, ListUsers)
	router.PUT("/admin/users/:id/role", auth, ChangeUserRole)
	return &testClient{router: router}
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	student := seedUser(t, db, "auth0|notadmin", "notadmin", models.RoleStudent)
	client := setupAdminRouter(student.Auth0ID, "student")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/dashboard"},
		{http.MethodGet, "/admin/dishes"},
		{http.MethodGet, "/admin/orders"},
		{http.MethodGet, "/admin/users"},
	}
	for _, p := range paths {
		w := client.do(t, p.method, p.path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, p.path)
		assertErrorCode(t, w, "PERMISSION_DENIED")
	}
}

func TestAdminDashboardCounts(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|dash", "dash", models.RoleAdmin)
	s1 := seedUser(t, db, "auth0|dash-s1", "dash-s1", models.RoleStudent)
	seedUser(t, db, "auth0|dash-s2", "dash-s2", models.RoleStudent)
	seedUser(t, db, "auth0|dash-c1", "dash-c1", models.RoleChef)

	category := seedCategory(t, db, "Mains")
	seedDish(t, db, category.ID, "Plov", "6.00", true)
	seedDish(t, db, category.ID, "Kasha", "2.00", false)

	seedOrder(t, db, s1.ID, models.StatusPreparing, "6.00")
	seedOrder(t, db, s1.ID, models.StatusPending, "2.00")
	seedOrder(t, db, s1.ID, models.StatusReady, "6.00")
	seedOrder(t, db, s1.ID, models.StatusCancelled, "2.00")

	client := setupAdminRouter(admin.Auth0ID, "admin")
	w := client.do(t, http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_students"])
	assert.Equal(t, float64(1), data["total_chefs"])
	assert.Equal(t, float64(2), data["total_dishes"])
	assert.Equal(t, float64(4), data["total_orders"])
	assert.Equal(t, float64(2), data["active_orders"], "ready and cancelled do not count as active")
}

func TestCreateDish(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|dishadmin", "dishadmin", models.RoleAdmin)
	category := seedCategory(t, db, "Soups")

	client := setupAdminRouter(admin.Auth0ID, "admin")

	w := client.do(t, http.MethodPost, "/admin/dishes", map[string]interface{}{
		"name":        "Borscht",
		"description": "With sour cream",
		"price":       "4.50",
		"category_id": category.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Borscht", data["name"])
	assert.Equal(t, "4.5", data["price"])
	assert.True(t, data["is_available"].(bool), "dishes default to available")
	assert.Equal(t, float64(admin.ID), data["created_by_id"])

	// Negative price is rejected
	w = client.do(t, http.MethodPost, "/admin/dishes", map[string]interface{}{
		"name":        "Free lunch",
		"price":       "-1.00",
		"category_id": category.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, w, "VALIDATION_ERROR")

	// Unknown category is rejected
	w = client.do(t, http.MethodPost, "/admin/dishes", map[string]interface{}{
		"name":        "Mystery",
		"price":       "1.00",
		"category_id": 99999,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, w, "CATEGORY_NOT_FOUND")
}

func TestUpdateDish(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|dishadmin2", "dishadmin2", models.RoleAdmin)
	category := seedCategory(t, db, "Mains")
	dish := seedDish(t, db, category.ID, "Plov", "6.00", true)

	client := setupAdminRouter(admin.Auth0ID, "admin")
	path := fmt.Sprintf("/admin/dishes/%d", dish.ID)

	// Partial update: only the named fields change
	w := client.do(t, http.MethodPut, path, map[string]interface{}{
		"price":        "7.50",
		"is_available": false,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Plov", data["name"], "name untouched")
	assert.Equal(t, "7.5", data["price"])
	assert.False(t, data["is_available"].(bool))

	// Flipping availability back on via the pointer field
	w = client.do(t, http.MethodPut, path, map[string]interface{}{"is_available": true})
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].(map[string]interface{})
	assert.True(t, data["is_available"].(bool))

	w = client.do(t, http.MethodPut, "/admin/dishes/99999", map[string]interface{}{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, w, "DISH_NOT_FOUND")
}

func TestDeleteDish(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|dishadmin3", "dishadmin3", models.RoleAdmin)
	category := seedCategory(t, db, "Mains")
	dish := seedDish(t, db, category.ID, "Plov", "6.00", true)

	client := setupAdminRouter(admin.Auth0ID, "admin")

	w := client.do(t, http.MethodDelete, fmt.Sprintf("/admin/dishes/%d", dish.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Dish{}).Where("id = ?", dish.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateCategory(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|catadmin", "catadmin", models.RoleAdmin)
	client := setupAdminRouter(admin.Auth0ID, "admin")

	w := client.do(t, http.MethodPost, "/admin/categories", map[string]interface{}{
		"name":        "Desserts",
		"description": "Sweet things",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Desserts", data["name"])

	// Category names are unique
	w = client.do(t, http.MethodPost, "/admin/categories", map[string]interface{}{
		"name": "Desserts",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorCode(t, w, "CATEGORY_EXISTS")
}

func TestDeleteCategoryCascadesToDishes(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|catadmin2", "catadmin2", models.RoleAdmin)
	doomed := seedCategory(t, db, "Doomed")
	kept := seedCategory(t, db, "Kept")
	seedDish(t, db, doomed.ID, "Gone1", "1.00", true)
	seedDish(t, db, doomed.ID, "Gone2", "2.00", true)
	survivor := seedDish(t, db, kept.ID, "Survivor", "3.00", true)

	client := setupAdminRouter(admin.Auth0ID, "admin")

	w := client.do(t, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", doomed.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var dishCount int64
	db.Model(&models.Dish{}).Where("category_id = ?", doomed.ID).Count(&dishCount)
	assert.Equal(t, int64(0), dishCount, "dishes go with their category")

	var remaining models.Dish
	assert.NoError(t, db.First(&remaining, survivor.ID).Error)

	w = client.do(t, http.MethodDelete, "/admin/categories/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, w, "CATEGORY_NOT_FOUND")
}

func TestListAllOrders(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|orderadmin", "orderadmin", models.RoleAdmin)
	s1 := seedUser(t, db, "auth0|olist1", "olist1", models.RoleStudent)
	s2 := seedUser(t, db, "auth0|olist2", "olist2", models.RoleStudent)
	seedOrder(t, db, s1.ID, models.StatusPreparing, "5.00")
	seedOrder(t, db, s2.ID, models.StatusReady, "8.00")

	client := setupAdminRouter(admin.Auth0ID, "admin")
	w := client.do(t, http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	orders := parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, orders, 2, "admins see everyone's orders")
}

func TestChangeUserRole(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := seedUser(t, db, "auth0|roleadmin", "roleadmin", models.RoleAdmin)
	target := seedUser(t, db, "auth0|promotee", "promotee", models.RoleStudent)

	client := setupAdminRouter(admin.Auth0ID, "admin")
	path := fmt.Sprintf("/admin/users/%d/role", target.ID)

	w := client.do(t, http.MethodPut, path, map[string]interface{}{"role": "chef"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "chef", data["role"])

	var reloaded models.User
	assert.NoError(t, db.First(&reloaded, target.ID).Error)
	assert.Equal(t, models.RoleChef, reloaded.Role)

	// A role outside the enumerated set is silently ignored
	w = client.do(t, http.MethodPut, path, map[string]interface{}{"role": "superuser"})
	assert.Equal(t, http.StatusOK, w.Code)
	data = parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "chef", data["role"], "role unchanged")

	w = client.do(t, http.MethodPut, "/admin/users/99999/role", map[string]interface{}{"role": "chef"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, w, "USER_NOT_FOUND")
}
