package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/msorokina/school-canteen-api/services"
	"github.com/stretchr/testify/assert"
)

// mockAuth0Server stands in for Auth0's /userinfo endpoint
func mockAuth0Server(t *testing.T, userInfo services.Auth0UserInfo) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(userInfo)
	}))
	t.Cleanup(server.Close)
	return server
}

func setupUserRouter(auth0ID, role string) *testClient {
	router := setupTestRouter()
	auth := mockAuthMiddleware(auth0ID, role, "mock-token")
	router.POST("/users", auth, CreateUser)
	router.GET("/users/me", auth, GetMyProfile)
	router.PUT("/users/me", auth, UpdateMyProfile)
	return &testClient{router: router}
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	server := mockAuth0Server(t, services.Auth0UserInfo{
		Sub:      "auth0|newuser",
		Email:    "newuser@example.com",
		Name:     "New User",
		Nickname: "newbie",
	})
	config.SetConfig(&config.Config{Auth0Domain: server.URL})

	client := setupUserRouter("auth0|newuser", "")

	w := client.do(t, http.MethodPost, "/users", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "auth0|newuser", data["auth0_id"])
	assert.Equal(t, "newuser@example.com", data["email"])
	assert.Equal(t, "newbie", data["username"], "username falls back to the Auth0 nickname")
	assert.Equal(t, "student", data["role"], "new accounts default to student")

	// Registering the same identity twice conflicts
	w = client.do(t, http.MethodPost, "/users", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorCode(t, w, "USER_EXISTS")
}

func TestCreateUserWithRequestBody(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	server := mockAuth0Server(t, services.Auth0UserInfo{
		Sub:   "auth0|bodyuser",
		Email: "bodyuser@example.com",
		Name:  "Body User",
	})
	config.SetConfig(&config.Config{Auth0Domain: server.URL})

	client := setupUserRouter("auth0|bodyuser", "")

	w := client.do(t, http.MethodPost, "/users", map[string]interface{}{
		"username":   "chosen-name",
		"phone":      "+7 900 000 00 00",
		"birth_date": "2010-09-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "chosen-name", data["username"], "explicit username wins over Auth0")
	assert.Equal(t, "+7 900 000 00 00", data["phone"])
	assert.NotNil(t, data["birth_date"])
}

func TestCreateUserRoleFromClaim(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	server := mockAuth0Server(t, services.Auth0UserInfo{
		Sub:      "auth0|claimchef",
		Email:    "claimchef@example.com",
		Nickname: "claimchef",
	})
	config.SetConfig(&config.Config{Auth0Domain: server.URL})

	// A recognized role claim on the token is honored at registration
	client := setupUserRouter("auth0|claimchef", "chef")
	w := client.do(t, http.MethodPost, "/users", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "chef", data["role"])

	// An unrecognized claim falls back to student
	server2 := mockAuth0Server(t, services.Auth0UserInfo{
		Sub:      "auth0|claimbogus",
		Email:    "claimbogus@example.com",
		Nickname: "claimbogus",
	})
	config.SetConfig(&config.Config{Auth0Domain: server2.URL})

	client = setupUserRouter("auth0|claimbogus", "superuser")
	w = client.do(t, http.MethodPost, "/users", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	data = parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "student", data["role"])
}

func TestCreateUserMissingEmail(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	server := mockAuth0Server(t, services.Auth0UserInfo{
		Sub:      "auth0|noemail",
		Nickname: "noemail",
	})
	config.SetConfig(&config.Config{Auth0Domain: server.URL})

	client := setupUserRouter("auth0|noemail", "")
	w := client.do(t, http.MethodPost, "/users", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, w, "MISSING_EMAIL")
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	user := seedUser(t, db, "auth0|profile1", "profile1", models.RoleStudent)

	client := setupUserRouter(user.Auth0ID, "student")
	w := client.do(t, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "profile1", data["username"])

	// An identity without a profile reads as not found
	w = setupUserRouter("auth0|stranger", "student").do(t, http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, w, "USER_NOT_FOUND")
}

func TestUpdateMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	user := seedUser(t, db, "auth0|profile2", "profile2", models.RoleStudent)
	seedUser(t, db, "auth0|profile3", "profile3", models.RoleStudent)

	client := setupUserRouter(user.Auth0ID, "student")

	w := client.do(t, http.MethodPut, "/users/me", map[string]interface{}{
		"username": "renamed",
		"phone":    "+7 911 111 11 11",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "renamed", data["username"])
	assert.Equal(t, "+7 911 111 11 11", data["phone"])
	assert.Equal(t, "student", data["role"], "the role is not editable here")

	// Taking someone else's username conflicts
	w = client.do(t, http.MethodPut, "/users/me", map[string]interface{}{
		"username": "profile3",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorCode(t, w, "USER_EXISTS")

	// Malformed birth date
	w = client.do(t, http.MethodPut, "/users/me", map[string]interface{}{
		"birth_date": "01.09.2010",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, w, "VALIDATION_ERROR")
}
