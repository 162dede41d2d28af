package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/middleware"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/msorokina/school-canteen-api/services"
)

// CreateUserRequest represents the optional request body for registration.
// Name and email always come from Auth0; these fields supplement them.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"omitempty"`
	Phone     string `json:"phone" binding:"omitempty"`
	BirthDate string `json:"birth_date" binding:"omitempty"` // YYYY-MM-DD
}

// UpdateUserRequest represents the request body for updating a profile
type UpdateUserRequest struct {
	Username  string `json:"username" binding:"omitempty"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"omitempty"`
	BirthDate string `json:"birth_date" binding:"omitempty"` // YYYY-MM-DD
}

// CreateUser handles POST /api/v1/users - registers a profile for the
// authenticated identity, pulling name and email from Auth0's /userinfo
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user ID from token",
			},
		})
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	var req CreateUserRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid request data",
					"details": err.Error(),
				},
			})
			return
		}
	}

	birthDate, ok := parseBirthDate(c, req.BirthDate)
	if !ok {
		return
	}

	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH0_ERROR",
				"message": "Failed to fetch user information from Auth0",
			},
		})
		return
	}

	if userInfo.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_EMAIL",
				"message": "Email not provided by Auth0",
			},
		})
		return
	}

	username := req.Username
	if username == "" {
		username = userInfo.Nickname
	}
	if username == "" {
		username = userInfo.Name
	}
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_USERNAME",
				"message": "Username not provided",
			},
		})
		return
	}

	// New accounts are students unless the token carries a known role claim
	role := models.RoleStudent
	if claims, err := middleware.GetClaims(c); err == nil {
		if customClaims, ok := claims.CustomClaims.(*middleware.CustomClaims); ok {
			if claimRole, ok := models.ParseRole(customClaims.Role); ok {
				role = claimRole
			}
		}
	}

	user := models.User{
		Auth0ID:   auth0ID,
		Username:  username,
		Email:     userInfo.Email,
		Role:      role,
		Phone:     req.Phone,
		BirthDate: birthDate,
	}

	db := config.GetDB()
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_EXISTS",
					"message": "A user with this identity, username or email already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create user",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMyProfile handles GET /api/v1/users/me - gets the current profile
func GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	attachAvatarURL(&user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates the current
// profile. The role is not editable here; only administrators change
// roles, through the admin endpoint.
func UpdateMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	birthDate, ok := parseBirthDate(c, req.BirthDate)
	if !ok {
		return
	}

	updates := make(map[string]interface{})
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if birthDate != nil {
		updates["birth_date"] = birthDate
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
		return
	}

	db := config.GetDB()
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_EXISTS",
					"message": "A user with this username or email already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update user profile",
			},
		})
		return
	}

	if err := db.First(&user, user.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated profile",
			},
		})
		return
	}

	attachAvatarURL(&user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// parseBirthDate parses an optional YYYY-MM-DD value. On failure it writes
// the per-field validation response and returns false.
func parseBirthDate(c *gin.Context, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}

	birthDate, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": "birth_date must be formatted as YYYY-MM-DD",
			},
		})
		return nil, false
	}

	return &birthDate, true
}

// isDuplicateError detects unique-constraint violations in a way that
// works with both PostgreSQL and SQLite.
func isDuplicateError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
