package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/middleware"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/msorokina/school-canteen-api/services"
)

// currentUser resolves the authenticated actor to a database user. On
// failure it writes the error response and returns false.
func currentUser(c *gin.Context) (models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return models.User{}, false
	}

	var user models.User
	if err := config.GetDB().Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return models.User{}, false
	}

	return user, true
}

// requireAdmin resolves the current user and rejects non-administrators
// with an explicit denial.
func requireAdmin(c *gin.Context) (models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		return models.User{}, false
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PERMISSION_DENIED",
				"message": "Administrator role required",
			},
		})
		return models.User{}, false
	}

	return user, true
}

// attachDishImageURL fills the computed ImageURL field from the image
// service, if one is configured.
func attachDishImageURL(dish *models.Dish) {
	imageService := services.GetImageService()
	if imageService == nil || dish.ImageS3Key == nil {
		return
	}

	url, err := imageService.GetImageURL(*dish.ImageS3Key)
	if err != nil || url == "" {
		return
	}
	dish.ImageURL = &url
}

// attachAvatarURL fills the computed AvatarURL field from the image
// service, if one is configured.
func attachAvatarURL(user *models.User) {
	imageService := services.GetImageService()
	if imageService == nil || user.AvatarS3Key == nil {
		return
	}

	url, err := imageService.GetImageURL(*user.AvatarS3Key)
	if err != nil || url == "" {
		return
	}
	user.AvatarURL = &url
}
