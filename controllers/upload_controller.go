package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/services"
	"github.com/msorokina/school-canteen-api/utils"
)

// UploadDishImage handles POST /api/v1/admin/dishes/:id/image - stores a
// PNG photo for a dish (admin only)
func UploadDishImage(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	dish, ok := dishByIDParam(c)
	if !ok {
		return
	}

	imageKey, ok := storeUploadedImage(c, "dishes")
	if !ok {
		return
	}

	// Replace the previous photo, best-effort
	imageService := services.GetImageService()
	if dish.ImageS3Key != nil {
		_ = imageService.DeleteImage(*dish.ImageS3Key)
	}

	if err := config.GetDB().Model(&dish).Update("image_s3_key", imageKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to store image reference",
			},
		})
		return
	}

	dish.ImageS3Key = &imageKey
	attachDishImageURL(&dish)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dish,
	})
}

// UploadAvatar handles POST /api/v1/users/me/avatar - stores the current
// user's PNG avatar
func UploadAvatar(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	imageKey, ok := storeUploadedImage(c, "avatars")
	if !ok {
		return
	}

	imageService := services.GetImageService()
	if user.AvatarS3Key != nil {
		_ = imageService.DeleteImage(*user.AvatarS3Key)
	}

	if err := config.GetDB().Model(&user).Update("avatar_s3_key", imageKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to store avatar reference",
			},
		})
		return
	}

	user.AvatarS3Key = &imageKey
	attachAvatarURL(&user)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetUploadedImage handles GET /api/v1/uploads/*filepath - serves locally
// stored PNG images when the filesystem backend is in use
func GetUploadedImage(c *gin.Context) {
	relPath := strings.TrimPrefix(c.Param("filepath"), "/")
	if relPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Filename is required",
			},
		})
		return
	}

	// Prevent directory traversal
	if strings.Contains(relPath, "..") || strings.Contains(relPath, "\\") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILENAME",
				"message": "Invalid filename",
			},
		})
		return
	}

	if strings.ToLower(filepath.Ext(relPath)) != utils.AllowedImageFormat {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only PNG files are supported",
			},
		})
		return
	}

	filePath := filepath.Join(utils.UploadDir, filepath.FromSlash(relPath))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_NOT_FOUND",
				"message": "Image not found",
			},
		})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(filePath)
}

// storeUploadedImage reads the "image" form file and hands it to the
// configured image backend. On failure it writes the error response and
// returns false.
func storeUploadedImage(c *gin.Context, keyPrefix string) (string, bool) {
	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOADS_UNAVAILABLE",
				"message": "Image storage is not configured",
			},
		})
		return "", false
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "Form field 'image' is required",
			},
		})
		return "", false
	}

	imageKey, err := imageService.UploadImage(fileHeader, keyPrefix)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return "", false
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store the image",
			},
		})
		return "", false
	}

	return imageKey, true
}
