package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/models"
)

// Menu handles GET /api/v1/menu - lists available dishes, optionally
// filtered by category
func Menu(c *gin.Context) {
	db := config.GetDB()

	query := db.Where("is_available = ?", true).
		Preload("Category").
		Order("category_id, name")

	if categoryParam := c.Query("category"); categoryParam != "" {
		categoryID, err := strconv.ParseUint(categoryParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Category filter must be a numeric id",
				},
			})
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}

	var dishes []models.Dish
	if err := query.Find(&dishes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load the menu",
			},
		})
		return
	}

	for i := range dishes {
		attachDishImageURL(&dishes[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dishes,
	})
}

// ListCategories handles GET /api/v1/categories - lists all categories
func ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := config.GetDB().Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load categories",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    categories,
	})
}
