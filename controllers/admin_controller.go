package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/msorokina/school-canteen-api/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateDishRequest represents the request body for creating a dish
type CreateDishRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"omitempty"`
	Price       string `json:"price" binding:"required"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	IsAvailable *bool  `json:"is_available" binding:"omitempty"`
}

// UpdateDishRequest represents the request body for updating a dish
type UpdateDishRequest struct {
	Name        string `json:"name" binding:"omitempty"`
	Description string `json:"description" binding:"omitempty"`
	Price       string `json:"price" binding:"omitempty"`
	CategoryID  uint   `json:"category_id" binding:"omitempty"`
	IsAvailable *bool  `json:"is_available" binding:"omitempty"`
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"omitempty"`
}

// ChangeUserRoleRequest represents the request body for a role change
type ChangeUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AdminDashboard handles GET /api/v1/admin/dashboard - headline counts for
// administrators
func AdminDashboard(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	db := config.GetDB()

	var totalStudents, totalChefs, totalDishes, totalOrders, activeOrders int64
	db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents)
	db.Model(&models.User{}).Where("role = ?", models.RoleChef).Count(&totalChefs)
	db.Model(&models.Dish{}).Count(&totalDishes)
	db.Model(&models.Order{}).Count(&totalOrders)
	db.Model(&models.Order{}).
		Where("status NOT IN ?", []models.OrderStatus{models.StatusReady, models.StatusCancelled}).
		Count(&activeOrders)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_students": totalStudents,
			"total_chefs":    totalChefs,
			"total_dishes":   totalDishes,
			"total_orders":   totalOrders,
			"active_orders":  activeOrders,
		},
	})
}

// ListAllDishes handles GET /api/v1/admin/dishes - all dishes including
// unavailable ones
func ListAllDishes(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var dishes []models.Dish
	err := config.GetDB().
		Preload("Category").
		Order("category_id, name").
		Find(&dishes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load dishes",
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

// CreateDish handles POST /api/v1/admin/dishes
func CreateDish(c *gin.Context) {
	admin, ok := requireAdmin(c)
	if !ok {
		return
	}

	var req CreateDishRequest
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

	price, ok := parsePrice(c, req.Price)
	if !ok {
		return
	}

	db := config.GetDB()

	var category models.Category
	if err := db.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_NOT_FOUND",
				"message": "Category not found",
			},
		})
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	dish := models.Dish{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		CategoryID:  category.ID,
		IsAvailable: isAvailable,
		CreatedByID: &admin.ID,
	}
	if err := db.Create(&dish).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create dish",
			},
		})
		return
	}

	dish.Category = category
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    dish,
	})
}

// UpdateDish handles PUT /api/v1/admin/dishes/:id - partial update of
// name, description, price, category and availability
func UpdateDish(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	dish, ok := dishByIDParam(c)
	if !ok {
		return
	}

	var req UpdateDishRequest
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

	db := config.GetDB()
	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != "" {
		price, ok := parsePrice(c, req.Price)
		if !ok {
			return
		}
		updates["price"] = price
	}
	if req.CategoryID != 0 {
		var category models.Category
		if err := db.First(&category, req.CategoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CATEGORY_NOT_FOUND",
					"message": "Category not found",
				},
			})
			return
		}
		updates["category_id"] = category.ID
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if len(updates) > 0 {
		if err := db.Model(&dish).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update dish",
				},
			})
			return
		}
	}

	if err := db.Preload("Category").First(&dish, dish.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load updated dish",
			},
		})
		return
	}

	attachDishImageURL(&dish)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dish,
	})
}

// DeleteDish handles DELETE /api/v1/admin/dishes/:id. The stored image,
// if any, is removed best-effort.
func DeleteDish(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	dish, ok := dishByIDParam(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(&dish).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete dish",
			},
		})
		return
	}

	if imageService := services.GetImageService(); imageService != nil && dish.ImageS3Key != nil {
		_ = imageService.DeleteImage(*dish.ImageS3Key)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": true,
		},
	})
}

// CreateCategory handles POST /api/v1/admin/categories
func CreateCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req CreateCategoryRequest
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

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := config.GetDB().Create(&category).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CATEGORY_EXISTS",
					"message": "A category with this name already exists",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create category",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

// DeleteCategory handles DELETE /api/v1/admin/categories/:id - removes the
// category and, by cascade, its dishes
func DeleteCategory(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Category id must be numeric",
			},
		})
		return
	}

	db := config.GetDB()
	var category models.Category
	if err := db.First(&category, categoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CATEGORY_NOT_FOUND",
				"message": "Category not found",
			},
		})
		return
	}

	// Cascade explicitly so the behavior does not depend on the driver's
	// foreign-key enforcement
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Dish{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete category",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": true,
		},
	})
}

// ListAllOrders handles GET /api/v1/admin/orders - every order, newest
// first
func ListAllOrders(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var orders []models.Order
	err := config.GetDB().
		Preload("Customer").
		Preload("Items.Dish").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// ListUsers handles GET /api/v1/admin/users
func ListUsers(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var users []models.User
	if err := config.GetDB().Order("username").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// ChangeUserRole handles PUT /api/v1/admin/users/:id/role. A role value
// outside the enumerated set is ignored and the user returned unchanged.
func ChangeUserRole(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "User id must be numeric",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	var req ChangeUserRoleRequest
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

	if role, valid := models.ParseRole(req.Role); valid {
		if err := db.Model(&user).Update("role", role).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to change user role",
				},
			})
			return
		}
		user.Role = role
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// dishByIDParam loads the dish named by the :id route parameter. On
// failure it writes the error response and returns false.
func dishByIDParam(c *gin.Context) (models.Dish, bool) {
	dishID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Dish id must be numeric",
			},
		})
		return models.Dish{}, false
	}

	var dish models.Dish
	if err := config.GetDB().First(&dish, dishID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DISH_NOT_FOUND",
				"message": "Dish not found",
			},
		})
		return models.Dish{}, false
	}

	return dish, true
}

// parsePrice parses a decimal price string and requires it to be
// non-negative. On failure it writes the error response and returns false.
func parsePrice(c *gin.Context, value string) (decimal.Decimal, bool) {
	price, err := decimal.NewFromString(value)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Price must be a non-negative decimal",
			},
		})
		return decimal.Decimal{}, false
	}
	return price, true
}
