package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// errDishUnavailable aborts order materialization when a cart entry
// references a dish that is missing or no longer available.
var errDishUnavailable = errors.New("dish unavailable")

// CreateOrderRequest represents the optional request body for creating an
// order from the cart
type CreateOrderRequest struct {
	Notes string `json:"notes"`
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders - materializes the session cart
// into a persisted order. The whole multi-row insert runs in one
// transaction: either the order exists with consistent items and total,
// or nothing is written and the cart is left untouched.
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.Role.Capabilities().PlaceOrders {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PERMISSION_DENIED",
				"message": "Your role does not permit placing orders",
			},
		})
		return
	}

	sess := sessions.Default(c)
	cart := cartFromSession(sess)
	if cart.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_CART",
				"message": "Your cart is empty",
			},
		})
		return
	}

	var req CreateOrderRequest
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

	db := config.GetDB()
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		// Orders start in "preparing": the kitchen picks them up
		// immediately, there is no separate confirmation step.
		order = models.Order{
			CustomerID: user.ID,
			Status:     models.StatusPreparing,
			TotalPrice: decimal.Zero,
			Notes:      req.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		total := decimal.Zero
		for dishID, quantity := range cart {
			// Re-fetch at order time: the price is snapshotted here and
			// availability is re-checked under the transaction.
			var dish models.Dish
			if err := tx.Where("is_available = ?", true).First(&dish, dishID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errDishUnavailable
				}
				return err
			}

			item := models.OrderItem{
				OrderID:     order.ID,
				DishID:      dish.ID,
				Quantity:    quantity,
				PriceAtTime: dish.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			total = total.Add(dish.Price.Mul(decimal.NewFromInt(int64(quantity))))
		}

		order.TotalPrice = total
		return tx.Model(&order).Update("total_price", total).Error
	})

	if err != nil {
		if errors.Is(err, errDishUnavailable) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DISH_UNAVAILABLE",
					"message": "Some dishes in your cart are no longer available",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	// The cart is emptied only after the order committed
	if !saveCart(c, sess, models.Cart{}) {
		return
	}

	if err := db.Preload("Items.Dish").Preload("Customer").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// MyOrders handles GET /api/v1/orders - lists the actor's own orders,
// newest first
func MyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var orders []models.Order
	err := config.GetDB().
		Where("customer_id = ?", user.ID).
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

// GetOrder handles GET /api/v1/orders/:id - order detail, visible to the
// owner and to administrators only
func GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	order, ok := orderByID(c)
	if !ok {
		return
	}

	if !user.Role.Capabilities().ViewAllOrders && order.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PERMISSION_DENIED",
				"message": "You may only view your own orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - customer-initiated
// cancellation of their own order
func CancelOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order id must be numeric",
			},
		})
		return
	}

	// Scoped to the actor's own orders; other customers' orders read as
	// not found rather than forbidden.
	var order models.Order
	err = config.GetDB().
		Where("customer_id = ?", user.ID).
		First(&order, orderID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	applyTransition(c, user, order, models.StatusCancelled)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status - moves an order
// through its lifecycle according to the transition table
func UpdateOrderStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
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

	newStatus := models.OrderStatus(req.Status)
	if !newStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown order status",
			},
		})
		return
	}

	order, ok := orderByID(c)
	if !ok {
		return
	}

	applyTransition(c, user, order, newStatus)
}

// KitchenOrders handles GET /api/v1/kitchen/orders - the chef's queue of
// orders currently in preparation, oldest first
func KitchenOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.Role.Capabilities().ViewKitchenQueue {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PERMISSION_DENIED",
				"message": "Kitchen queue is available to chefs only",
			},
		})
		return
	}

	var orders []models.Order
	err := config.GetDB().
		Where("status = ?", models.StatusPreparing).
		Preload("Customer").
		Preload("Items.Dish").
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load the kitchen queue",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// orderByID loads the order named by the :id route parameter with its
// items and customer. On failure it writes the error response and
// returns false.
func orderByID(c *gin.Context) (models.Order, bool) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order id must be numeric",
			},
		})
		return models.Order{}, false
	}

	var order models.Order
	err = config.GetDB().
		Preload("Items.Dish").
		Preload("Customer").
		First(&order, orderID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return models.Order{}, false
	}

	return order, true
}

// applyTransition validates the requested status change against the
// transition table and applies it with an optimistic check-and-set, so
// two actors racing on the same order cannot both win.
func applyTransition(c *gin.Context, user models.User, order models.Order, newStatus models.OrderStatus) {
	isOwner := order.CustomerID == user.ID
	if !models.CanTransition(user.Role, isOwner, order.Status, newStatus) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": "Order status cannot be changed from " + string(order.Status) + " to " + string(newStatus),
			},
		})
		return
	}

	db := config.GetDB()
	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", newStatus)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}
	if res.RowsAffected == 0 {
		// Someone else moved the order between our read and write
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": "Order status changed concurrently, please retry",
			},
		})
		return
	}

	order.Status = newStatus
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
