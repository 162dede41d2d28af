package controllers

import (
	"encoding/gob"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/msorokina/school-canteen-api/config"
	"github.com/msorokina/school-canteen-api/models"
	"github.com/shopspring/decimal"
)

const cartSessionKey = "cart"

func init() {
	// The cookie session store serializes values with gob
	gob.Register(models.Cart{})
}

// cartFromSession loads the cart from the session, returning an empty
// cart when none has been stored yet.
func cartFromSession(sess sessions.Session) models.Cart {
	if cart, ok := sess.Get(cartSessionKey).(models.Cart); ok {
		return cart
	}
	return models.Cart{}
}

// saveCart persists the cart back to the session immediately. On failure
// it writes the error response and returns false.
func saveCart(c *gin.Context, sess sessions.Session, cart models.Cart) bool {
	sess.Set(cartSessionKey, cart)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_ERROR",
				"message": "Failed to save the cart",
			},
		})
		return false
	}
	return true
}

// dishIDParam parses the :dishID route parameter. On failure it writes
// the error response and returns false.
func dishIDParam(c *gin.Context) (uint, bool) {
	dishID, err := strconv.ParseUint(c.Param("dishID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Dish id must be numeric",
			},
		})
		return 0, false
	}
	return uint(dishID), true
}

// UpdateCartItemRequest represents the request body for setting a cart
// entry's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartEntry is one resolved cart line in the cart view
type CartEntry struct {
	Dish     models.Dish     `json:"dish"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}

// AddToCart handles POST /api/v1/cart/items/:dishID - increments the
// quantity for an existing entry or inserts it with quantity 1
func AddToCart(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	// Only available dishes may enter the cart
	var dish models.Dish
	if err := config.GetDB().Where("is_available = ?", true).First(&dish, dishID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DISH_NOT_FOUND",
				"message": "Dish not found or not available",
			},
		})
		return
	}

	sess := sessions.Default(c)
	cart := cartFromSession(sess)
	cart.Add(dishID)
	if !saveCart(c, sess, cart) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"dish_id":  dishID,
			"quantity": cart[dishID],
		},
	})
}

// UpdateCartItem handles PUT /api/v1/cart/items/:dishID - sets the
// quantity for an entry. A missing, non-numeric or non-positive quantity
// removes the entry.
func UpdateCartItem(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	// An unparseable body counts as an invalid quantity and removes the
	// entry, mirroring the zero-quantity rule.
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Quantity = 0
	}

	sess := sessions.Default(c)
	cart := cartFromSession(sess)
	cart.SetQuantity(dishID, req.Quantity)
	if !saveCart(c, sess, cart) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"dish_id":  dishID,
			"quantity": cart[dishID],
		},
	})
}

// RemoveFromCart handles DELETE /api/v1/cart/items/:dishID - deletes the
// entry unconditionally. Removing an absent entry succeeds as a no-op.
func RemoveFromCart(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	dishID, ok := dishIDParam(c)
	if !ok {
		return
	}

	sess := sessions.Default(c)
	cart := cartFromSession(sess)
	cart.Remove(dishID)
	if !saveCart(c, sess, cart) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"dish_id": dishID,
			"removed": true,
		},
	})
}

// ViewCart handles GET /api/v1/cart - resolves each entry against the
// catalog and totals it at the CURRENT dish price. Entries whose dish no
// longer exists or is no longer available are silently dropped from the
// view. Orders, by contrast, freeze prices at creation time.
func ViewCart(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	sess := sessions.Default(c)
	cart := cartFromSession(sess)

	db := config.GetDB()
	entries := make([]CartEntry, 0, len(cart))
	total := decimal.Zero

	for dishID, quantity := range cart {
		var dish models.Dish
		if err := db.Preload("Category").Where("is_available = ?", true).First(&dish, dishID).Error; err != nil {
			continue
		}
		attachDishImageURL(&dish)

		entryTotal := dish.Price.Mul(decimal.NewFromInt(int64(quantity)))
		entries = append(entries, CartEntry{
			Dish:     dish,
			Quantity: quantity,
			Total:    entryTotal,
		})
		total = total.Add(entryTotal)
	}

	// Map iteration order is random; keep the rendering stable
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Dish.ID < entries[j].Dish.ID
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items": entries,
			"total": total,
		},
	})
}
