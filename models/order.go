package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the enumerated order statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusCancelled:
		return true
	}
	return false
}

// CanTransition is the single source of truth for the order status state
// machine. A transition is permitted if and only if the (actor role,
// ownership, current status, requested status) tuple appears here:
//
//	customer (owner)  pending|preparing -> cancelled
//	chef              preparing         -> ready
//	admin             any               -> any enumerated status
//
// Orders are created directly in "preparing"; "pending" and "confirmed"
// are reachable only through an admin override.
func CanTransition(actor Role, isOwner bool, from, to OrderStatus) bool {
	if !to.Valid() {
		return false
	}
	switch actor {
	case RoleAdmin:
		return true
	case RoleChef:
		return from == StatusPreparing && to == StatusReady
	case RoleStudent:
		return isOwner &&
			(from == StatusPending || from == StatusPreparing) &&
			to == StatusCancelled
	}
	return false
}

// Order is a durable, customer-owned record of committed dish selections.
// Created only by materializing a cart; the owning customer never changes.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CustomerID uint            `gorm:"not null;index" json:"customer_id"`
	Customer   User            `gorm:"foreignKey:CustomerID" json:"customer"`
	Status     OrderStatus     `gorm:"not null;default:'pending'" json:"status"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Notes      string          `json:"notes"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one dish line within an order. PriceAtTime is a snapshot
// of the dish price at order creation and is immune to later price edits.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	DishID      uint            `gorm:"not null;index" json:"dish_id"`
	Dish        Dish            `gorm:"foreignKey:DishID" json:"dish"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	PriceAtTime decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_time"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// Total returns PriceAtTime multiplied by the quantity
func (i *OrderItem) Total() decimal.Decimal {
	return i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
