package api

import "time"

// User is a registered shop customer or administrator.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is an article offered by the shop.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderItem is a single position of an order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order states.
const (
	OrderStatusProcessing = "Processing"
	OrderStatusPaid       = "Paid"
)

// Order is a purchase of one or more products.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId,omitempty"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"totalPrice"`
	Status     string      `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Payment states.
const (
	PaymentStatusSucceeded = "succeeded"
)

// Payment is a payment for an order.
type Payment struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
