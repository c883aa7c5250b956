// Package store holds sample record types used by the scaffold tests and the
// command line examples.
package store

import (
	"time"
)

// Product is an item available for sale. Prices are in cents.
type Product struct {
	ID          int64     `csv:"id"`
	SKU         string    `csv:"sku,index=0"`
	Name        string    `csv:"name"`
	Description string    `csv:"-"`
	PriceCents  int64     `csv:"price_cents"`
	Inventory   int       `csv:"inventory_count"`
	CreatedAt   time.Time `csv:"created_at,format=2006-01-02"`
}

// Address is a postal address.
type Address struct {
	Street string
	City   string
	Zip    string `csv:"zip"`
}

// Customer places orders.
type Customer struct {
	ID       int64    `csv:"id"`
	Email    string   `csv:"email"`
	FullName string   `csv:"full_name"`
	Address  *Address `csv:",prefix=address_"`
	IsActive bool     `csv:"is_active"`
}

// Audit is embedded in records that track changes.
type Audit struct {
	UpdatedBy string
	UpdatedAt time.Time
}

// Order is a transaction made by a customer.
type Order struct {
	Audit
	ID         int64       `csv:"order_id"`
	Customer   Customer    `csv:",prefix=customer_"`
	Status     OrderStatus `csv:"status"`
	TotalCents int64       `csv:"total_cents"`
	Items      []OrderItem
	OrderedAt  time.Time `csv:"ordered_at"`
}

// OrderItem is one product line within an order.
type OrderItem struct {
	ProductID int64 `csv:"product_id"`
	Quantity  int   `csv:"quantity"`
	UnitPrice int64 `csv:"unit_price"`
}

// OrderStatus is the state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)
