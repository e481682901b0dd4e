// model/order.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderFailed     OrderStatus = "failed"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderProcessing, OrderCompleted, OrderFailed:
		return OrderStatus(s), true
	}
	return "", false
}

// Order is created atomically with the matching wallet debit; it is never
// persisted without the debit and vice versa.
type Order struct {
	ID                int64           `json:"id"`
	ReferenceID       string          `json:"reference_id"`
	UserID            int64           `json:"user_id"`
	Network           Network         `json:"network"`
	BeneficiaryNumber string          `json:"beneficiary_number"`
	Total             decimal.Decimal `json:"total"`
	Status            OrderStatus     `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	Items             []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID                int64           `json:"id"`
	OrderID           int64           `json:"order_id"`
	ProductID         int64           `json:"product_id"`
	VariantID         int64           `json:"variant_id"`
	ProductName       string          `json:"product_name"`
	Size              string          `json:"size"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	BeneficiaryNumber string          `json:"beneficiary_number"`
}
