// model/product.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Network string

const (
	NetworkMTN     Network = "MTN"
	NetworkTelecel Network = "TELECEL"
	NetworkIShare  Network = "ISHARE"
	NetworkBigTime Network = "BIGTIME"
)

func ParseNetwork(s string) (Network, bool) {
	switch Network(s) {
	case NetworkMTN, NetworkTelecel, NetworkIShare, NetworkBigTime:
		return Network(s), true
	}
	return "", false
}

// ProductType is the access tier of a product. Exactly one tier governs who
// may purchase a product; the mapping is a closed enumeration.
type ProductType string

const (
	CustomerProduct ProductType = "customer_product"
	AgentProduct    ProductType = "agent_product"
	DealerProduct   ProductType = "dealer_product"
	VIPProduct      ProductType = "vip_product"
)

func ParseProductType(s string) (ProductType, bool) {
	switch ProductType(s) {
	case CustomerProduct, AgentProduct, DealerProduct, VIPProduct:
		return ProductType(s), true
	}
	return "", false
}

type VariantStatus string

const (
	VariantInStock    VariantStatus = "IN_STOCK"
	VariantOutOfStock VariantStatus = "OUT_OF_STOCK"
)

type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Expiry      string           `json:"expiry,omitempty"`
	Network     Network          `json:"network"`
	ProductType ProductType      `json:"product_type"`
	HasVariants bool             `json:"has_variants"`
	CreatedAt   time.Time        `json:"created_at"`
	Variants    []ProductVariant `json:"variants,omitempty"`
}

type ProductVariant struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size"`
	Status    VariantStatus   `json:"status"`
}
