// model/cart.go
package model

import "time"

// CartItem stages a pending selection before checkout. Guest carts live on
// the client and only become CartItems after authentication (merge).
type CartItem struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	ProductID         int64     `json:"product_id"`
	VariantID         int64     `json:"variant_id"`
	Size              string    `json:"size"`
	Quantity          int       `json:"quantity"`
	BeneficiaryNumber string    `json:"beneficiary_number"`
	CreatedAt         time.Time `json:"created_at"`
}
