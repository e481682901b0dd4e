package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleGuest    Role = "guest"
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
	RoleDealer   Role = "dealer"
	RoleAdmin    Role = "admin"
	RoleVIP      Role = "vip"
)

// ParseRole maps a stored/claimed role string onto the closed enumeration.
// Unknown values are not defaulted; callers decide what to do with ok=false.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleAgent, RoleDealer, RoleAdmin, RoleVIP:
		return Role(s), true
	}
	return RoleGuest, false
}

type User struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	PasswordHash  string          `json:"-"`
	Role          Role            `json:"role"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
