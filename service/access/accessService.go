package accesssvc

import (
	"errors"
	"fmt"

	"github.com/korteyrichard/dataking/model"
)

// DeniedError names the restricted tier in its message so the API can
// surface it verbatim, e.g. "Access denied. VIP products are only available
// to VIP users."
type DeniedError struct {
	Role model.Role
	Tier model.ProductType
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("Access denied. %s products are only available to %s users.",
		tierLabel(e.Tier), tierUserLabel(e.Tier))
}

func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}

// allowed is the closed role -> purchasable-tiers table. Every role/tier
// pair is a covered entry; anything absent is a deny. Guests are never
// entitled to purchase.
var allowed = map[model.Role]map[model.ProductType]bool{
	model.RoleCustomer: {
		model.CustomerProduct: true,
		model.AgentProduct:    true,
	},
	model.RoleAgent: {
		model.CustomerProduct: true,
		model.AgentProduct:    true,
	},
	model.RoleDealer: {
		model.CustomerProduct: true,
		model.AgentProduct:    true,
		model.DealerProduct:   true,
	},
	model.RoleAdmin: {
		model.CustomerProduct: true,
		model.AgentProduct:    true,
		model.DealerProduct:   true,
	},
	model.RoleVIP: {
		model.CustomerProduct: true,
		model.AgentProduct:    true,
		model.DealerProduct:   true,
		model.VIPProduct:      true,
	},
}

// visibility order for catalog listings, cheapest tier first
var tierOrder = []model.ProductType{
	model.CustomerProduct,
	model.AgentProduct,
	model.DealerProduct,
	model.VIPProduct,
}

type Service struct{}

func New() *Service { return &Service{} }

// Authorize decides whether an actor with the given role may purchase a
// product of the given tier. Pure; must run before any wallet mutation.
func (s *Service) Authorize(role model.Role, tier model.ProductType) error {
	if allowed[role][tier] {
		return nil
	}
	return &DeniedError{Role: role, Tier: tier}
}

// VisibleTiers returns the tiers the role may browse, in display order.
func (s *Service) VisibleTiers(role model.Role) []model.ProductType {
	set := allowed[role]
	out := make([]model.ProductType, 0, len(set))
	for _, t := range tierOrder {
		if set[t] {
			out = append(out, t)
		}
	}
	return out
}

func tierLabel(t model.ProductType) string {
	switch t {
	case model.CustomerProduct:
		return "Customer"
	case model.AgentProduct:
		return "Agent"
	case model.DealerProduct:
		return "Dealer"
	case model.VIPProduct:
		return "VIP"
	}
	return string(t)
}

func tierUserLabel(t model.ProductType) string {
	switch t {
	case model.CustomerProduct:
		return "registered"
	case model.AgentProduct:
		return "agent"
	case model.DealerProduct:
		return "dealer"
	case model.VIPProduct:
		return "VIP"
	}
	return string(t)
}
