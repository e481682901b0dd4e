package catalogsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/korteyrichard/dataking/config"
	"github.com/korteyrichard/dataking/model"
)

var (
	// ErrUnknownNetwork: the network_id is outside the configured
	// enumeration. Reported before any value derived from the id is used.
	ErrUnknownNetwork = errors.New("unknown network id")

	// ErrVariantUnavailable: no IN_STOCK variant matches the requested size
	// (or the catalog has no product for a valid id).
	ErrVariantUnavailable = errors.New("variant unavailable")
)

type Repo interface {
	ProductByNetworkAndType(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error)
	VariantBySize(ctx context.Context, productID int64, size string) (*model.ProductVariant, error)
	ListByNetwork(ctx context.Context, network model.Network, tiers []model.ProductType) ([]model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	UpdateVariantStatus(ctx context.Context, variantID int64, status model.VariantStatus) (bool, error)
}

type entry struct {
	network model.Network
	tier    model.ProductType
}

// Service resolves network_id selectors against the configured grid and the
// product catalog. Reads are lock-free; the grid is immutable after Load.
type Service struct {
	r       Repo
	entries map[int]entry
	listing []config.NetworkEntry
}

func New(r Repo, networks []config.NetworkEntry) (*Service, error) {
	s := &Service{r: r, entries: make(map[int]entry, len(networks))}
	for _, n := range networks {
		network, ok := model.ParseNetwork(n.Network)
		if !ok {
			return nil, fmt.Errorf("catalog config: unknown network %q for id %d", n.Network, n.ID)
		}
		tier, ok := model.ParseProductType(n.Tier)
		if !ok {
			return nil, fmt.Errorf("catalog config: unknown tier %q for id %d", n.Tier, n.ID)
		}
		if _, dup := s.entries[n.ID]; dup {
			return nil, fmt.Errorf("catalog config: duplicate network id %d", n.ID)
		}
		s.entries[n.ID] = entry{network: network, tier: tier}
		s.listing = append(s.listing, n)
	}
	sort.Slice(s.listing, func(i, j int) bool { return s.listing[i].ID < s.listing[j].ID })
	return s, nil
}

// Tier derives the product tier for a network_id. This is the first check of
// every order: an unknown id fails here, before the tier is used anywhere.
func (s *Service) Tier(networkID int) (model.ProductType, error) {
	e, ok := s.entries[networkID]
	if !ok {
		return "", ErrUnknownNetwork
	}
	return e.tier, nil
}

func (s *Service) Network(networkID int) (model.Network, error) {
	e, ok := s.entries[networkID]
	if !ok {
		return "", ErrUnknownNetwork
	}
	return e.network, nil
}

// Resolve maps (network_id, size) to a concrete product and an IN_STOCK
// priced variant.
func (s *Service) Resolve(ctx context.Context, networkID int, size string) (*model.Product, *model.ProductVariant, error) {
	e, ok := s.entries[networkID]
	if !ok {
		return nil, nil, ErrUnknownNetwork
	}

	p, err := s.r.ProductByNetworkAndType(ctx, e.network, e.tier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrVariantUnavailable
		}
		return nil, nil, err
	}

	v, err := s.r.VariantBySize(ctx, p.ID, size)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrVariantUnavailable
		}
		return nil, nil, err
	}
	return p, v, nil
}

// Networks exposes the configured id map for clients.
func (s *Service) Networks() []config.NetworkEntry { return s.listing }

// ListProducts returns the catalog for one network restricted to the given
// tiers (the caller derives tiers from the actor's role).
func (s *Service) ListProducts(ctx context.Context, network model.Network, tiers []model.ProductType) ([]model.Product, error) {
	return s.r.ListByNetwork(ctx, network, tiers)
}

func (s *Service) CreateProduct(ctx context.Context, p *model.Product) error {
	if _, ok := model.ParseNetwork(string(p.Network)); !ok {
		return fmt.Errorf("unknown network %q", p.Network)
	}
	if _, ok := model.ParseProductType(string(p.ProductType)); !ok {
		return fmt.Errorf("unknown product type %q", p.ProductType)
	}
	return s.r.CreateProduct(ctx, p)
}

func (s *Service) AddVariant(ctx context.Context, v *model.ProductVariant) error {
	if v.Price.Sign() <= 0 {
		return errors.New("price must be positive")
	}
	if v.Size == "" {
		return errors.New("size is required")
	}
	if v.Status == "" {
		v.Status = model.VariantInStock
	}
	return s.r.CreateVariant(ctx, v)
}

func (s *Service) SetVariantStatus(ctx context.Context, variantID int64, status model.VariantStatus) error {
	if status != model.VariantInStock && status != model.VariantOutOfStock {
		return fmt.Errorf("unknown variant status %q", status)
	}
	ok, err := s.r.UpdateVariantStatus(ctx, variantID, status)
	if err != nil {
		return err
	}
	if !ok {
		return sql.ErrNoRows
	}
	return nil
}
