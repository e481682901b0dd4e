package catalogsvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/korteyrichard/dataking/config"
	"github.com/korteyrichard/dataking/model"
)

type repoMock struct {
	productFn func(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error)
	variantFn func(ctx context.Context, productID int64, size string) (*model.ProductVariant, error)
}

func (m *repoMock) ProductByNetworkAndType(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error) {
	return m.productFn(ctx, network, tier)
}
func (m *repoMock) VariantBySize(ctx context.Context, productID int64, size string) (*model.ProductVariant, error) {
	return m.variantFn(ctx, productID, size)
}
func (m *repoMock) ListByNetwork(ctx context.Context, network model.Network, tiers []model.ProductType) ([]model.Product, error) {
	return nil, nil
}
func (m *repoMock) CreateProduct(ctx context.Context, p *model.Product) error      { return nil }
func (m *repoMock) CreateVariant(ctx context.Context, v *model.ProductVariant) error { return nil }
func (m *repoMock) UpdateVariantStatus(ctx context.Context, variantID int64, status model.VariantStatus) (bool, error) {
	return true, nil
}

func newService(t *testing.T, m Repo) *Service {
	t.Helper()
	s, err := New(m, config.DefaultNetworks())
	require.NoError(t, err)
	return s
}

func TestTier_KnownIDs(t *testing.T) {
	s := newService(t, &repoMock{})

	tier, err := s.Tier(5)
	require.NoError(t, err)
	require.Equal(t, model.AgentProduct, tier)

	tier, err = s.Tier(13)
	require.NoError(t, err)
	require.Equal(t, model.VIPProduct, tier)

	n, err := s.Network(5)
	require.NoError(t, err)
	require.Equal(t, model.NetworkMTN, n)
}

func TestTier_UnknownID(t *testing.T) {
	s := newService(t, &repoMock{})

	_, err := s.Tier(999)
	require.ErrorIs(t, err, ErrUnknownNetwork)
	_, err = s.Network(999)
	require.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestResolve_Success(t *testing.T) {
	m := &repoMock{
		productFn: func(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error) {
			require.Equal(t, model.NetworkMTN, network)
			require.Equal(t, model.AgentProduct, tier)
			return &model.Product{ID: 7, Name: "MTN", Network: network, ProductType: tier}, nil
		},
		variantFn: func(ctx context.Context, productID int64, size string) (*model.ProductVariant, error) {
			require.Equal(t, int64(7), productID)
			require.Equal(t, "1GB", size)
			return &model.ProductVariant{ID: 3, ProductID: 7, Size: size, Price: decimal.RequireFromString("5.00"), Status: model.VariantInStock}, nil
		},
	}
	s := newService(t, m)

	p, v, err := s.Resolve(context.Background(), 5, "1GB")
	require.NoError(t, err)
	require.Equal(t, int64(7), p.ID)
	require.True(t, v.Price.Equal(decimal.RequireFromString("5.00")))
}

func TestResolve_UnknownNetworkBeforeLookups(t *testing.T) {
	m := &repoMock{
		productFn: func(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error) {
			t.Fatal("product lookup must not run for an unknown network id")
			return nil, nil
		},
	}
	s := newService(t, m)

	_, _, err := s.Resolve(context.Background(), 999, "1GB")
	require.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestResolve_VariantMissing(t *testing.T) {
	m := &repoMock{
		productFn: func(ctx context.Context, network model.Network, tier model.ProductType) (*model.Product, error) {
			return &model.Product{ID: 7}, nil
		},
		variantFn: func(ctx context.Context, productID int64, size string) (*model.ProductVariant, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := newService(t, m)

	_, _, err := s.Resolve(context.Background(), 5, "99GB")
	require.ErrorIs(t, err, ErrVariantUnavailable)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(&repoMock{}, []config.NetworkEntry{{ID: 1, Network: "VODAFONE", Tier: "customer_product"}})
	require.Error(t, err)

	_, err = New(&repoMock{}, []config.NetworkEntry{
		{ID: 1, Network: "MTN", Tier: "customer_product"},
		{ID: 1, Network: "MTN", Tier: "agent_product"},
	})
	require.Error(t, err)
}
