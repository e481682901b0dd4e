package accesssvc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korteyrichard/dataking/model"
)

func TestAuthorize_Table(t *testing.T) {
	s := New()

	cases := []struct {
		role  model.Role
		tier  model.ProductType
		allow bool
	}{
		{model.RoleCustomer, model.CustomerProduct, true},
		{model.RoleCustomer, model.AgentProduct, true},
		{model.RoleCustomer, model.DealerProduct, false},
		{model.RoleCustomer, model.VIPProduct, false},
		{model.RoleAgent, model.AgentProduct, true},
		{model.RoleAgent, model.VIPProduct, false},
		{model.RoleDealer, model.DealerProduct, true},
		{model.RoleDealer, model.VIPProduct, false},
		{model.RoleAdmin, model.DealerProduct, true},
		{model.RoleAdmin, model.VIPProduct, false},
		{model.RoleVIP, model.VIPProduct, true},
		{model.RoleVIP, model.CustomerProduct, true},
		{model.RoleGuest, model.CustomerProduct, false},
		{model.RoleGuest, model.VIPProduct, false},
	}
	for _, tc := range cases {
		err := s.Authorize(tc.role, tc.tier)
		if tc.allow {
			require.NoError(t, err, "%s/%s", tc.role, tc.tier)
		} else {
			require.Error(t, err, "%s/%s", tc.role, tc.tier)
			require.True(t, IsDenied(err))
		}
	}
}

func TestAuthorize_VIPMessage(t *testing.T) {
	s := New()
	err := s.Authorize(model.RoleCustomer, model.VIPProduct)
	require.Error(t, err)
	require.Equal(t, "Access denied. VIP products are only available to VIP users.", err.Error())
}

func TestAuthorize_DealerMessage(t *testing.T) {
	s := New()
	err := s.Authorize(model.RoleAgent, model.DealerProduct)
	require.Error(t, err)
	require.Equal(t, "Access denied. Dealer products are only available to dealer users.", err.Error())
}

func TestVisibleTiers(t *testing.T) {
	s := New()
	require.Equal(t,
		[]model.ProductType{model.CustomerProduct, model.AgentProduct},
		s.VisibleTiers(model.RoleCustomer))
	require.Len(t, s.VisibleTiers(model.RoleVIP), 4)
	require.Empty(t, s.VisibleTiers(model.RoleGuest))
}
