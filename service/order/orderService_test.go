package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/korteyrichard/dataking/config"
	"github.com/korteyrichard/dataking/model"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
	accesssvc "github.com/korteyrichard/dataking/service/access"
	catalogsvc "github.com/korteyrichard/dataking/service/catalog"
)

// catalogMock implements Catalog over the default network grid without a DB.
type catalogMock struct {
	grid     map[int]struct {
		network model.Network
		tier    model.ProductType
	}
	resolveFn func(ctx context.Context, networkID int, size string) (*model.Product, *model.ProductVariant, error)
}

func newCatalogMock() *catalogMock {
	m := &catalogMock{grid: map[int]struct {
		network model.Network
		tier    model.ProductType
	}{}}
	for _, e := range config.DefaultNetworks() {
		m.grid[e.ID] = struct {
			network model.Network
			tier    model.ProductType
		}{model.Network(e.Network), model.ProductType(e.Tier)}
	}
	return m
}

func (m *catalogMock) Tier(networkID int) (model.ProductType, error) {
	e, ok := m.grid[networkID]
	if !ok {
		return "", catalogsvc.ErrUnknownNetwork
	}
	return e.tier, nil
}

func (m *catalogMock) Network(networkID int) (model.Network, error) {
	e, ok := m.grid[networkID]
	if !ok {
		return "", catalogsvc.ErrUnknownNetwork
	}
	return e.network, nil
}

func (m *catalogMock) Resolve(ctx context.Context, networkID int, size string) (*model.Product, *model.ProductVariant, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, networkID, size)
	}
	e, ok := m.grid[networkID]
	if !ok {
		return nil, nil, catalogsvc.ErrUnknownNetwork
	}
	p := &model.Product{ID: 7, Name: string(e.network), Network: e.network, ProductType: e.tier}
	if size != "1GB" {
		return nil, nil, catalogsvc.ErrVariantUnavailable
	}
	v := &model.ProductVariant{ID: 3, ProductID: 7, Size: size, Price: decimal.RequireFromString("5.00"), Status: model.VariantInStock}
	return p, v, nil
}

type walletMock struct {
	balance   decimal.Decimal
	debitErr  error
	debits    []decimal.Decimal
	ledgers   []decimal.Decimal
	lockCalls int
}

func (m *walletMock) LockBalance(ctx context.Context, tx *sql.Tx, userID int64) (decimal.Decimal, error) {
	m.lockCalls++
	return m.balance, nil
}
func (m *walletMock) Debit(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error {
	if m.debitErr != nil {
		return m.debitErr
	}
	m.debits = append(m.debits, amount)
	m.balance = m.balance.Sub(amount)
	return nil
}
func (m *walletMock) InsertLedger(ctx context.Context, tx *sql.Tx, userID int64, refTable string, refID *int64, entryType model.LedgerType, amount, balanceAfter decimal.Decimal) error {
	m.ledgers = append(m.ledgers, balanceAfter)
	return nil
}

type orderRepoMock struct {
	orders []model.Order
	items  [][]model.OrderItem
}

func (m *orderRepoMock) InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	o.ID = int64(len(m.orders) + 1)
	m.orders = append(m.orders, *o)
	return nil
}
func (m *orderRepoMock) InsertItems(ctx context.Context, tx *sql.Tx, orderID int64, items []model.OrderItem) error {
	m.items = append(m.items, items)
	return nil
}
func (m *orderRepoMock) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return m.orders, nil
}

type userRepoMock struct{ u model.User }

func (m *userRepoMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := m.u
	u.ID = id
	return &u, nil
}

type fixture struct {
	svc    Service
	wallet *walletMock
	orders *orderRepoMock
	mock   sqlmock.Sqlmock
}

func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w := &walletMock{balance: decimal.RequireFromString(balance)}
	o := &orderRepoMock{}
	u := &userRepoMock{u: model.User{Name: "Test User", Email: "test@example.com", Role: model.RoleCustomer}}
	svc := New(db, newCatalogMock(), accesssvc.New(), w, o, u)
	return &fixture{svc: svc, wallet: w, orders: o, mock: mock}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture(t, "100.00")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	placed, err := f.svc.PlaceOrder(context.Background(), 1, model.RoleCustomer, PlaceOrderReq{
		BeneficiaryNumber: "0543949478",
		NetworkID:         5, // agent MTN
		Size:              "1GB",
	})
	require.NoError(t, err)

	require.True(t, placed.Order.Total.Equal(decimal.RequireFromString("5.00")))
	require.Equal(t, model.OrderPending, placed.Order.Status)
	require.Equal(t, model.NetworkMTN, placed.Order.Network)
	require.Equal(t, "0543949478", placed.Order.BeneficiaryNumber)
	require.NotEmpty(t, placed.Order.ReferenceID)
	require.Len(t, placed.Order.Items, 1)
	require.NotNil(t, placed.User)

	// balance 100.00 - 5.00 = 95.00, recorded on the ledger row
	require.True(t, f.wallet.balance.Equal(decimal.RequireFromString("95.00")))
	require.Len(t, f.wallet.ledgers, 1)
	require.True(t, f.wallet.ledgers[0].Equal(decimal.RequireFromString("95.00")))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceOrder_InvalidNetworkID(t *testing.T) {
	f := newFixture(t, "100.00")

	_, err := f.svc.PlaceOrder(context.Background(), 1, model.RoleCustomer, PlaceOrderReq{
		BeneficiaryNumber: "0543949478",
		NetworkID:         999,
		Size:              "1GB",
	})
	require.Error(t, err)
	require.Equal(t, ErrInvalidNetwork, Code(err))
	require.Equal(t, "Invalid network ID", Message(err))

	// rejected before any transaction: no lock, no debit, no order
	require.Zero(t, f.wallet.lockCalls)
	require.Empty(t, f.wallet.debits)
	require.Empty(t, f.orders.orders)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceOrder_VIPDenied(t *testing.T) {
	f := newFixture(t, "100.00")

	_, err := f.svc.PlaceOrder(context.Background(), 1, model.RoleCustomer, PlaceOrderReq{
		BeneficiaryNumber: "0543949478",
		NetworkID:         13, // VIP MTN
		Size:              "1GB",
	})
	require.Error(t, err)
	require.Equal(t, ErrAccessDenied, Code(err))
	require.Equal(t, "Access denied. VIP products are only available to VIP users.", Message(err))

	require.Zero(t, f.wallet.lockCalls)
	require.Empty(t, f.orders.orders)
}

func TestPlaceOrder_InsufficientBalance(t *testing.T) {
	f := newFixture(t, "1.00")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	before := f.wallet.balance
	_, err := f.svc.PlaceOrder(context.Background(), 1, model.RoleCustomer, PlaceOrderReq{
		BeneficiaryNumber: "0543949478",
		NetworkID:         5,
		Size:              "1GB",
	})
	require.Error(t, err)
	require.Equal(t, ErrInsufficientFunds, Code(err))
	require.Equal(t, "Insufficient wallet balance", Message(err))

	require.True(t, f.wallet.balance.Equal(before))
	require.Empty(t, f.wallet.debits)
	require.Empty(t, f.orders.orders)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

// Two requests can both read a sufficient balance; the conditional debit is
// the commit-time re-check that makes only one of them win.
func TestPlaceOrder_DebitGuardRace(t *testing.T) {
	f := newFixture(t, "100.00")
	f.wallet.debitErr = walletrepo.ErrInsufficientBalance
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.PlaceOrder(context.Background(), 1, model.RoleCustomer, PlaceOrderReq{
		BeneficiaryNumber: "0543949478",
		NetworkID:         5,
		Size:              "1GB",
	})
	require.Error(t, err)
	require.Equal(t, ErrInsufficientFunds, Code(err))
	require.Empty(t, f.orders.orders)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceOrder_InvalidBeneficiary(t *testing.T) {
	f := newFixture(t, "100.00")

	for _, bad := range []string{"", "12345", "054394947", "05439494789", "abcdefghij"} {
		_, err := f.svc.PlaceOrder(context.Background(), 1, model.RoleCustomer, PlaceOrderReq{
			BeneficiaryNumber: bad,
			NetworkID:         5,
			Size:              "1GB",
		})
		require.Error(t, err, "beneficiary %q", bad)
		require.Equal(t, ErrInvalidBeneficiary, Code(err))
	}
	require.Zero(t, f.wallet.lockCalls)
}

func TestPlaceOrder_VariantUnavailable(t *testing.T) {
	f := newFixture(t, "100.00")

	_, err := f.svc.PlaceOrder(context.Background(), 1, model.RoleCustomer, PlaceOrderReq{
		BeneficiaryNumber: "0543949478",
		NetworkID:         5,
		Size:              "99GB",
	})
	require.Error(t, err)
	require.Equal(t, ErrVariantUnavailable, Code(err))
	require.Zero(t, f.wallet.lockCalls)
}

func TestPlaceBatch_SumsAndCommitsOneOrder(t *testing.T) {
	f := newFixture(t, "100.00")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	placed, err := f.svc.PlaceBatch(context.Background(), 1, model.RoleCustomer, 5, []BatchEntry{
		{BeneficiaryNumber: "0543949478", Size: "1GB"},
		{BeneficiaryNumber: "0209876543", Size: "1GB"},
		{BeneficiaryNumber: "0271112223", Size: "1GB", Quantity: 2},
	})
	require.NoError(t, err)

	// 5.00 + 5.00 + 10.00
	require.True(t, placed.Order.Total.Equal(decimal.RequireFromString("20.00")))
	require.Len(t, placed.Order.Items, 3)
	require.Len(t, f.orders.orders, 1)
	require.True(t, f.wallet.balance.Equal(decimal.RequireFromString("80.00")))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceBatch_AllOrNothing(t *testing.T) {
	f := newFixture(t, "100.00")

	_, err := f.svc.PlaceBatch(context.Background(), 1, model.RoleCustomer, 5, []BatchEntry{
		{BeneficiaryNumber: "0543949478", Size: "1GB"},
		{BeneficiaryNumber: "badnumber", Size: "1GB"},
		{BeneficiaryNumber: "0209876543", Size: "99GB"},
	})
	require.Error(t, err)

	var be *BatchError
	require.ErrorAs(t, err, &be)
	require.Len(t, be.Failures, 2)
	require.Equal(t, 1, be.Failures[0].Index)
	require.Equal(t, 2, be.Failures[1].Index)

	require.Zero(t, f.wallet.lockCalls)
	require.Empty(t, f.orders.orders)
}

func TestPlaceBatch_Empty(t *testing.T) {
	f := newFixture(t, "100.00")
	_, err := f.svc.PlaceBatch(context.Background(), 1, model.RoleCustomer, 5, nil)
	require.Equal(t, ErrEmptyBatch, Code(err))
}

func TestCommitResolved_GroupsByNetwork(t *testing.T) {
	f := newFixture(t, "100.00")
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	price := decimal.RequireFromString("2.50")
	mk := func(network model.Network, ben string) ResolvedLine {
		return ResolvedLine{
			Product:     model.Product{ID: 1, Name: string(network), Network: network, ProductType: model.CustomerProduct},
			Variant:     model.ProductVariant{ID: 2, Size: "1GB", Price: price},
			Beneficiary: ben,
			Quantity:    1,
		}
	}

	orders, err := f.svc.CommitResolved(context.Background(), 1, []ResolvedLine{
		mk(model.NetworkMTN, "0543949478"),
		mk(model.NetworkTelecel, "0209876543"),
		mk(model.NetworkMTN, "0271112223"),
	})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, model.NetworkMTN, orders[0].Network)
	require.Len(t, orders[0].Items, 2)
	require.Equal(t, model.NetworkTelecel, orders[1].Network)
	require.Len(t, orders[1].Items, 1)

	// one debit and one ledger row per order, running balance recorded
	require.Len(t, f.wallet.debits, 2)
	require.Len(t, f.wallet.ledgers, 2)
	require.True(t, f.wallet.ledgers[0].Equal(decimal.RequireFromString("95.00")))
	require.True(t, f.wallet.ledgers[1].Equal(decimal.RequireFromString("92.50")))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestNormalizeBeneficiary(t *testing.T) {
	cases := map[string]string{
		"0543949478":    "0543949478",
		"054 394 9478":  "0543949478",
		"054-394-9478":  "0543949478",
		"+233543949478": "0543949478",
		"233543949478":  "0543949478",
	}
	for raw, want := range cases {
		got, err := NormalizeBeneficiary(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got)
	}

	for _, bad := range []string{"", "543949478", "00543949478", "23354394947"} {
		_, err := NormalizeBeneficiary(bad)
		require.Error(t, err, bad)
	}
}

func TestCode_PlainError(t *testing.T) {
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
}
