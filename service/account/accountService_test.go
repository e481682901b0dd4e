package accountsvc

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/korteyrichard/dataking/config"
	"github.com/korteyrichard/dataking/model"
	userrepo "github.com/korteyrichard/dataking/repository/user"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
)

type userMock struct {
	userrepo.Repo
	user      model.User
	roleSetTo model.Role
}

func (m *userMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := m.user
	u.ID = id
	return &u, nil
}
func (m *userMock) UpdateRole(ctx context.Context, tx *sql.Tx, id int64, role model.Role) error {
	m.roleSetTo = role
	return nil
}

type walletMock struct {
	walletrepo.Repo
	balance decimal.Decimal
	debits  []decimal.Decimal
	ledgers []model.LedgerType
}

func (m *walletMock) LockBalance(ctx context.Context, tx *sql.Tx, userID int64) (decimal.Decimal, error) {
	return m.balance, nil
}
func (m *walletMock) Debit(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error {
	m.debits = append(m.debits, amount)
	return nil
}
func (m *walletMock) InsertLedger(ctx context.Context, tx *sql.Tx, userID int64, refTable string, refID *int64, entryType model.LedgerType, amount, balanceAfter decimal.Decimal) error {
	m.ledgers = append(m.ledgers, entryType)
	return nil
}

func fees() config.Upgrade {
	return config.Upgrade{
		AgentFee:  decimal.RequireFromString("50.00"),
		DealerFee: decimal.RequireFromString("150.00"),
		VIPFee:    decimal.RequireFromString("300.00"),
	}
}

func newFixture(t *testing.T, role model.Role, balance string) (Service, *userMock, *walletMock, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	um := &userMock{user: model.User{Role: role, WalletBalance: decimal.RequireFromString(balance)}}
	wm := &walletMock{balance: decimal.RequireFromString(balance)}
	return New(db, um, wm, fees()), um, wm, mock
}

func TestUpgrade_CustomerToAgent(t *testing.T) {
	svc, um, wm, mock := newFixture(t, model.RoleCustomer, "80.00")
	mock.ExpectBegin()
	mock.ExpectCommit()

	u, err := svc.Upgrade(context.Background(), 1, model.RoleAgent)
	require.NoError(t, err)
	require.Equal(t, model.RoleAgent, u.Role)
	require.Equal(t, model.RoleAgent, um.roleSetTo)
	require.True(t, u.WalletBalance.Equal(decimal.RequireFromString("30.00")))
	require.Len(t, wm.debits, 1)
	require.True(t, wm.debits[0].Equal(decimal.RequireFromString("50.00")))
	require.Equal(t, []model.LedgerType{model.LedgerUpgrade}, wm.ledgers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpgrade_InsufficientFunds(t *testing.T) {
	svc, um, wm, mock := newFixture(t, model.RoleCustomer, "10.00")
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Upgrade(context.Background(), 1, model.RoleAgent)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Empty(t, wm.debits)
	require.Empty(t, um.roleSetTo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpgrade_NoDowngrade(t *testing.T) {
	svc, _, wm, _ := newFixture(t, model.RoleVIP, "1000.00")

	_, err := svc.Upgrade(context.Background(), 1, model.RoleAgent)
	require.ErrorIs(t, err, ErrNotAnUpgrade)
	require.Empty(t, wm.debits)
}

func TestUpgrade_BadTargets(t *testing.T) {
	svc, _, _, _ := newFixture(t, model.RoleCustomer, "1000.00")

	_, err := svc.Upgrade(context.Background(), 1, model.RoleAdmin)
	require.ErrorIs(t, err, ErrBadTarget)

	_, err = svc.Upgrade(context.Background(), 1, model.RoleCustomer)
	require.ErrorIs(t, err, ErrBadTarget)
}
