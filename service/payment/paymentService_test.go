package paymentsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/korteyrichard/dataking/model"
	paystackrepo "github.com/korteyrichard/dataking/repository/paystack"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
)

type paystackMock struct {
	verifyErr error
}

func (m *paystackMock) Initialize(req paystackrepo.InitializeReq) (*paystackrepo.InitializeResp, error) {
	return nil, errors.New("not used")
}
func (m *paystackMock) VerifyWebhookSignature(sigHeader string, rawBody []byte) error {
	return m.verifyErr
}

type walletMock struct {
	walletrepo.Repo
	findFn   func(ctx context.Context, reference string) (*model.WalletTopup, error)
	credited []int64
}

func (m *walletMock) FindTopupByReference(ctx context.Context, reference string) (*model.WalletTopup, error) {
	return m.findFn(ctx, reference)
}
func (m *walletMock) MarkTopupPaidAndCredit(ctx context.Context, tx *sql.Tx, topupID, userID int64, amount decimal.Decimal) error {
	m.credited = append(m.credited, topupID)
	return nil
}

func newFixture(t *testing.T, w *walletMock, ps *paystackMock) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, ps, w), mock
}

const chargeBody = `{"event":"charge.success","data":{"reference":"topup-1-99","status":"success","amount":5000}}`

func TestHandlePaystack_CreditsPendingTopup(t *testing.T) {
	w := &walletMock{
		findFn: func(ctx context.Context, reference string) (*model.WalletTopup, error) {
			require.Equal(t, "topup-1-99", reference)
			return &model.WalletTopup{
				ID: 11, UserID: 1,
				Amount: decimal.RequireFromString("50.00"),
				Status: model.TopupPending,
			}, nil
		},
	}
	svc, mock := newFixture(t, w, &paystackMock{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := svc.HandlePaystack(context.Background(), "sig", []byte(chargeBody))
	require.NoError(t, err)
	require.Equal(t, []int64{11}, w.credited)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaystack_RedeliveryIsNoop(t *testing.T) {
	w := &walletMock{
		findFn: func(ctx context.Context, reference string) (*model.WalletTopup, error) {
			return &model.WalletTopup{
				ID: 11, UserID: 1,
				Amount: decimal.RequireFromString("50.00"),
				Status: model.TopupPaid,
			}, nil
		},
	}
	svc, mock := newFixture(t, w, &paystackMock{})

	err := svc.HandlePaystack(context.Background(), "sig", []byte(chargeBody))
	require.NoError(t, err)
	require.Empty(t, w.credited)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePaystack_BadSignature(t *testing.T) {
	svc, _ := newFixture(t, &walletMock{}, &paystackMock{verifyErr: errors.New("nope")})

	err := svc.HandlePaystack(context.Background(), "sig", []byte(chargeBody))
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestHandlePaystack_IgnoresOtherEvents(t *testing.T) {
	svc, _ := newFixture(t, &walletMock{}, &paystackMock{})

	err := svc.HandlePaystack(context.Background(), "sig",
		[]byte(`{"event":"transfer.success","data":{"reference":"x"}}`))
	require.NoError(t, err)
}

func TestHandlePaystack_AmountMismatch(t *testing.T) {
	w := &walletMock{
		findFn: func(ctx context.Context, reference string) (*model.WalletTopup, error) {
			return &model.WalletTopup{
				ID: 11, UserID: 1,
				Amount: decimal.RequireFromString("999.00"),
				Status: model.TopupPending,
			}, nil
		},
	}
	svc, mock := newFixture(t, w, &paystackMock{})

	err := svc.HandlePaystack(context.Background(), "sig", []byte(chargeBody))
	require.Error(t, err)
	require.Empty(t, w.credited)
	require.NoError(t, mock.ExpectationsWereMet())
}
