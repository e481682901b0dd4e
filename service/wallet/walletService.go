package walletsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
	paystackrepo "github.com/korteyrichard/dataking/repository/paystack"
	userrepo "github.com/korteyrichard/dataking/repository/user"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
)

type LedgerRow = walletrepo.LedgerRow

type Service interface {
	CreateTopup(ctx context.Context, userID int64, amount decimal.Decimal) (*TopupCreated, error)
	Ledger(ctx context.Context, userID int64) ([]LedgerRow, error)
}

type TopupCreated struct {
	Reference  string          `json:"reference"`
	PaymentURL string          `json:"payment_url"`
	Amount     decimal.Decimal `json:"amount"`
}

type service struct {
	db *sql.DB
	wr walletrepo.Repo
	ur userrepo.Repo
	ps paystackrepo.Repo
}

func New(db *sql.DB, wr walletrepo.Repo, ur userrepo.Repo, ps paystackrepo.Repo) Service {
	return &service{db: db, wr: wr, ur: ur, ps: ps}
}

// CreateTopup initializes a Paystack transaction and records the PENDING
// topup. The wallet is only credited later, by the webhook confirming the
// charge; an initialized-but-unpaid topup never moves the balance.
func (s *service) CreateTopup(ctx context.Context, userID int64, amount decimal.Decimal) (*TopupCreated, error) {
	if amount.Sign() <= 0 {
		return nil, errors.New("invalid amount")
	}

	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	init, err := s.ps.Initialize(paystackrepo.InitializeReq{
		Reference: fmt.Sprintf("topup-%d-%d", userID, time.Now().UnixNano()),
		Email:     u.Email,
		Amount:    amount,
	})
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	topup := &model.WalletTopup{
		UserID:            userID,
		Amount:            amount,
		Status:            model.TopupPending,
		PaystackReference: init.Reference,
		PaymentURL:        init.AuthorizationURL,
	}
	if err = s.wr.InsertTopup(ctx, tx, topup); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &TopupCreated{
		Reference:  init.Reference,
		PaymentURL: init.AuthorizationURL,
		Amount:     amount,
	}, nil
}

func (s *service) Ledger(ctx context.Context, userID int64) ([]LedgerRow, error) {
	return s.wr.ListLedger(ctx, userID)
}
