package paymentsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
	paystackrepo "github.com/korteyrichard/dataking/repository/paystack"
	walletrepo "github.com/korteyrichard/dataking/repository/wallet"
)

// ErrBadSignature rejects webhook deliveries whose HMAC does not match; the
// controller answers 401 so Paystack retries are not acknowledged.
var ErrBadSignature = errors.New("invalid webhook signature")

type Service interface {
	HandlePaystack(ctx context.Context, sigHeader string, raw []byte) error
}

type service struct {
	db *sql.DB
	ps paystackrepo.Repo
	wr walletrepo.Repo
}

func New(db *sql.DB, ps paystackrepo.Repo, wr walletrepo.Repo) Service {
	return &service{db: db, ps: ps, wr: wr}
}

type chargeEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"` // minor units (pesewas)
	} `json:"data"`
}

func (s *service) HandlePaystack(ctx context.Context, sigHeader string, raw []byte) error {
	if err := s.ps.VerifyWebhookSignature(sigHeader, raw); err != nil {
		return ErrBadSignature
	}

	var ev chargeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	if ev.Event != "charge.success" {
		return nil
	}
	if ev.Data.Reference == "" {
		return errors.New("missing charge reference")
	}
	return s.onChargeSuccess(ctx, ev)
}

func (s *service) onChargeSuccess(ctx context.Context, ev chargeEvent) error {
	topup, err := s.wr.FindTopupByReference(ctx, ev.Data.Reference)
	if err != nil {
		return fmt.Errorf("reference not mapped to a topup: %w", err)
	}
	if topup.Status == model.TopupPaid {
		// redelivery; already credited
		return nil
	}

	paid := decimal.NewFromInt(ev.Data.Amount).Div(decimal.NewFromInt(100))
	if !paid.Equal(topup.Amount) {
		return fmt.Errorf("charge amount %s does not match topup %s", paid, topup.Amount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.wr.MarkTopupPaidAndCredit(ctx, tx, topup.ID, topup.UserID, topup.Amount); err != nil {
		return err
	}
	return tx.Commit()
}
