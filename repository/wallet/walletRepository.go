package walletrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/korteyrichard/dataking/model"
)

// ErrInsufficientBalance is reported when the conditional debit touches no
// row, i.e. the commit-time sufficiency predicate failed.
var ErrInsufficientBalance = errors.New("insufficient wallet balance")

type LedgerRow struct {
	ID           int64            `json:"id"`
	EntryType    model.LedgerType `json:"entry_type"`
	Amount       decimal.Decimal  `json:"amount"`
	BalanceAfter decimal.Decimal  `json:"balance_after"`
	CreatedAt    time.Time        `json:"created_at"`
}

type Repo interface {
	LockBalance(ctx context.Context, tx *sql.Tx, userID int64) (decimal.Decimal, error)
	Debit(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error
	Credit(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	InsertLedger(ctx context.Context, tx *sql.Tx, userID int64, refTable string, refID *int64, entryType model.LedgerType, amount, balanceAfter decimal.Decimal) error
	ListLedger(ctx context.Context, userID int64) ([]LedgerRow, error)

	InsertTopup(ctx context.Context, tx *sql.Tx, t *model.WalletTopup) error
	FindTopupByReference(ctx context.Context, reference string) (*model.WalletTopup, error)
	MarkTopupPaidAndCredit(ctx context.Context, tx *sql.Tx, topupID, userID int64, amount decimal.Decimal) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) LockBalance(ctx context.Context, tx *sql.Tx, userID int64) (decimal.Decimal, error) {
	const q = `SELECT wallet_balance FROM users WHERE id=$1 FOR UPDATE`
	var bal decimal.Decimal
	if err := tx.QueryRowContext(ctx, q, userID).Scan(&bal); err != nil {
		return decimal.Zero, err
	}
	return bal, nil
}

// Debit only applies when the balance covers the amount; the predicate is
// evaluated by the database at write time, not at read time.
func (r *repo) Debit(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) error {
	const q = `
			UPDATE users
			SET wallet_balance = wallet_balance - $2
			WHERE id = $1
			AND wallet_balance >= $2`
	res, err := tx.ExecContext(ctx, q, userID, amount)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrInsufficientBalance
	}
	return nil
}

func (r *repo) Credit(ctx context.Context, tx *sql.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	const q = `
			UPDATE users
			SET wallet_balance = wallet_balance + $2
			WHERE id = $1
			RETURNING wallet_balance`
	var newBal decimal.Decimal
	if err := tx.QueryRowContext(ctx, q, userID, amount).Scan(&newBal); err != nil {
		return decimal.Zero, err
	}
	return newBal, nil
}

func (r *repo) InsertLedger(ctx context.Context, tx *sql.Tx, userID int64, refTable string, refID *int64, entryType model.LedgerType, amount, balanceAfter decimal.Decimal) error {
	const q = `
INSERT INTO wallet_ledger (user_id, ref_table, ref_id, entry_type, amount, balance_after)
VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := tx.ExecContext(ctx, q, userID, refTable, refID, entryType, amount, balanceAfter)
	return err
}

func (r *repo) ListLedger(ctx context.Context, userID int64) ([]LedgerRow, error) {
	const q = `
SELECT id, entry_type, amount, balance_after, created_at
FROM wallet_ledger
WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerRow
	for rows.Next() {
		var l LedgerRow
		if err := rows.Scan(&l.ID, &l.EntryType, &l.Amount, &l.BalanceAfter, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repo) InsertTopup(ctx context.Context, tx *sql.Tx, t *model.WalletTopup) error {
	const q = `
INSERT INTO wallet_topups (user_id, amount, status, paystack_reference, payment_url)
VALUES ($1,$2,'PENDING',$3,$4)
RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q, t.UserID, t.Amount, t.PaystackReference, t.PaymentURL).
		Scan(&t.ID, &t.CreatedAt)
}

func (r *repo) FindTopupByReference(ctx context.Context, reference string) (*model.WalletTopup, error) {
	const q = `
SELECT id, user_id, amount, status, paystack_reference, payment_url, paid_at, created_at
FROM wallet_topups
WHERE paystack_reference=$1`
	t := &model.WalletTopup{}
	err := r.db.QueryRowContext(ctx, q, reference).Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Status, &t.PaystackReference, &t.PaymentURL, &t.PaidAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// MarkTopupPaidAndCredit flips a PENDING topup to PAID and credits the
// wallet. The status guard makes a redelivered webhook a no-op: the second
// delivery finds no PENDING row and nothing is credited twice.
func (r *repo) MarkTopupPaidAndCredit(ctx context.Context, tx *sql.Tx, topupID, userID int64, amount decimal.Decimal) error {
	const q1 = `
	UPDATE wallet_topups
	SET status='PAID', paid_at=NOW()
	WHERE id=$1 AND status='PENDING'`
	res, err := tx.ExecContext(ctx, q1, topupID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("topup not pending or not found")
	}

	newBal, err := r.Credit(ctx, tx, userID, amount)
	if err != nil {
		return err
	}
	return r.InsertLedger(ctx, tx, userID, "wallet_topups", &topupID, model.LedgerTopup, amount, newBal)
}
