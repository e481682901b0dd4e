// model/wallet.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TopupStatus string

const (
	TopupPending TopupStatus = "PENDING"
	TopupPaid    TopupStatus = "PAID"
	TopupExpired TopupStatus = "EXPIRED"
	TopupFailed  TopupStatus = "FAILED"
)

type WalletTopup struct {
	ID                int64           `json:"id"`
	UserID            int64           `json:"user_id"`
	Amount            decimal.Decimal `json:"amount"`
	Status            TopupStatus     `json:"status"`
	PaystackReference string          `json:"paystack_reference"`
	PaymentURL        string          `json:"payment_url,omitempty"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

type LedgerType string

const (
	LedgerTopup   LedgerType = "TOPUP_CONFIRMED"
	LedgerCharge  LedgerType = "ORDER_CHARGE"
	LedgerUpgrade LedgerType = "UPGRADE_CHARGE"
	LedgerAdjust  LedgerType = "ADJUSTMENT"
)

type WalletLedger struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	RefTable     string          `json:"ref_table"`
	RefID        *int64          `json:"ref_id,omitempty"`
	EntryType    LedgerType      `json:"entry_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
