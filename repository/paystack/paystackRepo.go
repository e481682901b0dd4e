package paystackrepo

import "github.com/shopspring/decimal"

var decimalHundred = decimal.NewFromInt(100)

type InitializeReq struct {
	Reference   string
	Email       string
	Amount      decimal.Decimal
	CallbackURL string
}

type InitializeResp struct {
	Reference        string
	AccessCode       string
	AuthorizationURL string
}

type Repo interface {
	Initialize(req InitializeReq) (*InitializeResp, error)
	VerifyWebhookSignature(sigHeader string, rawBody []byte) error
}
