package paystackrepo

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/korteyrichard/dataking/util/httpx"
)

const baseURL = "https://api.paystack.co"

type httpRepo struct {
	secretKey   string
	callbackURL string
	client      *http.Client
}

func NewHTTP(secretKey, callbackURL string) Repo {
	return &httpRepo{secretKey: secretKey, callbackURL: callbackURL, client: httpx.Client()}
}

func (r *httpRepo) Initialize(req InitializeReq) (*InitializeResp, error) {
	callback := req.CallbackURL
	if callback == "" {
		callback = r.callbackURL
	}
	// Paystack wants amounts in the currency subunit (pesewas).
	body := map[string]any{
		"reference":    req.Reference,
		"email":        req.Email,
		"amount":       req.Amount.Mul(decimalHundred).IntPart(),
		"callback_url": callback,
	}
	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequest(http.MethodPost, baseURL+"/transaction/initialize", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paystack initialize failed: %s", resp.Status)
	}

	var out struct {
		Status bool `json:"status"`
		Data   struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		return nil, errors.New("paystack: empty authorization url")
	}

	return &InitializeResp{
		Reference:        out.Data.Reference,
		AccessCode:       out.Data.AccessCode,
		AuthorizationURL: out.Data.AuthorizationURL,
	}, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header, an
// HMAC-SHA512 of the raw body keyed with the secret key.
func (r *httpRepo) VerifyWebhookSignature(sigHeader string, rawBody []byte) error {
	if sigHeader == "" {
		return errors.New("missing signature header")
	}
	mac := hmac.New(sha512.New, []byte(r.secretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(sigHeader)) {
		return errors.New("signature mismatch")
	}
	return nil
}
