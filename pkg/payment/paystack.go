package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PaystackProvider charges cards through the Paystack transaction API.
type PaystackProvider struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewPaystackProvider(baseURL, secretKey string) *PaystackProvider {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackProvider{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type paystackInitReq struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // kobo
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *PaystackProvider) InitiateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	payload := paystackInitReq{
		Email:       req.Email,
		Amount:      req.AmountKobo,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	}
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: initialize: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: initialize returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	var out paystackInitResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode initialize: %v", ErrUpstreamUnavailable, err)
	}
	if !out.Status {
		return nil, fmt.Errorf("paystack initialize rejected: %s", out.Message)
	}
	return &ChargeResponse{
		Reference:   out.Data.Reference,
		Status:      StatusPending,
		CheckoutURL: out.Data.AuthorizationURL,
		AccessCode:  out.Data.AccessCode,
	}, nil
}

type paystackVerifyResp struct {
	Status bool `json:"status"`
	Data   struct {
		Status   string `json:"status"` // "success" when paid
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// VerifyCharge asks Paystack directly whether a reference was paid. Webhook
// payloads are only trusted after this check succeeds.
func (p *PaystackProvider) VerifyCharge(ctx context.Context, reference string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: verify: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: verify returned %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	var out paystackVerifyResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode verify: %v", ErrUpstreamUnavailable, err)
	}
	return &VerifyResult{
		Success:    out.Status && out.Data.Status == "success",
		AmountKobo: out.Data.Amount,
		Currency:   out.Data.Currency,
	}, nil
}

// ValidSignature checks the x-paystack-signature header: HMAC-SHA512 of the
// raw body keyed with the secret key.
func ValidSignature(secretKey string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
