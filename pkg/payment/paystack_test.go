package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	assert.True(t, ValidSignature("sk_test_secret", body, sign("sk_test_secret", body)))
	assert.False(t, ValidSignature("sk_test_secret", body, sign("wrong_secret", body)))
	assert.False(t, ValidSignature("sk_test_secret", body, ""))
	assert.False(t, ValidSignature("sk_test_secret", body, "not-hex"))

	tampered := append([]byte{}, body...)
	tampered[0] = '['
	assert.False(t, ValidSignature("sk_test_secret", tampered, sign("sk_test_secret", body)))
}

func TestInitiateCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var req paystackInitReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(250000), req.Amount)
		assert.Equal(t, "NGN", req.Currency)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]string{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         req.Reference,
			},
		})
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_secret")
	resp, err := p.InitiateCharge(context.Background(), ChargeRequest{
		Reference:  "ref-1",
		Email:      "buyer@example.com",
		AmountKobo: 250000,
		Currency:   "NGN",
	})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", resp.Reference)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, "https://checkout.paystack.com/abc123", resp.CheckoutURL)
}

func TestInitiateChargeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_secret")
	_, err := p.InitiateCharge(context.Background(), ChargeRequest{Reference: "ref-1"})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestVerifyCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":   "success",
				"amount":   250000,
				"currency": "NGN",
			},
		})
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_secret")
	res, err := p.VerifyCharge(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(250000), res.AmountKobo)
	assert.Equal(t, "NGN", res.Currency)
}

func TestVerifyChargeUnpaid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data": map[string]interface{}{
				"status":   "abandoned",
				"amount":   250000,
				"currency": "NGN",
			},
		})
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_secret")
	res, err := p.VerifyCharge(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.False(t, res.Success)
}
