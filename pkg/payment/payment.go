package payment

import (
	"context"
	"errors"
)

// ErrUpstreamUnavailable wraps gateway timeouts and transport failures. The
// caller retries nothing automatically; a pending settlement stays pending.
var ErrUpstreamUnavailable = errors.New("payment gateway unavailable")

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

type ChargeRequest struct {
	Reference   string // our order reference, echoed back by the webhook
	Email       string
	AmountKobo  int64
	Currency    string
	Description string
	CallbackURL string
}

type ChargeResponse struct {
	Reference   string
	Status      string
	CheckoutURL string
	AccessCode  string
}

// Provider is one settlement rail. InitiateCharge starts an asynchronous
// charge; VerifyCharge re-checks a reference directly with the gateway and
// is the source of truth over any webhook payload.
type Provider interface {
	InitiateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
	VerifyCharge(ctx context.Context, reference string) (*VerifyResult, error)
}

type VerifyResult struct {
	Success    bool
	AmountKobo int64
	Currency   string
}
