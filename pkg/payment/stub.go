package payment

import (
	"context"
	"sync"
)

// StubProvider is an in-memory provider for development and tests. Charges
// stay pending until Confirm is called with the reference.
type StubProvider struct {
	mu        sync.Mutex
	confirmed map[string]int64 // reference -> amount kobo
	initiated map[string]ChargeRequest
}

func NewStubProvider() *StubProvider {
	return &StubProvider{
		confirmed: make(map[string]int64),
		initiated: make(map[string]ChargeRequest),
	}
}

func (s *StubProvider) InitiateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initiated[req.Reference] = req
	return &ChargeResponse{
		Reference:   req.Reference,
		Status:      StatusPending,
		CheckoutURL: "https://checkout.stub/" + req.Reference,
	}, nil
}

func (s *StubProvider) VerifyCharge(ctx context.Context, reference string) (*VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	amount, ok := s.confirmed[reference]
	if !ok {
		return &VerifyResult{Success: false}, nil
	}
	return &VerifyResult{Success: true, AmountKobo: amount, Currency: "NGN"}, nil
}

// Confirm marks a reference as paid, as the real gateway would after
// checkout.
func (s *StubProvider) Confirm(reference string, amountKobo int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmed[reference] = amountKobo
}
