package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// PaymentVerifier checks a captured payment against the payment provider.
// The provider is an external collaborator: a hard "not succeeded" answer
// rejects the payment, but a transport failure degrades gracefully and the
// caller records the payment anyway.
type PaymentVerifier struct {
	enabled bool
	timeout time.Duration
}

func NewPaymentVerifier(secretKey string, timeout time.Duration) *PaymentVerifier {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &PaymentVerifier{
		enabled: secretKey != "",
		timeout: timeout,
	}
}

// Verify returns (ok, err). ok=false with nil err means the provider
// definitively rejected the reference; a non-nil err is a dependency failure
// the caller should log and tolerate.
func (v *PaymentVerifier) Verify(ctx context.Context, paymentRef string) (bool, error) {
	if !v.enabled || !strings.HasPrefix(paymentRef, "pi_") {
		// Unverifiable references (e.g. PayPal capture ids) are accepted as-is.
		return true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(paymentRef, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("payment verification unavailable: %w", err)
	}

	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}
