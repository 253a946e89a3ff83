package service

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"restaurant-billing/pkg/apperror"
	"restaurant-billing/pkg/money"
)

// PaymentOutcome is the terminal signal consumed from the card provider.
type PaymentOutcome string

const (
	PaymentOutcomeSucceeded PaymentOutcome = "succeeded"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
	PaymentOutcomePending   PaymentOutcome = "pending"
)

// PaymentProvider is the external card-payment collaborator. The engine only
// ever consumes its success/failure signal; everything else about the
// provider is opaque.
type PaymentProvider interface {
	// CreateIntent registers a payment of the given minor-unit amount and
	// returns the client secret the frontend completes the payment with.
	CreateIntent(ctx context.Context, amount money.Amount, currency string) (string, error)
	// Outcome reports the current state of a previously created intent.
	Outcome(ctx context.Context, intentRef string) (PaymentOutcome, error)
}

// stripeProvider implements PaymentProvider on Stripe payment intents.
type stripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a Stripe-backed payment provider.
func NewStripeProvider(secretKey string) PaymentProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeProvider{api: api}
}

func (p *stripeProvider) CreateIntent(ctx context.Context, amount money.Amount, currency string) (string, error) {
	intent, err := p.api.PaymentIntents.New(&stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(int64(amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	})
	if err != nil {
		return "", apperror.NewPaymentProviderError(err.Error())
	}
	return intent.ClientSecret, nil
}

func (p *stripeProvider) Outcome(ctx context.Context, intentRef string) (PaymentOutcome, error) {
	intent, err := p.api.PaymentIntents.Get(intentRef, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return "", apperror.NewPaymentProviderError(err.Error())
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return PaymentOutcomeSucceeded, nil
	case stripe.PaymentIntentStatusCanceled:
		return PaymentOutcomeFailed, nil
	default:
		return PaymentOutcomePending, nil
	}
}

// PaymentService exposes the provider operations the API layer needs:
// creating an intent for a bill amount and confirming its outcome.
type PaymentService struct {
	provider       PaymentProvider
	currency       string
	publishableKey string
}

// NewPaymentService creates a new payment service
func NewPaymentService(provider PaymentProvider, currency, publishableKey string) *PaymentService {
	return &PaymentService{
		provider:       provider,
		currency:       currency,
		publishableKey: publishableKey,
	}
}

// PublishableKey returns the provider's public key for frontend use.
func (s *PaymentService) PublishableKey() string {
	return s.publishableKey
}

// CreateIntent validates the rupee amount, converts it to minor units and
// registers a payment intent with the provider.
func (s *PaymentService) CreateIntent(ctx context.Context, amount float64) (string, error) {
	if s.provider == nil {
		return "", apperror.NewBadRequestError("Card payments are not configured")
	}
	if amount <= 0 {
		return "", apperror.NewBadRequestError("Invalid amount")
	}
	return s.provider.CreateIntent(ctx, money.FromRupees(amount), s.currency)
}

// Confirm reports whether the intent reached a succeeded outcome. Any other
// outcome is surfaced as a bad request so the caller can retry the payment;
// the order remains unpaid.
func (s *PaymentService) Confirm(ctx context.Context, intentRef string) error {
	if s.provider == nil {
		return apperror.NewBadRequestError("Card payments are not configured")
	}
	if intentRef == "" {
		return apperror.NewBadRequestError("Payment intent ID is required")
	}

	outcome, err := s.provider.Outcome(ctx, intentRef)
	if err != nil {
		return err
	}
	if outcome != PaymentOutcomeSucceeded {
		return apperror.NewBadRequestError("Payment not successful, status: " + string(outcome))
	}
	return nil
}
