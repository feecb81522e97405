package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"

	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	// packagePriceCents is the credit package price in BRL cents
	packagePriceCents = 2997
	packageCurrency   = "brl"
)

// Config carries the Stripe keys and redirect targets
type Config struct {
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

// StripeGateway implements the payment gateway port on the Stripe checkout API
type StripeGateway struct {
	api    *client.API
	config Config
	logger coreport.Logger
}

// NewStripeGateway creates a gateway bound to the configured Stripe account
func NewStripeGateway(config Config, logger coreport.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(config.APIKey, nil)

	return &StripeGateway{
		api:    api,
		config: config,
		logger: logger,
	}
}

// CreateCheckoutSession opens a checkout for one credit package
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, user *entity.User) (*entity.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(packageCurrency),
					UnitAmount: stripe.Int64(packagePriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Resume analysis package (%d analyses)", entity.CreditPackageSize)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(user.Email),
		SuccessURL:    stripe.String(g.config.SuccessURL),
		CancelURL:     stripe.String(g.config.CancelURL),
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Error("Failed to create checkout session", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", errs.ErrPaymentProvider, err)
	}

	return &entity.CheckoutSession{
		ID:          session.ID,
		URL:         session.URL,
		CustomerRef: user.Email,
		Paid:        session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}

// RetrieveSession fetches the current state of a checkout session
func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*entity.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	}

	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrPaymentProvider, err)
	}

	return &entity.CheckoutSession{
		ID:          session.ID,
		URL:         session.URL,
		CustomerRef: session.CustomerEmail,
		Paid:        session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}

// VerifyWebhook validates the provider signature and decodes the event
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*svcport.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	decoded := &svcport.WebhookEvent{Type: string(event.Type)}
	if string(event.Type) != svcport.EventCheckoutCompleted {
		return decoded, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decoding checkout session from event: %w", err)
	}

	decoded.SessionID = session.ID
	decoded.CustomerEmail = session.CustomerEmail
	if decoded.CustomerEmail == "" && session.CustomerDetails != nil {
		decoded.CustomerEmail = session.CustomerDetails.Email
	}
	return decoded, nil
}
