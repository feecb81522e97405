package service

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// WebhookEvent is the subset of a payment-provider webhook the application
// acts on
type WebhookEvent struct {
	Type          string
	SessionID     string
	CustomerEmail string
}

// EventCheckoutCompleted marks a finished checkout whose credits may be granted
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentGateway wraps the payment provider's checkout API
type PaymentGateway interface {
	// CreateCheckoutSession opens a checkout for one credit package
	CreateCheckoutSession(ctx context.Context, user *entity.User) (*entity.CheckoutSession, error)

	// RetrieveSession fetches the current state of a checkout session
	RetrieveSession(ctx context.Context, sessionID string) (*entity.CheckoutSession, error)

	// VerifyWebhook validates the provider signature and decodes the event
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
