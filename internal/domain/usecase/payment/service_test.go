package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/credit"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/logger"
	coremocks "github.com/cvmatch/cvmatch-backend/mocks/port/core"
	persistencemocks "github.com/cvmatch/cvmatch-backend/mocks/port/persistence"
	servicemocks "github.com/cvmatch/cvmatch-backend/mocks/port/service"
)

type paymentMocks struct {
	userRepo   *persistencemocks.MockUserRepository
	gateway    *servicemocks.MockPaymentGateway
	uow        *persistencemocks.MockUnitOfWork
	txCredits  *persistencemocks.MockCreditRepository
	txSessions *persistencemocks.MockPaymentSessionRepository
}

func newPaymentServiceWithMocks() (*Service, *paymentMocks) {
	m := &paymentMocks{
		userRepo:   new(persistencemocks.MockUserRepository),
		gateway:    new(servicemocks.MockPaymentGateway),
		uow:        new(persistencemocks.MockUnitOfWork),
		txCredits:  new(persistencemocks.MockCreditRepository),
		txSessions: new(persistencemocks.MockPaymentSessionRepository),
	}
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)).Maybe()
	credits := credit.NewService(m.uow, m.txCredits, tp, logger.NewNoopLogger())
	svc := NewService(m.userRepo, m.gateway, credits, logger.NewNoopLogger())
	return svc, m
}

// expectGrant wires the unit-of-work calls a successful grant performs
func (m *paymentMocks) expectGrant(ctx context.Context, userID uint64, sessionID string, remaining int) {
	m.uow.On("Begin", ctx).Return(ctx, nil)
	m.uow.On("GetPaymentSessionRepository", ctx).Return(m.txSessions)
	m.uow.On("GetCreditRepository", ctx).Return(m.txCredits)
	m.txSessions.On("Create", ctx, mock.MatchedBy(func(s *entity.ProcessedPaymentSession) bool {
		return s.SessionID == sessionID && s.UserID == userID
	})).Return(nil)
	m.txCredits.On("Grant", ctx, userID, entity.CreditPackageSize).
		Return(&entity.CreditLedger{UserID: userID, Remaining: remaining}, nil)
	m.uow.On("Commit", ctx).Return(nil)
}

func buyer() *entity.User {
	return &entity.User{ID: 7, Email: "ana@example.com", Name: "Ana", IsActive: true}
}

func TestService_CreateCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the provider session", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()
		user := buyer()

		m.gateway.On("CreateCheckoutSession", ctx, user).
			Return(&entity.CheckoutSession{ID: "cs_001", URL: "https://checkout.example/cs_001"}, nil)

		session, err := svc.CreateCheckout(ctx, user)

		require.NoError(t, err)
		assert.Equal(t, "cs_001", session.ID)
	})

	t.Run("Provider failure maps to the payment error", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("CreateCheckoutSession", ctx, mock.Anything).Return(nil, assert.AnError)

		_, err := svc.CreateCheckout(ctx, buyer())

		assert.ErrorIs(t, err, errs.ErrPaymentProvider)
	})
}

func TestService_HandleWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"type":"checkout.session.completed"}`)

	t.Run("Completed checkout grants the package", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("VerifyWebhook", payload, "sig").Return(&svcport.WebhookEvent{
			Type:          svcport.EventCheckoutCompleted,
			SessionID:     "cs_001",
			CustomerEmail: "ana@example.com",
		}, nil)
		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(buyer(), nil)
		m.expectGrant(ctx, 7, "cs_001", 4)

		err := svc.HandleWebhook(ctx, payload, "sig")

		require.NoError(t, err)
		m.txCredits.AssertExpectations(t)
	})

	t.Run("Bad signature is rejected", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("VerifyWebhook", payload, "bad").Return(nil, assert.AnError)

		err := svc.HandleWebhook(ctx, payload, "bad")

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		m.uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("Unhandled event types are acknowledged without side effects", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("VerifyWebhook", payload, "sig").Return(&svcport.WebhookEvent{
			Type: "invoice.paid",
		}, nil)

		err := svc.HandleWebhook(ctx, payload, "sig")

		assert.NoError(t, err)
		m.userRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
		m.uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("Replayed webhook does not grant twice", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("VerifyWebhook", payload, "sig").Return(&svcport.WebhookEvent{
			Type:          svcport.EventCheckoutCompleted,
			SessionID:     "cs_001",
			CustomerEmail: "ana@example.com",
		}, nil)
		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(buyer(), nil)
		m.uow.On("Begin", ctx).Return(ctx, nil)
		m.uow.On("GetPaymentSessionRepository", ctx).Return(m.txSessions)
		m.txSessions.On("Create", ctx, mock.Anything).Return(errs.ErrSessionProcessed)
		m.uow.On("Rollback", ctx).Return(nil)
		m.txCredits.On("GetLedger", ctx, uint64(7)).Return(&entity.CreditLedger{UserID: 7, Remaining: 4}, nil)

		err := svc.HandleWebhook(ctx, payload, "sig")

		assert.NoError(t, err)
		m.txCredits.AssertNotCalled(t, "Grant", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_VerifyPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Paid session grants through the idempotent path", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("RetrieveSession", ctx, "cs_001").
			Return(&entity.CheckoutSession{ID: "cs_001", Paid: true}, nil)
		m.expectGrant(ctx, 7, "cs_001", 4)

		result, err := svc.VerifyPayment(ctx, buyer(), "cs_001")

		require.NoError(t, err)
		assert.True(t, result.Paid)
		assert.True(t, result.CreditsGranted)
		assert.Equal(t, 4, result.Remaining)
	})

	t.Run("Unpaid session grants nothing", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("RetrieveSession", ctx, "cs_001").
			Return(&entity.CheckoutSession{ID: "cs_001", Paid: false}, nil)

		result, err := svc.VerifyPayment(ctx, buyer(), "cs_001")

		require.NoError(t, err)
		assert.False(t, result.Paid)
		m.uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("Already granted session reports no new credits", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		m.gateway.On("RetrieveSession", ctx, "cs_001").
			Return(&entity.CheckoutSession{ID: "cs_001", Paid: true}, nil)
		m.uow.On("Begin", ctx).Return(ctx, nil)
		m.uow.On("GetPaymentSessionRepository", ctx).Return(m.txSessions)
		m.txSessions.On("Create", ctx, mock.Anything).Return(errs.ErrSessionProcessed)
		m.uow.On("Rollback", ctx).Return(nil)
		m.txCredits.On("GetLedger", ctx, uint64(7)).Return(&entity.CreditLedger{UserID: 7, Remaining: 4}, nil)

		result, err := svc.VerifyPayment(ctx, buyer(), "cs_001")

		require.NoError(t, err)
		assert.True(t, result.Paid)
		assert.False(t, result.CreditsGranted)
	})

	t.Run("Empty session id is rejected", func(t *testing.T) {
		svc, m := newPaymentServiceWithMocks()

		_, err := svc.VerifyPayment(ctx, buyer(), "")

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		m.gateway.AssertNotCalled(t, "RetrieveSession", mock.Anything, mock.Anything)
	})
}
