package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/credit"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/payment"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/dto"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/middleware"
)

// maxWebhookBody caps the webhook payload read. Provider events are small;
// anything larger is not a legitimate event.
const maxWebhookBody = 64 * 1024

// PaymentHandler serves checkout, webhook and credit verification endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	creditService  *credit.Service
	logger         coreport.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payment.Service, creditService *credit.Service, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		creditService:  creditService,
		logger:         logger,
	}
}

// CreateCheckout handles POST /api/payment/create-checkout-session
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrTokenInvalid)
		return
	}

	session, err := h.paymentService.CreateCheckout(c.Request.Context(), user)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// Webhook handles POST /api/payment/webhook. The body must be passed to the
// signature check exactly as received, so it is read raw and never bound.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		middleware.WriteError(c, errs.ErrInvalidRequest)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "received"})
}

// VerifyCredits handles GET /api/payment/verify-credits
func (h *PaymentHandler) VerifyCredits(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrTokenInvalid)
		return
	}

	remaining, err := h.creditService.Balance(c.Request.Context(), user.ID)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreditsResponse{RemainingAnalyses: remaining})
}

// VerifyPayment handles GET /api/payment/verify-payment/:session_id. It is
// the frontend-driven fallback grant path for checkouts whose webhook was
// missed; granting stays idempotent across both paths.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrTokenInvalid)
		return
	}

	result, err := h.paymentService.VerifyPayment(c.Request.Context(), user, c.Param("session_id"))
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyPaymentResponse{
		Paid:              result.Paid,
		CreditsGranted:    result.CreditsGranted,
		RemainingAnalyses: result.Remaining,
	})
}
