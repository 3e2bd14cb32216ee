package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"kickstep-be/internal/logger"
	"kickstep-be/internal/metrics"
	"kickstep-be/internal/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Payload is the JSON the payment gateway posts on every settlement event.
type Payload struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	PaymentID string `json:"payment_id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	PaidAt    string `json:"paid_at,omitempty"`
}

// OrderMarker is the slice of the order service the webhook needs.
type OrderMarker interface {
	MarkPaid(ctx context.Context, orderNumber, providerRef string) error
	MarkPaymentFailed(ctx context.Context, orderNumber, providerRef string) error
}

type Handler struct {
	orders   OrderMarker
	gateway  payment.Gateway
	repo     payment.Repository
	checkout *metrics.Checkout
}

func NewHandler(orders OrderMarker, gateway payment.Gateway, repo payment.Repository, checkout *metrics.Checkout) *Handler {
	return &Handler{
		orders:   orders,
		gateway:  gateway,
		repo:     repo,
		checkout: checkout,
	}
}

// Handle processes one gateway callback. Every delivery is stored first;
// a replayed event_id skips storage but the settlement result is still
// applied, since MarkPaid/MarkPaymentFailed are idempotent. Redeliveries
// after a failed apply therefore still converge.
func (h *Handler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "payment_webhook"))

	h.checkout.WebhooksReceived.Inc()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if err := h.gateway.VerifyNotification(c.Request, body); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	if payload.EventID == "" || payload.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event_id or reference"})
		return
	}

	log = log.With(
		zap.String("event_id", payload.EventID),
		zap.String("reference", payload.Reference),
		zap.String("status", payload.Status),
	)

	webhookID, duplicate, err := h.repo.SaveWebhook(
		ctx,
		payment.ProviderGateway,
		payload.EventID,
		payload.EventType,
		payload.Reference,
		body,
		true,
	)
	if err != nil {
		log.Error("failed to store webhook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store webhook"})
		return
	}
	if duplicate {
		log.Info("duplicate webhook delivery")
	}

	switch payload.Status {
	case "PAID":
		err = h.orders.MarkPaid(ctx, payload.Reference, payload.PaymentID)
	case "FAILED", "EXPIRED":
		err = h.orders.MarkPaymentFailed(ctx, payload.Reference, payload.PaymentID)
	default:
		log.Info("ignoring webhook status")
		if !duplicate {
			_ = h.repo.MarkWebhookProcessed(ctx, webhookID)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if err != nil {
		log.Error("failed to apply settlement result", zap.Error(err))
		if !duplicate {
			if markErr := h.repo.MarkWebhookFailed(ctx, webhookID, err.Error()); markErr != nil {
				log.Error("failed to mark webhook failed", zap.Error(markErr))
			}
		}
		// Non-2xx makes the gateway redeliver.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order"})
		return
	}

	if !duplicate {
		if err := h.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
			log.Error("failed to mark webhook processed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
