package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"kickstep-be/internal/logger"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiVersion = "2025-06-01"

type paygateGateway struct {
	client         *resty.Client
	secretKey      string
	callbackSecret string
	successURL     string
	cancelURL      string
}

type GatewayConfig struct {
	BaseURL        string
	SecretKey      string
	CallbackSecret string
	SuccessURL     string
	CancelURL      string
}

func NewPaygateGateway(cfg GatewayConfig) Gateway {
	if cfg.SecretKey == "" {
		logger.L().Warn("payment gateway secret key is empty")
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Api-Version", apiVersion)

	return &paygateGateway{
		client:         client,
		secretKey:      cfg.SecretKey,
		callbackSecret: cfg.CallbackSecret,
		successURL:     cfg.SuccessURL,
		cancelURL:      cfg.CancelURL,
	}
}

type paygateCreateResponse struct {
	PaymentID   string     `json:"payment_id"`
	Reference   string     `json:"reference"`
	RedirectURL string     `json:"redirect_url"`
	Status      string     `json:"status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func (g *paygateGateway) CreateRedirect(ctx context.Context, req RedirectRequest) (*RedirectResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("reference", req.Reference),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	payload := map[string]interface{}{
		"reference":          req.Reference,
		"amount":             req.Amount,
		"currency":           req.Currency,
		"lines":              req.Lines,
		"customer":           req.Customer,
		"success_return_url": g.successURL,
		"cancel_return_url":  g.cancelURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	log.Info("sending payment request to gateway")

	var out paygateCreateResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("X-Signature", g.sign(body)).
		SetBody(body).
		SetResult(&out).
		Post("/v1/payments")
	if err != nil {
		log.Error("gateway request failed", zap.Error(err))
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		log.Error("gateway returned non-success status",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("response", resp.Body()),
		)
		return nil, fmt.Errorf("gateway error: %s", resp.Body())
	}

	if out.RedirectURL == "" {
		return nil, errors.New("gateway response missing redirect url")
	}

	log.Info("gateway payment created",
		zap.String("payment_id", out.PaymentID),
		zap.String("status", out.Status),
	)

	return &RedirectResponse{
		ProviderReference: out.PaymentID,
		RedirectURL:       out.RedirectURL,
		Status:            out.Status,
		ExpiresAt:         out.ExpiresAt,
	}, nil
}

// VerifyNotification checks the HMAC signature the gateway attaches to every
// inbound callback. An empty callback secret skips verification (dev only).
func (g *paygateGateway) VerifyNotification(r *http.Request, body []byte) error {
	if g.callbackSecret == "" {
		return nil
	}

	sig := r.Header.Get("X-Signature")
	if sig == "" {
		return errors.New("missing webhook signature")
	}

	mac := hmac.New(sha256.New, []byte(g.callbackSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return errors.New("invalid webhook signature")
	}
	return nil
}

func (g *paygateGateway) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(g.secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
