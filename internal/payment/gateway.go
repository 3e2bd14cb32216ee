package payment

import (
	"context"
	"net/http"
	"time"
)

// Gateway is the outbound side of the external payment provider.
type Gateway interface {
	CreateRedirect(ctx context.Context, req RedirectRequest) (*RedirectResponse, error)
	VerifyNotification(r *http.Request, body []byte) error
}

// RedirectRequest is the signed payload for the hosted payment page.
type RedirectRequest struct {
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency"`
	Lines     []Line   `json:"lines"`
	Customer  Customer `json:"customer"`
}

type RedirectResponse struct {
	ProviderReference string
	RedirectURL       string
	Status            string
	ExpiresAt         *time.Time
}
