package models

// CheckoutRequest represents a request to buy a credit pack
type CheckoutRequest struct {
	Pack string `json:"pack" validate:"required,oneof=small medium large"`
}

// CheckoutResponse represents a checkout session response
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreditPack is a purchasable bundle of credits
type CreditPack struct {
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	PriceID string `json:"-"`
}
