// Package payments wraps the card payment provider used to fund wallets.
package payments

import (
	"context"
	"fmt"
)

// Tier is a wallet top-up pack sold through hosted checkout.
type Tier struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount"`
}

// DefaultTierID is used when a checkout names a tier we do not sell.
const DefaultTierID = "pro"

var tiers = map[string]Tier{
	"starter": {
		ID:          "starter",
		Name:        "ASMR Generator - Starter Pack",
		Description: "Add $6 to your wallet (1 video at $6 each)",
		AmountCents: 600,
	},
	"basic": {
		ID:          "basic",
		Name:        "ASMR Generator - Basic Pack",
		Description: "Add $30 to your wallet (5 videos at $6 each)",
		AmountCents: 3000,
	},
	"pro": {
		ID:          "pro",
		Name:        "ASMR Generator - Pro Pack",
		Description: "Add $60 to your wallet (10 videos at $6 each)",
		AmountCents: 6000,
	},
	"business": {
		ID:          "business",
		Name:        "ASMR Generator - Business Pack",
		Description: "Add $120 to your wallet (20 videos at $6 each)",
		AmountCents: 12000,
	},
}

// LookupTier returns the named tier, or the pro tier for anything unknown.
func LookupTier(id string) Tier {
	if t, ok := tiers[id]; ok {
		return t
	}
	return tiers[DefaultTierID]
}

// Tiers lists every pack, cheapest first.
func Tiers() []Tier {
	return []Tier{tiers["starter"], tiers["basic"], tiers["pro"], tiers["business"]}
}

// Metadata keys attached to provider objects.
const (
	MetaUserID         = "userId"
	MetaService        = "service"
	MetaPriceID        = "priceId"
	MetaAmount         = "amount"
	MetaEnhancedPrompt = "enhancedPrompt"

	ServiceWalletFunding = "wallet_funding"
	ServiceVideo         = "asmr_video_generation"
)

type CheckoutRequest struct {
	Tier       Tier
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID              string
	URL             string
	Paid            bool
	PaymentStatus   string
	PaymentIntentID string
	AmountTotal     int64
	Metadata        map[string]string
}

type IntentRequest struct {
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Succeeded    bool
	Amount       int64
	Metadata     map[string]string
}

// Provider is the subset of the payment provider the services use.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// ProviderError is a failed call to the payment provider.
type ProviderError struct {
	Op         string
	StatusCode int
	Type       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("payment provider %s failed (%s, status %d): %s", e.Op, e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payment provider %s failed: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }
