package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestLookupTier(t *testing.T) {
	assert.Equal(t, int64(600), LookupTier("starter").AmountCents)
	assert.Equal(t, "ASMR Generator - Starter Pack", LookupTier("starter").Name)
	assert.Equal(t, int64(3000), LookupTier("basic").AmountCents)
	assert.Equal(t, int64(6000), LookupTier("pro").AmountCents)
	assert.Equal(t, int64(12000), LookupTier("business").AmountCents)

	assert.Equal(t, "pro", LookupTier("").ID)
	assert.Equal(t, "pro", LookupTier("enterprise").ID)
}

func TestTiersAscending(t *testing.T) {
	all := Tiers()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].AmountCents, all[i].AmountCents)
	}
}

func newTestProvider(t *testing.T, h http.HandlerFunc) *StripeProvider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeProvider("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestStripeGetCheckoutSession(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","payment_status":"paid","payment_intent":"pi_1","amount_total":3000,"metadata":{"priceId":"basic","userId":"u1"}}`))
	})

	s, err := p.GetCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.True(t, s.Paid)
	assert.Equal(t, "pi_1", s.PaymentIntentID)
	assert.Equal(t, int64(3000), s.AmountTotal)
	assert.Equal(t, "basic", s.Metadata[MetaPriceID])
}

func TestStripeCreatePaymentIntent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "600", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "true", r.PostForm.Get("automatic_payment_methods[enabled]"))
		assert.Equal(t, "rain", r.PostForm.Get("metadata[enhancedPrompt]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_9","object":"payment_intent","amount":600,"client_secret":"pi_9_secret","status":"requires_payment_method"}`))
	})

	pi, err := p.CreatePaymentIntent(context.Background(), IntentRequest{
		AmountCents: 600,
		Metadata:    map[string]string{MetaEnhancedPrompt: "rain"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_9", pi.ID)
	assert.Equal(t, "pi_9_secret", pi.ClientSecret)
	assert.False(t, pi.Succeeded)
}

func TestStripeErrorIsProviderError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such payment_intent: 'pi_x'"}}`))
	})

	_, err := p.GetPaymentIntent(context.Background(), "pi_x")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusNotFound, pe.StatusCode)
	assert.Contains(t, pe.Message, "No such payment_intent")
}
