package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/payments"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const defaultPricingTier = "premium"

type PaymentService struct {
	provider      payments.Provider
	store         db.Store
	publicBaseURL string
	priceCents    int64
}

func NewPaymentService(provider payments.Provider, store db.Store, publicBaseURL string, priceCents int64) *PaymentService {
	return &PaymentService{
		provider:      provider,
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		priceCents:    priceCents,
	}
}

type CheckoutResult struct {
	URL       string        `json:"url"`
	SessionID string        `json:"sessionId"`
	Tier      payments.Tier `json:"tier"`
}

// CreateCheckout opens a hosted checkout for a wallet top-up. origin is the
// site the buyer returns to; it falls back to the configured public URL.
func (s *PaymentService) CreateCheckout(ctx context.Context, userID uuid.UUID, tierID, origin string) (*CheckoutResult, error) {
	tier := payments.LookupTier(tierID)
	if tierID == "" {
		tierID = payments.DefaultTierID
	}
	base := strings.TrimRight(origin, "/")
	if base == "" {
		base = s.publicBaseURL
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		Tier:       tier,
		SuccessURL: base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/",
		Metadata: map[string]string{
			payments.MetaUserID:  userID.String(),
			payments.MetaService: payments.ServiceWalletFunding,
			payments.MetaPriceID: tierID,
			payments.MetaAmount:  strconv.FormatInt(tier.AmountCents, 10),
		},
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{URL: sess.URL, SessionID: sess.ID, Tier: tier}, nil
}

type RecordResult struct {
	Payment         *db.Payment `json:"payment"`
	AlreadyRecorded bool        `json:"alreadyRecorded"`
	EnhancedPrompt  string      `json:"enhancedPrompt,omitempty"`
}

// VerifyCheckout records a paid checkout session once. Repeat calls return the
// row stored the first time.
func (s *PaymentService) VerifyCheckout(ctx context.Context, userID uuid.UUID, sessionID string) (*RecordResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, invalid("sessionId", "session ID is required")
	}
	sess, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(sess.Metadata, userID); err != nil {
		return nil, err
	}
	if !sess.Paid {
		log.Infof("VerifyCheckout: session %s is %s", sessionID, sess.PaymentStatus)
		return nil, ErrPaymentNotCompleted
	}

	providerID := sess.PaymentIntentID
	if providerID == "" {
		providerID = sess.ID
	}
	tier := sess.Metadata[payments.MetaPriceID]
	if tier == "" {
		tier = defaultPricingTier
	}
	return s.record(ctx, &db.Payment{
		UserID:            userID,
		ProviderPaymentID: providerID,
		ProviderSessionID: &sess.ID,
		Amount:            sess.AmountTotal,
		Status:            db.PaymentCompleted,
		PricingTier:       &tier,
	})
}

type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	AmountCents     int64  `json:"amount"`
}

// CreateIntent starts an inline card payment for exactly one video.
func (s *PaymentService) CreateIntent(ctx context.Context, userID uuid.UUID, enhancedPrompt string) (*IntentResult, error) {
	enhancedPrompt = strings.TrimSpace(enhancedPrompt)
	if enhancedPrompt == "" {
		return nil, invalid("enhancedPrompt", "enhanced prompt is required")
	}
	pi, err := s.provider.CreatePaymentIntent(ctx, payments.IntentRequest{
		AmountCents: s.priceCents,
		Metadata: map[string]string{
			payments.MetaUserID:         userID.String(),
			payments.MetaEnhancedPrompt: enhancedPrompt,
			payments.MetaService:        payments.ServiceVideo,
		},
	})
	if err != nil {
		return nil, err
	}
	return &IntentResult{ClientSecret: pi.ClientSecret, PaymentIntentID: pi.ID, AmountCents: s.priceCents}, nil
}

// ConfirmIntent records a succeeded payment intent and hands back the prompt
// it was bought for.
func (s *PaymentService) ConfirmIntent(ctx context.Context, userID uuid.UUID, intentID string) (*RecordResult, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, invalid("paymentIntentId", "payment intent ID is required")
	}
	pi, err := s.provider.GetPaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(pi.Metadata, userID); err != nil {
		return nil, err
	}
	if !pi.Succeeded {
		log.Infof("ConfirmIntent: intent %s is %s", intentID, pi.Status)
		return nil, ErrPaymentNotCompleted
	}

	res, err := s.record(ctx, &db.Payment{
		UserID:            userID,
		ProviderPaymentID: pi.ID,
		Amount:            pi.Amount,
		Status:            db.PaymentCompleted,
	})
	if err != nil {
		return nil, err
	}
	res.EnhancedPrompt = pi.Metadata[payments.MetaEnhancedPrompt]
	return res, nil
}

func (s *PaymentService) record(ctx context.Context, p *db.Payment) (*RecordResult, error) {
	stored, created, err := s.store.RecordPayment(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("record payment %s: %w", p.ProviderPaymentID, err)
	}
	if created {
		log.Infof("Payment %s recorded for user %s (%d cents)", p.ProviderPaymentID, p.UserID, stored.Amount)
	} else {
		log.Infof("Payment %s already recorded", p.ProviderPaymentID)
	}
	return &RecordResult{Payment: stored, AlreadyRecorded: !created}, nil
}

func (s *PaymentService) List(ctx context.Context, userID uuid.UUID) ([]db.Payment, error) {
	return s.store.ListPayments(ctx, userID)
}

// checkOwner stops one user from claiming a payment made by another. Objects
// without a userId in their metadata are accepted.
func checkOwner(meta map[string]string, userID uuid.UUID) error {
	owner := meta[payments.MetaUserID]
	if owner != "" && owner != userID.String() {
		log.Warnf("Payment owned by %s claimed by %s", owner, userID)
		return ErrNotFound
	}
	return nil
}
