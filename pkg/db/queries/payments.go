package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const paymentColumns = `id, user_id, provider_payment_id, provider_session_id, amount, status, pricing_tier, created_at`

func (q *Queries) FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*db.Payment, error) {
	payment := &db.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_payment_id = $1`
	if err := q.db.GetContext(ctx, payment, query, providerPaymentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding payment: %w", err)
	}
	return payment, nil
}

// RecordPayment relies on the unique provider_payment_id constraint: a
// conflicting insert returns nothing and the existing row is read back.
func (q *Queries) RecordPayment(ctx context.Context, payment *db.Payment) (*db.Payment, bool, error) {
	query := `
		INSERT INTO payments (user_id, provider_payment_id, provider_session_id, amount, status, pricing_tier)
		VALUES (:user_id, :provider_payment_id, :provider_session_id, :amount, :status, :pricing_tier)
		ON CONFLICT (provider_payment_id) DO NOTHING
		RETURNING id, created_at`

	ok, err := namedReturning(ctx, q.db, query, payment)
	if err != nil {
		log.Errorf("Error recording payment %s: %v", payment.ProviderPaymentID, err)
		return nil, false, fmt.Errorf("failed to record payment: %w", err)
	}
	if ok {
		log.Infof("Payment %s recorded for user %s (%d cents)", payment.ProviderPaymentID, payment.UserID.String(), payment.Amount)
		return payment, true, nil
	}

	existing, err := q.FindPaymentByProviderID(ctx, payment.ProviderPaymentID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("payment %s conflicted but could not be read back", payment.ProviderPaymentID)
	}
	log.Infof("Payment %s already recorded", payment.ProviderPaymentID)
	return existing, false, nil
}

func (q *Queries) ListPayments(ctx context.Context, userID uuid.UUID) ([]db.Payment, error) {
	payments := []db.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`
	if err := q.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	return payments, nil
}

// WalletTotals sums completed payments and counts charged videos in one round trip.
func (q *Queries) WalletTotals(ctx context.Context, userID uuid.UUID) (db.WalletTotals, error) {
	var totals db.WalletTotals
	query := `
		SELECT
			COALESCE((SELECT SUM(amount) FROM payments WHERE user_id = $1 AND status = $2), 0) AS paid_cents,
			(SELECT COUNT(*) FROM user_videos WHERE user_id = $1 AND status = ANY($3)) AS charged_videos`
	err := q.db.GetContext(ctx, &totals, query, userID, db.PaymentCompleted, pq.Array(db.ChargedVideoStatuses))
	if err != nil {
		log.Errorf("Error computing wallet totals for user '%s': %v", userID.String(), err)
		return db.WalletTotals{}, fmt.Errorf("error computing wallet totals: %w", err)
	}
	return totals, nil
}
