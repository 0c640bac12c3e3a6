package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/lock"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	walletLockTTL  = 30 * time.Second
	walletLockWait = 10 * time.Second
)

// Wallet is a derived view; nothing stores a balance.
type Wallet struct {
	PaidCents       int64   `json:"paidCents"`
	ChargedVideos   int64   `json:"chargedVideos"`
	PriceCents      int64   `json:"videoPriceCents"`
	BalanceCents    int64   `json:"balanceCents"`
	Balance         float64 `json:"balance"`
	VideosAvailable int64   `json:"videosAvailable"`
	CanGenerate     bool    `json:"canGenerate"`
}

func newWallet(t db.WalletTotals, price int64) *Wallet {
	raw := t.PaidCents - price*t.ChargedVideos
	w := &Wallet{
		PaidCents:     t.PaidCents,
		ChargedVideos: t.ChargedVideos,
		PriceCents:    price,
		BalanceCents:  raw,
		CanGenerate:   raw >= price,
	}
	// Shown to users clamped at zero; the raw value still gates generation.
	if w.BalanceCents < 0 {
		w.BalanceCents = 0
	}
	w.Balance = CentsToDollars(w.BalanceCents)
	if price > 0 {
		w.VideosAvailable = w.BalanceCents / price
	}
	return w
}

func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

// WalletService computes balances and charges videos against them.
type WalletService struct {
	store      db.Store
	locker     lock.Locker
	priceCents int64
}

func NewWalletService(store db.Store, locker lock.Locker, priceCents int64) *WalletService {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &WalletService{store: store, locker: locker, priceCents: priceCents}
}

func (s *WalletService) PriceCents() int64 { return s.priceCents }

func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	totals, err := s.store.WalletTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("wallet totals for %s: %w", userID, err)
	}
	return newWallet(totals, s.priceCents), nil
}

// ChargeVideo checks the balance and inserts the video row while holding the
// user's wallet lock, so two submissions cannot both spend the same credit.
// The inserted row is the charge.
func (s *WalletService) ChargeVideo(ctx context.Context, video *db.Video) (*db.Video, *Wallet, error) {
	waitCtx, cancel := context.WithTimeout(ctx, walletLockWait)
	defer cancel()
	release, err := s.locker.Acquire(waitCtx, "wallet:"+video.UserID.String(), walletLockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, nil, ErrWalletBusy
		}
		return nil, nil, fmt.Errorf("wallet lock: %w", err)
	}
	defer release()

	wallet, err := s.Balance(ctx, video.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !wallet.CanGenerate {
		raw := wallet.PaidCents - s.priceCents*wallet.ChargedVideos
		log.Infof("ChargeVideo: user %s has %d cents, needs %d", video.UserID, raw, s.priceCents)
		return nil, wallet, &InsufficientFundsError{BalanceCents: wallet.BalanceCents, RequiredCents: s.priceCents}
	}

	video.Status = db.VideoProcessing
	created, err := s.store.CreateVideo(ctx, video)
	if err != nil {
		return nil, nil, fmt.Errorf("create video row: %w", err)
	}

	after := newWallet(db.WalletTotals{PaidCents: wallet.PaidCents, ChargedVideos: wallet.ChargedVideos + 1}, s.priceCents)
	log.Infof("ChargeVideo: user %s charged %d cents for video %s (balance now %d)", video.UserID, s.priceCents, created.ID, after.BalanceCents)
	return created, after, nil
}
