package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/db/memstore"
	"github.com/ASHISH26940/asmr-studio-api/pkg/lock"
	"github.com/ASHISH26940/asmr-studio-api/pkg/replicate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fund(t *testing.T, store db.Store, userID uuid.UUID, cents int64, providerID string) {
	t.Helper()
	_, _, err := store.RecordPayment(context.Background(), &db.Payment{
		UserID:            userID,
		ProviderPaymentID: providerID,
		Amount:            cents,
		Status:            db.PaymentCompleted,
	})
	require.NoError(t, err)
}

func newVideoFixture() (*memstore.Store, *fakePredictor, *VideoService) {
	store := memstore.New()
	pred := newFakePredictor()
	wallet := NewWalletService(store, lock.NewLocalLocker(), 600)
	return store, pred, NewVideoService(wallet, store, pred, VideoSettings{})
}

func TestWalletBalanceFormula(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	userID := uuid.New()
	fund(t, store, userID, 3000, "pi_a")
	_, _, err := store.RecordPayment(ctx, &db.Payment{UserID: userID, ProviderPaymentID: "pi_pending", Amount: 9999, Status: db.PaymentPending})
	require.NoError(t, err)
	for _, st := range []string{db.VideoProcessing, db.VideoCompleted, db.VideoFailed, db.VideoPending} {
		_, err := store.CreateVideo(ctx, &db.Video{UserID: userID, Status: st})
		require.NoError(t, err)
	}

	w, err := NewWalletService(store, nil, 600).Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), w.PaidCents)
	assert.Equal(t, int64(3), w.ChargedVideos)
	assert.Equal(t, int64(1200), w.BalanceCents)
	assert.Equal(t, 12.0, w.Balance)
	assert.Equal(t, int64(2), w.VideosAvailable)
	assert.True(t, w.CanGenerate)
}

func TestWalletDisplayClampedAtZero(t *testing.T) {
	store := memstore.New()
	userID := uuid.New()
	_, err := store.CreateVideo(context.Background(), &db.Video{UserID: userID, Status: db.VideoCompleted})
	require.NoError(t, err)

	w, err := NewWalletService(store, nil, 600).Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.BalanceCents)
	assert.False(t, w.CanGenerate)
}

func TestSubmitWithEmptyWalletIsRefused(t *testing.T) {
	store, pred, svc := newVideoFixture()
	userID := uuid.New()

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: userID, EnhancedPrompt: "rain"})
	var funds *InsufficientFundsError
	require.True(t, errors.As(err, &funds))
	assert.Equal(t, int64(0), funds.BalanceCents)
	assert.Equal(t, int64(600), funds.RequiredCents)
	assert.Equal(t, int64(600), funds.ShortfallCents())

	videos, err := store.ListVideos(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, videos)
	assert.Empty(t, pred.created)
}

func TestSubmitChargesAndStoresPrediction(t *testing.T) {
	store, pred, svc := newVideoFixture()
	userID := uuid.New()
	fund(t, store, userID, 1200, "pi_1")

	res, err := svc.Submit(context.Background(), SubmitRequest{UserID: userID, EnhancedPrompt: "rain on a tin roof", OriginalPrompt: "rain"})
	require.NoError(t, err)
	assert.Equal(t, "pred_1", res.PredictionID)
	assert.Equal(t, db.VideoProcessing, res.Video.Status)
	assert.Equal(t, int64(600), res.Wallet.BalanceCents)

	require.Len(t, pred.created, 1)
	assert.Equal(t, "google/veo-3", pred.versions[0])
	assert.Equal(t, "rain on a tin roof", pred.created[0]["prompt"])
	assert.Equal(t, 5, pred.created[0]["duration"])
	assert.Equal(t, "16:9", pred.created[0]["aspect_ratio"])

	v, err := store.FindVideoByPrediction(context.Background(), userID, "pred_1")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "rain", v.OriginalPrompt)
}

func TestSubmitProviderFailureKeepsCharge(t *testing.T) {
	store, pred, svc := newVideoFixture()
	userID := uuid.New()
	fund(t, store, userID, 600, "pi_1")
	pred.createErr = &replicate.APIError{StatusCode: 422, Body: `{"detail":"bad input"}`}

	_, err := svc.Submit(context.Background(), SubmitRequest{UserID: userID, EnhancedPrompt: "rain"})
	var serr *SubmitError
	require.True(t, errors.As(err, &serr))
	var apiErr *replicate.APIError
	require.True(t, errors.As(err, &apiErr))

	videos, err := store.ListVideos(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, db.VideoFailed, videos[0].Status)

	w, err := NewWalletService(store, nil, 600).Balance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.BalanceCents)
	assert.Equal(t, int64(1), w.ChargedVideos)
}

func TestConcurrentSubmitsSpendCreditOnce(t *testing.T) {
	store, _, svc := newVideoFixture()
	userID := uuid.New()
	fund(t, store, userID, 600, "pi_1")

	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok, refused int
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), SubmitRequest{UserID: userID, EnhancedPrompt: "rain"})
			mu.Lock()
			defer mu.Unlock()
			var funds *InsufficientFundsError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &funds):
				refused++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 4, refused)
}

func TestStatusSyncsOwnedVideo(t *testing.T) {
	store, pred, svc := newVideoFixture()
	ctx := context.Background()
	userID := uuid.New()
	fund(t, store, userID, 600, "pi_1")
	res, err := svc.Submit(ctx, SubmitRequest{UserID: userID, EnhancedPrompt: "rain"})
	require.NoError(t, err)

	pred.status["pred_1"] = &replicate.Prediction{ID: "pred_1", Status: replicate.StatusProcessing}
	st, err := svc.Status(ctx, &userID, "pred_1")
	require.NoError(t, err)
	assert.False(t, st.Done)
	assert.Equal(t, json.RawMessage("null"), st.Output)

	pred.status["pred_1"] = &replicate.Prediction{ID: "pred_1", Status: replicate.StatusSucceeded, Output: json.RawMessage(`"https://cdn.example/v.mp4"`)}
	st, err = svc.Status(ctx, &userID, "pred_1")
	require.NoError(t, err)
	assert.True(t, st.Done)
	assert.Equal(t, "https://cdn.example/v.mp4", st.OutputURL)
	require.NotNil(t, st.VideoID)
	assert.Equal(t, res.Video.ID, *st.VideoID)

	v, err := store.FindVideoByPrediction(ctx, userID, "pred_1")
	require.NoError(t, err)
	assert.Equal(t, db.VideoCompleted, v.Status)
	require.NotNil(t, v.VideoURL)
	assert.Equal(t, "https://cdn.example/v.mp4", *v.VideoURL)
}

func TestStatusFailedPredictionMarksVideoFailed(t *testing.T) {
	store, pred, svc := newVideoFixture()
	ctx := context.Background()
	userID := uuid.New()
	fund(t, store, userID, 600, "pi_1")
	_, err := svc.Submit(ctx, SubmitRequest{UserID: userID, EnhancedPrompt: "rain"})
	require.NoError(t, err)

	pred.status["pred_1"] = &replicate.Prediction{ID: "pred_1", Status: replicate.StatusCanceled}
	st, err := svc.Status(ctx, &userID, "pred_1")
	require.NoError(t, err)
	assert.Equal(t, replicate.StatusCanceled, st.Status)

	v, err := store.FindVideoByPrediction(ctx, userID, "pred_1")
	require.NoError(t, err)
	assert.Equal(t, db.VideoFailed, v.Status)
}

func TestStatusWithoutOwnerOnlyRelays(t *testing.T) {
	_, pred, svc := newVideoFixture()
	pred.status["pred_x"] = &replicate.Prediction{ID: "pred_x", Status: replicate.StatusFailed, Error: "nsfw"}

	st, err := svc.Status(context.Background(), nil, "pred_x")
	require.NoError(t, err)
	assert.Equal(t, "nsfw", st.Error)
	assert.Nil(t, st.VideoID)

	_, err = svc.Status(context.Background(), nil, "missing")
	var apiErr *replicate.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestStatusRelaysWhenVideoUpdateFails(t *testing.T) {
	mem := memstore.New()
	store := &failingStore{Store: mem}
	pred := newFakePredictor()
	wallet := NewWalletService(store, lock.NewLocalLocker(), 600)
	svc := NewVideoService(wallet, store, pred, VideoSettings{})
	ctx := context.Background()
	userID := uuid.New()
	fund(t, mem, userID, 600, "pi_1")
	res, err := svc.Submit(ctx, SubmitRequest{UserID: userID, EnhancedPrompt: "rain"})
	require.NoError(t, err)

	store.updateVideoErr = errors.New("connection reset")
	pred.status["pred_1"] = &replicate.Prediction{ID: "pred_1", Status: replicate.StatusSucceeded, Output: json.RawMessage(`"https://cdn.example/v.mp4"`)}
	st, err := svc.Status(ctx, &userID, "pred_1")
	require.NoError(t, err)
	assert.True(t, st.Done)
	assert.Equal(t, replicate.StatusSucceeded, st.Status)
	assert.Equal(t, "https://cdn.example/v.mp4", st.OutputURL)
	require.NotNil(t, st.VideoID)
	assert.Equal(t, res.Video.ID, *st.VideoID)

	v, err := mem.FindVideoByPrediction(ctx, userID, "pred_1")
	require.NoError(t, err)
	assert.NotEqual(t, db.VideoCompleted, v.Status)
}
