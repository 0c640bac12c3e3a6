package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/replicate"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Predictor is the part of the media provider client the services call.
type Predictor interface {
	CreatePrediction(ctx context.Context, version string, input map[string]any) (*replicate.Prediction, error)
	GetPrediction(ctx context.Context, id string) (*replicate.Prediction, error)
}

type VideoSettings struct {
	Model       string
	Duration    int
	AspectRatio string
}

type VideoService struct {
	wallet    *WalletService
	store     db.Store
	predictor Predictor
	settings  VideoSettings
}

func NewVideoService(wallet *WalletService, store db.Store, predictor Predictor, settings VideoSettings) *VideoService {
	if settings.Model == "" {
		settings.Model = "google/veo-3"
	}
	if settings.Duration <= 0 {
		settings.Duration = 5
	}
	if settings.AspectRatio == "" {
		settings.AspectRatio = "16:9"
	}
	return &VideoService{wallet: wallet, store: store, predictor: predictor, settings: settings}
}

type SubmitRequest struct {
	UserID         uuid.UUID
	EnhancedPrompt string
	OriginalPrompt string
}

type SubmitResult struct {
	Video        *db.Video `json:"video"`
	PredictionID string    `json:"predictionId"`
	Status       string    `json:"status"`
	Wallet       *Wallet   `json:"wallet"`
}

// SubmitError is a provider failure after the video row was charged. The row
// has been marked failed; the charge stands.
type SubmitError struct {
	VideoID uuid.UUID
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("video %s: submission failed: %v", e.VideoID, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Submit charges the wallet and starts a prediction for the prompt.
func (s *VideoService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	prompt := strings.TrimSpace(req.EnhancedPrompt)
	if prompt == "" {
		return nil, invalid("enhancedPrompt", "no enhanced prompt provided")
	}
	original := strings.TrimSpace(req.OriginalPrompt)
	if original == "" {
		original = prompt
	}

	video, wallet, err := s.wallet.ChargeVideo(ctx, &db.Video{
		UserID:         req.UserID,
		OriginalPrompt: original,
		EnhancedPrompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	pred, err := s.predictor.CreatePrediction(ctx, s.settings.Model, map[string]any{
		"prompt":       prompt,
		"duration":     s.settings.Duration,
		"aspect_ratio": s.settings.AspectRatio,
	})
	if err != nil {
		log.Errorf("Submit: provider rejected video %s: %v", video.ID, err)
		if uerr := s.store.UpdateVideoStatus(context.WithoutCancel(ctx), video.ID, db.VideoFailed, nil); uerr != nil {
			log.Errorf("Submit: failed to mark video %s failed: %v", video.ID, uerr)
		}
		return nil, &SubmitError{VideoID: video.ID, Err: err}
	}

	if err := s.store.SetVideoPrediction(ctx, video.ID, pred.ID); err != nil {
		log.Errorf("Submit: failed to store prediction %s on video %s: %v", pred.ID, video.ID, err)
	} else {
		video.PredictionID = &pred.ID
	}

	return &SubmitResult{
		Video:        video,
		PredictionID: pred.ID,
		Status:       pred.Status,
		Wallet:       wallet,
	}, nil
}

type PredictionStatus struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Output    json.RawMessage `json:"output"`
	OutputURL string          `json:"outputUrl,omitempty"`
	Error     string          `json:"error,omitempty"`
	VideoID   *uuid.UUID      `json:"videoId,omitempty"`
	Done      bool            `json:"done"`
}

// Status relays the provider's view of a prediction. When userID owns a video
// row for it the row is brought up to date; that sync never fails the call.
func (s *VideoService) Status(ctx context.Context, userID *uuid.UUID, predictionID string) (*PredictionStatus, error) {
	predictionID = strings.TrimSpace(predictionID)
	if predictionID == "" {
		return nil, invalid("id", "no prediction id provided")
	}
	pred, err := s.predictor.GetPrediction(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	out := &PredictionStatus{
		ID:        pred.ID,
		Status:    pred.Status,
		Output:    pred.Output,
		OutputURL: pred.OutputURL(),
		Error:     pred.ErrorMessage(),
		Done:      pred.IsTerminal(),
	}
	if len(out.Output) == 0 {
		out.Output = json.RawMessage("null")
	}
	if userID != nil {
		out.VideoID = s.syncVideo(ctx, *userID, pred)
	}
	return out, nil
}

func (s *VideoService) syncVideo(ctx context.Context, userID uuid.UUID, pred *replicate.Prediction) *uuid.UUID {
	video, err := s.store.FindVideoByPrediction(ctx, userID, pred.ID)
	if err != nil {
		log.Errorf("Status: lookup of video for prediction %s failed: %v", pred.ID, err)
		return nil
	}
	if video == nil {
		return nil
	}

	var next string
	var url *string
	switch pred.Status {
	case replicate.StatusSucceeded:
		next = db.VideoCompleted
		if u := pred.OutputURL(); u != "" {
			url = &u
		}
	case replicate.StatusFailed, replicate.StatusCanceled:
		next = db.VideoFailed
	default:
		return &video.ID
	}
	if video.Status == next {
		return &video.ID
	}
	if err := s.store.UpdateVideoStatus(ctx, video.ID, next, url); err != nil {
		log.Errorf("Status: failed to move video %s to %s: %v", video.ID, next, err)
	} else {
		log.Infof("Status: video %s is now %s", video.ID, next)
	}
	return &video.ID
}

func (s *VideoService) List(ctx context.Context, userID uuid.UUID) ([]db.Video, error) {
	return s.store.ListVideos(ctx, userID)
}
