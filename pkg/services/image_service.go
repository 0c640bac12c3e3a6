package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/replicate"
	log "github.com/sirupsen/logrus"
)

// maxImagePolls bounds the synchronous wait for a still frame.
const maxImagePolls = 120

type ImagePredictor interface {
	CreatePrediction(ctx context.Context, version string, input map[string]any) (*replicate.Prediction, error)
	WaitForPrediction(ctx context.Context, id string, interval time.Duration, maxAttempts int) (*replicate.Prediction, error)
}

// Mirror copies a remote file somewhere durable and returns the new URL.
type Mirror interface {
	Mirror(ctx context.Context, sourceURL string) (string, error)
}

// ErrImageFailed is a prediction that ended without a usable image.
var ErrImageFailed = errors.New("image generation failed")

type ImageService struct {
	predictor ImagePredictor
	mirror    Mirror
	model     string
	interval  time.Duration
}

// NewImageService builds the first-frame generator. mirror may be nil.
func NewImageService(predictor ImagePredictor, mirror Mirror, model string) *ImageService {
	if model == "" {
		model = "google/imagen-4"
	}
	return &ImageService{predictor: predictor, mirror: mirror, model: model, interval: time.Second}
}

type ImageResult struct {
	ImageURL     string `json:"imageUrl"`
	ProviderURL  string `json:"providerUrl"`
	PromptID     string `json:"promptId,omitempty"`
	PredictionID string `json:"predictionId"`
	Mirrored     bool   `json:"mirrored"`
}

// Generate renders a 16:9 still for the prompt and waits for it.
func (s *ImageService) Generate(ctx context.Context, prompt, promptID string) (*ImageResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, invalid("prompt", "no prompt provided")
	}

	pred, err := s.predictor.CreatePrediction(ctx, s.model, map[string]any{
		"prompt":         prompt,
		"aspect_ratio":   "16:9",
		"output_format":  "jpg",
		"output_quality": 90,
	})
	if err != nil {
		return nil, err
	}
	if !pred.IsTerminal() {
		pred, err = s.predictor.WaitForPrediction(ctx, pred.ID, s.interval, maxImagePolls)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != replicate.StatusSucceeded {
		msg := pred.ErrorMessage()
		if msg == "" {
			msg = "image generation failed or incomplete"
		}
		log.Errorf("GenerateImage: prediction %s ended %s: %s", pred.ID, pred.Status, msg)
		return nil, fmt.Errorf("%w: %s", ErrImageFailed, msg)
	}
	url := pred.OutputURL()
	if url == "" {
		log.Errorf("GenerateImage: prediction %s has unexpected output %s", pred.ID, string(pred.Output))
		return nil, fmt.Errorf("%w: unexpected output format", ErrImageFailed)
	}

	res := &ImageResult{ImageURL: url, ProviderURL: url, PromptID: promptID, PredictionID: pred.ID}
	if s.mirror != nil {
		if mirrored, err := s.mirror.Mirror(ctx, url); err != nil {
			log.Warnf("GenerateImage: keeping provider URL, mirror failed: %v", err)
		} else {
			res.ImageURL = mirrored
			res.Mirrored = true
		}
	}
	return res, nil
}
