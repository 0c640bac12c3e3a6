// pkg/llm/gemini.go

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiService holds the Gemini AI client.
type GeminiService struct {
	client    *genai.Client
	modelName string
}

// NewGeminiService creates a new Gemini AI service instance.
func NewGeminiService(apiKey, modelName string) (*GeminiService, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiService{client: client, modelName: modelName}, nil
}

// Complete builds a model per request since sampling settings differ between
// the enhancement endpoints.
func (s *GeminiService) Complete(ctx context.Context, req ChatRequest) (string, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		log.Errorf("Error generating content with Gemini: %v", err)
		return "", &UpstreamError{Provider: "gemini", Detail: err.Error(), Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn("Gemini returned no candidates or content.")
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyCompletion
	}
	log.Debugf("Gemini raw response: %s", out)
	return out, nil
}

// Close releases the underlying gRPC connection.
func (s *GeminiService) Close() error {
	log.Info("Closing Gemini AI service client.")
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
