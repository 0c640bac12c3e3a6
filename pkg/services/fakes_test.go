package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/llm"
	"github.com/ASHISH26940/asmr-studio-api/pkg/payments"
	"github.com/ASHISH26940/asmr-studio-api/pkg/replicate"
	"github.com/google/uuid"
)

type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []llm.ChatRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", llm.ErrEmptyCompletion
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r, nil
}

type fakePredictor struct {
	mu        sync.Mutex
	createErr error
	created   []map[string]any
	versions  []string
	status    map[string]*replicate.Prediction
	nextID    string
}

func newFakePredictor() *fakePredictor {
	return &fakePredictor{status: map[string]*replicate.Prediction{}, nextID: "pred_1"}
}

func (f *fakePredictor) CreatePrediction(_ context.Context, version string, input map[string]any) (*replicate.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.versions = append(f.versions, version)
	f.created = append(f.created, input)
	p := &replicate.Prediction{ID: f.nextID, Status: replicate.StatusStarting}
	if _, ok := f.status[p.ID]; !ok {
		f.status[p.ID] = p
	}
	return p, nil
}

func (f *fakePredictor) GetPrediction(_ context.Context, id string) (*replicate.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.status[id]
	if !ok {
		return nil, &replicate.APIError{StatusCode: 404, Body: `{"detail":"Not found."}`}
	}
	cp := *p
	return &cp, nil
}

func (f *fakePredictor) WaitForPrediction(ctx context.Context, id string, _ time.Duration, _ int) (*replicate.Prediction, error) {
	return f.GetPrediction(ctx, id)
}

type fakeProvider struct {
	sessions map[string]*payments.CheckoutSession
	intents  map[string]*payments.PaymentIntent

	lastCheckout payments.CheckoutRequest
	lastIntent   payments.IntentRequest
	err          error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*payments.CheckoutSession{}, intents: map[string]*payments.PaymentIntent{}}
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastCheckout = req
	return &payments.CheckoutSession{ID: "cs_new", URL: "https://checkout.example/cs_new", Metadata: req.Metadata}, nil
}

func (f *fakeProvider) GetCheckoutSession(_ context.Context, id string) (*payments.CheckoutSession, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, &payments.ProviderError{Op: "retrieve checkout session", StatusCode: 404, Message: "No such checkout.session"}
}

func (f *fakeProvider) CreatePaymentIntent(_ context.Context, req payments.IntentRequest) (*payments.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastIntent = req
	return &payments.PaymentIntent{ID: "pi_new", ClientSecret: "pi_new_secret", Amount: req.AmountCents, Metadata: req.Metadata}, nil
}

func (f *fakeProvider) GetPaymentIntent(_ context.Context, id string) (*payments.PaymentIntent, error) {
	if p, ok := f.intents[id]; ok {
		return p, nil
	}
	return nil, errors.New("no such payment intent")
}

// failingStore wraps a working store and fails the writes whose error is set.
type failingStore struct {
	db.Store
	createProjectErr error
	createPromptsErr error
	updateVideoErr   error
}

func (f *failingStore) CreateProject(ctx context.Context, project *db.Project) (*db.Project, error) {
	if f.createProjectErr != nil {
		return nil, f.createProjectErr
	}
	return f.Store.CreateProject(ctx, project)
}

func (f *failingStore) CreatePrompts(ctx context.Context, prompts []db.Prompt) ([]db.Prompt, error) {
	if f.createPromptsErr != nil {
		return nil, f.createPromptsErr
	}
	return f.Store.CreatePrompts(ctx, prompts)
}

func (f *failingStore) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status string, videoURL *string) error {
	if f.updateVideoErr != nil {
		return f.updateVideoErr
	}
	return f.Store.UpdateVideoStatus(ctx, id, status, videoURL)
}
