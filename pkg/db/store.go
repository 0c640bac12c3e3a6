package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// ErrNotFound is returned by scoped writes that matched no row. It is
// sql.ErrNoRows so callers can test either.
var ErrNotFound = sql.ErrNoRows

// Store is the persistence surface used by the services. Reads of a single
// row return (nil, nil) when nothing matches; writes scoped by owner return
// ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateProject(ctx context.Context, project *Project) (*Project, error)
	FindProject(ctx context.Context, id, userID uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]ProjectSummary, error)
	UpdateProject(ctx context.Context, id, userID uuid.UUID, upd ProjectUpdate) (*Project, error)
	TouchProject(ctx context.Context, id, userID uuid.UUID) error
	DeleteProject(ctx context.Context, id, userID uuid.UUID) error

	CreatePrompts(ctx context.Context, prompts []Prompt) ([]Prompt, error)
	ListPrompts(ctx context.Context, userID uuid.UUID, filter PromptFilter) ([]Prompt, error)
	UpdatePromptFlags(ctx context.Context, id, userID uuid.UUID, flags PromptFlags) (*Prompt, error)

	CreateVideo(ctx context.Context, video *Video) (*Video, error)
	SetVideoPrediction(ctx context.Context, id uuid.UUID, predictionID string) error
	UpdateVideoStatus(ctx context.Context, id uuid.UUID, status string, videoURL *string) error
	FindVideoByPrediction(ctx context.Context, userID uuid.UUID, predictionID string) (*Video, error)
	ListVideos(ctx context.Context, userID uuid.UUID) ([]Video, error)

	FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*Payment, error)
	// RecordPayment inserts the payment unless one with the same provider
	// payment id exists, in which case the existing row is returned and
	// created is false.
	RecordPayment(ctx context.Context, payment *Payment) (stored *Payment, created bool, err error)
	ListPayments(ctx context.Context, userID uuid.UUID) ([]Payment, error)

	WalletTotals(ctx context.Context, userID uuid.UUID) (WalletTotals, error)
}

// DefaultPromptLimit applies when a listing asks for no explicit limit.
const DefaultPromptLimit = 50
