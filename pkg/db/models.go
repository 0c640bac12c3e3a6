package db

import (
	"time"

	"github.com/google/uuid"
)

// Video lifecycle. Rows start in VideoProcessing and end in completed or failed.
const (
	VideoPending    = "pending"
	VideoProcessing = "processing"
	VideoCompleted  = "completed"
	VideoFailed     = "failed"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type Project struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProjectSummary is a project row plus the number of prompts filed under it.
type ProjectSummary struct {
	Project
	PromptCount int `db:"prompt_count" json:"prompt_count"`
}

// ProjectUpdate carries the writable project fields; nil means unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// Prompt is one member of a prompt session.
type Prompt struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	SessionID      uuid.UUID  `db:"session_id" json:"session_id"`
	ProjectID      *uuid.UUID `db:"project_id" json:"project_id"`
	OriginalPrompt string     `db:"original_prompt" json:"original_prompt"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	IsFavorited    bool       `db:"is_favorited" json:"is_favorited"`
	UsedForVideo   bool       `db:"used_for_video" json:"used_for_video"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// PromptFlags are the only prompt fields a user may change.
type PromptFlags struct {
	IsFavorited  *bool `json:"is_favorited"`
	UsedForVideo *bool `json:"used_for_video"`
}

func (f PromptFlags) Empty() bool {
	return f.IsFavorited == nil && f.UsedForVideo == nil
}

// PromptFilter narrows ListPrompts. Zero values mean "any".
type PromptFilter struct {
	SessionID     *uuid.UUID
	ProjectID     *uuid.UUID
	FavoritedOnly bool
	Limit         int
}

type Video struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	OriginalPrompt string     `db:"original_prompt" json:"original_prompt"`
	EnhancedPrompt string     `db:"enhanced_prompt" json:"enhanced_prompt"`
	Status         string     `db:"status" json:"status"`
	PredictionID   *string    `db:"prediction_id" json:"prediction_id"`
	VideoURL       *string    `db:"video_url" json:"video_url"`
	PaymentID      *uuid.UUID `db:"payment_id" json:"payment_id"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type Payment struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	ProviderPaymentID string    `db:"provider_payment_id" json:"provider_payment_id"`
	ProviderSessionID *string   `db:"provider_session_id" json:"provider_session_id"`
	Amount            int64     `db:"amount" json:"amount"`
	Status            string    `db:"status" json:"status"`
	PricingTier       *string   `db:"pricing_tier" json:"pricing_tier"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// WalletTotals are the two aggregates the wallet balance is derived from.
type WalletTotals struct {
	PaidCents     int64 `db:"paid_cents"`
	ChargedVideos int64 `db:"charged_videos"`
}

// ChargedVideoStatuses lists the video states that consume wallet credit.
// A submission is charged as soon as its row exists, whatever the outcome.
var ChargedVideoStatuses = []string{VideoProcessing, VideoCompleted, VideoFailed}

func IsChargedVideoStatus(status string) bool {
	for _, s := range ChargedVideoStatuses {
		if s == status {
			return true
		}
	}
	return false
}
