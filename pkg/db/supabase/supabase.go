// Package supabase implements db.Store over the Supabase REST interface, for
// deployments that keep their tables in a hosted Supabase project
// (STORE_DRIVER=supabase).
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const (
	tableUsers    = "users"
	tableProjects = "projects"
	tablePrompts  = "user_prompts"
	tableVideos   = "user_videos"
	tablePayments = "payments"

	returnRows = "representation"
)

type Store struct {
	client *supa.Client
}

var _ db.Store = (*Store)(nil)

// NewStore connects with the service key, which bypasses row level security;
// every query below filters by owner itself.
func NewStore(url, serviceKey string) (*Store, error) {
	client, err := supa.NewClient(url, serviceKey, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	log.Infof("Supabase store ready at %s", url)
	return &Store{client: client}, nil
}

var newestFirst = &postgrest.OrderOpts{Ascending: false}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func first[T any](rows []T) *T {
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}

func (s *Store) CreateUser(_ context.Context, user *db.User) (*db.User, error) {
	var rows []db.User
	_, err := s.client.From(tableUsers).
		Insert(map[string]interface{}{
			"username":      user.Username,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
		}, false, "", returnRows, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	created := first(rows)
	if created == nil {
		return nil, fmt.Errorf("create user: no row returned")
	}
	// password_hash is not serialized back out of db.User
	created.PasswordHash = user.PasswordHash
	*user = *created
	return created, nil
}

// users carries password_hash, which db.User hides from JSON.
type userRow struct {
	db.User
	PasswordHash string `json:"password_hash"`
}

func (s *Store) findUser(column, value string) (*db.User, error) {
	var rows []userRow
	_, err := s.client.From(tableUsers).
		Select("*", "", false).
		Eq(column, value).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	u := rows[0].User
	u.PasswordHash = rows[0].PasswordHash
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*db.User, error) {
	return s.findUser("email", email)
}

func (s *Store) FindUserByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	return s.findUser("id", id.String())
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	var rows []json.RawMessage
	_, err := s.client.From(tableUsers).
		Delete(returnRows, "").
		Eq("id", id.String()).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if len(rows) == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) CreateProject(_ context.Context, project *db.Project) (*db.Project, error) {
	var rows []db.Project
	_, err := s.client.From(tableProjects).
		Insert(map[string]interface{}{
			"user_id":     project.UserID.String(),
			"name":        project.Name,
			"description": project.Description,
		}, false, "", returnRows, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	created := first(rows)
	if created == nil {
		return nil, fmt.Errorf("no rows returned after project creation")
	}
	*project = *created
	log.Infof("Project '%s' created for user ID: %s (ID: %s)", created.Name, created.UserID, created.ID)
	return created, nil
}

func (s *Store) FindProject(_ context.Context, id, userID uuid.UUID) (*db.Project, error) {
	var rows []db.Project
	_, err := s.client.From(tableProjects).
		Select("*", "", false).
		Eq("id", id.String()).
		Eq("user_id", userID.String()).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("error finding project by ID: %w", err)
	}
	return first(rows), nil
}

func (s *Store) ListProjects(_ context.Context, userID uuid.UUID) ([]db.ProjectSummary, error) {
	var projects []db.Project
	_, err := s.client.From(tableProjects).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Order("updated_at", newestFirst).
		ExecuteTo(&projects)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %w", err)
	}

	var refs []struct {
		ProjectID *uuid.UUID `json:"project_id"`
	}
	_, err = s.client.From(tablePrompts).
		Select("project_id", "", false).
		Eq("user_id", userID.String()).
		ExecuteTo(&refs)
	if err != nil {
		return nil, fmt.Errorf("error counting project prompts: %w", err)
	}
	counts := make(map[uuid.UUID]int, len(projects))
	for _, r := range refs {
		if r.ProjectID != nil {
			counts[*r.ProjectID]++
		}
	}

	out := make([]db.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, db.ProjectSummary{Project: p, PromptCount: counts[p.ID]})
	}
	return out, nil
}

func (s *Store) UpdateProject(_ context.Context, id, userID uuid.UUID, upd db.ProjectUpdate) (*db.Project, error) {
	changes := map[string]interface{}{"updated_at": nowISO()}
	if upd.Name != nil {
		changes["name"] = *upd.Name
	}
	if upd.Description != nil {
		changes["description"] = *upd.Description
	}

	var rows []db.Project
	_, err := s.client.From(tableProjects).
		Update(changes, returnRows, "").
		Eq("id", id.String()).
		Eq("user_id", userID.String()).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	updated := first(rows)
	if updated == nil {
		return nil, db.ErrNotFound
	}
	return updated, nil
}

func (s *Store) TouchProject(ctx context.Context, id, userID uuid.UUID) error {
	_, err := s.UpdateProject(ctx, id, userID, db.ProjectUpdate{})
	return err
}

func (s *Store) DeleteProject(_ context.Context, id, userID uuid.UUID) error {
	var rows []json.RawMessage
	_, err := s.client.From(tableProjects).
		Delete(returnRows, "").
		Eq("id", id.String()).
		Eq("user_id", userID.String()).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if len(rows) == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) CreatePrompts(_ context.Context, prompts []db.Prompt) ([]db.Prompt, error) {
	if len(prompts) == 0 {
		return nil, nil
	}
	payload := make([]map[string]interface{}, 0, len(prompts))
	for _, p := range prompts {
		row := map[string]interface{}{
			"user_id":         p.UserID.String(),
			"session_id":      p.SessionID.String(),
			"original_prompt": p.OriginalPrompt,
			"title":           p.Title,
			"description":     p.Description,
			"is_favorited":    p.IsFavorited,
			"used_for_video":  p.UsedForVideo,
			"project_id":      nil,
		}
		if p.ProjectID != nil {
			row["project_id"] = p.ProjectID.String()
		}
		payload = append(payload, row)
	}

	var rows []db.Prompt
	_, err := s.client.From(tablePrompts).
		Insert(payload, false, "", returnRows, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("insert prompts: %w", err)
	}
	return rows, nil
}

func (s *Store) ListPrompts(_ context.Context, userID uuid.UUID, filter db.PromptFilter) ([]db.Prompt, error) {
	q := s.client.From(tablePrompts).
		Select("*", "", false).
		Eq("user_id", userID.String())
	if filter.SessionID != nil {
		q = q.Eq("session_id", filter.SessionID.String())
	}
	if filter.ProjectID != nil {
		q = q.Eq("project_id", filter.ProjectID.String())
	}
	if filter.FavoritedOnly {
		q = q.Eq("is_favorited", "true")
	}
	q = q.Order("created_at", newestFirst)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit, "")
	}

	rows := []db.Prompt{}
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("error listing prompts: %w", err)
	}
	return rows, nil
}

func (s *Store) UpdatePromptFlags(_ context.Context, id, userID uuid.UUID, flags db.PromptFlags) (*db.Prompt, error) {
	changes := map[string]interface{}{}
	if flags.IsFavorited != nil {
		changes["is_favorited"] = *flags.IsFavorited
	}
	if flags.UsedForVideo != nil {
		changes["used_for_video"] = *flags.UsedForVideo
	}

	var rows []db.Prompt
	_, err := s.client.From(tablePrompts).
		Update(changes, returnRows, "").
		Eq("id", id.String()).
		Eq("user_id", userID.String()).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}
	updated := first(rows)
	if updated == nil {
		return nil, db.ErrNotFound
	}
	return updated, nil
}

func (s *Store) CreateVideo(_ context.Context, video *db.Video) (*db.Video, error) {
	if video.Status == "" {
		video.Status = db.VideoPending
	}
	row := map[string]interface{}{
		"user_id":         video.UserID.String(),
		"original_prompt": video.OriginalPrompt,
		"enhanced_prompt": video.EnhancedPrompt,
		"status":          video.Status,
		"prediction_id":   video.PredictionID,
		"video_url":       video.VideoURL,
	}
	if video.PaymentID != nil {
		row["payment_id"] = video.PaymentID.String()
	}

	var rows []db.Video
	_, err := s.client.From(tableVideos).
		Insert(row, false, "", returnRows, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	created := first(rows)
	if created == nil {
		return nil, fmt.Errorf("no rows returned after video creation")
	}
	*video = *created
	return created, nil
}

func (s *Store) updateVideo(id uuid.UUID, changes map[string]interface{}) error {
	changes["updated_at"] = nowISO()
	var rows []json.RawMessage
	_, err := s.client.From(tableVideos).
		Update(changes, returnRows, "").
		Eq("id", id.String()).
		ExecuteTo(&rows)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	if len(rows) == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) SetVideoPrediction(_ context.Context, id uuid.UUID, predictionID string) error {
	return s.updateVideo(id, map[string]interface{}{"prediction_id": predictionID})
}

func (s *Store) UpdateVideoStatus(_ context.Context, id uuid.UUID, status string, videoURL *string) error {
	changes := map[string]interface{}{"status": status}
	if videoURL != nil {
		changes["video_url"] = *videoURL
	}
	if err := s.updateVideo(id, changes); err != nil {
		return err
	}
	log.Infof("Video '%s' is now %s", id.String(), status)
	return nil
}

func (s *Store) FindVideoByPrediction(_ context.Context, userID uuid.UUID, predictionID string) (*db.Video, error) {
	var rows []db.Video
	_, err := s.client.From(tableVideos).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Eq("prediction_id", predictionID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("error finding video by prediction: %w", err)
	}
	return first(rows), nil
}

func (s *Store) ListVideos(_ context.Context, userID uuid.UUID) ([]db.Video, error) {
	rows := []db.Video{}
	_, err := s.client.From(tableVideos).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Order("created_at", newestFirst).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("error listing videos: %w", err)
	}
	return rows, nil
}

func (s *Store) FindPaymentByProviderID(_ context.Context, providerPaymentID string) (*db.Payment, error) {
	var rows []db.Payment
	_, err := s.client.From(tablePayments).
		Select("*", "", false).
		Eq("provider_payment_id", providerPaymentID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("error finding payment: %w", err)
	}
	return first(rows), nil
}

// RecordPayment checks first and leans on the unique provider_payment_id
// index for the insert race: a conflicting insert is answered by re-reading.
func (s *Store) RecordPayment(ctx context.Context, payment *db.Payment) (*db.Payment, bool, error) {
	if existing, err := s.FindPaymentByProviderID(ctx, payment.ProviderPaymentID); err != nil || existing != nil {
		return existing, false, err
	}

	var rows []db.Payment
	_, err := s.client.From(tablePayments).
		Insert(map[string]interface{}{
			"user_id":             payment.UserID.String(),
			"provider_payment_id": payment.ProviderPaymentID,
			"provider_session_id": payment.ProviderSessionID,
			"amount":              payment.Amount,
			"status":              payment.Status,
			"pricing_tier":        payment.PricingTier,
		}, false, "", returnRows, "").
		ExecuteTo(&rows)
	if err != nil {
		if isUniqueViolation(err) {
			existing, ferr := s.FindPaymentByProviderID(ctx, payment.ProviderPaymentID)
			if ferr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to record payment: %w", err)
	}
	created := first(rows)
	if created == nil {
		return nil, false, fmt.Errorf("no rows returned after payment insert")
	}
	*payment = *created
	return created, true, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(strings.ToLower(msg), "duplicate key")
}

func (s *Store) ListPayments(_ context.Context, userID uuid.UUID) ([]db.Payment, error) {
	rows := []db.Payment{}
	_, err := s.client.From(tablePayments).
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Order("created_at", newestFirst).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	return rows, nil
}

// WalletTotals sums client side; PostgREST has no aggregate without a view.
func (s *Store) WalletTotals(_ context.Context, userID uuid.UUID) (db.WalletTotals, error) {
	var totals db.WalletTotals

	var amounts []struct {
		Amount int64 `json:"amount"`
	}
	_, err := s.client.From(tablePayments).
		Select("amount", "", false).
		Eq("user_id", userID.String()).
		Eq("status", db.PaymentCompleted).
		ExecuteTo(&amounts)
	if err != nil {
		return totals, fmt.Errorf("error summing payments: %w", err)
	}
	for _, a := range amounts {
		totals.PaidCents += a.Amount
	}

	_, count, err := s.client.From(tableVideos).
		Select("id", "exact", true).
		Eq("user_id", userID.String()).
		In("status", db.ChargedVideoStatuses).
		Execute()
	if err != nil {
		return totals, fmt.Errorf("error counting videos: %w", err)
	}
	totals.ChargedVideos = count
	log.Debugf("Wallet totals for %s: paid=%d videos=%d", userID, totals.PaidCents, count)
	return totals, nil
}
