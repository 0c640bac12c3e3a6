// Package memstore is a process-local db.Store used for local development
// (STORE_DRIVER=memory) and by the service and handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	last     time.Time
	users    map[uuid.UUID]db.User
	projects map[uuid.UUID]db.Project
	prompts  map[uuid.UUID]db.Prompt
	videos   map[uuid.UUID]db.Video
	payments map[uuid.UUID]db.Payment
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[uuid.UUID]db.User),
		projects: make(map[uuid.UUID]db.Project),
		prompts:  make(map[uuid.UUID]db.Prompt),
		videos:   make(map[uuid.UUID]db.Video),
		payments: make(map[uuid.UUID]db.Payment),
	}
}

// tick returns a strictly increasing timestamp so orderings are stable.
// Callers hold the write lock.
func (s *Store) tick() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Microsecond)
	}
	s.last = t
	return t
}

func (s *Store) CreateUser(_ context.Context, user *db.User) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, &UniqueViolation{Field: "email"}
		}
	}
	u := *user
	u.ID = uuid.New()
	u.CreatedAt = s.tick()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	*user = u
	return &u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*db.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

// DeleteUser drops the user and everything the user owns.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.users, id)
	for k, v := range s.projects {
		if v.UserID == id {
			delete(s.projects, k)
		}
	}
	for k, v := range s.prompts {
		if v.UserID == id {
			delete(s.prompts, k)
		}
	}
	for k, v := range s.videos {
		if v.UserID == id {
			delete(s.videos, k)
		}
	}
	for k, v := range s.payments {
		if v.UserID == id {
			delete(s.payments, k)
		}
	}
	return nil
}

func (s *Store) CreateProject(_ context.Context, project *db.Project) (*db.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *project
	p.ID = uuid.New()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = p
	*project = p
	return &p, nil
}

func (s *Store) FindProject(_ context.Context, id, userID uuid.UUID) (*db.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) ListProjects(_ context.Context, userID uuid.UUID) ([]db.ProjectSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[uuid.UUID]int)
	for _, pr := range s.prompts {
		if pr.ProjectID != nil {
			counts[*pr.ProjectID]++
		}
	}
	out := []db.ProjectSummary{}
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, db.ProjectSummary{Project: p, PromptCount: counts[p.ID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Store) UpdateProject(_ context.Context, id, userID uuid.UUID, upd db.ProjectUpdate) (*db.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return nil, db.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		d := *upd.Description
		p.Description = &d
	}
	p.UpdatedAt = s.tick()
	s.projects[id] = p
	return &p, nil
}

func (s *Store) TouchProject(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return db.ErrNotFound
	}
	p.UpdatedAt = s.tick()
	s.projects[id] = p
	return nil
}

func (s *Store) DeleteProject(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return db.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *Store) CreatePrompts(_ context.Context, prompts []db.Prompt) ([]db.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make([]db.Prompt, 0, len(prompts))
	for _, p := range prompts {
		p.ID = uuid.New()
		p.CreatedAt = s.tick()
		s.prompts[p.ID] = p
		saved = append(saved, p)
	}
	return saved, nil
}

func (s *Store) ListPrompts(_ context.Context, userID uuid.UUID, filter db.PromptFilter) ([]db.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []db.Prompt{}
	for _, p := range s.prompts {
		if p.UserID != userID {
			continue
		}
		if filter.SessionID != nil && p.SessionID != *filter.SessionID {
			continue
		}
		if filter.ProjectID != nil && (p.ProjectID == nil || *p.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.FavoritedOnly && !p.IsFavorited {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) UpdatePromptFlags(_ context.Context, id, userID uuid.UUID, flags db.PromptFlags) (*db.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[id]
	if !ok || p.UserID != userID {
		return nil, db.ErrNotFound
	}
	if flags.IsFavorited != nil {
		p.IsFavorited = *flags.IsFavorited
	}
	if flags.UsedForVideo != nil {
		p.UsedForVideo = *flags.UsedForVideo
	}
	s.prompts[id] = p
	return &p, nil
}

func (s *Store) CreateVideo(_ context.Context, video *db.Video) (*db.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := *video
	if v.Status == "" {
		v.Status = db.VideoPending
	}
	v.ID = uuid.New()
	v.CreatedAt = s.tick()
	v.UpdatedAt = v.CreatedAt
	s.videos[v.ID] = v
	*video = v
	return &v, nil
}

func (s *Store) SetVideoPrediction(_ context.Context, id uuid.UUID, predictionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return db.ErrNotFound
	}
	v.PredictionID = &predictionID
	v.UpdatedAt = s.tick()
	s.videos[id] = v
	return nil
}

func (s *Store) UpdateVideoStatus(_ context.Context, id uuid.UUID, status string, videoURL *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return db.ErrNotFound
	}
	v.Status = status
	if videoURL != nil {
		u := *videoURL
		v.VideoURL = &u
	}
	v.UpdatedAt = s.tick()
	s.videos[id] = v
	return nil
}

func (s *Store) FindVideoByPrediction(_ context.Context, userID uuid.UUID, predictionID string) (*db.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.videos {
		if v.UserID == userID && v.PredictionID != nil && *v.PredictionID == predictionID {
			v := v
			return &v, nil
		}
	}
	return nil, nil
}

func (s *Store) ListVideos(_ context.Context, userID uuid.UUID) ([]db.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []db.Video{}
	for _, v := range s.videos {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) FindPaymentByProviderID(_ context.Context, providerPaymentID string) (*db.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findPaymentLocked(providerPaymentID), nil
}

func (s *Store) findPaymentLocked(providerPaymentID string) *db.Payment {
	for _, p := range s.payments {
		if p.ProviderPaymentID == providerPaymentID {
			p := p
			return &p
		}
	}
	return nil
}

func (s *Store) RecordPayment(_ context.Context, payment *db.Payment) (*db.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.findPaymentLocked(payment.ProviderPaymentID); existing != nil {
		return existing, false, nil
	}
	p := *payment
	p.ID = uuid.New()
	p.CreatedAt = s.tick()
	s.payments[p.ID] = p
	*payment = p
	return &p, true, nil
}

func (s *Store) ListPayments(_ context.Context, userID uuid.UUID) ([]db.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []db.Payment{}
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) WalletTotals(_ context.Context, userID uuid.UUID) (db.WalletTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var totals db.WalletTotals
	for _, p := range s.payments {
		if p.UserID == userID && p.Status == db.PaymentCompleted {
			totals.PaidCents += p.Amount
		}
	}
	for _, v := range s.videos {
		if v.UserID == userID && db.IsChargedVideoStatus(v.Status) {
			totals.ChargedVideos++
		}
	}
	return totals, nil
}

// UniqueViolation mirrors a unique-constraint failure from a real database.
type UniqueViolation struct {
	Field string
}

func (e *UniqueViolation) Error() string {
	return "duplicate value for unique field " + e.Field
}
