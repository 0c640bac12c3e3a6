package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
)

// projectPromptLimit caps how many prompts a project view loads.
const projectPromptLimit = 1000

// Session is one enhancement batch, as shown to users.
type Session struct {
	SessionID      uuid.UUID   `json:"session_id"`
	OriginalPrompt string      `json:"original_prompt"`
	CreatedAt      time.Time   `json:"created_at"`
	Prompts        []db.Prompt `json:"prompts"`
}

// GroupSessions buckets prompts by session id. Sessions keep the order in
// which they first appear, so newest-first input gives newest-first sessions.
func GroupSessions(prompts []db.Prompt) []Session {
	index := make(map[uuid.UUID]int)
	sessions := []Session{}
	for _, p := range prompts {
		i, ok := index[p.SessionID]
		if !ok {
			i = len(sessions)
			index[p.SessionID] = i
			sessions = append(sessions, Session{
				SessionID:      p.SessionID,
				OriginalPrompt: p.OriginalPrompt,
				CreatedAt:      p.CreatedAt,
			})
		}
		sessions[i].Prompts = append(sessions[i].Prompts, p)
	}
	return sessions
}

type ProjectService struct {
	store       db.Store
	promptLimit int
}

func NewProjectService(store db.Store) *ProjectService {
	return &ProjectService{store: store, promptLimit: projectPromptLimit}
}

// ProjectDetail is a project with its newest prompts. Truncated is set when
// the project holds more prompts than one view loads.
type ProjectDetail struct {
	Project     *db.Project `json:"project"`
	Sessions    []Session   `json:"sessions"`
	PromptCount int         `json:"promptCount"`
	Truncated   bool        `json:"truncated"`
}

func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]db.ProjectSummary, error) {
	return s.store.ListProjects(ctx, userID)
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*ProjectDetail, error) {
	project, err := s.store.FindProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	prompts, err := s.store.ListPrompts(ctx, userID, db.PromptFilter{ProjectID: &projectID, Limit: s.promptLimit + 1})
	if err != nil {
		return nil, err
	}
	truncated := len(prompts) > s.promptLimit
	if truncated {
		prompts = prompts[:s.promptLimit]
	}
	return &ProjectDetail{
		Project:     project,
		Sessions:    GroupSessions(prompts),
		PromptCount: len(prompts),
		Truncated:   truncated,
	}, nil
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, name string, description *string) (*db.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "project name is required")
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		description = &d
	}
	return s.store.CreateProject(ctx, &db.Project{UserID: userID, Name: name, Description: description})
}

func (s *ProjectService) Update(ctx context.Context, userID, projectID uuid.UUID, upd db.ProjectUpdate) (*db.Project, error) {
	if upd.Name != nil {
		n := strings.TrimSpace(*upd.Name)
		if n == "" {
			return nil, invalid("name", "project name cannot be empty")
		}
		upd.Name = &n
	}
	if upd.Name == nil && upd.Description == nil {
		return nil, invalid("body", "nothing to update")
	}
	project, err := s.store.UpdateProject(ctx, projectID, userID, upd)
	if errors.Is(err, db.ErrNotFound) || (err == nil && project == nil) {
		return nil, ErrNotFound
	}
	return project, err
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	err := s.store.DeleteProject(ctx, projectID, userID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

type PromptListing struct {
	Prompts  []db.Prompt `json:"prompts"`
	Sessions []Session   `json:"sessions"`
	Count    int         `json:"count"`
}

func (s *ProjectService) ListPrompts(ctx context.Context, userID uuid.UUID, filter db.PromptFilter) (*PromptListing, error) {
	if filter.Limit <= 0 {
		filter.Limit = db.DefaultPromptLimit
	}
	prompts, err := s.store.ListPrompts(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if prompts == nil {
		prompts = []db.Prompt{}
	}
	return &PromptListing{Prompts: prompts, Sessions: GroupSessions(prompts), Count: len(prompts)}, nil
}

// UpdatePromptFlags changes only the favorite and used-for-video markers.
func (s *ProjectService) UpdatePromptFlags(ctx context.Context, userID, promptID uuid.UUID, flags db.PromptFlags) (*db.Prompt, error) {
	if flags.Empty() {
		return nil, invalid("body", "is_favorited or used_for_video is required")
	}
	p, err := s.store.UpdatePromptFlags(ctx, promptID, userID, flags)
	if errors.Is(err, db.ErrNotFound) || (err == nil && p == nil) {
		return nil, ErrNotFound
	}
	return p, err
}
