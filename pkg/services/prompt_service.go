package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/ASHISH26940/asmr-studio-api/pkg/llm"
	"github.com/ASHISH26940/asmr-studio-api/pkg/promptgen"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PromptService turns short ideas into cinematic prompt sessions.
type PromptService struct {
	llm   llm.Completer
	store db.Store
}

func NewPromptService(completer llm.Completer, store db.Store) *PromptService {
	return &PromptService{llm: completer, store: store}
}

type EnhanceRequest struct {
	Idea      string
	UserID    *uuid.UUID
	ProjectID *uuid.UUID
	Metadata  *promptgen.ProjectMetadata
}

type EnhanceResult struct {
	EnhancedPrompts  []promptgen.PromptItem     `json:"enhancedPrompts"`
	SessionID        *uuid.UUID                 `json:"sessionId"`
	ProjectID        *uuid.UUID                 `json:"projectId"`
	ProjectCreated   bool                       `json:"projectCreated"`
	SavedPromptCount int                        `json:"savedPromptCount"`
	ParseTier        string                     `json:"parseTier"`
	ProjectMetadata  *promptgen.ProjectMetadata `json:"projectMetadata,omitempty"`
}

// Enhance asks the model for nine variations of the idea. When a user is
// given the variations are saved as a new session; saving never fails the call.
func (s *PromptService) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResult, error) {
	idea := strings.TrimSpace(req.Idea)
	if idea == "" {
		return nil, invalid("prompt", "no prompt provided")
	}
	meta := req.Metadata
	if !meta.Normalize() {
		meta = nil
	}

	raw, err := s.llm.Complete(ctx, llm.ChatRequest{
		System:      promptgen.PromptListInstruction(meta),
		User:        idea,
		MaxTokens:   promptgen.PromptListMaxTokens,
		Temperature: promptgen.PromptListTemperature,
	})
	if err != nil {
		log.Errorf("Enhance: completion failed: %v", err)
		return nil, err
	}

	items, tier := promptgen.ParsePromptList(raw)
	if tier != promptgen.TierDirect {
		log.Warnf("Enhance: model reply needed %s parsing (%d items)", tier, len(items))
	}

	result := &EnhanceResult{
		EnhancedPrompts: items,
		ProjectID:       req.ProjectID,
		ParseTier:       tier.String(),
		ProjectMetadata: meta,
	}
	if req.UserID != nil {
		s.saveSession(ctx, *req.UserID, idea, meta, items, result)
	}
	return result, nil
}

func (s *PromptService) saveSession(ctx context.Context, userID uuid.UUID, idea string, meta *promptgen.ProjectMetadata, items []promptgen.PromptItem, result *EnhanceResult) {
	projectID := result.ProjectID
	if projectID == nil {
		name := promptgen.TruncateTitle(idea)
		description := promptgen.DefaultProjectDescription(idea)
		if meta != nil {
			if meta.Title != "" {
				name = promptgen.TruncateTitle(meta.Title)
			}
			if meta.Description != "" {
				description = meta.Description
			}
		}
		project, err := s.store.CreateProject(ctx, &db.Project{
			UserID:      userID,
			Name:        name,
			Description: &description,
		})
		if err != nil {
			log.Errorf("Enhance: failed to create project for user %s, saving session without it: %v", userID, err)
		} else {
			projectID = &project.ID
			result.ProjectCreated = true
			log.Infof("Enhance: created project %s (%q) for user %s", project.ID, project.Name, userID)
		}
	} else if err := s.store.TouchProject(ctx, *projectID, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Warnf("Enhance: project %s not found for user %s, saving session without it", *projectID, userID)
			projectID = nil
		} else {
			log.Errorf("Enhance: failed to touch project %s: %v", *projectID, err)
		}
	}
	result.ProjectID = projectID

	sessionID := uuid.New()
	rows := make([]db.Prompt, 0, len(items))
	for _, item := range items {
		rows = append(rows, db.Prompt{
			UserID:         userID,
			SessionID:      sessionID,
			ProjectID:      projectID,
			OriginalPrompt: idea,
			Title:          item.Title,
			Description:    item.Description,
		})
	}
	saved, err := s.store.CreatePrompts(ctx, rows)
	if err != nil {
		log.Errorf("Enhance: failed to save %d prompts for user %s: %v", len(rows), userID, err)
		return
	}
	result.SessionID = &sessionID
	result.SavedPromptCount = len(saved)
	log.Infof("Enhance: saved %d prompts in session %s", len(saved), sessionID)
}

// GenerateMetadata asks the model for a project brief. The second result is
// false when the reply was unusable and the brief was derived from the idea.
func (s *PromptService) GenerateMetadata(ctx context.Context, idea string) (promptgen.ProjectMetadata, bool, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return promptgen.ProjectMetadata{}, false, invalid("prompt", "no prompt provided")
	}

	raw, err := s.llm.Complete(ctx, llm.ChatRequest{
		System:      promptgen.MetadataInstruction(),
		User:        idea,
		MaxTokens:   promptgen.MetadataMaxTokens,
		Temperature: promptgen.MetadataTemperature,
	})
	if err != nil {
		log.Errorf("GenerateMetadata: completion failed: %v", err)
		return promptgen.ProjectMetadata{}, false, err
	}

	meta, ok := promptgen.ParseProjectMetadata(raw, idea)
	if !ok {
		log.Warnf("GenerateMetadata: unusable reply, derived metadata from input")
	}
	return meta, ok, nil
}

// EnhanceProjectPrompts generates a brief first and threads it into Enhance.
func (s *PromptService) EnhanceProjectPrompts(ctx context.Context, req EnhanceRequest) (*EnhanceResult, error) {
	meta, _, err := s.GenerateMetadata(ctx, req.Idea)
	if err != nil {
		return nil, err
	}
	req.Metadata = &meta
	return s.Enhance(ctx, req)
}

// EnhanceSingle rewrites the idea as one richer prompt. Nothing is stored.
func (s *PromptService) EnhanceSingle(ctx context.Context, idea string) (string, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", invalid("prompt", "no prompt provided")
	}
	out, err := s.llm.Complete(ctx, llm.ChatRequest{
		System:      promptgen.SingleInstruction(),
		User:        idea,
		MaxTokens:   promptgen.SingleMaxTokens,
		Temperature: promptgen.SingleTemperature,
	})
	if err != nil {
		log.Errorf("EnhanceSingle: completion failed: %v", err)
		return "", err
	}
	return out, nil
}
