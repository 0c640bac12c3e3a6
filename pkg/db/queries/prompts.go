package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const promptColumns = `id, user_id, session_id, project_id, original_prompt, title, description, is_favorited, used_for_video, created_at`

// CreatePrompts stores a whole session in one transaction.
func (q *Queries) CreatePrompts(ctx context.Context, prompts []db.Prompt) ([]db.Prompt, error) {
	if len(prompts) == 0 {
		return nil, nil
	}

	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin prompt batch: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO user_prompts (user_id, session_id, project_id, original_prompt, title, description, is_favorited, used_for_video)
		VALUES (:user_id, :session_id, :project_id, :original_prompt, :title, :description, :is_favorited, :used_for_video)
		RETURNING id, created_at`

	saved := make([]db.Prompt, len(prompts))
	copy(saved, prompts)
	for i := range saved {
		ok, err := namedReturning(ctx, tx, query, &saved[i])
		if err != nil {
			log.Errorf("Error inserting prompt %d of session %s: %v", i, saved[i].SessionID.String(), err)
			return nil, fmt.Errorf("insert prompt: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("insert prompt: no row returned")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit prompt batch: %w", err)
	}
	log.Infof("Saved %d prompts for session %s", len(saved), saved[0].SessionID.String())
	return saved, nil
}

// ListPrompts returns the user's prompts, newest first.
func (q *Queries) ListPrompts(ctx context.Context, userID uuid.UUID, filter db.PromptFilter) ([]db.Prompt, error) {
	conds := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.SessionID != nil {
		args = append(args, *filter.SessionID)
		conds = append(conds, fmt.Sprintf("session_id = $%d", len(args)))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.FavoritedOnly {
		conds = append(conds, "is_favorited = TRUE")
	}

	query := `SELECT ` + promptColumns + ` FROM user_prompts WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	prompts := []db.Prompt{}
	if err := q.db.SelectContext(ctx, &prompts, query, args...); err != nil {
		log.Errorf("Error listing prompts for user '%s': %v", userID.String(), err)
		return nil, fmt.Errorf("error listing prompts: %w", err)
	}
	return prompts, nil
}

// UpdatePromptFlags changes is_favorited and/or used_for_video only.
func (q *Queries) UpdatePromptFlags(ctx context.Context, id, userID uuid.UUID, flags db.PromptFlags) (*db.Prompt, error) {
	prompt := &db.Prompt{}
	query := `
		UPDATE user_prompts
		SET is_favorited = COALESCE($3, is_favorited),
		    used_for_video = COALESCE($4, used_for_video)
		WHERE id = $1 AND user_id = $2
		RETURNING ` + promptColumns
	if err := q.db.GetContext(ctx, prompt, query, id, userID, flags.IsFavorited, flags.UsedForVideo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		log.Errorf("Error updating prompt '%s': %v", id.String(), err)
		return nil, fmt.Errorf("failed to update prompt: %w", err)
	}
	return prompt, nil
}
