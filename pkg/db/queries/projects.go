package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ASHISH26940/asmr-studio-api/pkg/db"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const projectColumns = `id, user_id, name, description, created_at, updated_at`

func (q *Queries) CreateProject(ctx context.Context, project *db.Project) (*db.Project, error) {
	query := `
		INSERT INTO projects (user_id, name, description)
		VALUES (:user_id, :name, :description)
		RETURNING id, created_at, updated_at`

	ok, err := namedReturning(ctx, q.db, query, project)
	if err != nil {
		log.Errorf("Error creating project: %v", err)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no rows returned after project creation")
	}

	log.Infof("Project '%s' created for user ID: %s (ID: %s)", project.Name, project.UserID.String(), project.ID.String())
	return project, nil
}

// FindProject returns the project only when userID owns it; otherwise (nil, nil).
func (q *Queries) FindProject(ctx context.Context, id, userID uuid.UUID) (*db.Project, error) {
	project := &db.Project{}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND user_id = $2`
	if err := q.db.GetContext(ctx, project, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("Project '%s' not found for user '%s'.", id.String(), userID.String())
			return nil, nil
		}
		log.Errorf("Error finding project by ID '%s': %v", id.String(), err)
		return nil, fmt.Errorf("error finding project by ID: %w", err)
	}
	return project, nil
}

// ListProjects returns the user's projects, most recently touched first,
// each with the number of prompts filed under it.
func (q *Queries) ListProjects(ctx context.Context, userID uuid.UUID) ([]db.ProjectSummary, error) {
	projects := []db.ProjectSummary{}
	query := `
		SELECT p.id, p.user_id, p.name, p.description, p.created_at, p.updated_at,
		       COUNT(up.id) AS prompt_count
		FROM projects p
		LEFT JOIN user_prompts up ON up.project_id = p.id
		WHERE p.user_id = $1
		GROUP BY p.id
		ORDER BY p.updated_at DESC`
	if err := q.db.SelectContext(ctx, &projects, query, userID); err != nil {
		log.Errorf("Error listing projects for user ID '%s': %v", userID.String(), err)
		return nil, fmt.Errorf("error listing projects: %w", err)
	}
	return projects, nil
}

func (q *Queries) UpdateProject(ctx context.Context, id, userID uuid.UUID, upd db.ProjectUpdate) (*db.Project, error) {
	project := &db.Project{}
	query := `
		UPDATE projects
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + projectColumns
	if err := q.db.GetContext(ctx, project, query, id, userID, upd.Name, upd.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warnf("No project found with ID '%s' for user '%s' to update.", id.String(), userID.String())
			return nil, db.ErrNotFound
		}
		log.Errorf("Error updating project '%s': %v", id.String(), err)
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	log.Infof("Project '%s' updated.", id.String())
	return project, nil
}

// TouchProject bumps updated_at so the project sorts first.
func (q *Queries) TouchProject(ctx context.Context, id, userID uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, `UPDATE projects SET updated_at = NOW() WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (q *Queries) DeleteProject(ctx context.Context, id, userID uuid.UUID) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Errorf("Error deleting project '%s': %v", id.String(), err)
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		log.Warnf("No project found with ID '%s' for user '%s' to delete.", id.String(), userID.String())
		return db.ErrNotFound
	}

	log.Infof("Project '%s' deleted.", id.String())
	return nil
}
