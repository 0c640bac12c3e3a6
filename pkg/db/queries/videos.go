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

const videoColumns = `id, user_id, original_prompt, enhanced_prompt, status, prediction_id, video_url, payment_id, created_at, updated_at`

func (q *Queries) CreateVideo(ctx context.Context, video *db.Video) (*db.Video, error) {
	if video.Status == "" {
		video.Status = db.VideoPending
	}
	query := `
		INSERT INTO user_videos (user_id, original_prompt, enhanced_prompt, status, prediction_id, video_url, payment_id)
		VALUES (:user_id, :original_prompt, :enhanced_prompt, :status, :prediction_id, :video_url, :payment_id)
		RETURNING id, created_at, updated_at`

	ok, err := namedReturning(ctx, q.db, query, video)
	if err != nil {
		log.Errorf("Error creating video row: %v", err)
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no rows returned after video creation")
	}
	return video, nil
}

func (q *Queries) SetVideoPrediction(ctx context.Context, id uuid.UUID, predictionID string) error {
	result, err := q.db.ExecContext(ctx,
		`UPDATE user_videos SET prediction_id = $2, updated_at = NOW() WHERE id = $1`, id, predictionID)
	if err != nil {
		return fmt.Errorf("failed to set prediction id: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// UpdateVideoStatus sets the status and, when videoURL is non-nil, the URL.
func (q *Queries) UpdateVideoStatus(ctx context.Context, id uuid.UUID, status string, videoURL *string) error {
	result, err := q.db.ExecContext(ctx,
		`UPDATE user_videos SET status = $2, video_url = COALESCE($3, video_url), updated_at = NOW() WHERE id = $1`,
		id, status, videoURL)
	if err != nil {
		log.Errorf("Error updating video '%s' to %s: %v", id.String(), status, err)
		return fmt.Errorf("failed to update video status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return db.ErrNotFound
	}
	log.Infof("Video '%s' is now %s", id.String(), status)
	return nil
}

func (q *Queries) FindVideoByPrediction(ctx context.Context, userID uuid.UUID, predictionID string) (*db.Video, error) {
	video := &db.Video{}
	query := `SELECT ` + videoColumns + ` FROM user_videos WHERE user_id = $1 AND prediction_id = $2`
	if err := q.db.GetContext(ctx, video, query, userID, predictionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding video by prediction: %w", err)
	}
	return video, nil
}

func (q *Queries) ListVideos(ctx context.Context, userID uuid.UUID) ([]db.Video, error) {
	videos := []db.Video{}
	query := `SELECT ` + videoColumns + ` FROM user_videos WHERE user_id = $1 ORDER BY created_at DESC`
	if err := q.db.SelectContext(ctx, &videos, query, userID); err != nil {
		return nil, fmt.Errorf("error listing videos: %w", err)
	}
	return videos, nil
}
