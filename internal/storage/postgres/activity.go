package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rryowa/fitness_session/internal/models"
	"github.com/rryowa/fitness_session/internal/storage"
)

type ActivityRepository struct {
	db storage.DBTX
}

func NewActivityRepository(db storage.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) ListActivities(ctx context.Context, ownerID int64) ([]models.Activity, error) {
	query := `SELECT id, owner_id, title, description, status, created_at, updated_at
		FROM activities WHERE owner_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := make([]models.Activity, 0)
	for rows.Next() {
		var (
			a                    models.Activity
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.CreatedAt, a.UpdatedAt = &createdAt, &updatedAt
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

func (r *ActivityRepository) CreateActivity(ctx context.Context, activity models.Activity) (*models.Activity, error) {
	query := `INSERT INTO activities (owner_id, title, description, status)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	var createdAt, updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, activity.OwnerID, activity.Title, activity.Description, activity.Status).
		Scan(&activity.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}
	activity.CreatedAt, activity.UpdatedAt = &createdAt, &updatedAt
	return &activity, nil
}

func (r *ActivityRepository) UpdateActivityStatus(
	ctx context.Context,
	ownerID, id int64,
	status models.ActivityStatus,
	now time.Time,
) (*models.Activity, error) {
	query := `UPDATE activities SET status = $1, updated_at = $2
		WHERE id = $3 AND owner_id = $4
		RETURNING id, owner_id, title, description, status, created_at, updated_at`
	var (
		a                    models.Activity
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, status, now, id, ownerID).
		Scan(&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.Status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrActivityNotFound
		}
		return nil, fmt.Errorf("update activity: %w", err)
	}
	a.CreatedAt, a.UpdatedAt = &createdAt, &updatedAt
	return &a, nil
}

func (r *ActivityRepository) DeleteActivity(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if n == 0 {
		return storage.ErrActivityNotFound
	}
	return nil
}
