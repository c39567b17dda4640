package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courshub/courshub-api/internal/models"
)

// DistributionRepository persists the course↔group distribution pivot.
type DistributionRepository struct {
	db *sqlx.DB
}

// NewDistributionRepository constructs a DistributionRepository.
func NewDistributionRepository(db *sqlx.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// Replace swaps the full distribution set of a course for exactly the given
// groups, inside one transaction so readers never observe a half-applied set.
// New rows start with open windows.
func (r *DistributionRepository) Replace(ctx context.Context, courseID string, groupIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace distribution: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM distributions WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("clear distribution: %w", err)
	}

	const insert = `INSERT INTO distributions (course_id, group_id, open_at, close_at) VALUES ($1, $2, NULL, NULL)`
	for _, groupID := range groupIDs {
		if _, err := tx.ExecContext(ctx, insert, courseID, groupID); err != nil {
			return fmt.Errorf("attach group %s: %w", groupID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace distribution: %w", err)
	}
	return nil
}

// Find returns the distribution row for a course/group pair, or sql.ErrNoRows.
func (r *DistributionRepository) Find(ctx context.Context, courseID, groupID string) (*models.Distribution, error) {
	const query = `SELECT course_id, group_id, open_at, close_at FROM distributions WHERE course_id = $1 AND group_id = $2 LIMIT 1`
	var dist models.Distribution
	if err := r.db.GetContext(ctx, &dist, query, courseID, groupID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find distribution: %w", err)
	}
	return &dist, nil
}

// UpdateWindow sets the availability window on an existing distribution row.
func (r *DistributionRepository) UpdateWindow(ctx context.Context, dist models.Distribution) error {
	const query = `UPDATE distributions SET open_at = $3, close_at = $4 WHERE course_id = $1 AND group_id = $2`
	result, err := r.db.ExecContext(ctx, query, dist.CourseID, dist.GroupID, dist.OpenAt, dist.CloseAt)
	if err != nil {
		return fmt.Errorf("update distribution window: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated distribution rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
