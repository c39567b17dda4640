package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courshub/courshub-api/internal/models"
)

// DashboardRepository aggregates platform counts for the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Counts returns the aggregate entity counts in a single round trip.
func (r *DashboardRepository) Counts(ctx context.Context) (*models.DashboardStats, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM users) AS users,
        (SELECT COUNT(*) FROM student_profiles) AS students,
        (SELECT COUNT(*) FROM teacher_profiles) AS teachers,
        (SELECT COUNT(*) FROM programs) AS programs,
        (SELECT COUNT(*) FROM groups) AS groups,
        (SELECT COUNT(*) FROM modules) AS modules,
        (SELECT COUNT(*) FROM courses) AS courses,
        (SELECT COUNT(*) FROM courses WHERE validated = FALSE) AS pending_courses`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &stats, nil
}
