package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courshub/courshub-api/internal/models"
)

// CourseRepository manages persistence for course documents.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, title, description, storage_key, kind, published, validated, created_at, updated_at`

// Create inserts a new course row.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, title, description, storage_key, kind, published, validated, created_at, updated_at)
        VALUES (:id, :title, :description, :storage_key, :kind, :published, :validated, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1 LIMIT 1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Update modifies title, description and kind. The lifecycle flags are
// deliberately untouched here; editing a validated course does not reset it.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, description = :description, kind = :kind, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Validate marks a course as validated, re-asserting published in the same
// statement so a reader can never observe validated=true, published=false.
// Validating an already validated course is a harmless repeat.
func (r *CourseRepository) Validate(ctx context.Context, id string) error {
	const query = `UPDATE courses SET validated = TRUE, published = TRUE, updated_at = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("validate course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check validated course rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a course row. Distribution rows cascade.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted course rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAll returns every course, newest first.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses ORDER BY created_at DESC, id DESC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListPending returns courses awaiting admin validation, newest first.
func (r *CourseRepository) ListPending(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE validated = FALSE ORDER BY created_at DESC, id DESC`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list pending courses: %w", err)
	}
	return courses, nil
}

// ListForGroup returns the courses distributed to a group together with the
// group's availability window, newest first. Lifecycle and window filtering is
// left to the visibility engine so list and download share one predicate.
func (r *CourseRepository) ListForGroup(ctx context.Context, groupID string) ([]models.CourseWithWindow, error) {
	const query = `SELECT c.id, c.title, c.description, c.storage_key, c.kind, c.published, c.validated, c.created_at, c.updated_at,
        d.open_at, d.close_at
        FROM courses c
        JOIN distributions d ON d.course_id = c.id
        WHERE d.group_id = $1
        ORDER BY c.created_at DESC, c.id DESC`
	var courses []models.CourseWithWindow
	if err := r.db.SelectContext(ctx, &courses, query, groupID); err != nil {
		return nil, fmt.Errorf("list group courses: %w", err)
	}
	return courses, nil
}

// GroupsForCourse returns the groups a course is distributed to.
func (r *CourseRepository) GroupsForCourse(ctx context.Context, courseID string) ([]models.CourseGroup, error) {
	const query = `SELECT g.id, g.name
        FROM groups g
        JOIN distributions d ON d.group_id = g.id
        WHERE d.course_id = $1
        ORDER BY g.name ASC`
	var groups []models.CourseGroup
	if err := r.db.SelectContext(ctx, &groups, query, courseID); err != nil {
		return nil, fmt.Errorf("list course groups: %w", err)
	}
	return groups, nil
}
