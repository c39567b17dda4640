package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courshub/courshub-api/internal/models"
)

// UserRepository provides database access for login identities and their
// role-specific profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, full_name, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, full_name, email, password_hash, role, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ExistsByEmail checks whether a user with the given email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM users WHERE email = $1"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// ExistsByRegistrationNo checks whether a student registration number is taken.
func (r *UserRepository) ExistsByRegistrationNo(ctx context.Context, registrationNo string) (bool, error) {
	const query = `SELECT 1 FROM student_profiles WHERE registration_no = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, registrationNo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration number: %w", err)
	}
	return true, nil
}

// CreateWithProfile inserts the user plus its matching profile row inside a
// single transaction. When the profile insert fails, the user row rolls back
// with it.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, student *models.StudentProfile, teacher *models.TeacherProfile) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const userQuery = `INSERT INTO users (id, full_name, email, password_hash, role, created_at, updated_at)
        VALUES (:id, :full_name, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	switch {
	case student != nil:
		if student.ID == "" {
			student.ID = uuid.NewString()
		}
		student.UserID = user.ID
		student.CreatedAt = now
		student.UpdatedAt = now
		const studentQuery = `INSERT INTO student_profiles (id, user_id, registration_no, group_id, enrolled_at, phone, address, created_at, updated_at)
            VALUES (:id, :user_id, :registration_no, :group_id, :enrolled_at, :phone, :address, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, studentQuery, student); err != nil {
			return fmt.Errorf("create student profile: %w", err)
		}
	case teacher != nil:
		if teacher.ID == "" {
			teacher.ID = uuid.NewString()
		}
		teacher.UserID = user.ID
		teacher.CreatedAt = now
		teacher.UpdatedAt = now
		const teacherQuery = `INSERT INTO teacher_profiles (id, user_id, specialty, hired_at, active, phone, address, created_at, updated_at)
            VALUES (:id, :user_id, :specialty, :hired_at, :active, :phone, :address, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, teacherQuery, teacher); err != nil {
			return fmt.Errorf("create teacher profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]bool{
		"email":      true,
		"created_at": true,
		"full_name":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT id, full_name, email, password_hash, role, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		baseQuery, sortBy, sortOrder, pageSize, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// FindStudentProfileByUserID loads the student profile with group context.
func (r *UserRepository) FindStudentProfileByUserID(ctx context.Context, userID string) (*models.StudentProfileDetail, error) {
	const query = `SELECT sp.id, sp.user_id, sp.registration_no, sp.group_id, sp.enrolled_at, sp.phone, sp.address, sp.created_at, sp.updated_at,
        g.name AS group_name, g.program_id AS program_id, p.name AS program_name
        FROM student_profiles sp
        LEFT JOIN groups g ON g.id = sp.group_id
        LEFT JOIN programs p ON p.id = g.program_id
        WHERE sp.user_id = $1 LIMIT 1`
	var detail models.StudentProfileDetail
	if err := r.db.GetContext(ctx, &detail, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student profile: %w", err)
	}
	return &detail, nil
}

// FindTeacherProfileByUserID loads the teacher profile for a user.
func (r *UserRepository) FindTeacherProfileByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	const query = `SELECT id, user_id, specialty, hired_at, active, phone, address, created_at, updated_at
        FROM teacher_profiles WHERE user_id = $1 LIMIT 1`
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher profile: %w", err)
	}
	return &profile, nil
}

// UpdateIdentity modifies the identity fields of a user.
func (r *UserRepository) UpdateIdentity(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET full_name = :full_name, email = :email, role = :role, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateStudentProfile modifies mutable student profile fields.
func (r *UserRepository) UpdateStudentProfile(ctx context.Context, profile *models.StudentProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE student_profiles SET group_id = :group_id, phone = :phone, address = :address, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

// UpdateTeacherProfile modifies mutable teacher profile fields.
func (r *UserRepository) UpdateTeacherProfile(ctx context.Context, profile *models.TeacherProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teacher_profiles SET specialty = :specialty, active = :active, phone = :phone, address = :address, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update teacher profile: %w", err)
	}
	return nil
}

// Delete removes a user. The linked profile row goes with it through the
// ON DELETE CASCADE constraint.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted user rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
