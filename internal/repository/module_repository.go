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

// ModuleRepository manages persistence for course subjects.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns every module ordered by code.
func (r *ModuleRepository) List(ctx context.Context) ([]models.Module, error) {
	const query = `SELECT id, name, code, credits, created_at, updated_at FROM modules ORDER BY code ASC`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// ListByTeacher returns the modules a teacher is assigned to.
func (r *ModuleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Module, error) {
	const query = `SELECT m.id, m.name, m.code, m.credits, m.created_at, m.updated_at
        FROM modules m
        JOIN teaching_assignments ta ON ta.module_id = m.id
        WHERE ta.teacher_id = $1
        ORDER BY m.code ASC`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher modules: %w", err)
	}
	return modules, nil
}

// FindByID fetches a module by ID.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	const query = `SELECT id, name, code, credits, created_at, updated_at FROM modules WHERE id = $1 LIMIT 1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module: %w", err)
	}
	return &module, nil
}

// ExistsByCode checks code uniqueness, optionally excluding an ID.
func (r *ModuleRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM modules WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check module code: %w", err)
	}
	return true, nil
}

// Create inserts a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	module.CreatedAt = now
	module.UpdatedAt = now
	const query = `INSERT INTO modules (id, name, code, credits, created_at, updated_at)
        VALUES (:id, :name, :code, :credits, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update modifies an existing module.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	module.UpdatedAt = time.Now().UTC()
	const query = `UPDATE modules SET name = :name, code = :code, credits = :credits, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return nil
}

// Delete removes a module. Pivot rows cascade through the schema.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted module rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
