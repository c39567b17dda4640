package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/courshub/courshub-api/internal/models"
)

// CurriculumRepository persists the program↔module and teacher↔module pivots.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository constructs a CurriculumRepository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// UpsertProgramModule attaches a module to a program, updating the pivot
// attributes when the pair already exists. Other pivot rows are left alone.
func (r *CurriculumRepository) UpsertProgramModule(ctx context.Context, pivot models.ProgramModule) error {
	const query = `INSERT INTO program_modules (program_id, module_id, semester, coefficient)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (program_id, module_id)
        DO UPDATE SET semester = EXCLUDED.semester, coefficient = EXCLUDED.coefficient`
	if _, err := r.db.ExecContext(ctx, query, pivot.ProgramID, pivot.ModuleID, pivot.Semester, pivot.Coefficient); err != nil {
		return fmt.Errorf("upsert program module: %w", err)
	}
	return nil
}

// DetachProgramModule removes the pivot row. Removing an absent pair is a
// no-op, not an error.
func (r *CurriculumRepository) DetachProgramModule(ctx context.Context, programID, moduleID string) error {
	const query = `DELETE FROM program_modules WHERE program_id = $1 AND module_id = $2`
	if _, err := r.db.ExecContext(ctx, query, programID, moduleID); err != nil {
		return fmt.Errorf("detach program module: %w", err)
	}
	return nil
}

// ListByProgram returns the curriculum of a program with module details.
func (r *CurriculumRepository) ListByProgram(ctx context.Context, programID string) ([]models.ProgramModuleDetail, error) {
	const query = `SELECT pm.program_id, pm.module_id, pm.semester, pm.coefficient,
        m.name AS module_name, m.code AS module_code, m.credits AS credits
        FROM program_modules pm
        JOIN modules m ON m.id = pm.module_id
        WHERE pm.program_id = $1
        ORDER BY pm.semester ASC, m.code ASC`
	var rows []models.ProgramModuleDetail
	if err := r.db.SelectContext(ctx, &rows, query, programID); err != nil {
		return nil, fmt.Errorf("list program modules: %w", err)
	}
	return rows, nil
}

// UpsertTeachingAssignment assigns a teacher to a module, updating the
// academic year and coordinator flag when the pair already exists.
func (r *CurriculumRepository) UpsertTeachingAssignment(ctx context.Context, pivot models.TeachingAssignment) error {
	const query = `INSERT INTO teaching_assignments (teacher_id, module_id, academic_year, coordinator)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (teacher_id, module_id)
        DO UPDATE SET academic_year = EXCLUDED.academic_year, coordinator = EXCLUDED.coordinator`
	if _, err := r.db.ExecContext(ctx, query, pivot.TeacherID, pivot.ModuleID, pivot.AcademicYear, pivot.Coordinator); err != nil {
		return fmt.Errorf("upsert teaching assignment: %w", err)
	}
	return nil
}

// DetachTeachingAssignment removes the assignment pivot; absent pairs no-op.
func (r *CurriculumRepository) DetachTeachingAssignment(ctx context.Context, teacherID, moduleID string) error {
	const query = `DELETE FROM teaching_assignments WHERE teacher_id = $1 AND module_id = $2`
	if _, err := r.db.ExecContext(ctx, query, teacherID, moduleID); err != nil {
		return fmt.Errorf("detach teaching assignment: %w", err)
	}
	return nil
}

// ListAssignmentsByModule returns the teacher assignments for a module.
func (r *CurriculumRepository) ListAssignmentsByModule(ctx context.Context, moduleID string) ([]models.TeachingAssignment, error) {
	const query = `SELECT teacher_id, module_id, academic_year, coordinator
        FROM teaching_assignments WHERE module_id = $1 ORDER BY teacher_id ASC`
	var rows []models.TeachingAssignment
	if err := r.db.SelectContext(ctx, &rows, query, moduleID); err != nil {
		return nil, fmt.Errorf("list module assignments: %w", err)
	}
	return rows, nil
}
