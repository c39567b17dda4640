package models

import "time"

// Program is an academic track owning groups and carrying a module curriculum.
type Program struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Group is a student cohort belonging to one program for one academic year.
type Group struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	MaxCapacity  int       `db:"max_capacity" json:"max_capacity"`
	ProgramID    string    `db:"program_id" json:"program_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GroupDetail adds the owning program's name for listings.
type GroupDetail struct {
	Group
	ProgramName string `db:"program_name" json:"program_name"`
}

// Module is a course subject with a credit value.
type Module struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Credits   int       `db:"credits" json:"credits"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramModule is the curriculum pivot between a program and a module.
// The (program_id, module_id) pair is unique; re-attaching updates the
// pivot attributes in place.
type ProgramModule struct {
	ProgramID   string `db:"program_id" json:"program_id"`
	ModuleID    string `db:"module_id" json:"module_id"`
	Semester    int    `db:"semester" json:"semester"`
	Coefficient int    `db:"coefficient" json:"coefficient"`
}

// ProgramModuleDetail includes the module fields for curriculum listings.
type ProgramModuleDetail struct {
	ProgramModule
	ModuleName string `db:"module_name" json:"module_name"`
	ModuleCode string `db:"module_code" json:"module_code"`
	Credits    int    `db:"credits" json:"credits"`
}

// TeachingAssignment is the pivot between a teacher profile and a module.
type TeachingAssignment struct {
	TeacherID    string `db:"teacher_id" json:"teacher_id"`
	ModuleID     string `db:"module_id" json:"module_id"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
	Coordinator  bool   `db:"coordinator" json:"coordinator"`
}
