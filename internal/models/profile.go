package models

import "time"

// StudentProfile links a user to its group membership.
type StudentProfile struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	RegistrationNo string    `db:"registration_no" json:"registration_no"`
	GroupID        string    `db:"group_id" json:"group_id"`
	EnrolledAt     time.Time `db:"enrolled_at" json:"enrolled_at"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StudentProfileDetail adds the group and program context.
type StudentProfileDetail struct {
	StudentProfile
	GroupName   *string `db:"group_name" json:"group_name,omitempty"`
	ProgramID   *string `db:"program_id" json:"program_id,omitempty"`
	ProgramName *string `db:"program_name" json:"program_name,omitempty"`
}

// TeacherProfile holds teacher-specific business attributes.
type TeacherProfile struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Specialty *string    `db:"specialty" json:"specialty,omitempty"`
	HiredAt   *time.Time `db:"hired_at" json:"hired_at,omitempty"`
	Active    bool       `db:"active" json:"active"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
