package models

// Principal is the authenticated identity every core operation receives
// explicitly. The role tag decides which profile pointer is set: students
// carry their StudentProfile (including group membership), teachers their
// TeacherProfile, admins neither. There is no ambient "current user".
type Principal struct {
	UserID   string
	FullName string
	Role     UserRole
	Student  *StudentProfile
	Teacher  *TeacherProfile
}

// IsStudent reports whether the principal is a student with a usable profile.
func (p Principal) IsStudent() bool {
	return p.Role == RoleStudent
}

// GroupID returns the student's group, or empty when the principal has no
// complete student profile.
func (p Principal) GroupID() string {
	if p.Student == nil {
		return ""
	}
	return p.Student.GroupID
}
