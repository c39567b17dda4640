package models

import "time"

// DocumentKind classifies an uploaded course document.
type DocumentKind string

const (
	KindLecture  DocumentKind = "LECTURE"
	KindTutorial DocumentKind = "TD"
	KindLab      DocumentKind = "TP"
	KindVideo    DocumentKind = "VIDEO"
)

// ValidKind reports whether the given kind is one of the known document kinds.
func ValidKind(kind DocumentKind) bool {
	switch kind {
	case KindLecture, KindTutorial, KindLab, KindVideo:
		return true
	}
	return false
}

// Course is an uploaded piece of course material with a moderation lifecycle.
//
// Lifecycle: teachers upload straight into published=true, validated=false
// (submitted for moderation). An admin validate sets validated=true; a reject
// deletes the row outright. "Published" therefore means "submitted", and
// student visibility requires both flags.
type Course struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description,omitempty"`
	StorageKey  string       `db:"storage_key" json:"-"`
	Kind        DocumentKind `db:"kind" json:"kind"`
	Published   bool         `db:"published" json:"published"`
	Validated   bool         `db:"validated" json:"validated"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseGroup is the minimal group projection embedded in course listings.
type CourseGroup struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CourseDetail is a course with the groups it is distributed to.
type CourseDetail struct {
	Course
	Groups []CourseGroup `json:"groups"`
}

// CourseWithWindow is a course row joined with the distribution window for
// one specific group, the unit the visibility engine evaluates.
type CourseWithWindow struct {
	Course
	OpenAt  *time.Time `db:"open_at" json:"open_at,omitempty"`
	CloseAt *time.Time `db:"close_at" json:"close_at,omitempty"`
}

// CourseListing is the student-facing projection of a visible course. It
// carries only what the catalogue shows; lifecycle flags and storage details
// stay internal.
type CourseListing struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Kind        DocumentKind  `json:"kind"`
	CreatedAt   time.Time     `json:"created_at"`
	Groups      []CourseGroup `json:"groups"`
}

// Distribution links a course to a group, optionally time-windowed.
// Unset bounds are treated as always-open on that side.
type Distribution struct {
	CourseID string     `db:"course_id" json:"course_id"`
	GroupID  string     `db:"group_id" json:"group_id"`
	OpenAt   *time.Time `db:"open_at" json:"open_at,omitempty"`
	CloseAt  *time.Time `db:"close_at" json:"close_at,omitempty"`
}
