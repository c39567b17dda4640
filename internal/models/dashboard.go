package models

// DashboardStats summarises platform counts for the admin dashboard.
type DashboardStats struct {
	Users          int `db:"users" json:"users"`
	Students       int `db:"students" json:"students"`
	Teachers       int `db:"teachers" json:"teachers"`
	Programs       int `db:"programs" json:"programs"`
	Groups         int `db:"groups" json:"groups"`
	Modules        int `db:"modules" json:"modules"`
	Courses        int `db:"courses" json:"courses"`
	PendingCourses int `db:"pending_courses" json:"pending_courses"`
}
