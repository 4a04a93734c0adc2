package dto

// TeacherDashboardStats summarizes a teacher's assignments and the grading
// backlog across them.
type TeacherDashboardStats struct {
	Total       int `json:"total"`
	Submissions int `json:"submissions"`
	Graded      int `json:"graded"`
	Pending     int `json:"pending"`
}

// StudentDashboardStats summarizes a student's progress across every
// assignment in the system.
type StudentDashboardStats struct {
	Total     int `json:"total"`
	Submitted int `json:"submitted"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}
