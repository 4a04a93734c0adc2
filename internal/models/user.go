package models

import "time"

// Roles a user account may hold.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a teacher or student account. Accounts are created at
// registration or on first identity-provider sync and are never deleted.
type User struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Email           string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FirstName       string    `gorm:"size:255" json:"first_name"`
	LastName        string    `gorm:"size:255" json:"last_name"`
	PasswordHash    string    `gorm:"size:255" json:"-"`
	Role            string    `gorm:"size:32;not null;default:student" json:"role"`
	ProfileImageURL string    `gorm:"size:512" json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsTeacher reports whether the user may create and grade assignments.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
