package service

import "github.com/classdesk/classdesk-api/internal/models"

// Identity is the resolved caller produced by the auth layer. Both the
// credential login and the identity-provider flow normalize to the same
// (user id, role) pair before reaching the services.
type Identity struct {
	ID   string
	Role string
}

// IsTeacher reports whether the caller holds the teacher role.
func (i Identity) IsTeacher() bool {
	return i.Role == models.RoleTeacher
}

// IsStudent reports whether the caller holds the student role.
func (i Identity) IsStudent() bool {
	return i.Role == models.RoleStudent
}
