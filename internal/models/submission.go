package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is a student's response to an assignment. At most one submission
// exists per (student, assignment) pair; grade, feedback and graded timestamp
// stay unset until a teacher grades it.
type Submission struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	AssignmentID   uint                        `gorm:"not null;uniqueIndex:idx_submissions_student_assignment" json:"assignment_id"`
	StudentID      string                      `gorm:"size:64;not null;uniqueIndex:idx_submissions_student_assignment" json:"student_id"`
	SubmissionText string                      `gorm:"type:text" json:"submission_text"`
	FilePaths      datatypes.JSONSlice[string] `json:"file_paths"`
	Comments       string                      `gorm:"type:text" json:"comments"`
	SubmittedAt    time.Time                   `json:"submitted_at"`
	Grade          *int                        `json:"grade"`
	Feedback       string                      `gorm:"type:text" json:"feedback"`
	GradedAt       *time.Time                  `json:"graded_at"`
}

// IsGraded reports whether a teacher has recorded a grade.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}
