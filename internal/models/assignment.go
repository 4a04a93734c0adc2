package models

import "time"

// Submission types an assignment may accept.
const (
	SubmissionTypeFile = "file"
	SubmissionTypeText = "text"
	SubmissionTypeBoth = "both"
)

// Assignment is a unit of work created by a teacher with a due date and a
// maximum score. Assignments are immutable after creation and visible to all
// students.
type Assignment struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Title               string    `gorm:"size:255;not null" json:"title"`
	Description         string    `gorm:"type:text" json:"description"`
	Subject             string    `gorm:"size:255;not null" json:"subject"`
	DueDate             time.Time `gorm:"not null" json:"due_date"`
	MaxMarks            int       `gorm:"not null" json:"max_marks"`
	SubmissionType      string    `gorm:"size:32;not null" json:"submission_type"`
	AllowLateSubmission bool      `gorm:"not null;default:false" json:"allow_late_submission"`
	TeacherID           string    `gorm:"size:64;not null;index" json:"teacher_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// AcceptsText reports whether text content may be submitted.
func (a Assignment) AcceptsText() bool {
	return a.SubmissionType == SubmissionTypeText || a.SubmissionType == SubmissionTypeBoth
}

// AcceptsFiles reports whether file attachments may be submitted.
func (a Assignment) AcceptsFiles() bool {
	return a.SubmissionType == SubmissionTypeFile || a.SubmissionType == SubmissionTypeBoth
}
