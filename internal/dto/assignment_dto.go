package dto

import (
	"time"

	"github.com/classdesk/classdesk-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	Title               string `form:"title" json:"title" validate:"required"`
	Description         string `form:"description" json:"description"`
	Subject             string `form:"subject" json:"subject" validate:"required"`
	DueDate             string `form:"due_date" json:"due_date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	MaxMarks            int    `form:"max_marks" json:"max_marks" validate:"required,gte=1"`
	SubmissionType      string `form:"submission_type" json:"submission_type" validate:"required,oneof=file text both"`
	AllowLateSubmission bool   `form:"allow_late_submission" json:"allow_late_submission"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID                  uint      `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Subject             string    `json:"subject"`
	DueDate             time.Time `json:"due_date"`
	MaxMarks            int       `json:"max_marks"`
	SubmissionType      string    `json:"submission_type"`
	AllowLateSubmission bool      `json:"allow_late_submission"`
	TeacherID           string    `json:"teacher_id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                  model.ID,
		Title:               model.Title,
		Description:         model.Description,
		Subject:             model.Subject,
		DueDate:             model.DueDate,
		MaxMarks:            model.MaxMarks,
		SubmissionType:      model.SubmissionType,
		AllowLateSubmission: model.AllowLateSubmission,
		TeacherID:           model.TeacherID,
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
