package dto

import (
	"time"

	"github.com/classdesk/classdesk-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for submitting
// against an assignment. The assignment id comes from the route and the
// student id from the resolved caller identity; files ride alongside in the
// multipart form.
type SubmissionCreateRequest struct {
	SubmissionText string `form:"submission_text" json:"submission_text"`
	Comments       string `form:"comments" json:"comments"`
}

// GradeSubmissionRequest is used by a teacher to grade a submission.
type GradeSubmissionRequest struct {
	Grade    *int   `json:"grade" validate:"required,gte=0"`
	Feedback string `json:"feedback"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID             uint       `json:"id"`
	AssignmentID   uint       `json:"assignment_id"`
	StudentID      string     `json:"student_id"`
	SubmissionText string     `json:"submission_text"`
	FilePaths      []string   `json:"file_paths"`
	Comments       string     `json:"comments"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Grade          *int       `json:"grade"`
	Feedback       string     `json:"feedback"`
	GradedAt       *time.Time `json:"graded_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	paths := make([]string, 0, len(model.FilePaths))
	paths = append(paths, model.FilePaths...)

	return SubmissionResponse{
		ID:             model.ID,
		AssignmentID:   model.AssignmentID,
		StudentID:      model.StudentID,
		SubmissionText: model.SubmissionText,
		FilePaths:      paths,
		Comments:       model.Comments,
		SubmittedAt:    model.SubmittedAt,
		Grade:          model.Grade,
		Feedback:       model.Feedback,
		GradedAt:       model.GradedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
