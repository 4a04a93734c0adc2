package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/classdesk/classdesk-api/internal/dto"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/storage"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrTeacherRequired indicates the caller lacks the teacher role.
var ErrTeacherRequired = errors.New("only teachers can perform this action")

// ErrInvalidDueDate indicates the due date could not be parsed.
var ErrInvalidDueDate = errors.New("invalid due date")

// AssignmentService exposes assignment domain use cases. Assignments are
// immutable after creation; there is no update or delete path.
type AssignmentService interface {
	List(ctx context.Context, actor Identity) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, teacherID string) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	store     storage.Store
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(store storage.Store, validate *validator.Validate, sanitizer *bluemonday.Policy, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		store:     store,
		validator: validate,
		sanitizer: sanitizer,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

// List returns the teacher's own assignments, or every assignment for any
// other role, newest first.
func (s *assignmentService) List(ctx context.Context, actor Identity) ([]dto.AssignmentResponse, error) {
	assignments, err := s.store.ListAssignments(ctx, actor.Role, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.store.GetAssignmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, teacherID string) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
	}

	creator, err := s.store.GetUser(ctx, teacherID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.AssignmentResponse{}, ErrUserNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if !creator.IsTeacher() {
		return dto.AssignmentResponse{}, ErrTeacherRequired
	}

	assignment := models.Assignment{
		Title:               payload.Title,
		Description:         s.sanitizer.Sanitize(payload.Description),
		Subject:             payload.Subject,
		DueDate:             dueDate,
		MaxMarks:            payload.MaxMarks,
		SubmissionType:      payload.SubmissionType,
		AllowLateSubmission: payload.AllowLateSubmission,
		TeacherID:           creator.ID,
	}

	if err := s.store.CreateAssignment(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Str("teacher_id", creator.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}
