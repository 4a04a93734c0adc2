package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/classdesk/classdesk-api/internal/dto"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/storage"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrDuplicateSubmission indicates the student already submitted against the
// assignment.
var ErrDuplicateSubmission = errors.New("assignment already submitted")

// ErrEmptySubmission indicates the submission carries neither text nor files.
var ErrEmptySubmission = errors.New("submission requires text or at least one file")

// ErrSubmissionPastDue indicates the deadline passed and the assignment does
// not allow late submissions.
var ErrSubmissionPastDue = errors.New("assignment is past due")

// ErrStudentRequired indicates the caller lacks the student role.
var ErrStudentRequired = errors.New("only students can submit assignments")

// ErrNotAssignmentOwner indicates the assignment belongs to another teacher.
var ErrNotAssignmentOwner = errors.New("assignment belongs to another teacher")

// ErrGradeExceedsMax indicates a grade surpasses the assignment's max marks.
var ErrGradeExceedsMax = errors.New("grade exceeds assignment max marks")

// ErrContentNotAccepted indicates the submitted content kind does not match
// the assignment's submission type.
var ErrContentNotAccepted = errors.New("content kind not accepted by this assignment")

// FileUploader abstracts storing uploaded bytes and returning an opaque path.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService orchestrates submission and grading workflows.
type SubmissionService interface {
	ListForAssignment(ctx context.Context, assignmentID uint, actor Identity) ([]dto.SubmissionResponse, error)
	Create(ctx context.Context, assignmentID uint, payload dto.SubmissionCreateRequest, actor Identity, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor Identity) (dto.SubmissionResponse, error)
}

type submissionService struct {
	store     storage.Store
	validator *validator.Validate
	uploader  FileUploader
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

var gradingTracer = otel.Tracer("classdesk.grading")

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(store storage.Store, validate *validator.Validate, uploader FileUploader, sanitizer *bluemonday.Policy, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		store:     store,
		validator: validate,
		uploader:  uploader,
		sanitizer: sanitizer,
		logger:    logger.With().Str("component", "submission_service").Logger(),
		now:       time.Now,
	}
}

// ListForAssignment returns every submission for the assignment when the
// caller is its owning teacher, or only the caller's own submission for a
// student.
func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID uint, actor Identity) ([]dto.SubmissionResponse, error) {
	assignment, err := s.store.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	studentFilter := actor.ID
	if actor.IsTeacher() {
		if assignment.TeacherID != actor.ID {
			return nil, ErrNotAssignmentOwner
		}
		studentFilter = ""
	}

	submissions, err := s.store.ListSubmissions(ctx, assignmentID, studentFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Create(ctx context.Context, assignmentID uint, payload dto.SubmissionCreateRequest, actor Identity, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return dto.SubmissionResponse{}, ErrStudentRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.store.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	text := strings.TrimSpace(payload.SubmissionText)
	if text == "" && len(files) == 0 {
		return dto.SubmissionResponse{}, ErrEmptySubmission
	}

	if text != "" && !assignment.AcceptsText() {
		return dto.SubmissionResponse{}, ErrContentNotAccepted
	}
	if len(files) > 0 && !assignment.AcceptsFiles() {
		return dto.SubmissionResponse{}, ErrContentNotAccepted
	}

	if assignment.IsPastDue(s.now()) && !assignment.AllowLateSubmission {
		return dto.SubmissionResponse{}, ErrSubmissionPastDue
	}

	if _, err := s.store.GetSubmissionByStudentAndAssignment(ctx, actor.ID, assignmentID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, storage.ErrNotFound) {
		return dto.SubmissionResponse{}, err
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		path, err := s.uploadFile(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		paths = append(paths, path)
	}

	submission := models.Submission{
		AssignmentID:   assignmentID,
		StudentID:      actor.ID,
		SubmissionText: s.sanitizer.Sanitize(text),
		FilePaths:      datatypes.JSONSlice[string](paths),
		Comments:       s.sanitizer.Sanitize(strings.TrimSpace(payload.Comments)),
	}

	if err := s.store.CreateSubmission(ctx, &submission); err != nil {
		if errors.Is(err, storage.ErrAlreadySubmitted) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignmentID).
		Str("student_id", actor.ID).
		Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

// Grade records a grade and feedback on a submission. Only the teacher who
// owns the assignment may grade against it.
func (s *submissionService) Grade(ctx context.Context, submissionID uint, payload dto.GradeSubmissionRequest, actor Identity) (dto.SubmissionResponse, error) {
	ctx, span := gradingTracer.Start(ctx, "SubmissionService.Grade")
	defer span.End()

	if !actor.IsTeacher() {
		span.SetStatus(codes.Error, "teacher_required")
		return dto.SubmissionResponse{}, ErrTeacherRequired
	}

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	target, err := s.store.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.store.GetAssignmentByID(ctx, target.AssignmentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if assignment.TeacherID != actor.ID {
		span.SetStatus(codes.Error, "not_assignment_owner")
		return dto.SubmissionResponse{}, ErrNotAssignmentOwner
	}

	grade := *payload.Grade
	if grade > assignment.MaxMarks {
		span.SetStatus(codes.Error, "grade_exceeds_max")
		return dto.SubmissionResponse{}, ErrGradeExceedsMax
	}

	updated, err := s.store.UpdateSubmissionGrade(ctx, submissionID, grade, strings.TrimSpace(payload.Feedback))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_update_failed")
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(
		attribute.Int("grading.grade", grade),
		attribute.Int64("grading.submission_id", int64(submissionID)),
	)

	s.logger.Info().
		Uint("submission_id", submissionID).
		Int("grade", grade).
		Str("teacher_id", actor.ID).
		Msg("submission graded")

	return dto.NewSubmissionResponse(updated), nil
}

func (s *submissionService) uploadFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := validateFileType(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	path, err := s.uploader.Upload(ctx, file.Filename, src)
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return path, nil
}

func validateFileType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{
		"application/pdf",
		"application/zip",
		"application/x-zip-compressed",
		"text/plain",
		"image/jpeg",
		"image/png",
	}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("unsupported file type: %s", mime.String())
}
