// Package storage provides durable CRUD and query access to users,
// assignments and submissions behind a single contract. The physical backend
// (JSON files on disk, embedded SQLite, or networked Postgres) is a
// configuration detail; every engine satisfies the same Store interface and
// the same test suite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"

	"github.com/classdesk/classdesk-api/internal/config"
	"github.com/classdesk/classdesk-api/internal/models"
)

// ErrNotFound is returned when a lookup matches no record. Absence is an
// explicit result, never a panic or a generic failure.
var ErrNotFound = errors.New("record not found")

// ErrAlreadySubmitted is returned when a second submission is attempted for
// the same (student, assignment) pair.
var ErrAlreadySubmitted = errors.New("submission already exists for this student and assignment")

// Store is the uniform persistence contract shared by all backends. Every
// mutating operation is durable before it returns successfully.
type Store interface {
	// GetUser returns the user with the given id, or ErrNotFound.
	GetUser(ctx context.Context, id string) (models.User, error)
	// GetUserByEmail returns the user with the given email, or ErrNotFound.
	// Used for duplicate-registration checks and credential lookups.
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	// UpsertUser inserts the user when its id is absent, otherwise updates
	// the mutable fields and refreshes UpdatedAt while preserving CreatedAt.
	// Idempotent under retry with identical input.
	UpsertUser(ctx context.Context, user models.User) (models.User, error)

	// ListAssignments returns assignments owned by userID when role is
	// teacher, or every assignment otherwise, newest first.
	ListAssignments(ctx context.Context, role, userID string) ([]models.Assignment, error)
	// CreateAssignment allocates the next id, stamps the timestamps and
	// persists the record.
	CreateAssignment(ctx context.Context, assignment *models.Assignment) error
	// GetAssignmentByID returns the assignment, or ErrNotFound.
	GetAssignmentByID(ctx context.Context, id uint) (models.Assignment, error)

	// ListSubmissions returns submissions for an assignment ordered by
	// SubmittedAt descending, filtered to one student when studentID is
	// non-empty.
	ListSubmissions(ctx context.Context, assignmentID uint, studentID string) ([]models.Submission, error)
	// ListSubmissionsByStudent returns every submission a student has made.
	ListSubmissionsByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	// ListSubmissionsForTeacher returns every submission made against the
	// teacher's assignments.
	ListSubmissionsForTeacher(ctx context.Context, teacherID string) ([]models.Submission, error)
	// CreateSubmission allocates the next id, stamps SubmittedAt and
	// persists the record with the grade fields unset. Returns
	// ErrAlreadySubmitted when a submission already exists for the
	// (student, assignment) pair; the check and the insert are atomic.
	CreateSubmission(ctx context.Context, submission *models.Submission) error
	// GetSubmissionByStudentAndAssignment returns the single submission for
	// the pair, or ErrNotFound.
	GetSubmissionByStudentAndAssignment(ctx context.Context, studentID string, assignmentID uint) (models.Submission, error)
	// GetSubmissionByID returns the submission, or ErrNotFound.
	GetSubmissionByID(ctx context.Context, id uint) (models.Submission, error)
	// UpdateSubmissionGrade records grade and feedback on a submission and
	// stamps GradedAt. Returns the updated record.
	UpdateSubmissionGrade(ctx context.Context, submissionID uint, grade int, feedback string) (models.Submission, error)

	Close() error
}

// Open constructs the storage engine named by the configuration.
func Open(cfg config.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.StorageDriver {
	case config.DriverFile:
		return OpenFile(cfg.DataDir, logger)
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		return OpenGorm(sqlite.Open(cfg.SQLitePath), logger)
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres dsn must not be empty")
		}
		return OpenGorm(postgres.Open(cfg.DatabaseURL), logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
