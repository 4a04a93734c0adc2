package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/classdesk/classdesk-api/internal/models"
)

// gormStore is the relational engine. The same code path serves the embedded
// SQLite backend and the networked Postgres backend; only the dialector
// differs. Check-then-insert sequences run inside transactions, with the
// unique index on (student_id, assignment_id) as a backstop.
type gormStore struct {
	db     *gorm.DB
	logger zerolog.Logger
	now    func() time.Time
}

// OpenGorm connects through the given dialector and migrates the schema.
func OpenGorm(dialector gorm.Dialector, log zerolog.Logger) (Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &gormStore{
		db:     db,
		logger: log.With().Str("component", "gorm_store").Logger(),
		now:    time.Now,
	}, nil
}

func (s *gormStore) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, translateNotFound(err)
	}
	return user, nil
}

func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return models.User{}, translateNotFound(err)
	}
	return user, nil
}

func (s *gormStore) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		return models.User{}, fmt.Errorf("user id must not be empty")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.First(&existing, "id = ?", user.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := s.now()
			user.CreatedAt = now
			user.UpdatedAt = now
			return tx.Create(&user).Error
		case err != nil:
			return err
		}

		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = s.now()
		return tx.Save(&user).Error
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *gormStore) ListAssignments(ctx context.Context, role, userID string) ([]models.Assignment, error) {
	query := s.db.WithContext(ctx).Model(&models.Assignment{})
	if role == models.RoleTeacher {
		query = query.Where("teacher_id = ?", userID)
	}

	var assignments []models.Assignment
	if err := query.Order("created_at DESC, id DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *gormStore) CreateAssignment(ctx context.Context, assignment *models.Assignment) error {
	now := s.now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	return s.db.WithContext(ctx).Create(assignment).Error
}

func (s *gormStore) GetAssignmentByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, translateNotFound(err)
	}
	return assignment, nil
}

func (s *gormStore) ListSubmissions(ctx context.Context, assignmentID uint, studentID string) ([]models.Submission, error) {
	query := s.db.WithContext(ctx).Where("assignment_id = ?", assignmentID)
	if studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC, id DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *gormStore) ListSubmissionsByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("submitted_at DESC, id DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *gormStore) ListSubmissionsForTeacher(ctx context.Context, teacherID string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db.WithContext(ctx).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.teacher_id = ?", teacherID).
		Order("submissions.submitted_at DESC, submissions.id DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *gormStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Submission{}).
			Where("assignment_id = ? AND student_id = ?", submission.AssignmentID, submission.StudentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySubmitted
		}

		submission.SubmittedAt = s.now()
		submission.Grade = nil
		submission.Feedback = ""
		submission.GradedAt = nil

		if err := tx.Create(submission).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySubmitted
			}
			return err
		}
		return nil
	})
}

func (s *gormStore) GetSubmissionByStudentAndAssignment(ctx context.Context, studentID string, assignmentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, translateNotFound(err)
	}
	return submission, nil
}

func (s *gormStore) GetSubmissionByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, translateNotFound(err)
	}
	return submission, nil
}

func (s *gormStore) UpdateSubmissionGrade(ctx context.Context, submissionID uint, grade int, feedback string) (models.Submission, error) {
	var updated models.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.First(&submission, submissionID).Error; err != nil {
			return translateNotFound(err)
		}

		gradedAt := s.now()
		submission.Grade = &grade
		submission.Feedback = feedback
		submission.GradedAt = &gradedAt

		if err := tx.Save(&submission).Error; err != nil {
			return err
		}

		updated = submission
		return nil
	})
	if err != nil {
		return models.Submission{}, err
	}

	return updated, nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
