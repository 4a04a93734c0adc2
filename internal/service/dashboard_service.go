package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/classdesk/classdesk-api/internal/dto"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/storage"
)

// DashboardService derives role-specific dashboard counters from the current
// storage state. Counters are recomputed on every call so they always reflect
// the latest writes; nothing is cached.
type DashboardService interface {
	TeacherStats(ctx context.Context, teacherID string) (dto.TeacherDashboardStats, error)
	StudentStats(ctx context.Context, studentID string) (dto.StudentDashboardStats, error)
}

type dashboardService struct {
	store  storage.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewDashboardService builds the dashboard aggregator.
func NewDashboardService(store storage.Store, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		store:  store,
		logger: logger.With().Str("component", "dashboard_service").Logger(),
		now:    time.Now,
	}
}

func (s *dashboardService) TeacherStats(ctx context.Context, teacherID string) (dto.TeacherDashboardStats, error) {
	assignments, err := s.store.ListAssignments(ctx, models.RoleTeacher, teacherID)
	if err != nil {
		return dto.TeacherDashboardStats{}, err
	}

	submissions, err := s.store.ListSubmissionsForTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherDashboardStats{}, err
	}

	graded := 0
	for _, submission := range submissions {
		if submission.IsGraded() {
			graded++
		}
	}

	return dto.TeacherDashboardStats{
		Total:       len(assignments),
		Submissions: len(submissions),
		Graded:      graded,
		Pending:     len(submissions) - graded,
	}, nil
}

func (s *dashboardService) StudentStats(ctx context.Context, studentID string) (dto.StudentDashboardStats, error) {
	assignments, err := s.store.ListAssignments(ctx, models.RoleStudent, studentID)
	if err != nil {
		return dto.StudentDashboardStats{}, err
	}

	submissions, err := s.store.ListSubmissionsByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardStats{}, err
	}

	submitted := make(map[uint]struct{}, len(submissions))
	for _, submission := range submissions {
		submitted[submission.AssignmentID] = struct{}{}
	}

	// An assignment due before the account existed still counts as overdue
	// when unsubmitted; AllowLateSubmission does not affect the counter.
	now := s.now()
	overdue := 0
	for _, assignment := range assignments {
		if _, ok := submitted[assignment.ID]; ok {
			continue
		}
		if assignment.IsPastDue(now) {
			overdue++
		}
	}

	return dto.StudentDashboardStats{
		Total:     len(assignments),
		Submitted: len(submissions),
		Pending:   len(assignments) - len(submissions),
		Overdue:   overdue,
	}, nil
}
