package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/classdesk/classdesk-api/internal/models"
)

const (
	usersFile       = "users.json"
	assignmentsFile = "assignments.json"
	submissionsFile = "submissions.json"
)

// fileStore keeps every collection in memory guarded by a per-collection
// mutex, and serializes the full collection to a JSON file on every mutation.
// Writes go to a temp file first and are renamed into place so a crash never
// leaves a truncated collection behind.
type fileStore struct {
	dir    string
	logger zerolog.Logger
	now    func() time.Time

	usersMu sync.RWMutex
	users   map[string]models.User

	assignmentsMu sync.RWMutex
	assignments   map[uint]models.Assignment

	submissionsMu sync.RWMutex
	submissions   map[uint]models.Submission
}

// OpenFile loads the persisted collections from dir, creating it when absent.
// An unreadable collection file is copied aside and reported as an error
// rather than silently replaced with empty data.
func OpenFile(dir string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &fileStore{
		dir:         dir,
		logger:      logger.With().Str("component", "file_store").Logger(),
		now:         time.Now,
		users:       make(map[string]models.User),
		assignments: make(map[uint]models.Assignment),
		submissions: make(map[uint]models.Submission),
	}

	var users []models.User
	if err := s.loadCollection(usersFile, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		s.users[u.ID] = u
	}

	var assignments []models.Assignment
	if err := s.loadCollection(assignmentsFile, &assignments); err != nil {
		return nil, err
	}
	for _, a := range assignments {
		s.assignments[a.ID] = a
	}

	var submissions []models.Submission
	if err := s.loadCollection(submissionsFile, &submissions); err != nil {
		return nil, err
	}
	for _, sub := range submissions {
		s.submissions[sub.ID] = sub
	}

	return s, nil
}

func (s *fileStore) loadCollection(name string, out interface{}) error {
	path := filepath.Join(s.dir, name)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		backup := fmt.Sprintf("%s.corrupt.%d", path, s.now().Unix())
		if backupErr := os.WriteFile(backup, data, 0o644); backupErr != nil {
			s.logger.Error().Err(backupErr).Str("file", name).Msg("failed to back up corrupt collection")
		} else {
			s.logger.Error().Str("file", name).Str("backup", backup).Msg("corrupt collection backed up")
		}
		return fmt.Errorf("corrupt collection file %s: %w", name, err)
	}

	return nil
}

func (s *fileStore) persist(name string, records interface{}) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}

func (s *fileStore) persistUsers() error {
	records := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		records = append(records, u)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return s.persist(usersFile, records)
}

func (s *fileStore) persistAssignments() error {
	records := make([]models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		records = append(records, a)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return s.persist(assignmentsFile, records)
}

func (s *fileStore) persistSubmissions() error {
	records := make([]models.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		records = append(records, sub)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return s.persist(submissionsFile, records)
}

func (s *fileStore) GetUser(_ context.Context, id string) (models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *fileStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *fileStore) UpsertUser(_ context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		return models.User{}, fmt.Errorf("user id must not be empty")
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	now := s.now()
	previous, existed := s.users[user.ID]
	if existed {
		user.CreatedAt = previous.CreatedAt
	} else {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.ID] = user
	if err := s.persistUsers(); err != nil {
		if existed {
			s.users[user.ID] = previous
		} else {
			delete(s.users, user.ID)
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *fileStore) ListAssignments(_ context.Context, role, userID string) ([]models.Assignment, error) {
	s.assignmentsMu.RLock()
	defer s.assignmentsMu.RUnlock()

	results := make([]models.Assignment, 0, len(s.assignments))
	for _, assignment := range s.assignments {
		if role == models.RoleTeacher && assignment.TeacherID != userID {
			continue
		}
		results = append(results, assignment)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID > results[j].ID
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}

func (s *fileStore) CreateAssignment(_ context.Context, assignment *models.Assignment) error {
	s.assignmentsMu.Lock()
	defer s.assignmentsMu.Unlock()

	var maxID uint
	for id := range s.assignments {
		if id > maxID {
			maxID = id
		}
	}

	now := s.now()
	assignment.ID = maxID + 1
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	s.assignments[assignment.ID] = *assignment
	if err := s.persistAssignments(); err != nil {
		delete(s.assignments, assignment.ID)
		return err
	}

	return nil
}

func (s *fileStore) GetAssignmentByID(_ context.Context, id uint) (models.Assignment, error) {
	s.assignmentsMu.RLock()
	defer s.assignmentsMu.RUnlock()

	assignment, ok := s.assignments[id]
	if !ok {
		return models.Assignment{}, ErrNotFound
	}
	return assignment, nil
}

func (s *fileStore) ListSubmissions(_ context.Context, assignmentID uint, studentID string) ([]models.Submission, error) {
	s.submissionsMu.RLock()
	defer s.submissionsMu.RUnlock()

	results := make([]models.Submission, 0)
	for _, submission := range s.submissions {
		if submission.AssignmentID != assignmentID {
			continue
		}
		if studentID != "" && submission.StudentID != studentID {
			continue
		}
		results = append(results, submission)
	}

	sortSubmissionsNewestFirst(results)
	return results, nil
}

func (s *fileStore) ListSubmissionsByStudent(_ context.Context, studentID string) ([]models.Submission, error) {
	s.submissionsMu.RLock()
	defer s.submissionsMu.RUnlock()

	results := make([]models.Submission, 0)
	for _, submission := range s.submissions {
		if submission.StudentID == studentID {
			results = append(results, submission)
		}
	}

	sortSubmissionsNewestFirst(results)
	return results, nil
}

func (s *fileStore) ListSubmissionsForTeacher(ctx context.Context, teacherID string) ([]models.Submission, error) {
	owned := make(map[uint]struct{})
	s.assignmentsMu.RLock()
	for id, assignment := range s.assignments {
		if assignment.TeacherID == teacherID {
			owned[id] = struct{}{}
		}
	}
	s.assignmentsMu.RUnlock()

	s.submissionsMu.RLock()
	defer s.submissionsMu.RUnlock()

	results := make([]models.Submission, 0)
	for _, submission := range s.submissions {
		if _, ok := owned[submission.AssignmentID]; ok {
			results = append(results, submission)
		}
	}

	sortSubmissionsNewestFirst(results)
	return results, nil
}

func (s *fileStore) CreateSubmission(_ context.Context, submission *models.Submission) error {
	s.submissionsMu.Lock()
	defer s.submissionsMu.Unlock()

	var maxID uint
	for id, existing := range s.submissions {
		if existing.AssignmentID == submission.AssignmentID && existing.StudentID == submission.StudentID {
			return ErrAlreadySubmitted
		}
		if id > maxID {
			maxID = id
		}
	}

	submission.ID = maxID + 1
	submission.SubmittedAt = s.now()
	submission.Grade = nil
	submission.Feedback = ""
	submission.GradedAt = nil

	s.submissions[submission.ID] = *submission
	if err := s.persistSubmissions(); err != nil {
		delete(s.submissions, submission.ID)
		return err
	}

	return nil
}

func (s *fileStore) GetSubmissionByStudentAndAssignment(_ context.Context, studentID string, assignmentID uint) (models.Submission, error) {
	s.submissionsMu.RLock()
	defer s.submissionsMu.RUnlock()

	for _, submission := range s.submissions {
		if submission.StudentID == studentID && submission.AssignmentID == assignmentID {
			return submission, nil
		}
	}
	return models.Submission{}, ErrNotFound
}

func (s *fileStore) GetSubmissionByID(_ context.Context, id uint) (models.Submission, error) {
	s.submissionsMu.RLock()
	defer s.submissionsMu.RUnlock()

	submission, ok := s.submissions[id]
	if !ok {
		return models.Submission{}, ErrNotFound
	}
	return submission, nil
}

func (s *fileStore) UpdateSubmissionGrade(_ context.Context, submissionID uint, grade int, feedback string) (models.Submission, error) {
	s.submissionsMu.Lock()
	defer s.submissionsMu.Unlock()

	previous, ok := s.submissions[submissionID]
	if !ok {
		return models.Submission{}, ErrNotFound
	}

	updated := previous
	gradedAt := s.now()
	updated.Grade = &grade
	updated.Feedback = feedback
	updated.GradedAt = &gradedAt

	s.submissions[submissionID] = updated
	if err := s.persistSubmissions(); err != nil {
		s.submissions[submissionID] = previous
		return models.Submission{}, err
	}

	return updated, nil
}

func (s *fileStore) Close() error {
	return nil
}

func sortSubmissionsNewestFirst(submissions []models.Submission) {
	sort.Slice(submissions, func(i, j int) bool {
		if submissions[i].SubmittedAt.Equal(submissions[j].SubmittedAt) {
			return submissions[i].ID > submissions[j].ID
		}
		return submissions[i].SubmittedAt.After(submissions[j].SubmittedAt)
	})
}
