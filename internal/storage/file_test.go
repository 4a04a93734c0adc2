package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
)

func TestFileStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenFile(dir, zerolog.Nop())
	require.NoError(t, err)

	seedUser(t, store, "teacher-1", models.RoleTeacher)
	seedUser(t, store, "student-1", models.RoleStudent)

	assignment := models.Assignment{
		Title:          "Persisted",
		Subject:        "History",
		DueDate:        time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		MaxMarks:       20,
		SubmissionType: models.SubmissionTypeText,
		TeacherID:      "teacher-1",
	}
	require.NoError(t, store.CreateAssignment(ctx, &assignment))

	submission := models.Submission{
		AssignmentID:   assignment.ID,
		StudentID:      "student-1",
		SubmissionText: "answer",
	}
	require.NoError(t, store.CreateSubmission(ctx, &submission))
	_, err = store.UpdateSubmissionGrade(ctx, submission.ID, 15, "well done")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenFile(dir, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	user, err := reopened.GetUser(ctx, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1@example.com", user.Email)

	gotAssignment, err := reopened.GetAssignmentByID(ctx, assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", gotAssignment.Title)

	gotSubmission, err := reopened.GetSubmissionByID(ctx, submission.ID)
	require.NoError(t, err)
	require.NotNil(t, gotSubmission.Grade)
	assert.Equal(t, 15, *gotSubmission.Grade)
	assert.Equal(t, "well done", gotSubmission.Feedback)

	// A new id must continue the sequence, not restart it.
	next := models.Assignment{
		Title:          "After restart",
		Subject:        "History",
		DueDate:        time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		MaxMarks:       10,
		SubmissionType: models.SubmissionTypeText,
		TeacherID:      "teacher-1",
	}
	require.NoError(t, reopened.CreateAssignment(ctx, &next))
	assert.Greater(t, next.ID, assignment.ID)
}

func TestFileStoreBacksUpCorruptCollection(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, assignmentsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := OpenFile(dir, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), assignmentsFile)

	backups, err := filepath.Glob(path + ".corrupt.*")
	require.NoError(t, err)
	require.Len(t, backups, 1)

	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}
