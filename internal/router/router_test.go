package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/config"
	"github.com/classdesk/classdesk-api/internal/handler"
	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/router"
	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/internal/storage"
	"github.com/classdesk/classdesk-api/pkg/upload"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		AppName:         "classdesk-test",
		AppEnv:          "test",
		StorageDriver:   config.DriverFile,
		JWTSecret:       "integration-test-secret",
		TokenTTL:        time.Hour,
		SubmitRateLimit: 100,
	}

	logger := zerolog.Nop()

	store, err := storage.OpenFile(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	uploader, err := upload.NewDisk(t.TempDir(), logger)
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	sanitizer := bluemonday.UGCPolicy()

	app := fiber.New()
	middleware.Register(app, middleware.Config{})

	router.Register(app, router.Dependencies{
		Config:     cfg,
		Auth:       handler.NewAuthHandler(service.NewAuthService(store, validate, cfg.JWTSecret, cfg.TokenTTL, logger), logger),
		Assignment: handler.NewAssignmentHandler(service.NewAssignmentService(store, validate, sanitizer, logger), logger),
		Submission: handler.NewSubmissionHandler(service.NewSubmissionService(store, validate, uploader, sanitizer, logger), logger),
		Dashboard:  handler.NewDashboardHandler(service.NewDashboardService(store, logger), logger),
	})

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (*http.Response, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func registerAndLogin(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()

	resp, _ := doJSON(t, app, "POST", "/api/v1/auth/register", "", fiber.Map{
		"email":      email,
		"password":   "supersecret",
		"first_name": "Test",
		"last_name":  "User",
		"role":       role,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, env := doJSON(t, app, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email":    email,
		"password": "supersecret",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, env := doJSON(t, app, "GET", "/api/v1/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/api/v1/assignments",
		"/api/v1/dashboard/stats",
		"/api/v1/auth/me",
	} {
		resp, env := doJSON(t, app, "GET", path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
		assert.False(t, env.Success, path)
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	app := newTestApp(t)

	token := registerAndLogin(t, app, "me@example.com", models.RoleStudent)

	resp, env := doJSON(t, app, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "me@example.com", me.Email)
	assert.Equal(t, models.RoleStudent, me.Role)

	// Duplicate registration conflicts.
	resp, _ = doJSON(t, app, "POST", "/api/v1/auth/register", "", fiber.Map{
		"email":      "me@example.com",
		"password":   "supersecret",
		"first_name": "Test",
		"last_name":  "User",
		"role":       models.RoleStudent,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Bad password.
	resp, _ = doJSON(t, app, "POST", "/api/v1/auth/login", "", fiber.Map{
		"email":    "me@example.com",
		"password": "wrongpass",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAssignmentSubmissionGradingFlow(t *testing.T) {
	app := newTestApp(t)

	teacherToken := registerAndLogin(t, app, "teacher@example.com", models.RoleTeacher)
	studentToken := registerAndLogin(t, app, "student@example.com", models.RoleStudent)

	assignmentPayload := fiber.Map{
		"title":           "Final essay",
		"description":     "Write 500 words.",
		"subject":         "English",
		"due_date":        "2030-06-01T17:00:00Z",
		"max_marks":       100,
		"submission_type": models.SubmissionTypeText,
	}

	// Students may not create assignments.
	resp, _ := doJSON(t, app, "POST", "/api/v1/assignments", studentToken, assignmentPayload)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := doJSON(t, app, "POST", "/api/v1/assignments", teacherToken, assignmentPayload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var assignment struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &assignment))
	require.NotZero(t, assignment.ID)

	// Both roles see it in the listing.
	resp, env = doJSON(t, app, "GET", "/api/v1/assignments", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)

	submitPath := fmt.Sprintf("/api/v1/assignments/%d/submit", assignment.ID)

	// Teachers may not submit.
	resp, _ = doJSON(t, app, "POST", submitPath, teacherToken, fiber.Map{"submission_text": "nope"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env = doJSON(t, app, "POST", submitPath, studentToken, fiber.Map{
		"submission_text": "My essay text.",
		"comments":        "first draft",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submission struct {
		ID    uint `json:"id"`
		Grade *int `json:"grade"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &submission))
	require.NotZero(t, submission.ID)
	assert.Nil(t, submission.Grade)

	// Second submission conflicts.
	resp, _ = doJSON(t, app, "POST", submitPath, studentToken, fiber.Map{"submission_text": "again"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// The owning teacher lists submissions.
	resp, env = doJSON(t, app, "GET", fmt.Sprintf("/api/v1/assignments/%d/submissions", assignment.ID), teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)

	gradePath := fmt.Sprintf("/api/v1/submissions/%d/grade", submission.ID)

	// Grade above max marks is rejected.
	resp, _ = doJSON(t, app, "PATCH", gradePath, teacherToken, fiber.Map{"grade": 150})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = doJSON(t, app, "PATCH", gradePath, teacherToken, fiber.Map{
		"grade":    85,
		"feedback": "good structure",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var graded struct {
		Grade    *int   `json:"grade"`
		Feedback string `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &graded))
	require.NotNil(t, graded.Grade)
	assert.Equal(t, 85, *graded.Grade)
	assert.Equal(t, "good structure", graded.Feedback)

	// Dashboards reflect the flow for both roles.
	resp, env = doJSON(t, app, "GET", "/api/v1/dashboard/stats", teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var teacherStats struct {
		Total       int `json:"total"`
		Submissions int `json:"submissions"`
		Graded      int `json:"graded"`
		Pending     int `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &teacherStats))
	assert.Equal(t, 1, teacherStats.Total)
	assert.Equal(t, 1, teacherStats.Submissions)
	assert.Equal(t, 1, teacherStats.Graded)
	assert.Equal(t, 0, teacherStats.Pending)

	resp, env = doJSON(t, app, "GET", "/api/v1/dashboard/stats", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var studentStats struct {
		Total     int `json:"total"`
		Submitted int `json:"submitted"`
		Pending   int `json:"pending"`
		Overdue   int `json:"overdue"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &studentStats))
	assert.Equal(t, 1, studentStats.Total)
	assert.Equal(t, 1, studentStats.Submitted)
	assert.Equal(t, 0, studentStats.Pending)
	assert.Equal(t, 0, studentStats.Overdue)
}

func TestAssignmentNotFound(t *testing.T) {
	app := newTestApp(t)
	token := registerAndLogin(t, app, "teacher@example.com", models.RoleTeacher)

	resp, _ := doJSON(t, app, "GET", "/api/v1/assignments/999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/api/v1/assignments/not-a-number", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
