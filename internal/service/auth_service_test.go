package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/dto"
	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/storage"
)

const testSecret = "test-secret"

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.OpenFile(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestAuthService(t *testing.T, store storage.Store) AuthService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(store, validate, testSecret, time.Hour, zerolog.Nop())
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store)
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{
		Email:     "Teacher@Example.com",
		Password:  "supersecret",
		FirstName: "Tess",
		LastName:  "Cher",
		Role:      models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "teacher@example.com", user.Email)
	assert.Equal(t, models.RoleTeacher, user.Role)

	// The stored record carries a hash, never the password.
	stored, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)

	result, err := svc.Login(ctx, dto.LoginRequest{Email: "teacher@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)

	token, err := jwt.Parse(result.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
	assert.Equal(t, models.RoleTeacher, claims["role"])
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(t, newTestStore(t))
	ctx := context.Background()

	payload := dto.RegisterRequest{
		Email:     "dup@example.com",
		Password:  "supersecret",
		FirstName: "First",
		LastName:  "User",
		Role:      models.RoleStudent,
	}
	_, err := svc.Register(ctx, payload)
	require.NoError(t, err)

	// Same address with different casing is still a duplicate.
	payload.Email = "DUP@example.com"
	_, err = svc.Register(ctx, payload)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newTestAuthService(t, newTestStore(t))

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "short@example.com",
		Password:  "short",
		FirstName: "S",
		LastName:  "P",
		Role:      models.RoleStudent,
	})

	var validationErrors validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrors)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService(t, newTestStore(t))
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{
		Email:     "student@example.com",
		Password:  "supersecret",
		FirstName: "Stu",
		LastName:  "Dent",
		Role:      models.RoleStudent,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "student@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceSyncProfile(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAuthService(t, store)
	ctx := context.Background()

	// First sync creates the account with the student default.
	created, err := svc.SyncProfile(ctx, dto.ProfileSyncRequest{
		ID:        "provider-sub-1",
		Email:     "sync@example.com",
		FirstName: "Sy",
		LastName:  "Nc",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, created.Role)

	// Give the account a password through the regular flow fields.
	seeded, err := store.GetUser(ctx, "provider-sub-1")
	require.NoError(t, err)
	seeded.PasswordHash = "existing-hash"
	seeded.Role = models.RoleTeacher
	_, err = store.UpsertUser(ctx, seeded)
	require.NoError(t, err)

	// A repeat sync must not wipe the hash or downgrade the role.
	updated, err := svc.SyncProfile(ctx, dto.ProfileSyncRequest{
		ID:        "provider-sub-1",
		Email:     "sync@example.com",
		FirstName: "Sylvia",
		LastName:  "Nc",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sylvia", updated.FirstName)
	assert.Equal(t, models.RoleTeacher, updated.Role)

	stored, err := store.GetUser(ctx, "provider-sub-1")
	require.NoError(t, err)
	assert.Equal(t, "existing-hash", stored.PasswordHash)
	assert.Equal(t, created.CreatedAt.Unix(), stored.CreatedAt.Unix())
}

func TestAuthServiceGetUser(t *testing.T) {
	svc := newTestAuthService(t, newTestStore(t))

	_, err := svc.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
