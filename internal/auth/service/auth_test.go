package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medistock/medistock-backend/internal/auth/jwt"
	"github.com/medistock/medistock-backend/internal/auth/repository"
	"github.com/medistock/medistock-backend/pkg/config"
	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/errors"
	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*AuthService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("auth-test", "test")
	users := repository.NewUserRepository(database.FromSqlx(mockDB.DB, log))
	jwtManager := jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "medistock-test",
	})
	return NewAuthService(users, jwtManager, log), mockDB
}

func TestLogin_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mockDB.ExpectQuery("SELECT id, email, password_hash, first_name, last_name, phone, avatar_url, created_at, updated_at").
		WithArgs("jane@pharmacy.test").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "first_name", "last_name", "phone", "avatar_url", "created_at", "updated_at",
		).AddRow("user-1", "jane@pharmacy.test", string(hash), "Jane", "Doe", nil, nil, now, now))

	mockDB.ExpectQuery("SELECT role FROM user_roles WHERE user_id = $1").
		WithArgs("user-1").
		WillReturnRows(testutil.MockRows("role").AddRow("pharmacist"))

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "jane@pharmacy.test",
		Password: "correct-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, []string{"pharmacist"}, resp.User.Roles)
	assert.NotEmpty(t, resp.Tokens.AccessToken)

	mockDB.ExpectationsWereMet(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mockDB.ExpectQuery("SELECT id, email, password_hash, first_name, last_name, phone, avatar_url, created_at, updated_at").
		WithArgs("jane@pharmacy.test").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "first_name", "last_name", "phone", "avatar_url", "created_at", "updated_at",
		).AddRow("user-1", "jane@pharmacy.test", string(hash), "Jane", "Doe", nil, nil, now, now))

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "jane@pharmacy.test",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT id, email, password_hash, first_name, last_name, phone, avatar_url, created_at, updated_at").
		WithArgs("nobody@pharmacy.test").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "first_name", "last_name", "phone", "avatar_url", "created_at", "updated_at",
		))

	_, err := svc.Login(context.Background(), &LoginRequest{
		Email:    "nobody@pharmacy.test",
		Password: "whatever",
	})
	require.Error(t, err)

	// Unknown email maps to the same error as a wrong password
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestLogin_PendingApproval(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	mockDB.ExpectQuery("SELECT id, email, password_hash, first_name, last_name, phone, avatar_url, created_at, updated_at").
		WithArgs("new@pharmacy.test").
		WillReturnRows(testutil.MockRows(
			"id", "email", "password_hash", "first_name", "last_name", "phone", "avatar_url", "created_at", "updated_at",
		).AddRow("user-2", "new@pharmacy.test", string(hash), "New", "Hire", nil, nil, now, now))

	mockDB.ExpectQuery("SELECT role FROM user_roles WHERE user_id = $1").
		WithArgs("user-2").
		WillReturnRows(testutil.MockRows("role"))

	_, err = svc.Login(context.Background(), &LoginRequest{
		Email:    "new@pharmacy.test",
		Password: "correct-password",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}
