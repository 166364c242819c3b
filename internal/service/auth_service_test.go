package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrth-run/mrth-api/internal/models"
	appErrors "github.com/mrth-run/mrth-api/pkg/errors"
)

type stubUserRepo struct {
	user      *models.User
	lastLogin time.Time
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, appErrors.ErrInvalidCredentials
	}
	copied := *s.user
	return &copied, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, appErrors.ErrNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ string, at time.Time) error {
	s.lastLogin = at
	return nil
}

func adminUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "admin@mrth.run",
		PasswordHash: string(hash),
		FullName:     "Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "mrth-api"}
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	repo := &stubUserRepo{user: adminUser(t, "pa55word")}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@mrth.run", Password: "pa55word"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.False(t, repo.lastLogin.IsZero())

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{user: adminUser(t, "pa55word")}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@mrth.run", Password: "nope"})
	assert.Equal(t, appErrors.ErrInvalidCredentials, appErrors.FromError(err))
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := adminUser(t, "pa55word")
	user.Active = false
	svc := NewAuthService(&stubUserRepo{user: user}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@mrth.run", Password: "pa55word"})
	assert.Equal(t, appErrors.ErrInactiveAccount, appErrors.FromError(err))
}

func TestAuthServiceLoginValidatesPayload(t *testing.T) {
	svc := NewAuthService(&stubUserRepo{}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsWrongSecret(t *testing.T) {
	repo := &stubUserRepo{user: adminUser(t, "pa55word")}
	issuer := NewAuthService(repo, nil, nil, testAuthConfig())
	verifier := NewAuthService(repo, nil, nil, AuthConfig{Secret: "other-secret", Expiration: time.Hour})

	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "admin@mrth.run", Password: "pa55word"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshReissues(t *testing.T) {
	repo := &stubUserRepo{user: adminUser(t, "pa55word")}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@mrth.run", Password: "pa55word"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	claims, err := svc.ValidateToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}
