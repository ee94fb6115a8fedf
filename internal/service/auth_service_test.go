package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type fakeAuthUsers struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []*models.User
}

func newFakeAuthUsers() *fakeAuthUsers {
	return &fakeAuthUsers{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeAuthUsers) add(user *models.User) {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
}

func (f *fakeAuthUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeAuthUsers) Create(_ context.Context, user *models.User) error {
	user.ID = "user-" + user.Email
	f.add(user)
	f.created = append(f.created, user)
	return nil
}

func (f *fakeAuthUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.MustChangePassword = false
	return nil
}

type fakeAuthSchools struct {
	created []*models.School
}

func (f *fakeAuthSchools) Create(_ context.Context, school *models.School) error {
	school.ID = "school-1"
	f.created = append(f.created, school)
	return nil
}

func newAuthService(users *fakeAuthUsers, expiration time.Duration) *AuthService {
	return NewAuthService(users, &fakeAuthSchools{}, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: expiration,
		Issuer:     "qirllo-test",
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterCreatesSchoolAndAdmin(t *testing.T) {
	users := newFakeAuthUsers()
	schools := &fakeAuthSchools{}
	svc := NewAuthService(users, schools, nil, nil, AuthConfig{Secret: "s", Expiration: time.Hour})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		SchoolName: "Hillcrest",
		FullName:   "Jane Principal",
		Email:      "jane@hillcrest.test",
		Password:   "secret1",
	})
	require.NoError(t, err)

	require.Len(t, schools.created, 1)
	require.Len(t, users.created, 1)
	assert.Equal(t, models.RoleAdmin, users.created[0].Role)
	assert.Equal(t, "school-1", users.created[0].SchoolID)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jane@hillcrest.test", resp.User.Email)
}

func TestLoginDoesNotRevealWhichCredentialFailed(t *testing.T) {
	users := newFakeAuthUsers()
	users.add(&models.User{ID: "u1", Email: "known@test.dev", PasswordHash: hashOf(t, "right")})
	svc := newAuthService(users, time.Hour)

	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Email: "known@test.dev", Password: "wrong"})
	_, unknownEmail := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@test.dev", Password: "whatever"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, appErrors.FromError(wrongPassword).Message, appErrors.FromError(unknownEmail).Message)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(wrongPassword).Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(unknownEmail).Code)
}

func TestAuthenticateRoundTrip(t *testing.T) {
	users := newFakeAuthUsers()
	users.add(&models.User{ID: "u1", SchoolID: "school-1", Email: "t@test.dev", PasswordHash: hashOf(t, "secret1"), Role: models.RoleTeacher})
	svc := newAuthService(users, time.Hour)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@test.dev", Password: "secret1"})
	require.NoError(t, err)

	auth, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", auth.User.ID)
	assert.Equal(t, "school-1", auth.SchoolID)
}

func TestAuthenticateDistinguishesExpiredFromInvalid(t *testing.T) {
	users := newFakeAuthUsers()
	users.add(&models.User{ID: "u1", SchoolID: "school-1", Email: "t@test.dev", PasswordHash: hashOf(t, "secret1"), Role: models.RoleTeacher})
	expired := newAuthService(users, -time.Minute)

	resp, err := expired.Login(context.Background(), models.LoginRequest{Email: "t@test.dev", Password: "secret1"})
	require.NoError(t, err)

	_, err = expired.Authenticate(context.Background(), resp.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTokenExpired.Code, appErrors.FromError(err).Code)

	_, err = expired.Authenticate(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	users := newFakeAuthUsers()
	users.add(&models.User{ID: "u1", SchoolID: "school-1", Email: "t@test.dev", PasswordHash: hashOf(t, "secret1")})
	svc := newAuthService(users, time.Hour)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "t@test.dev", Password: "secret1"})
	require.NoError(t, err)

	delete(users.byID, "u1")
	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordClearsMustChangeFlag(t *testing.T) {
	users := newFakeAuthUsers()
	users.add(&models.User{ID: "u1", Email: "p@test.dev", PasswordHash: hashOf(t, "old-pass"), MustChangePassword: true})
	svc := newAuthService(users, time.Hour)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "old-pass",
		NewPassword: "new-pass",
	})
	require.NoError(t, err)
	assert.False(t, users.byID["u1"].MustChangePassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byID["u1"].PasswordHash), []byte("new-pass")))
}

func TestChangePasswordRejectsWrongOldPassword(t *testing.T) {
	users := newFakeAuthUsers()
	users.add(&models.User{ID: "u1", Email: "p@test.dev", PasswordHash: hashOf(t, "old-pass")})
	svc := newAuthService(users, time.Hour)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "guess",
		NewPassword: "new-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
