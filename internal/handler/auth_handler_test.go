package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/service"
)

type authUserRepoFake struct {
	users map[string]*models.User
}

func newAuthUserRepoFake() *authUserRepoFake {
	return &authUserRepoFake{users: map[string]*models.User{}}
}

func (f *authUserRepoFake) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *authUserRepoFake) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *authUserRepoFake) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(context.Background(), email)
	return err == nil, nil
}

func (f *authUserRepoFake) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	f.users[user.ID] = user
	return nil
}

func (f *authUserRepoFake) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.users[id].PasswordHash = passwordHash
	return nil
}

type authSchoolRepoFake struct{}

func (f *authSchoolRepoFake) Create(_ context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = "school-" + school.Name
	}
	return nil
}

func testAuthHandler(users *authUserRepoFake) *AuthHandler {
	svc := service.NewAuthService(users, &authSchoolRepoFake{}, nil, nil, service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "qirllo-test",
	})
	return NewAuthHandler(svc)
}

func TestAuthHandlerRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := newAuthUserRepoFake()
	handler := testAuthHandler(users)

	payload, _ := json.Marshal(models.RegisterRequest{
		SchoolName: "Hillcrest Academy",
		FullName:   "Ade Balogun",
		Email:      "ade@hillcrest.example",
		Password:   "sup3rsecret",
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.AuthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, models.RoleAdmin, envelope.Data.User.Role)
}

func TestAuthHandlerLoginWrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := newAuthUserRepoFake()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &models.User{
		Email:        "ade@hillcrest.example",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		SchoolID:     "school-1",
	}))
	handler := testAuthHandler(users)

	payload, _ := json.Marshal(models.LoginRequest{Email: "ade@hillcrest.example", Password: "wrong-password"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
	assert.Equal(t, "invalid email or password", envelope.Error.Message)
}

func TestAuthHandlerLoginInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testAuthHandler(newAuthUserRepoFake())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`not-json`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
