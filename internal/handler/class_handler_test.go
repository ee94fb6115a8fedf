package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OsasDev/qirllo-api/internal/middleware"
	"github.com/OsasDev/qirllo-api/internal/models"
	"github.com/OsasDev/qirllo-api/internal/service"
)

type classRepoFake struct {
	classes       map[string]*models.ClassDetail
	hasDependents bool
}

func newClassRepoFake() *classRepoFake {
	return &classRepoFake{classes: map[string]*models.ClassDetail{}}
}

func (f *classRepoFake) List(_ context.Context, schoolID string, _ models.ClassFilter) ([]models.ClassDetail, int, error) {
	var out []models.ClassDetail
	for _, class := range f.classes {
		if class.SchoolID == schoolID {
			out = append(out, *class)
		}
	}
	return out, len(out), nil
}

func (f *classRepoFake) FindByID(_ context.Context, schoolID, id string) (*models.ClassDetail, error) {
	class, ok := f.classes[id]
	if !ok || class.SchoolID != schoolID {
		return nil, sql.ErrNoRows
	}
	detail := *class
	return &detail, nil
}

func (f *classRepoFake) Create(_ context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "class-" + class.Name
	}
	f.classes[class.ID] = &models.ClassDetail{Class: *class}
	return nil
}

func (f *classRepoFake) Update(_ context.Context, class *models.Class) error {
	f.classes[class.ID] = &models.ClassDetail{Class: *class}
	return nil
}

func (f *classRepoFake) Delete(_ context.Context, schoolID, id string) (int64, error) {
	class, ok := f.classes[id]
	if !ok || class.SchoolID != schoolID {
		return 0, nil
	}
	delete(f.classes, id)
	return 1, nil
}

func (f *classRepoFake) HasDependents(_ context.Context, _, _ string) (bool, error) {
	return f.hasDependents, nil
}

func adminAuth() *models.AuthContext {
	return &models.AuthContext{
		User:     &models.User{ID: "admin-1", Role: models.RoleAdmin, SchoolID: "school-1"},
		SchoolID: "school-1",
	}
}

func testClassHandler(repo *classRepoFake) *ClassHandler {
	return NewClassHandler(service.NewClassService(repo, nil, nil))
}

func TestClassHandlerCreateAndGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newClassRepoFake()
	handler := testClassHandler(repo)

	payload, _ := json.Marshal(models.ClassRequest{Name: "JSS 1A", Level: "JSS1", Section: "A", AcademicYear: "2026/2027"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextAuthKey, adminAuth())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.ClassDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "JSS 1A", envelope.Data.Name)
	assert.NotEmpty(t, envelope.Data.ID)
}

func TestClassHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testClassHandler(newClassRepoFake())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/classes", bytes.NewBufferString(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextAuthKey, adminAuth())

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestClassHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testClassHandler(newClassRepoFake())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextAuthKey, adminAuth())

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestClassHandlerDeleteWithDependentsConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newClassRepoFake()
	repo.classes["class-1"] = &models.ClassDetail{Class: models.Class{ID: "class-1", SchoolID: "school-1", Name: "JSS 1A"}}
	repo.hasDependents = true
	handler := testClassHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/classes/class-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "class-1"}}
	c.Set(middleware.ContextAuthKey, adminAuth())

	handler.Delete(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestClassHandlerMissingIdentityIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := testClassHandler(newClassRepoFake())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/classes", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
