package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/OsasDev/qirllo-api/internal/models"
)

func newRBACRouter(role models.UserRole, resource string, action Action) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextAuthKey, &models.AuthContext{
			User:     &models.User{ID: "u1", SchoolID: "school-1", Role: role},
			SchoolID: "school-1",
		})
	})
	router.GET("/r", Require(resource, action), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func rbacStatus(role models.UserRole, resource string, action Action) int {
	router := newRBACRouter(role, resource, action)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/r", nil))
	return rec.Code
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		role     models.UserRole
		resource string
		action   Action
		want     int
	}{
		{models.RoleAdmin, "users", ActionWrite, http.StatusOK},
		{models.RoleTeacher, "users", ActionWrite, http.StatusForbidden},
		{models.RoleParent, "students", ActionRead, http.StatusOK},
		{models.RoleParent, "students", ActionWrite, http.StatusForbidden},
		{models.RoleTeacher, "grades", ActionWrite, http.StatusOK},
		{models.RoleTeacher, "grades", ActionApprove, http.StatusForbidden},
		{models.RoleAdmin, "grades", ActionApprove, http.StatusOK},
		{models.RoleParent, "fees", ActionRead, http.StatusOK},
		{models.RoleTeacher, "fees", ActionRead, http.StatusForbidden},
		{models.RoleTeacher, "attendance", ActionWrite, http.StatusOK},
		{models.RoleParent, "attendance", ActionWrite, http.StatusForbidden},
		{models.RoleAdmin, "announcements", ActionWrite, http.StatusOK},
		{models.RoleTeacher, "announcements", ActionWrite, http.StatusForbidden},
		{models.RoleParent, "announcements", ActionWrite, http.StatusForbidden},
		{models.RoleAdmin, "imports", ActionWrite, http.StatusOK},
		{models.RoleTeacher, "imports", ActionWrite, http.StatusForbidden},
		{models.RoleAdmin, "balances", ActionRead, http.StatusOK},
		{models.RoleParent, "balances", ActionRead, http.StatusForbidden},
	}
	for _, tc := range cases {
		got := rbacStatus(tc.role, tc.resource, tc.action)
		assert.Equal(t, tc.want, got, "%s %s %s", tc.role, tc.resource, tc.action)
	}
}

func TestRequireWithoutIdentityIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/r", Require("students", ActionRead), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/r", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
