package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/middleware"
	"github.com/OsasDev/qirllo-api/internal/service"
)

// Handlers bundles every resource handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Students      *StudentHandler
	Classes       *ClassHandler
	Subjects      *SubjectHandler
	Grades        *GradeHandler
	Attendance    *AttendanceHandler
	Fees          *FeeHandler
	Messages      *MessageHandler
	Announcements *AnnouncementHandler
	Dashboard     *DashboardHandler
	Seed          *SeedHandler
}

// RegisterRoutes mounts the API under the given prefix. Every route beyond
// register/login runs the auth middleware, and each declares the permission
// it needs from the policy table.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	api := r.Group(prefix)

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(auth))

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/change-password", h.Auth.ChangePassword)

	protected.POST("/users/invite", middleware.Require("users", middleware.ActionWrite), h.Users.Invite)
	protected.GET("/users", middleware.Require("users", middleware.ActionRead), h.Users.List)
	protected.GET("/users/:id", middleware.Require("users", middleware.ActionRead), h.Users.Get)
	protected.DELETE("/users/:id", middleware.Require("users", middleware.ActionDelete), h.Users.Delete)

	protected.GET("/students", middleware.Require("students", middleware.ActionRead), h.Students.List)
	protected.GET("/students/export", middleware.Require("exports", middleware.ActionRead), h.Students.Export)
	protected.POST("/students/import", middleware.Require("imports", middleware.ActionWrite), h.Students.Import)
	protected.GET("/students/:id", middleware.Require("students", middleware.ActionRead), h.Students.Get)
	protected.POST("/students", middleware.Require("students", middleware.ActionWrite), h.Students.Create)
	protected.PUT("/students/:id", middleware.Require("students", middleware.ActionWrite), h.Students.Update)
	protected.DELETE("/students/:id", middleware.Require("students", middleware.ActionDelete), h.Students.Delete)

	protected.GET("/classes", middleware.Require("classes", middleware.ActionRead), h.Classes.List)
	protected.GET("/classes/:id", middleware.Require("classes", middleware.ActionRead), h.Classes.Get)
	protected.POST("/classes", middleware.Require("classes", middleware.ActionWrite), h.Classes.Create)
	protected.PUT("/classes/:id", middleware.Require("classes", middleware.ActionWrite), h.Classes.Update)
	protected.DELETE("/classes/:id", middleware.Require("classes", middleware.ActionDelete), h.Classes.Delete)

	protected.GET("/subjects", middleware.Require("subjects", middleware.ActionRead), h.Subjects.List)
	protected.GET("/subjects/:id", middleware.Require("subjects", middleware.ActionRead), h.Subjects.Get)
	protected.POST("/subjects", middleware.Require("subjects", middleware.ActionWrite), h.Subjects.Create)
	protected.PUT("/subjects/:id", middleware.Require("subjects", middleware.ActionWrite), h.Subjects.Update)
	protected.DELETE("/subjects/:id", middleware.Require("subjects", middleware.ActionDelete), h.Subjects.Delete)

	protected.GET("/grades", middleware.Require("grades", middleware.ActionRead), h.Grades.List)
	protected.GET("/grades/:id", middleware.Require("grades", middleware.ActionRead), h.Grades.Get)
	protected.POST("/grades", middleware.Require("grades", middleware.ActionWrite), h.Grades.Record)
	protected.POST("/grades/bulk", middleware.Require("grades", middleware.ActionWrite), h.Grades.Bulk)
	protected.POST("/grades/:id/submit", middleware.Require("grades", middleware.ActionWrite), h.Grades.Submit)
	protected.POST("/grades/:id/approve", middleware.Require("grades", middleware.ActionApprove), h.Grades.Approve)

	protected.GET("/attendance", middleware.Require("attendance", middleware.ActionRead), h.Attendance.List)
	protected.POST("/attendance", middleware.Require("attendance", middleware.ActionWrite), h.Attendance.Mark)
	protected.POST("/attendance/bulk", middleware.Require("attendance", middleware.ActionWrite), h.Attendance.Bulk)
	protected.GET("/attendance/students/:id/summary", middleware.Require("attendance", middleware.ActionRead), h.Attendance.Summary)

	protected.POST("/fees/structures", middleware.Require("fees", middleware.ActionWrite), h.Fees.UpsertStructure)
	protected.GET("/fees/structures", middleware.Require("fees", middleware.ActionRead), h.Fees.ListStructures)
	protected.POST("/fees/payments", middleware.Require("fees", middleware.ActionWrite), h.Fees.RecordPayment)
	protected.GET("/fees/payments/:id/receipt", middleware.Require("payments", middleware.ActionRead), h.Fees.Receipt)
	protected.GET("/fees/students/:id/payments", middleware.Require("payments", middleware.ActionRead), h.Fees.ListPayments)
	protected.GET("/fees/students/:id/balance", middleware.Require("fees", middleware.ActionRead), h.Fees.Balance)
	protected.GET("/fees/balances", middleware.Require("balances", middleware.ActionRead), h.Fees.Balances)

	protected.POST("/messages", middleware.Require("messages", middleware.ActionWrite), h.Messages.Send)
	protected.GET("/messages", middleware.Require("messages", middleware.ActionRead), h.Messages.List)
	protected.GET("/messages/:id", middleware.Require("messages", middleware.ActionRead), h.Messages.Get)
	protected.POST("/messages/:id/read", middleware.Require("messages", middleware.ActionWrite), h.Messages.MarkRead)
	protected.DELETE("/messages/:id", middleware.Require("messages", middleware.ActionDelete), h.Messages.Delete)

	protected.POST("/announcements", middleware.Require("announcements", middleware.ActionWrite), h.Announcements.Publish)
	protected.GET("/announcements", middleware.Require("announcements", middleware.ActionRead), h.Announcements.List)
	protected.GET("/announcements/:id", middleware.Require("announcements", middleware.ActionRead), h.Announcements.Get)
	protected.DELETE("/announcements/:id", middleware.Require("announcements", middleware.ActionDelete), h.Announcements.Delete)

	protected.GET("/dashboard", middleware.Require("dashboard", middleware.ActionRead), h.Dashboard.Stats)

	if h.Seed != nil {
		api.POST("/seed", h.Seed.Seed)
	}
}
