package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

const (
	seedAdminEmail   = "admin@demo.qirllo.dev"
	seedTeacherEmail = "teacher@demo.qirllo.dev"
	seedParentEmail  = "parent@demo.qirllo.dev"
	seedPassword     = "qirllo-demo"
)

type seedUserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
}

type seedSchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
}

type seedClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
}

type seedSubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
}

type seedStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
}

// SeedService bootstraps a demo school with one user per role, a class, a
// subject and a handful of students. Seeding is idempotent: a second run
// detects the demo admin and does nothing.
type SeedService struct {
	users    seedUserRepository
	schools  seedSchoolRepository
	classes  seedClassRepository
	subjects seedSubjectRepository
	students seedStudentRepository
	logger   *zap.Logger
}

// NewSeedService constructs a SeedService instance.
func NewSeedService(users seedUserRepository, schools seedSchoolRepository, classes seedClassRepository, subjects seedSubjectRepository, students seedStudentRepository, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, schools: schools, classes: classes, subjects: subjects, students: students, logger: logger}
}

// Seed creates the demo dataset. It reports whether anything was created.
func (s *SeedService) Seed(ctx context.Context) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, seedAdminEmail)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check seed state")
	}
	if exists {
		return false, nil
	}

	school := &models.School{Name: "Demo Grammar School", Address: "1 Demo Close"}
	if err := s.schools.Create(ctx, school); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed school")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash seed password")
	}

	users := []*models.User{
		{SchoolID: school.ID, Email: seedAdminEmail, FullName: "Demo Admin", Role: models.RoleAdmin},
		{SchoolID: school.ID, Email: seedTeacherEmail, FullName: "Demo Teacher", Role: models.RoleTeacher},
		{SchoolID: school.ID, Email: seedParentEmail, FullName: "Demo Parent", Role: models.RoleParent},
	}
	for _, user := range users {
		user.PasswordHash = string(hash)
		if err := s.users.Create(ctx, user); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed user")
		}
	}
	teacher, parent := users[1], users[2]

	class := &models.Class{
		SchoolID:     school.ID,
		Name:         "JSS 1A",
		Level:        "JSS1",
		Section:      "A",
		TeacherID:    &teacher.ID,
		AcademicYear: "2025/2026",
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed class")
	}

	subject := &models.Subject{
		SchoolID:  school.ID,
		Name:      "Mathematics",
		Code:      "MTH101",
		ClassID:   class.ID,
		TeacherID: &teacher.ID,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed subject")
	}

	students := []*models.Student{
		{AdmissionNumber: "DEMO/001", FullName: "Ada Okafor", Gender: "female", ParentID: &parent.ID},
		{AdmissionNumber: "DEMO/002", FullName: "Tunde Bello", Gender: "male"},
		{AdmissionNumber: "DEMO/003", FullName: "Chiamaka Eze", Gender: "female"},
	}
	for _, student := range students {
		student.SchoolID = school.ID
		student.ClassID = &class.ID
		if err := s.students.Create(ctx, student); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed student")
		}
	}

	s.logger.Info("seeded demo school",
		zap.String("school_id", school.ID),
		zap.String("admin_email", seedAdminEmail),
	)
	return true, nil
}
