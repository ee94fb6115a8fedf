package models

import "time"

// Audience is the target group of an announcement.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceTeachers Audience = "teachers"
	AudienceParents  Audience = "parents"
	AudienceStudents Audience = "students"
)

// Valid reports whether the audience is a known target group.
func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceTeachers, AudienceParents, AudienceStudents:
		return true
	}
	return false
}

// AudiencesFor maps a role to the audiences it may read. Admins see every
// audience; other roles see "all" plus their own group.
func AudiencesFor(role UserRole) []Audience {
	switch role {
	case RoleAdmin:
		return []Audience{AudienceAll, AudienceTeachers, AudienceParents, AudienceStudents}
	case RoleTeacher:
		return []Audience{AudienceAll, AudienceTeachers}
	case RoleParent:
		return []Audience{AudienceAll, AudienceParents}
	}
	return []Audience{AudienceAll}
}

// AnnouncementRequest publishes a school-wide notice.
type AnnouncementRequest struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	Audience Audience `json:"audience" validate:"required"`
	Priority string   `json:"priority" validate:"omitempty,oneof=low normal high"`
}

// Announcement is a school-wide notice targeted at an audience.
type Announcement struct {
	ID        string    `db:"id" json:"id"`
	SchoolID  string    `db:"school_id" json:"school_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Audience  Audience  `db:"audience" json:"audience"`
	Priority  string    `db:"priority" json:"priority"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
