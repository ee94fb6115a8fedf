package middleware

import "github.com/OsasDev/qirllo-api/internal/models"

// Action is a permission verb on a resource.
type Action string

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
)

// Permission names one resource/action pair.
type Permission struct {
	Resource string
	Action   Action
}

// policy is the single declarative permission table. Every route declares
// the permission it needs and this table decides which roles hold it;
// handlers never re-check roles themselves.
var policy = map[Permission][]models.UserRole{
	{"users", ActionRead}:    {models.RoleAdmin},
	{"users", ActionWrite}:   {models.RoleAdmin},
	{"users", ActionDelete}:  {models.RoleAdmin},
	{"students", ActionRead}: {models.RoleAdmin, models.RoleTeacher, models.RoleParent},

	{"students", ActionWrite}:  {models.RoleAdmin},
	{"students", ActionDelete}: {models.RoleAdmin},

	{"classes", ActionRead}:   {models.RoleAdmin, models.RoleTeacher},
	{"classes", ActionWrite}:  {models.RoleAdmin},
	{"classes", ActionDelete}: {models.RoleAdmin},

	{"subjects", ActionRead}:   {models.RoleAdmin, models.RoleTeacher},
	{"subjects", ActionWrite}:  {models.RoleAdmin},
	{"subjects", ActionDelete}: {models.RoleAdmin},

	{"grades", ActionRead}:    {models.RoleAdmin, models.RoleTeacher, models.RoleParent},
	{"grades", ActionWrite}:   {models.RoleAdmin, models.RoleTeacher},
	{"grades", ActionApprove}: {models.RoleAdmin},

	{"attendance", ActionRead}:  {models.RoleAdmin, models.RoleTeacher, models.RoleParent},
	{"attendance", ActionWrite}: {models.RoleAdmin, models.RoleTeacher},

	{"fees", ActionRead}:     {models.RoleAdmin, models.RoleParent},
	{"fees", ActionWrite}:    {models.RoleAdmin},
	{"payments", ActionRead}: {models.RoleAdmin, models.RoleParent},
	{"balances", ActionRead}: {models.RoleAdmin},

	{"messages", ActionRead}:   {models.RoleAdmin, models.RoleTeacher, models.RoleParent},
	{"messages", ActionWrite}:  {models.RoleAdmin, models.RoleTeacher, models.RoleParent},
	{"messages", ActionDelete}: {models.RoleAdmin, models.RoleTeacher, models.RoleParent},

	{"announcements", ActionRead}:   {models.RoleAdmin, models.RoleTeacher, models.RoleParent},
	{"announcements", ActionWrite}:  {models.RoleAdmin},
	{"announcements", ActionDelete}: {models.RoleAdmin},

	{"dashboard", ActionRead}: {models.RoleAdmin, models.RoleTeacher, models.RoleParent},
	{"imports", ActionWrite}:  {models.RoleAdmin},
	{"exports", ActionRead}:   {models.RoleAdmin, models.RoleTeacher},
}

// Allowed reports whether the role holds the permission.
func Allowed(role models.UserRole, resource string, action Action) bool {
	for _, allowed := range policy[Permission{Resource: resource, Action: action}] {
		if allowed == role {
			return true
		}
	}
	return false
}
