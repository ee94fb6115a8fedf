package models

// DashboardStats are role-specific aggregate counts. Fields not relevant to
// the caller's role are omitted from the response.
type DashboardStats struct {
	Students       *int `json:"students,omitempty"`
	Teachers       *int `json:"teachers,omitempty"`
	Parents        *int `json:"parents,omitempty"`
	Classes        *int `json:"classes,omitempty"`
	Subjects       *int `json:"subjects,omitempty"`
	Children       *int `json:"children,omitempty"`
	PendingGrades  *int `json:"pending_grades,omitempty"`
	Announcements  *int `json:"announcements,omitempty"`
	UnreadMessages *int `json:"unread_messages,omitempty"`
}

// ImportSummary reports the outcome of a bulk upload: rows created plus the
// ordered list of human-readable row errors.
type ImportSummary struct {
	Created int      `json:"created"`
	Errors  []string `json:"errors"`
}
