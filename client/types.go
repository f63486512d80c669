package client

import "time"

// OpStatus tracks the lifecycle of the most recent asynchronous store
// operation: idle until the first call, then loading, then succeeded or failed.
type OpStatus string

const (
	StatusIdle      OpStatus = "idle"
	StatusLoading   OpStatus = "loading"
	StatusSucceeded OpStatus = "succeeded"
	StatusFailed    OpStatus = "failed"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectOpen      ProjectStatus = "OPEN"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// User identifies a marketplace user.
type User struct {
	ID    string
	Name  string
	Email string
}

// Project is a marketplace project as held by the client stores. ID is the
// canonical identity; wire responses that carry the identity under a legacy
// field name are normalized before a Project is ever constructed.
type Project struct {
	ID          string
	Title       string
	Description string
	Budget      int
	TechStack   []string
	Status      ProjectStatus
	CreatedBy   string
	CreatedAt   time.Time
}

// Clone returns a deep copy so two views never share mutable state.
func (p Project) Clone() Project {
	out := p
	if p.TechStack != nil {
		out.TechStack = append([]string(nil), p.TechStack...)
	}
	return out
}

// ProjectDraft carries the fields needed to post a new project.
type ProjectDraft struct {
	Title       string
	Description string
	Budget      int
	TechStack   []string
}

// ProjectPatch is a partial update; nil fields are left unchanged.
type ProjectPatch struct {
	Title       *string
	Description *string
	Budget      *int
	TechStack   *[]string
}

// Credentials are the login inputs.
type Credentials struct {
	Email    string
	Password string
}

// Profile carries the signup inputs.
type Profile struct {
	Name     string
	Email    string
	Password string
}

func cloneProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}
