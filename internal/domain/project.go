package domain

import "time"

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "ACTIVE"
	ProjectArchived ProjectStatus = "ARCHIVED"
	ProjectDeleted  ProjectStatus = "DELETED"
)

// ProjectStatuses lists every status the UI offers in the status selector.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectActive, ProjectArchived, ProjectDeleted}
}

// ProjectOwner is the embedded creator reference on a project.
type ProjectOwner struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Project is an API-owned resource; the portal renders it and never holds
// an authoritative copy.
type Project struct {
	ID          string        `json:"_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	IsDeleted   bool          `json:"isDeleted"`
	CreatedBy   ProjectOwner  `json:"createdBy"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Deleted reports whether the server considers the project soft-deleted.
// Deletion is flagged either way depending on the API version, so both
// signals are honored.
func (p Project) Deleted() bool {
	return p.IsDeleted || p.Status == ProjectDeleted
}

// Invite is the server-side resolution of an invite token. The token itself
// stays opaque to the portal; validity is decided solely by the API.
type Invite struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
