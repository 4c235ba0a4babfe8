package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
)

// ListProjects fetches the full projects list. Privileged. The raw payload
// may contain soft-deleted rows; filtering is a display concern handled by
// the query coordinator.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateProject creates a project. Privileged.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*domain.Project, error) {
	out := &domain.Project{}
	err := c.do(ctx, http.MethodPost, "/projects", nil, createProjectRequest{Name: name, Description: description}, out, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProjectUpdate is a partial update; nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *domain.ProjectStatus `json:"status,omitempty"`
}

// UpdateProject patches a project. Privileged.
func (c *Client) UpdateProject(ctx context.Context, projectID string, update ProjectUpdate) (*domain.Project, error) {
	out := &domain.Project{}
	err := c.do(ctx, http.MethodPatch, "/projects/"+url.PathEscape(projectID), nil, update, out, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProject soft-deletes a project server-side; the row may still
// appear in subsequent raw fetches with its deletion flag set.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, nil, nil, true)
}
