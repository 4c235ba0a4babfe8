package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/cache"
	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
)

// fakeAPI counts upstream calls and serves canned data.
type fakeAPI struct {
	listUsersCalls    int
	listUsersPage     int
	listProjectsCalls int

	users    *apiclient.UserPage
	projects []domain.Project

	createProjectErr error
}

func (f *fakeAPI) ListUsers(_ context.Context, page, limit int) (*apiclient.UserPage, error) {
	f.listUsersCalls++
	f.listUsersPage = page
	if f.users != nil {
		return f.users, nil
	}
	return &apiclient.UserPage{Users: []domain.User{}, Total: 0, Page: page, Limit: limit}, nil
}

func (f *fakeAPI) UpdateUserRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	return &domain.User{ID: id, Role: role}, nil
}

func (f *fakeAPI) UpdateUserStatus(_ context.Context, id string, status domain.UserStatus) (*domain.User, error) {
	return &domain.User{ID: id, Status: status}, nil
}

func (f *fakeAPI) ListProjects(_ context.Context) ([]domain.Project, error) {
	f.listProjectsCalls++
	return f.projects, nil
}

func (f *fakeAPI) CreateProject(_ context.Context, name, description string) (*domain.Project, error) {
	if f.createProjectErr != nil {
		return nil, f.createProjectErr
	}
	p := domain.Project{ID: "p-new", Name: name, Description: description, Status: domain.ProjectActive}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeAPI) UpdateProject(_ context.Context, id string, update apiclient.ProjectUpdate) (*domain.Project, error) {
	return &domain.Project{ID: id}, nil
}

func (f *fakeAPI) DeleteProject(_ context.Context, id string) error {
	for i, p := range f.projects {
		if p.ID == id {
			f.projects[i].IsDeleted = true
		}
	}
	return nil
}

func (f *fakeAPI) CreateInvite(_ context.Context, email string, role domain.Role) (*apiclient.InviteCreated, error) {
	return &apiclient.InviteCreated{Token: "inv-tok", InviteLink: "https://portal.example/register/inv-tok"}, nil
}

func newTestCoordinator(api API) *Coordinator {
	return NewCoordinator(api, cache.NewMemoryStore(), nil)
}

func TestUsersAreCachedPerPage(t *testing.T) {
	api := &fakeAPI{users: &apiclient.UserPage{
		Users: []domain.User{{ID: "u1", Email: "a@b.com", Role: domain.RoleStaff}},
		Total: 1, Page: 1, Limit: UsersPageLimit,
	}}
	coord := newTestCoordinator(api)
	ctx := context.Background()

	first, err := coord.Users(ctx, 1)
	require.NoError(t, err)
	second, err := coord.Users(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, api.listUsersCalls, "second read must come from cache")
	assert.Equal(t, first.Users, second.Users)
}

func TestUsersPageClampedToOne(t *testing.T) {
	api := &fakeAPI{}
	coord := newTestCoordinator(api)

	_, err := coord.Users(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listUsersPage)
}

func TestUsersBeyondLastPageServesEmptySet(t *testing.T) {
	// API answers an empty page but keeps reporting the real total/limit.
	api := &fakeAPI{users: &apiclient.UserPage{
		Users: []domain.User{}, Total: 23, Page: 99, Limit: 10,
	}}
	coord := newTestCoordinator(api)

	page, err := coord.Users(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, page.Users)
	assert.Equal(t, 3, TotalPages(page.Total, page.Limit), "page count comes from the response, never a guess")
}

func TestCreateProjectInvalidatesList(t *testing.T) {
	api := &fakeAPI{projects: []domain.Project{{ID: "p1", Name: "First", Status: domain.ProjectActive}}}
	coord := newTestCoordinator(api)
	ctx := context.Background()

	before, err := coord.ActiveProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, before, 1)

	_, err = coord.CreateProject(ctx, "Second", "")
	require.NoError(t, err)

	after, err := coord.ActiveProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, after, 2, "next read must reflect server state, not the cached list")
	assert.Equal(t, 2, api.listProjectsCalls, "creation must force a re-fetch")
}

func TestActiveProjectsFiltersSoftDeleted(t *testing.T) {
	api := &fakeAPI{projects: []domain.Project{
		{ID: "p1", Name: "Visible", Status: domain.ProjectActive},
		{ID: "p2", Name: "Flagged", Status: domain.ProjectActive, IsDeleted: true},
		{ID: "p3", Name: "Statused", Status: domain.ProjectDeleted},
		{ID: "p4", Name: "Archived", Status: domain.ProjectArchived},
	}}
	coord := newTestCoordinator(api)

	active, err := coord.ActiveProjects(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(active))
	for _, p := range active {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p1", "p4"}, ids, "deleted rows stay in the raw payload but never render")
}

func TestDeleteProjectHidesRowOnNextRead(t *testing.T) {
	api := &fakeAPI{projects: []domain.Project{
		{ID: "p1", Name: "Doomed", Status: domain.ProjectActive},
	}}
	coord := newTestCoordinator(api)
	ctx := context.Background()

	_, err := coord.ActiveProjects(ctx)
	require.NoError(t, err)

	require.NoError(t, coord.DeleteProject(ctx, "p1"))

	after, err := coord.ActiveProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestUserMutationsInvalidateUsersOnly(t *testing.T) {
	api := &fakeAPI{projects: []domain.Project{{ID: "p1", Status: domain.ProjectActive}}}
	coord := newTestCoordinator(api)
	ctx := context.Background()

	_, err := coord.Users(ctx, 1)
	require.NoError(t, err)
	_, err = coord.ActiveProjects(ctx)
	require.NoError(t, err)

	_, err = coord.UpdateUserRole(ctx, "u1", domain.RoleManager)
	require.NoError(t, err)

	_, err = coord.Users(ctx, 1)
	require.NoError(t, err)
	_, err = coord.ActiveProjects(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, api.listUsersCalls, "users cache staled by the role change")
	assert.Equal(t, 1, api.listProjectsCalls, "projects cache untouched by a user mutation")
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, limit, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{23, 10, 3},
		{5, 0, 1}, // zero limit falls back to the fixed page size
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}
