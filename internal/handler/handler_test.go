package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
	"github.com/alireja-khan/rbac-admin-portal/internal/middleware"
	"github.com/alireja-khan/rbac-admin-portal/internal/session"
	"github.com/alireja-khan/rbac-admin-portal/internal/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testCookieName = "rbac_session"

func newEngine() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(view.Templates())
	return r
}

func newSessions() *session.Store {
	return session.NewStore(&session.Config{
		Secret:     "test-secret",
		CookieName: testCookieName,
		TTL:        time.Hour,
	})
}

func adminSession() *session.Session {
	return &session.Session{
		Token: "upstream-token",
		Identity: domain.Identity{
			ID:     "u-admin",
			Name:   "Alice Admin",
			Email:  "alice@example.com",
			Role:   domain.RoleAdmin,
			Status: domain.UserActive,
		},
	}
}

func staffSession() *session.Session {
	return &session.Session{
		Token: "upstream-token",
		Identity: domain.Identity{
			ID:     "u-staff",
			Name:   "Sam Staff",
			Email:  "sam@example.com",
			Role:   domain.RoleStaff,
			Status: domain.UserActive,
		},
	}
}

// asSession stands in for the auth guard: it plants the session on the
// gin context and the token on the request context.
func asSession(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeySession, sess)
		c.Request = c.Request.WithContext(apiclient.WithToken(c.Request.Context(), sess.Token))
	}
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doPost(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// fakeAuthAPI records calls to the public auth endpoints.
type fakeAuthAPI struct {
	loginResp  *apiclient.AuthResponse
	loginErr   error
	loginCalls int

	invite    *domain.Invite
	inviteErr error

	registerResp  *apiclient.AuthResponse
	registerErr   error
	registerCalls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*apiclient.AuthResponse, error) {
	f.loginCalls++
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) ValidateInvite(ctx context.Context, token string) (*domain.Invite, error) {
	return f.invite, f.inviteErr
}

func (f *fakeAuthAPI) RegisterViaInvite(ctx context.Context, token, name, password string) (*apiclient.AuthResponse, error) {
	f.registerCalls++
	return f.registerResp, f.registerErr
}

// fakeQueries records calls to the query layer.
type fakeQueries struct {
	usersResp  *apiclient.UserPage
	usersErr   error
	usersCalls int
	lastPage   int

	projects      []domain.Project
	projectsErr   error
	projectsCalls int

	createProjectErr   error
	createProjectCalls int
	lastCreateName     string
	lastCreateDesc     string

	updateProjectErr   error
	updateProjectCalls int
	lastProjectUpdate  apiclient.ProjectUpdate

	deleteProjectErr   error
	deleteProjectCalls int
	lastDeletedID      string

	updateRoleErr   error
	updateRoleCalls int
	lastRole        domain.Role

	updateStatusErr   error
	updateStatusCalls int
	lastStatus        domain.UserStatus

	inviteResp  *apiclient.InviteCreated
	inviteErr   error
	inviteCalls int
	lastInvite  string
}

func (f *fakeQueries) Users(ctx context.Context, page int) (*apiclient.UserPage, error) {
	f.usersCalls++
	f.lastPage = page
	return f.usersResp, f.usersErr
}

func (f *fakeQueries) ActiveProjects(ctx context.Context) ([]domain.Project, error) {
	f.projectsCalls++
	return f.projects, f.projectsErr
}

func (f *fakeQueries) CreateProject(ctx context.Context, name, description string) (*domain.Project, error) {
	f.createProjectCalls++
	f.lastCreateName = name
	f.lastCreateDesc = description
	if f.createProjectErr != nil {
		return nil, f.createProjectErr
	}
	return &domain.Project{ID: "p-new", Name: name, Description: description, Status: domain.ProjectActive}, nil
}

func (f *fakeQueries) UpdateProject(ctx context.Context, projectID string, update apiclient.ProjectUpdate) (*domain.Project, error) {
	f.updateProjectCalls++
	f.lastProjectUpdate = update
	if f.updateProjectErr != nil {
		return nil, f.updateProjectErr
	}
	return &domain.Project{ID: projectID}, nil
}

func (f *fakeQueries) DeleteProject(ctx context.Context, projectID string) error {
	f.deleteProjectCalls++
	f.lastDeletedID = projectID
	return f.deleteProjectErr
}

func (f *fakeQueries) UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	f.updateRoleCalls++
	f.lastRole = role
	if f.updateRoleErr != nil {
		return nil, f.updateRoleErr
	}
	return &domain.User{ID: userID, Role: role}, nil
}

func (f *fakeQueries) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*domain.User, error) {
	f.updateStatusCalls++
	f.lastStatus = status
	if f.updateStatusErr != nil {
		return nil, f.updateStatusErr
	}
	return &domain.User{ID: userID, Status: status}, nil
}

func (f *fakeQueries) CreateInvite(ctx context.Context, email string, role domain.Role) (*apiclient.InviteCreated, error) {
	f.inviteCalls++
	f.lastInvite = email
	return f.inviteResp, f.inviteErr
}
