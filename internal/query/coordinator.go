// Package query coordinates per-screen reads and mutations against the
// remote API: reads go through the list cache, mutations invalidate it.
// The portal never computes a post-mutation list locally; the next read
// re-fetches so server-side soft-delete and status filtering stay the
// single source of truth.
package query

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/alireja-khan/rbac-admin-portal/internal/apiclient"
	"github.com/alireja-khan/rbac-admin-portal/internal/cache"
	"github.com/alireja-khan/rbac-admin-portal/internal/domain"
	"github.com/alireja-khan/rbac-admin-portal/internal/telemetry"
)

// UsersPageLimit is the fixed page size of the user-management table.
const UsersPageLimit = 10

// API is the slice of the upstream client the coordinator drives.
type API interface {
	ListUsers(ctx context.Context, page, limit int) (*apiclient.UserPage, error)
	UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*domain.User, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, name, description string) (*domain.Project, error)
	UpdateProject(ctx context.Context, projectID string, update apiclient.ProjectUpdate) (*domain.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	CreateInvite(ctx context.Context, email string, role domain.Role) (*apiclient.InviteCreated, error)
}

// Coordinator owns the read queries and mutations of the list screens.
type Coordinator struct {
	api   API
	cache cache.Store
	log   *zap.Logger
}

// NewCoordinator creates a query coordinator
func NewCoordinator(api API, store cache.Store, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{api: api, cache: store, log: log}
}

// Users returns page p of the user table, from cache when fresh. Pages
// below 1 are clamped; pages beyond the last are served as whatever the
// API returns (an empty set), with the response's total/limit still
// driving the page count.
func (c *Coordinator) Users(ctx context.Context, page int) (*apiclient.UserPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "query.users")
	defer span.End()

	if page < 1 {
		page = 1
	}
	span.SetAttributes(attribute.Int("page", page))

	key := cache.Key{Kind: cache.KindUsers, Page: page}
	out := &apiclient.UserPage{}
	if c.fromCache(ctx, key, out) {
		return out, nil
	}

	gen := c.generation(ctx, cache.KindUsers)
	result, err := c.api.ListUsers(ctx, page, UsersPageLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.fill(ctx, key, gen, result)
	return result, nil
}

// ActiveProjects returns the projects list with soft-deleted rows
// filtered out. The raw payload is what gets cached; the filter is a
// display concern applied on every read.
func (c *Coordinator) ActiveProjects(ctx context.Context) ([]domain.Project, error) {
	ctx, span := telemetry.StartSpan(ctx, "query.projects")
	defer span.End()

	key := cache.Key{Kind: cache.KindProjects, Page: 0}

	var raw []domain.Project
	if !c.fromCache(ctx, key, &raw) {
		gen := c.generation(ctx, cache.KindProjects)
		fetched, err := c.api.ListProjects(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		raw = fetched
		c.fill(ctx, key, gen, raw)
	}

	active := make([]domain.Project, 0, len(raw))
	for _, p := range raw {
		if !p.Deleted() {
			active = append(active, p)
		}
	}
	return active, nil
}

// CreateProject creates a project and stales the projects list.
func (c *Coordinator) CreateProject(ctx context.Context, name, description string) (*domain.Project, error) {
	ctx, span := telemetry.StartSpan(ctx, "mutation.project.create")
	defer span.End()

	project, err := c.api.CreateProject(ctx, name, description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.invalidate(ctx, cache.KindProjects)
	return project, nil
}

// UpdateProject patches a project and stales the projects list.
func (c *Coordinator) UpdateProject(ctx context.Context, projectID string, update apiclient.ProjectUpdate) (*domain.Project, error) {
	ctx, span := telemetry.StartSpan(ctx, "mutation.project.update")
	defer span.End()

	project, err := c.api.UpdateProject(ctx, projectID, update)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.invalidate(ctx, cache.KindProjects)
	return project, nil
}

// DeleteProject soft-deletes a project and stales the projects list. The
// row may still arrive in the next raw fetch; the read-side filter hides
// it.
func (c *Coordinator) DeleteProject(ctx context.Context, projectID string) error {
	ctx, span := telemetry.StartSpan(ctx, "mutation.project.delete")
	defer span.End()

	if err := c.api.DeleteProject(ctx, projectID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	c.invalidate(ctx, cache.KindProjects)
	return nil
}

// UpdateUserRole changes a user's role and stales the users table.
func (c *Coordinator) UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "mutation.user.role")
	defer span.End()

	user, err := c.api.UpdateUserRole(ctx, userID, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.invalidate(ctx, cache.KindUsers)
	return user, nil
}

// UpdateUserStatus activates or deactivates a user and stales the table.
func (c *Coordinator) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "mutation.user.status")
	defer span.End()

	user, err := c.api.UpdateUserStatus(ctx, userID, status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.invalidate(ctx, cache.KindUsers)
	return user, nil
}

// CreateInvite issues an invite. The server materializes the invited user
// in the user table, so the users cache is staled too.
func (c *Coordinator) CreateInvite(ctx context.Context, email string, role domain.Role) (*apiclient.InviteCreated, error) {
	ctx, span := telemetry.StartSpan(ctx, "mutation.invite.create")
	defer span.End()

	invite, err := c.api.CreateInvite(ctx, email, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.invalidate(ctx, cache.KindUsers)
	return invite, nil
}

// fromCache loads key into out; a degraded cache reads as a miss.
func (c *Coordinator) fromCache(ctx context.Context, key cache.Key, out interface{}) bool {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed, fetching upstream", zap.String("key", key.String()), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.log.Warn("cache entry corrupt, fetching upstream", zap.String("key", key.String()), zap.Error(err))
		return false
	}
	return true
}

// generation snapshots the kind's generation before an upstream fetch.
func (c *Coordinator) generation(ctx context.Context, kind cache.Kind) uint64 {
	gen, err := c.cache.Generation(ctx, kind)
	if err != nil {
		c.log.Warn("cache generation unavailable", zap.String("kind", string(kind)), zap.Error(err))
	}
	return gen
}

// fill stores a fetched payload; the backend drops it when gen is stale.
func (c *Coordinator) fill(ctx context.Context, key cache.Key, gen uint64, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key.String()), zap.Error(err))
		return
	}
	if err := c.cache.Set(ctx, key, gen, data); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
}

func (c *Coordinator) invalidate(ctx context.Context, kind cache.Kind) {
	if err := c.cache.Invalidate(ctx, kind); err != nil {
		c.log.Warn("cache invalidation failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// TotalPages derives the page count from a server-reported total and
// limit. The client never guesses: a zero or negative limit falls back to
// the fixed page size, and there is always at least one page.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		limit = UsersPageLimit
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}
