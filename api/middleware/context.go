package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// Actor is the authenticated caller as Auth resolved it.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     enums.MemberRole
}

type actorKey struct{}

// WithActor stores a on the context, replacing any earlier actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the zero Actor when Auth has not run.
func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// Scope returns the caller's tenant and user. ok is false unless both are set.
func Scope(ctx context.Context) (tenantID, userID uuid.UUID, ok bool) {
	a := ActorFromContext(ctx)
	if a.TenantID == uuid.Nil || a.UserID == uuid.Nil {
		return uuid.Nil, uuid.Nil, false
	}
	return a.TenantID, a.UserID, true
}

// String accessors keep log keys and cache scopes readable; empty when unset.

func UserIDFromContext(ctx context.Context) string {
	return idString(ActorFromContext(ctx).UserID)
}

func TenantIDFromContext(ctx context.Context) string {
	return idString(ActorFromContext(ctx).TenantID)
}

func RoleFromContext(ctx context.Context) enums.MemberRole {
	return ActorFromContext(ctx).Role
}

// WithUserID, WithTenantID and WithRole patch one part of the actor. Tests
// use them to fake an authenticated request.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	a := ActorFromContext(ctx)
	a.UserID = id
	return WithActor(ctx, a)
}

func WithTenantID(ctx context.Context, id uuid.UUID) context.Context {
	a := ActorFromContext(ctx)
	a.TenantID = id
	return WithActor(ctx, a)
}

func WithRole(ctx context.Context, role enums.MemberRole) context.Context {
	a := ActorFromContext(ctx)
	a.Role = role
	return WithActor(ctx, a)
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
