package service

import (
	"context"

	"github.com/fayiz2005/Kaze/internal/models"

	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxUserIDKey ctxKey = "userID"
	ctxRoleKey   ctxKey = "role"
)

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(uuid.UUID)
	return v, ok
}

func WithRole(ctx context.Context, r models.Role) context.Context {
	return context.WithValue(ctx, ctxRoleKey, r)
}

func RoleFromContext(ctx context.Context) (models.Role, bool) {
	v, ok := ctx.Value(ctxRoleKey).(models.Role)
	return v, ok
}

// IsAdminRole: ADMIN и SUPERADMIN имеют доступ к админке.
func IsAdminRole(r models.Role) bool {
	return r == models.RoleAdmin || r == models.RoleSuperAdmin
}

func requireAdmin(ctx context.Context) (uuid.UUID, models.Role, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok || uid == uuid.Nil {
		return uuid.Nil, "", ErrUnauthorized
	}
	role, _ := RoleFromContext(ctx)
	if !IsAdminRole(role) {
		return uuid.Nil, "", ErrForbidden
	}
	return uid, role, nil
}
