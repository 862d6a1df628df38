package users

import (
	"context"

	"github.com/medimall/medimall-backend/pkg/db"
	"github.com/medimall/medimall-backend/pkg/db/models"
	"github.com/medimall/medimall-backend/pkg/enums"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
)

type identityFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RoleResolver answers capability questions from the stored identity. It is
// consulted on every check so a role change applies to tokens already issued.
type RoleResolver struct {
	users identityFinder
}

// NewRoleResolver builds a resolver over the identity store.
func NewRoleResolver(users identityFinder) *RoleResolver {
	return &RoleResolver{users: users}
}

// Role returns the stored role for email. A missing identity resolves to RoleNone.
func (r *RoleResolver) Role(ctx context.Context, email string) (enums.Role, error) {
	email = normalizeEmail(email)
	if email == "" {
		return enums.RoleNone, nil
	}
	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNotFound(err) {
			return enums.RoleNone, nil
		}
		return enums.RoleNone, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load identity")
	}
	return user.Role.Normalize(), nil
}

// IsAdmin reports whether email holds the admin role.
func (r *RoleResolver) IsAdmin(ctx context.Context, email string) (bool, error) {
	return r.has(ctx, email, enums.RoleAdmin)
}

// IsSeller reports whether email holds the seller role.
func (r *RoleResolver) IsSeller(ctx context.Context, email string) (bool, error) {
	return r.has(ctx, email, enums.RoleSeller)
}

func (r *RoleResolver) has(ctx context.Context, email string, want enums.Role) (bool, error) {
	role, err := r.Role(ctx, email)
	if err != nil {
		return false, err
	}
	return role == want, nil
}
