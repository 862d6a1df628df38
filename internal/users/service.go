package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medimall/medimall-backend/pkg/db"
	"github.com/medimall/medimall-backend/pkg/enums"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/types"
)

const msgUserExists = "user already exists"

// Service exposes identity registration and role administration.
type Service interface {
	Register(ctx context.Context, input RegisterUserDTO) (types.InsertResult, error)
	List(ctx context.Context) ([]UserDTO, error)
	SetRole(ctx context.Context, id string, role string) (types.UpdateResult, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// NewService builds the users service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Register creates the identity on first sign-in. A second call for the same
// email is a soft conflict: success with a null inserted id.
func (s *service) Register(ctx context.Context, input RegisterUserDTO) (types.InsertResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return types.InsertResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return types.InsertResult{Message: msgUserExists, InsertedID: nil}, nil
	} else if !db.IsNotFound(err) {
		return types.InsertResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup identity")
	}

	user, err := s.repo.Create(ctx, input)
	if err != nil {
		// Lost a registration race; same soft outcome as the lookup path.
		if db.IsUniqueViolation(err, "") {
			return types.InsertResult{Message: msgUserExists, InsertedID: nil}, nil
		}
		return types.InsertResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create identity")
	}

	s.logg.Info(s.logg.WithEmail(ctx, user.Email), "user.registered")
	return types.InsertResult{InsertedID: user.ID}, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list identities")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// SetRole assigns a role by identity id. An unknown id reports zero modified rows.
func (s *service) SetRole(ctx context.Context, id string, role string) (types.UpdateResult, error) {
	userID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return types.UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	if strings.TrimSpace(role) == "" {
		return types.UpdateResult{}, pkgerrors.New(pkgerrors.CodeValidation, "role is required")
	}
	parsed, err := enums.ParseRole(role)
	if err != nil {
		return types.UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}

	modified, err := s.repo.UpdateRole(ctx, userID, parsed)
	if err != nil {
		return types.UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
	}
	if modified == 0 {
		return types.UpdateResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"user_id": userID.String(), "role": parsed})
	s.logg.Info(ctx, "user.role_assigned")
	return types.UpdateResult{ModifiedCount: modified}, nil
}
