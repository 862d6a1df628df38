package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/medimall/medimall-backend/pkg/db"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/metrics"
	"github.com/medimall/medimall-backend/pkg/types"
)

// Service is the cart ledger.
type Service interface {
	Add(ctx context.Context, input AddItemDTO) (types.InsertResult, error)
	ListByOwner(ctx context.Context, email string) ([]CartItemDTO, error)
	Remove(ctx context.Context, id string) (types.DeleteResult, error)
	ClearByOwner(ctx context.Context, email string) (types.DeleteResult, error)
	Adjust(ctx context.Context, id string, dir Direction) (AdjustResult, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo    *Repository
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
}

type service struct {
	repo    *Repository
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewService builds the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository required")
	}
	return &service{
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

func (s *service) Add(ctx context.Context, input AddItemDTO) (types.InsertResult, error) {
	if input.PerUnitPrice.IsNegative() {
		return types.InsertResult{}, pkgerrors.New(pkgerrors.CodeValidation, "per_unit_price must not be negative")
	}
	item := input.toModel()
	if item.UserEmail == "" || item.MedicineID == "" {
		return types.InsertResult{}, pkgerrors.New(pkgerrors.CodeValidation, "user_email and medicine_id are required")
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return types.InsertResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
	}
	return types.InsertResult{InsertedID: item.ID}, nil
}

func (s *service) ListByOwner(ctx context.Context, email string) ([]CartItemDTO, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	rows, err := s.repo.ListByOwner(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	out := make([]CartItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (s *service) Remove(ctx context.Context, id string) (types.DeleteResult, error) {
	itemID, err := parseID(id)
	if err != nil {
		return types.DeleteResult{}, err
	}
	deleted, err := s.repo.Delete(ctx, itemID)
	if err != nil {
		return types.DeleteResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return types.DeleteResult{DeletedCount: deleted}, nil
}

// ClearByOwner empties a cart, typically right after checkout.
func (s *service) ClearByOwner(ctx context.Context, email string) (types.DeleteResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return types.DeleteResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	deleted, err := s.repo.DeleteByOwner(ctx, email)
	if err != nil {
		return types.DeleteResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"owner": email, "deleted": deleted})
	s.logg.Info(ctx, "cart.cleared")
	return types.DeleteResult{DeletedCount: deleted}, nil
}

// Adjust moves quantity by one unit. A decrease at zero is a no-op reported
// with modified_count 0; an unknown line is NOT_FOUND.
func (s *service) Adjust(ctx context.Context, id string, dir Direction) (AdjustResult, error) {
	itemID, err := parseID(id)
	if err != nil {
		s.metrics.IncAdjustment(string(dir), metrics.OutcomeRejected)
		return AdjustResult{}, err
	}

	var modified int64
	switch dir {
	case DirectionIncrease:
		modified, err = s.repo.Increment(ctx, itemID)
	case DirectionDecrease:
		modified, err = s.repo.Decrement(ctx, itemID)
	default:
		s.metrics.IncAdjustment(string(dir), metrics.OutcomeRejected)
		return AdjustResult{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown adjustment direction")
	}
	if err != nil {
		s.metrics.IncAdjustment(string(dir), metrics.OutcomeFailure)
		return AdjustResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust cart quantity")
	}

	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if db.IsNotFound(err) {
			s.metrics.IncAdjustment(string(dir), metrics.OutcomeRejected)
			return AdjustResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		s.metrics.IncAdjustment(string(dir), metrics.OutcomeFailure)
		return AdjustResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if modified == 0 {
		s.metrics.IncAdjustment(string(dir), metrics.OutcomeNoop)
	} else {
		s.metrics.IncAdjustment(string(dir), metrics.OutcomeSuccess)
	}
	return AdjustResult{ModifiedCount: modified, Quantity: item.Quantity}, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item id")
	}
	return id, nil
}
