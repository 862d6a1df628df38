package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medimall/medimall-backend/pkg/db"
	"github.com/medimall/medimall-backend/pkg/db/models"
	"github.com/medimall/medimall-backend/pkg/enums"
	pkgerrors "github.com/medimall/medimall-backend/pkg/errors"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/metrics"
	"github.com/medimall/medimall-backend/pkg/outbox"
	"github.com/medimall/medimall-backend/pkg/outbox/payloads"
	"github.com/medimall/medimall-backend/pkg/types"
)

const (
	msgMarkedPaid       = "Payment status updated to 'paid'"
	msgNotFoundOrPaid   = "payment not found or already paid"
	msgAlreadyRecorded  = "payment already recorded"
	msgPaymentNotStored = "payment captured but not recorded"
)

var errNothingToMark = errors.New("no pending payment matched")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives checkout as a saga: every step leaves a durable outcome in the
// outbox, including the step that fails after the provider already took the intent.
type Service interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*CreateIntentResult, error)
	SaveDetails(ctx context.Context, input SaveDetailsInput) (types.InsertResult, error)
	List(ctx context.Context) ([]PaymentRecordDTO, error)
	MarkPaid(ctx context.Context, id string, actorEmail string) (types.UpdateResult, error)
}

// ServiceParams groups dependencies for the payments service.
type ServiceParams struct {
	Repo    *Repository
	Broker  Broker
	Tx      txRunner
	Outbox  outboxPublisher
	Logger  *logger.Logger
	Metrics *metrics.CheckoutMetrics
	Now     func() time.Time
}

type service struct {
	repo    *Repository
	broker  Broker
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
}

// NewService builds the payments service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payments repository required")
	}
	if params.Broker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment broker required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox publisher required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:    params.Repo,
		broker:  params.Broker,
		tx:      params.Tx,
		outbox:  params.Outbox,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// CreateIntent asks the provider for an intent. Nothing is recorded locally
// beyond a best-effort outbox event.
func (s *service) CreateIntent(ctx context.Context, input CreateIntentInput) (*CreateIntentResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		s.metrics.ObserveIntent(metrics.OutcomeRejected, 0)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	started := time.Now()
	intent, err := s.broker.CreateIntent(ctx, input.Amount, email)
	elapsed := time.Since(started)
	if err != nil {
		outcome := metrics.OutcomeFailure
		if pkgerrors.Is(err, pkgerrors.CodeValidation) {
			outcome = metrics.OutcomeRejected
		}
		s.metrics.ObserveIntent(outcome, elapsed)
		return nil, err
	}
	s.metrics.ObserveIntent(metrics.OutcomeSuccess, elapsed)

	ctx = s.logg.WithFields(ctx, map[string]any{"payment_intent_id": intent.ID, "amount": intent.Amount})
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentIntentCreated,
			AggregateType: enums.AggregatePaymentIntent,
			AggregateID:   intent.ID,
			Actor:         &outbox.ActorRef{Email: email},
			Data: payloads.PaymentIntentCreatedEvent{
				PaymentIntentID: intent.ID,
				Amount:          intent.Amount,
				Currency:        intent.Currency,
				Email:           email,
			},
		})
	}); err != nil {
		s.logg.Error(ctx, "payments.intent_event_failed", err)
	}
	s.logg.Info(ctx, "payments.intent_created")

	return &CreateIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// SaveDetails records a confirmed checkout. Amount, currency and creation time
// come from the provider. When the record cannot be stored the failure itself
// is queued so operators can reconcile the captured intent.
func (s *service) SaveDetails(ctx context.Context, input SaveDetailsInput) (types.InsertResult, error) {
	intentID := strings.TrimSpace(input.PaymentIntent.ID)
	email := strings.ToLower(strings.TrimSpace(input.UserEmail))
	if intentID == "" || email == "" {
		s.metrics.IncRecord(metrics.OutcomeRejected)
		return types.InsertResult{}, pkgerrors.New(pkgerrors.CodeValidation, "payment_intent.id and user_email are required")
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"payment_intent_id": intentID})

	intent, err := s.broker.RetrieveIntent(ctx, intentID)
	if err != nil {
		if pkgerrors.As(err) != nil && !pkgerrors.Is(err, pkgerrors.CodeDependency) {
			s.metrics.IncRecord(metrics.OutcomeRejected)
			return types.InsertResult{}, err
		}
		return types.InsertResult{}, s.unrecorded(ctx, input, email, err)
	}

	rec := &models.PaymentRecord{
		PaymentIntentID:   intent.ID,
		Amount:            intent.Amount,
		Currency:          intent.Currency,
		Status:            enums.PaymentStatusPending,
		Email:             email,
		SellerEmail:       strings.ToLower(strings.TrimSpace(input.SellerEmail)),
		MedicineName:      input.MedicineName,
		ProviderCreatedAt: intent.Created,
		Date:              input.Date,
	}
	if rec.ProviderCreatedAt.IsZero() {
		rec.ProviderCreatedAt = s.now()
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, rec); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRecorded,
			AggregateType: enums.AggregatePaymentRecord,
			AggregateID:   rec.ID.String(),
			Actor:         &outbox.ActorRef{Email: email},
			Data: payloads.PaymentRecordedEvent{
				PaymentRecordID: rec.ID,
				PaymentIntentID: rec.PaymentIntentID,
				Amount:          rec.Amount,
				Currency:        rec.Currency,
				Email:           rec.Email,
				SellerEmail:     rec.SellerEmail,
			},
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			s.metrics.IncRecord(metrics.OutcomeRejected)
			return types.InsertResult{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgAlreadyRecorded)
		}
		return types.InsertResult{}, s.unrecorded(ctx, input, email, err)
	}

	s.metrics.IncRecord(metrics.OutcomeSuccess)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"payment_record_id": rec.ID.String()}), "payments.recorded")
	return types.InsertResult{InsertedID: rec.ID}, nil
}

func (s *service) unrecorded(ctx context.Context, input SaveDetailsInput, email string, cause error) error {
	intentID := strings.TrimSpace(input.PaymentIntent.ID)
	s.metrics.IncRecord(metrics.OutcomeUnrecorded)
	s.logg.Error(ctx, "payments.unrecorded", cause)

	emitErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentUnrecorded,
			AggregateType: enums.AggregatePaymentIntent,
			AggregateID:   intentID,
			Actor:         &outbox.ActorRef{Email: email},
			Data: payloads.PaymentUnrecordedEvent{
				PaymentIntentID: intentID,
				Email:           email,
				SellerEmail:     input.SellerEmail,
				MedicineName:    input.MedicineName,
				Reason:          cause.Error(),
			},
		})
	})
	if emitErr != nil {
		s.logg.Error(ctx, "payments.unrecorded_event_failed", emitErr)
	}

	return pkgerrors.Wrap(pkgerrors.CodePaymentUnrecorded, cause, msgPaymentNotStored).
		WithDetails(map[string]any{
			"payment_intent_id": intentID,
			"event_queued":      emitErr == nil,
		})
}

func (s *service) List(ctx context.Context) ([]PaymentRecordDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment records")
	}
	out := make([]PaymentRecordDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordFromModel(row))
	}
	return out, nil
}

// MarkPaid performs the one-way pending to paid transition. A second call on
// the same record changes nothing and reports NOT_FOUND with modified_count 0.
func (s *service) MarkPaid(ctx context.Context, id string, actorEmail string) (types.UpdateResult, error) {
	recordID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		s.metrics.IncTransition(metrics.OutcomeRejected)
		return types.UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment id")
	}

	paidAt := s.now()
	var modified int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.MarkPaidTx(tx, recordID, paidAt)
		if err != nil {
			return err
		}
		if rows == 0 {
			return errNothingToMark
		}
		modified = rows
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentPaid,
			AggregateType: enums.AggregatePaymentRecord,
			AggregateID:   recordID.String(),
			Actor:         &outbox.ActorRef{Email: actorEmail, Role: string(enums.RoleAdmin)},
			Data: payloads.PaymentPaidEvent{
				PaymentRecordID: recordID,
				PaidBy:          actorEmail,
				PaidAt:          paidAt,
			},
		})
	})
	if errors.Is(err, errNothingToMark) {
		s.metrics.IncTransition(metrics.OutcomeNoop)
		return types.UpdateResult{}, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFoundOrPaid)
	}
	if err != nil {
		s.metrics.IncTransition(metrics.OutcomeFailure)
		return types.UpdateResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment paid")
	}

	s.metrics.IncTransition(metrics.OutcomeSuccess)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"payment_record_id": recordID.String(), "paid_by": actorEmail}), "payments.marked_paid")
	return types.UpdateResult{ModifiedCount: modified, Message: msgMarkedPaid}, nil
}
