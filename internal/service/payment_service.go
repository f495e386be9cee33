package service

import (
	"context"
	"time"

	"gym_backend/internal/events"
	"gym_backend/internal/model"
	"gym_backend/internal/repository"

	"github.com/google/uuid"
)

// PaymentService records payments made by members
type PaymentService interface {
	RecordPayment(ctx context.Context, actorID uuid.UUID, req model.RecordPaymentRequest) (*model.Payment, error)
}

type paymentService struct {
	repo      repository.PaymentRepository
	publisher events.Publisher
	now       func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo repository.PaymentRepository, publisher events.Publisher) PaymentService {
	return &paymentService{repo: repo, publisher: publisher, now: time.Now}
}

// RecordPayment stores a payment for the caller. Members may only record their own payments.
func (s *paymentService) RecordPayment(ctx context.Context, actorID uuid.UUID, req model.RecordPaymentRequest) (*model.Payment, error) {
	memberRef, err := uuid.Parse(req.Member)
	if err != nil {
		return nil, validationErr("Invalid member reference")
	}
	if memberRef != actorID {
		return nil, ErrForbidden
	}
	if req.Amount == nil {
		return nil, validationErr("Amount is required")
	}

	now := s.now()
	payment := &model.Payment{
		ID:             uuid.New(),
		MemberRef:      memberRef,
		MemberID:       req.MemberID,
		MemberName:     req.MemberName,
		Amount:         *req.Amount,
		PaymentDate:    now,
		Status:         req.Status,
		PaymentType:    req.PaymentType,
		MembershipPlan: nonEmpty(req.MembershipPlan),
		TransactionID:  nonEmpty(req.TransactionID),
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if payment.Status == "" {
		payment.Status = model.PaymentStatusCompleted
	}
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		payment.PaymentDate = *req.PaymentDate
	}

	if err := payment.Validate(); err != nil {
		return nil, schemaError(err)
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, mapRepoError(err, "failed to record payment")
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:      events.PaymentRecorded,
		ActorID:   actorID.String(),
		SubjectID: payment.ID.String(),
		Data: map[string]any{
			"amount":      payment.Amount,
			"status":      payment.Status,
			"paymentType": payment.PaymentType,
		},
	})
	return payment, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
