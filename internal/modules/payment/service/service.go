package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/internal/modules/payment/dto"
	"anoa.com/boardinghouse/internal/modules/payment/repository"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"gorm.io/gorm"
)

type PaymentService interface {
	ListPayments(ctx context.Context, p access.Principal) ([]dto.PaymentResponse, error)
	GetPayment(ctx context.Context, p access.Principal, id uint) (*dto.PaymentResponse, error)
	CreatePayment(ctx context.Context, p access.Principal, req dto.PaymentRequest) (*dto.PaymentResponse, error)
	UpdatePayment(ctx context.Context, p access.Principal, id uint, req dto.PatchPaymentRequest) (*dto.PaymentResponse, error)
	DeletePayment(ctx context.Context, p access.Principal, id uint) error
}

type paymentService struct {
	repo     repository.PaymentRepository
	notifier notification.Notifier
}

func NewPaymentService(repo repository.PaymentRepository, notifier notification.Notifier) PaymentService {
	return &paymentService{repo: repo, notifier: notifier}
}

func (s *paymentService) ListPayments(ctx context.Context, p access.Principal) ([]dto.PaymentResponse, error) {
	payments, err := s.repo.FindAll(ctx, access.ScopeFor(p))
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponses(payments), nil
}

func (s *paymentService) GetPayment(ctx context.Context, p access.Principal, id uint) (*dto.PaymentResponse, error) {
	payment, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewPaymentResponse(payment)
	return &resp, nil
}

func (s *paymentService) CreatePayment(ctx context.Context, p access.Principal, req dto.PaymentRequest) (*dto.PaymentResponse, error) {
	member, err := s.targetMember(ctx, p, req.Member)
	if err != nil {
		return nil, err
	}

	if req.Amount == nil {
		return nil, apperror.Invalid("amount", "this field is required")
	}
	fields := map[string]string{}
	commonDto.CheckMoney(fields, "amount", *req.Amount)
	if err := commonDto.FieldErrors(fields); err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		MemberID:    member.ID,
		Amount:      *req.Amount,
		PaymentDate: commonDto.Today(),
		CollectedBy: req.CollectedBy,
		Status:      entity.PaymentPaid,
	}
	if req.Status != "" {
		payment.Status = entity.PaymentStatus(req.Status)
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	payment.Member = *member

	resp := dto.NewPaymentResponse(payment)
	s.notifier.Notify(ctx, notification.KindPayment, notification.ActionCreated, resp)
	return &resp, nil
}

func (s *paymentService) UpdatePayment(ctx context.Context, p access.Principal, id uint, req dto.PatchPaymentRequest) (*dto.PaymentResponse, error) {
	payment, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Member != nil && *req.Member != payment.MemberID {
		member, err := s.targetMember(ctx, p, *req.Member)
		if err != nil {
			return nil, err
		}
		payment.MemberID = member.ID
		payment.Member = *member
	}

	fields := map[string]string{}
	if req.Amount != nil {
		commonDto.CheckMoney(fields, "amount", *req.Amount)
		payment.Amount = *req.Amount
	}
	if err := commonDto.FieldErrors(fields); err != nil {
		return nil, err
	}
	if req.CollectedBy != nil {
		payment.CollectedBy = *req.CollectedBy
	}
	if req.Status != nil {
		payment.Status = entity.PaymentStatus(*req.Status)
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment %d: %w", id, err)
	}

	resp := dto.NewPaymentResponse(payment)
	s.notifier.Notify(ctx, notification.KindPayment, notification.ActionUpdated, resp)
	return &resp, nil
}

func (s *paymentService) DeletePayment(ctx context.Context, p access.Principal, id uint) error {
	if _, err := s.findOwned(ctx, p, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("delete payment %d: %w", id, err)
	}

	s.notifier.NotifyDeleted(ctx, notification.KindPayment, id)
	return nil
}

// findOwned loads a payment and applies the owner-or-staff guard. A missing
// row is reported before a forbidden one.
func (s *paymentService) findOwned(ctx context.Context, p access.Principal, id uint) (*entity.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !access.IsOwnerOrStaff(p, payment) {
		return nil, apperror.ErrForbidden
	}
	return payment, nil
}

// targetMember resolves the member a write points at and checks the caller
// may write records for it.
func (s *paymentService) targetMember(ctx context.Context, p access.Principal, memberID uint) (*entity.Member, error) {
	member, err := s.repo.FindMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Invalid("member", fmt.Sprintf("invalid pk %d, object does not exist", memberID))
		}
		return nil, err
	}

	if !access.CanTargetMember(p, member) {
		return nil, apperror.ErrForbidden
	}
	return member, nil
}
