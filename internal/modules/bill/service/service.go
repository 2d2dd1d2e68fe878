package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/internal/modules/bill/dto"
	"anoa.com/boardinghouse/internal/modules/bill/repository"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BillService interface {
	ListBills(ctx context.Context, p access.Principal) ([]dto.BillResponse, error)
	GetBill(ctx context.Context, p access.Principal, id uint) (*dto.BillResponse, error)
	CreateBill(ctx context.Context, p access.Principal, req dto.BillRequest) (*dto.BillResponse, error)
	UpdateBill(ctx context.Context, p access.Principal, id uint, req dto.PatchBillRequest) (*dto.BillResponse, error)
	DeleteBill(ctx context.Context, p access.Principal, id uint) error
}

type billService struct {
	repo     repository.BillRepository
	notifier notification.Notifier
}

func NewBillService(repo repository.BillRepository, notifier notification.Notifier) BillService {
	return &billService{repo: repo, notifier: notifier}
}

func (s *billService) ListBills(ctx context.Context, p access.Principal) ([]dto.BillResponse, error) {
	bills, err := s.repo.FindAll(ctx, access.ScopeFor(p))
	if err != nil {
		return nil, err
	}
	return dto.NewBillResponses(bills), nil
}

func (s *billService) GetBill(ctx context.Context, p access.Principal, id uint) (*dto.BillResponse, error) {
	bill, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewBillResponse(bill)
	return &resp, nil
}

func (s *billService) CreateBill(ctx context.Context, p access.Principal, req dto.BillRequest) (*dto.BillResponse, error) {
	member, err := s.targetMember(ctx, p, req.Member)
	if err != nil {
		return nil, err
	}

	bill := &entity.Bill{
		MemberID:   member.ID,
		Month:      strings.TrimSpace(req.Month),
		PaidStatus: entity.PaymentUnpaid,
	}
	if req.PaidStatus != "" {
		bill.PaidStatus = entity.PaymentStatus(req.PaidStatus)
	}
	if err := applyAmounts(bill, req.WaterAmount, req.ElectricityAmount, req.Balance); err != nil {
		return nil, err
	}
	if bill.Month == "" {
		return nil, apperror.Invalid("month", "this field may not be blank")
	}

	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}
	bill.Member = *member

	resp := dto.NewBillResponse(bill)
	s.notifier.Notify(ctx, notification.KindBill, notification.ActionCreated, resp)
	return &resp, nil
}

func (s *billService) UpdateBill(ctx context.Context, p access.Principal, id uint, req dto.PatchBillRequest) (*dto.BillResponse, error) {
	bill, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Member != nil && *req.Member != bill.MemberID {
		member, err := s.targetMember(ctx, p, *req.Member)
		if err != nil {
			return nil, err
		}
		bill.MemberID = member.ID
		bill.Member = *member
	}

	if req.Month != nil {
		bill.Month = strings.TrimSpace(*req.Month)
		if bill.Month == "" {
			return nil, apperror.Invalid("month", "this field may not be blank")
		}
	}
	if err := applyAmounts(bill, req.WaterAmount, req.ElectricityAmount, req.Balance); err != nil {
		return nil, err
	}
	if req.PaidStatus != nil {
		bill.PaidStatus = entity.PaymentStatus(*req.PaidStatus)
	}

	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, fmt.Errorf("update bill %d: %w", id, err)
	}

	resp := dto.NewBillResponse(bill)
	s.notifier.Notify(ctx, notification.KindBill, notification.ActionUpdated, resp)
	return &resp, nil
}

func (s *billService) DeleteBill(ctx context.Context, p access.Principal, id uint) error {
	if _, err := s.findOwned(ctx, p, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("delete bill %d: %w", id, err)
	}

	s.notifier.NotifyDeleted(ctx, notification.KindBill, id)
	return nil
}

// applyAmounts copies whichever amounts are set onto bill. Omitted amounts
// keep their current value, which is zero for a new bill.
func applyAmounts(bill *entity.Bill, water, electricity, balance *decimal.Decimal) error {
	fields := map[string]string{}
	if water != nil {
		commonDto.CheckMoney(fields, "water_amount", *water)
		bill.WaterAmount = *water
	}
	if electricity != nil {
		commonDto.CheckMoney(fields, "electricity_amount", *electricity)
		bill.ElectricityAmount = *electricity
	}
	if balance != nil {
		commonDto.CheckMoney(fields, "balance", *balance)
		bill.Balance = *balance
	}
	return commonDto.FieldErrors(fields)
}

func (s *billService) findOwned(ctx context.Context, p access.Principal, id uint) (*entity.Bill, error) {
	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !access.IsOwnerOrStaff(p, bill) {
		return nil, apperror.ErrForbidden
	}
	return bill, nil
}

func (s *billService) targetMember(ctx context.Context, p access.Principal, memberID uint) (*entity.Member, error) {
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
