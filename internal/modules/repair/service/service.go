package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/internal/modules/repair/dto"
	"anoa.com/boardinghouse/internal/modules/repair/repository"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"anoa.com/boardinghouse/pkg/sanitize"
	"gorm.io/gorm"
)

type RepairService interface {
	ListRepairs(ctx context.Context, p access.Principal) ([]dto.RepairResponse, error)
	GetRepair(ctx context.Context, p access.Principal, id uint) (*dto.RepairResponse, error)
	CreateRepair(ctx context.Context, p access.Principal, req dto.RepairRequest) (*dto.RepairResponse, error)
	UpdateRepair(ctx context.Context, p access.Principal, id uint, req dto.PatchRepairRequest) (*dto.RepairResponse, error)
	DeleteRepair(ctx context.Context, p access.Principal, id uint) error
}

type repairService struct {
	repo     repository.RepairRepository
	notifier notification.Notifier
}

func NewRepairService(repo repository.RepairRepository, notifier notification.Notifier) RepairService {
	return &repairService{repo: repo, notifier: notifier}
}

func (s *repairService) ListRepairs(ctx context.Context, p access.Principal) ([]dto.RepairResponse, error) {
	repairs, err := s.repo.FindAll(ctx, access.ScopeFor(p))
	if err != nil {
		return nil, err
	}
	return dto.NewRepairResponses(repairs), nil
}

func (s *repairService) GetRepair(ctx context.Context, p access.Principal, id uint) (*dto.RepairResponse, error) {
	repair, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewRepairResponse(repair)
	return &resp, nil
}

func (s *repairService) CreateRepair(ctx context.Context, p access.Principal, req dto.RepairRequest) (*dto.RepairResponse, error) {
	member, err := s.targetMember(ctx, p, req.Member)
	if err != nil {
		return nil, err
	}

	repair := &entity.Repair{
		MemberID: member.ID,
		Status:   entity.RepairPending,
	}
	if req.Status != "" {
		repair.Status = entity.RepairStatus(req.Status)
	}
	if err := apply(repair, req.AsPatch()); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, repair); err != nil {
		return nil, fmt.Errorf("create repair: %w", err)
	}
	repair.Member = *member

	resp := dto.NewRepairResponse(repair)
	s.notifier.Notify(ctx, notification.KindRepair, notification.ActionCreated, resp)
	return &resp, nil
}

func (s *repairService) UpdateRepair(ctx context.Context, p access.Principal, id uint, req dto.PatchRepairRequest) (*dto.RepairResponse, error) {
	repair, err := s.findOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if req.Member != nil && *req.Member != repair.MemberID {
		member, err := s.targetMember(ctx, p, *req.Member)
		if err != nil {
			return nil, err
		}
		repair.MemberID = member.ID
		repair.Member = *member
	}

	if err := apply(repair, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, repair); err != nil {
		return nil, fmt.Errorf("update repair %d: %w", id, err)
	}

	resp := dto.NewRepairResponse(repair)
	s.notifier.Notify(ctx, notification.KindRepair, notification.ActionUpdated, resp)
	return &resp, nil
}

func (s *repairService) DeleteRepair(ctx context.Context, p access.Principal, id uint) error {
	if _, err := s.findOwned(ctx, p, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("delete repair %d: %w", id, err)
	}

	s.notifier.NotifyDeleted(ctx, notification.KindRepair, id)
	return nil
}

// apply copies the non-member fields of req onto repair, collecting every
// field error before returning.
func apply(repair *entity.Repair, req dto.PatchRepairRequest) error {
	fields := map[string]string{}

	if req.ItemName != nil {
		repair.ItemName = strings.TrimSpace(*req.ItemName)
		if repair.ItemName == "" {
			fields["item_name"] = "this field may not be blank"
		}
	}
	if req.RepairDate != nil {
		d, err := commonDto.ParseDate("repair_date", *req.RepairDate)
		if err != nil {
			fields["repair_date"] = "date has wrong format, use YYYY-MM-DD"
		} else {
			repair.RepairDate = d
		}
	}
	if req.Cost != nil {
		commonDto.CheckMoney(fields, "cost", *req.Cost)
		repair.Cost = *req.Cost
	} else if repair.ID == 0 {
		fields["cost"] = "this field is required"
	}
	if req.ReplacedBy != nil {
		repair.ReplacedBy = *req.ReplacedBy
	}
	if req.Description != nil {
		repair.Description = sanitize.Text(*req.Description)
	}
	if req.Status != nil {
		repair.Status = entity.RepairStatus(*req.Status)
	}

	return commonDto.FieldErrors(fields)
}

func (s *repairService) findOwned(ctx context.Context, p access.Principal, id uint) (*entity.Repair, error) {
	repair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !access.IsOwnerOrStaff(p, repair) {
		return nil, apperror.ErrForbidden
	}
	return repair, nil
}

func (s *repairService) targetMember(ctx context.Context, p access.Principal, memberID uint) (*entity.Member, error) {
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
