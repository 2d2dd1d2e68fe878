package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/internal/modules/member/dto"
	"anoa.com/boardinghouse/internal/modules/member/repository"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	scheduleDto "anoa.com/boardinghouse/internal/modules/schedule/dto"
	search "anoa.com/boardinghouse/internal/modules/search/service"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"anoa.com/boardinghouse/pkg/logger"
	"anoa.com/boardinghouse/pkg/sanitize"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const searchLimit = 20

type MemberService interface {
	ListMembers(ctx context.Context) ([]dto.MemberResponse, error)
	GetMember(ctx context.Context, id uint) (*dto.MemberResponse, error)
	CreateMember(ctx context.Context, req dto.MemberRequest) (*dto.MemberResponse, error)
	UpdateMember(ctx context.Context, id uint, req dto.PatchMemberRequest) (*dto.MemberResponse, error)
	DeleteMember(ctx context.Context, id uint) error
	SearchMembers(ctx context.Context, query string) ([]dto.MemberResponse, error)
}

type memberService struct {
	repo     repository.MemberRepository
	notifier notification.Notifier
	index    search.MemberIndex
}

// NewMemberService builds the member service. index may be nil, in which case
// search runs against the database.
func NewMemberService(repo repository.MemberRepository, notifier notification.Notifier, index search.MemberIndex) MemberService {
	return &memberService{
		repo:     repo,
		notifier: notifier,
		index:    index,
	}
}

func (s *memberService) ListMembers(ctx context.Context) ([]dto.MemberResponse, error) {
	members, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewMemberResponses(members), nil
}

func (s *memberService) GetMember(ctx context.Context, id uint) (*dto.MemberResponse, error) {
	member, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewMemberResponse(member)
	return &resp, nil
}

func (s *memberService) CreateMember(ctx context.Context, req dto.MemberRequest) (*dto.MemberResponse, error) {
	member := &entity.Member{
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.TrimSpace(req.Email),
		Contact:          req.Contact,
		HomeAddress:      sanitize.Text(req.HomeAddress),
		EmergencyContact: req.EmergencyContact,
		RoomNumber:       req.RoomNumber,
		Status:           entity.MemberActive,
		JoinedDate:       commonDto.Today(),
	}
	if req.Status != "" {
		member.Status = entity.MemberStatus(req.Status)
	}
	if req.User != nil && *req.User != 0 {
		userID := *req.User
		member.UserID = &userID
	}

	if err := s.validate(ctx, member); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, translateWriteError(err)
	}

	resp := dto.NewMemberResponse(member)
	s.notifier.Notify(ctx, notification.KindMember, notification.ActionCreated, resp)
	s.reindex(ctx, member)
	return &resp, nil
}

func (s *memberService) UpdateMember(ctx context.Context, id uint, req dto.PatchMemberRequest) (*dto.MemberResponse, error) {
	member, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		member.Email = strings.TrimSpace(*req.Email)
	}
	if req.Contact != nil {
		member.Contact = *req.Contact
	}
	if req.HomeAddress != nil {
		member.HomeAddress = sanitize.Text(*req.HomeAddress)
	}
	if req.EmergencyContact != nil {
		member.EmergencyContact = *req.EmergencyContact
	}
	if req.RoomNumber != nil {
		member.RoomNumber = *req.RoomNumber
	}
	if req.Status != nil {
		member.Status = entity.MemberStatus(*req.Status)
	}
	if req.User != nil {
		if *req.User == 0 {
			member.UserID = nil
		} else {
			userID := *req.User
			member.UserID = &userID
		}
	}

	if err := s.validate(ctx, member); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, translateWriteError(err)
	}

	resp := dto.NewMemberResponse(member)
	s.notifier.Notify(ctx, notification.KindMember, notification.ActionUpdated, resp)
	s.reindex(ctx, member)
	return &resp, nil
}

// DeleteMember removes the member and everything hanging off it. Each cascaded
// record is announced before the member itself.
func (s *memberService) DeleteMember(ctx context.Context, id uint) error {
	result, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("delete member %d: %w", id, err)
	}

	for _, paymentID := range result.PaymentIDs {
		s.notifier.NotifyDeleted(ctx, notification.KindPayment, paymentID)
	}
	for _, billID := range result.BillIDs {
		s.notifier.NotifyDeleted(ctx, notification.KindBill, billID)
	}
	for _, repairID := range result.RepairIDs {
		s.notifier.NotifyDeleted(ctx, notification.KindRepair, repairID)
	}
	for i := range result.Schedules {
		s.notifier.Notify(ctx, notification.KindSchedule, notification.ActionUpdated,
			scheduleDto.NewScheduleResponse(&result.Schedules[i]))
	}
	s.notifier.NotifyDeleted(ctx, notification.KindMember, id)

	if s.index != nil {
		if err := s.index.DeleteMember(ctx, id); err != nil {
			logger.FromContext(ctx).Warn("failed to remove member from index", zap.Uint("member_id", id), zap.Error(err))
		}
	}

	logger.FromContext(ctx).Info("member deleted",
		zap.Uint("member_id", id),
		zap.Int("payments", len(result.PaymentIDs)),
		zap.Int("bills", len(result.BillIDs)),
		zap.Int("repairs", len(result.RepairIDs)),
		zap.Int("schedules_unassigned", len(result.Schedules)),
	)
	return nil
}

func (s *memberService) SearchMembers(ctx context.Context, query string) ([]dto.MemberResponse, error) {
	query = strings.TrimSpace(query)

	if s.index != nil && query != "" {
		ids, err := s.index.SearchMembers(ctx, query, searchLimit)
		if err == nil {
			members, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return dto.NewMemberResponses(members), nil
		}
		logger.FromContext(ctx).Warn("member index search failed, falling back to database", zap.Error(err))
	}

	members, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return dto.NewMemberResponses(members), nil
}

func (s *memberService) find(ctx context.Context, id uint) (*entity.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return member, nil
}

// validate checks the constraints binding tags cannot express.
func (s *memberService) validate(ctx context.Context, member *entity.Member) error {
	fields := map[string]string{}

	if member.Name == "" {
		fields["name"] = "this field may not be blank"
	}

	taken, err := s.repo.EmailTaken(ctx, member.Email, member.ID)
	if err != nil {
		return err
	}
	if taken {
		fields["email"] = "member with this email already exists"
	}

	if member.UserID != nil {
		exists, err := s.repo.UserExists(ctx, *member.UserID)
		if err != nil {
			return err
		}
		if !exists {
			fields["user"] = fmt.Sprintf("invalid pk %d, object does not exist", *member.UserID)
		} else {
			linked, err := s.repo.UserLinked(ctx, *member.UserID, member.ID)
			if err != nil {
				return err
			}
			if linked {
				fields["user"] = "member with this user already exists"
			}
		}
	}

	return commonDto.FieldErrors(fields)
}

func (s *memberService) reindex(ctx context.Context, member *entity.Member) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexMember(ctx, member); err != nil {
		logger.FromContext(ctx).Warn("failed to index member", zap.Uint("member_id", member.ID), zap.Error(err))
	}
}

// translateWriteError maps a unique violation that slipped past validate to a
// field error.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Invalid("email", "member with this email already exists")
	}
	return err
}
