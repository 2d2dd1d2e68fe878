package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/boardinghouse/internal/entity"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/internal/modules/schedule/dto"
	"anoa.com/boardinghouse/internal/modules/schedule/repository"
	"anoa.com/boardinghouse/pkg/apperror"
	commonDto "anoa.com/boardinghouse/pkg/dto"
	"anoa.com/boardinghouse/pkg/sanitize"
	"gorm.io/gorm"
)

type ScheduleService interface {
	ListSchedules(ctx context.Context) ([]dto.ScheduleResponse, error)
	GetSchedule(ctx context.Context, id uint) (*dto.ScheduleResponse, error)
	CreateSchedule(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, id uint, req dto.PatchScheduleRequest) (*dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, id uint) error
}

type scheduleService struct {
	repo     repository.ScheduleRepository
	notifier notification.Notifier
}

func NewScheduleService(repo repository.ScheduleRepository, notifier notification.Notifier) ScheduleService {
	return &scheduleService{repo: repo, notifier: notifier}
}

func (s *scheduleService) ListSchedules(ctx context.Context) ([]dto.ScheduleResponse, error) {
	schedules, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewScheduleResponses(schedules), nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, id uint) (*dto.ScheduleResponse, error) {
	schedule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewScheduleResponse(schedule)
	return &resp, nil
}

func (s *scheduleService) CreateSchedule(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule := &entity.Schedule{}
	if err := s.apply(ctx, schedule, req.AsPatch()); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	resp := dto.NewScheduleResponse(schedule)
	s.notifier.Notify(ctx, notification.KindSchedule, notification.ActionCreated, resp)
	return &resp, nil
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, id uint, req dto.PatchScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, schedule, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("update schedule %d: %w", id, err)
	}

	resp := dto.NewScheduleResponse(schedule)
	s.notifier.Notify(ctx, notification.KindSchedule, notification.ActionUpdated, resp)
	return &resp, nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return fmt.Errorf("delete schedule %d: %w", id, err)
	}

	s.notifier.NotifyDeleted(ctx, notification.KindSchedule, id)
	return nil
}

func (s *scheduleService) find(ctx context.Context, id uint) (*entity.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) apply(ctx context.Context, schedule *entity.Schedule, req dto.PatchScheduleRequest) error {
	fields := map[string]string{}

	if req.TaskType != nil {
		schedule.TaskType = entity.TaskType(*req.TaskType)
	}
	if req.Description != nil {
		schedule.Description = sanitize.Text(*req.Description)
	}
	if req.Date != nil {
		if d, err := commonDto.ParseDate("date", *req.Date); err != nil {
			fields["date"] = "date has wrong format, use YYYY-MM-DD"
		} else {
			schedule.Date = d
		}
	}
	if req.Time != nil {
		if clock, err := commonDto.ParseClock("time", *req.Time); err != nil {
			fields["time"] = "time has wrong format, use hh:mm[:ss]"
		} else {
			schedule.Time = clock
		}
	}
	if req.Completed != nil {
		schedule.Completed = *req.Completed
	}

	if req.AssignedTo != nil {
		if *req.AssignedTo == 0 {
			schedule.AssignedToID = nil
			schedule.AssignedTo = nil
		} else {
			member, err := s.repo.FindMember(ctx, *req.AssignedTo)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				fields["assigned_to"] = fmt.Sprintf("invalid pk %d, object does not exist", *req.AssignedTo)
			case err != nil:
				return err
			default:
				schedule.AssignedToID = &member.ID
				schedule.AssignedTo = member
			}
		}
	}

	return commonDto.FieldErrors(fields)
}
