package service

import (
	"context"

	"anoa.com/boardinghouse/internal/modules/dashboard/dto"
	"anoa.com/boardinghouse/internal/modules/dashboard/repository"
	paymentDto "anoa.com/boardinghouse/internal/modules/payment/dto"
	repairDto "anoa.com/boardinghouse/internal/modules/repair/dto"
	scheduleDto "anoa.com/boardinghouse/internal/modules/schedule/dto"
	commonDto "anoa.com/boardinghouse/pkg/dto"
)

const recentLimit = 5

type DashboardService interface {
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
}

type dashboardService struct {
	repo repository.DashboardRepository
}

func NewDashboardService(repo repository.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

func (s *dashboardService) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	totals, err := s.repo.Totals(ctx, commonDto.Today())
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.RecentPayments(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	repairs, err := s.repo.RecentRepairs(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	schedules, err := s.repo.RecentSchedules(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		Members: dto.MemberStats{
			Total:    totals.Members,
			Active:   totals.ActiveMembers,
			Inactive: totals.Members - totals.ActiveMembers,
		},
		Payments: dto.PaymentStats{
			PendingCount:  totals.UnpaidPayments,
			PendingAmount: totals.UnpaidPaymentAmount.InexactFloat64(),
		},
		Repairs: dto.RepairStats{Pending: totals.PendingRepairs},
		Schedules: dto.ScheduleStats{
			Today:          totals.SchedulesToday,
			CompletedToday: totals.CompletedToday,
		},
		Bills: dto.BillStats{
			UnpaidCount:  totals.UnpaidBills,
			UnpaidAmount: totals.UnpaidBillBalance.InexactFloat64(),
		},
		RecentActivity: dto.RecentActivity{
			Payments:  paymentDto.NewPaymentResponses(payments),
			Repairs:   repairDto.NewRepairResponses(repairs),
			Schedules: scheduleDto.NewScheduleResponses(schedules),
		},
	}, nil
}
