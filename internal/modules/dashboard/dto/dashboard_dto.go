package dto

import (
	paymentDto "anoa.com/boardinghouse/internal/modules/payment/dto"
	repairDto "anoa.com/boardinghouse/internal/modules/repair/dto"
	scheduleDto "anoa.com/boardinghouse/internal/modules/schedule/dto"
)

type MemberStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type PaymentStats struct {
	PendingCount  int64   `json:"pending_count"`
	PendingAmount float64 `json:"pending_amount"`
}

type RepairStats struct {
	Pending int64 `json:"pending"`
}

type ScheduleStats struct {
	Today          int64 `json:"today"`
	CompletedToday int64 `json:"completed_today"`
}

type BillStats struct {
	UnpaidCount  int64   `json:"unpaid_count"`
	UnpaidAmount float64 `json:"unpaid_amount"`
}

type RecentActivity struct {
	Payments  []paymentDto.PaymentResponse   `json:"payments"`
	Repairs   []repairDto.RepairResponse     `json:"repairs"`
	Schedules []scheduleDto.ScheduleResponse `json:"schedules"`
}

type StatsResponse struct {
	Members        MemberStats    `json:"members"`
	Payments       PaymentStats   `json:"payments"`
	Repairs        RepairStats    `json:"repairs"`
	Schedules      ScheduleStats  `json:"schedules"`
	Bills          BillStats      `json:"bills"`
	RecentActivity RecentActivity `json:"recent_activity"`
}
