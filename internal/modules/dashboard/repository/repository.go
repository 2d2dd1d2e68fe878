package repository

import (
	"context"
	"time"

	"anoa.com/boardinghouse/internal/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals holds the counters behind the dashboard.
type Totals struct {
	Members             int64
	ActiveMembers       int64
	UnpaidPayments      int64
	UnpaidPaymentAmount decimal.Decimal
	PendingRepairs      int64
	SchedulesToday      int64
	CompletedToday      int64
	UnpaidBills         int64
	UnpaidBillBalance   decimal.Decimal
}

type DashboardRepository interface {
	Totals(ctx context.Context, today time.Time) (*Totals, error)
	RecentPayments(ctx context.Context, limit int) ([]entity.Payment, error)
	RecentRepairs(ctx context.Context, limit int) ([]entity.Repair, error)
	RecentSchedules(ctx context.Context, limit int) ([]entity.Schedule, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Totals(ctx context.Context, today time.Time) (*Totals, error) {
	db := r.db.WithContext(ctx)
	t := &Totals{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&t.Members, db.Model(&entity.Member{})},
		{&t.ActiveMembers, db.Model(&entity.Member{}).Where("status = ?", entity.MemberActive)},
		{&t.UnpaidPayments, db.Model(&entity.Payment{}).Where("status = ?", entity.PaymentUnpaid)},
		{&t.PendingRepairs, db.Model(&entity.Repair{}).Where("status = ?", entity.RepairPending)},
		{&t.SchedulesToday, db.Model(&entity.Schedule{}).Where("date = ?", today)},
		{&t.CompletedToday, db.Model(&entity.Schedule{}).Where("date = ? AND completed = ?", today, true)},
		{&t.UnpaidBills, db.Model(&entity.Bill{}).Where("paid_status = ?", entity.PaymentUnpaid)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var err error
	t.UnpaidPaymentAmount, err = sum(db.Model(&entity.Payment{}).Where("status = ?", entity.PaymentUnpaid), "amount")
	if err != nil {
		return nil, err
	}
	t.UnpaidBillBalance, err = sum(db.Model(&entity.Bill{}).Where("paid_status = ?", entity.PaymentUnpaid), "balance")
	if err != nil {
		return nil, err
	}
	return t, nil
}

// sum scans through database/sql so decimal.Decimal's Scanner sees the raw
// driver value.
func sum(query *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := query.Select("COALESCE(SUM(" + column + "), 0)").Row().Scan(&total)
	return total, err
}

func (r *dashboardRepository) RecentPayments(ctx context.Context, limit int) ([]entity.Payment, error) {
	payments := []entity.Payment{}
	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("payment_date DESC").Order("id DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *dashboardRepository) RecentRepairs(ctx context.Context, limit int) ([]entity.Repair, error) {
	repairs := []entity.Repair{}
	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("repair_date DESC").Order("id DESC").
		Limit(limit).
		Find(&repairs).Error
	return repairs, err
}

func (r *dashboardRepository) RecentSchedules(ctx context.Context, limit int) ([]entity.Schedule, error) {
	schedules := []entity.Schedule{}
	err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Order("date DESC").Order("time DESC").Order("id DESC").
		Limit(limit).
		Find(&schedules).Error
	return schedules, err
}
