package repository

import (
	"context"

	"anoa.com/boardinghouse/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.Schedule) error
	FindByID(ctx context.Context, id uint) (*entity.Schedule, error)
	FindAll(ctx context.Context) ([]entity.Schedule, error)
	Update(ctx context.Context, schedule *entity.Schedule) error
	Delete(ctx context.Context, id uint) error
	FindMember(ctx context.Context, id uint) (*entity.Member, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.Schedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(schedule).Error
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uint) (*entity.Schedule, error) {
	var schedule entity.Schedule
	if err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		First(&schedule, id).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) FindAll(ctx context.Context) ([]entity.Schedule, error) {
	schedules := []entity.Schedule{}
	err := r.db.WithContext(ctx).
		Preload("AssignedTo").
		Order("date DESC").Order("time DESC").Order("id DESC").
		Find(&schedules).Error
	return schedules, err
}

// Update saves every column, including a cleared assignment.
func (r *scheduleRepository) Update(ctx context.Context, schedule *entity.Schedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(schedule).Error
}

func (r *scheduleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Schedule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scheduleRepository) FindMember(ctx context.Context, id uint) (*entity.Member, error) {
	var member entity.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
