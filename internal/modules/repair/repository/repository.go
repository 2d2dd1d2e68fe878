package repository

import (
	"context"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RepairRepository interface {
	Create(ctx context.Context, repair *entity.Repair) error
	FindByID(ctx context.Context, id uint) (*entity.Repair, error)
	// FindAll returns the repairs visible under scope, newest first.
	FindAll(ctx context.Context, scope access.ListScope) ([]entity.Repair, error)
	Update(ctx context.Context, repair *entity.Repair) error
	Delete(ctx context.Context, id uint) error
	FindMember(ctx context.Context, id uint) (*entity.Member, error)
}

type repairRepository struct {
	db *gorm.DB
}

func NewRepairRepository(db *gorm.DB) RepairRepository {
	return &repairRepository{db: db}
}

func (r *repairRepository) Create(ctx context.Context, repair *entity.Repair) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(repair).Error
}

func (r *repairRepository) FindByID(ctx context.Context, id uint) (*entity.Repair, error) {
	var repair entity.Repair
	if err := r.db.WithContext(ctx).
		Preload("Member").
		First(&repair, id).Error; err != nil {
		return nil, err
	}
	return &repair, nil
}

func (r *repairRepository) FindAll(ctx context.Context, scope access.ListScope) ([]entity.Repair, error) {
	repairs := []entity.Repair{}
	if scope.Empty() {
		return repairs, nil
	}

	query := r.db.WithContext(ctx).Preload("Member")
	if !scope.All {
		query = query.Where("member_id = ?", *scope.MemberID)
	}

	err := query.Order("repair_date DESC").Order("id DESC").Find(&repairs).Error
	return repairs, err
}

func (r *repairRepository) Update(ctx context.Context, repair *entity.Repair) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(repair).Error
}

func (r *repairRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Repair{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repairRepository) FindMember(ctx context.Context, id uint) (*entity.Member, error) {
	var member entity.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
