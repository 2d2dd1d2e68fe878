package repository

import (
	"context"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	FindByID(ctx context.Context, id uint) (*entity.Bill, error)
	// FindAll returns the bills visible under scope, newest first.
	FindAll(ctx context.Context, scope access.ListScope) ([]entity.Bill, error)
	Update(ctx context.Context, bill *entity.Bill) error
	Delete(ctx context.Context, id uint) error
	FindMember(ctx context.Context, id uint) (*entity.Member, error)
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(bill).Error
}

func (r *billRepository) FindByID(ctx context.Context, id uint) (*entity.Bill, error) {
	var bill entity.Bill
	if err := r.db.WithContext(ctx).
		Preload("Member").
		First(&bill, id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindAll(ctx context.Context, scope access.ListScope) ([]entity.Bill, error) {
	bills := []entity.Bill{}
	if scope.Empty() {
		return bills, nil
	}

	query := r.db.WithContext(ctx).Preload("Member")
	if !scope.All {
		query = query.Where("member_id = ?", *scope.MemberID)
	}

	err := query.Order("id DESC").Find(&bills).Error
	return bills, err
}

func (r *billRepository) Update(ctx context.Context, bill *entity.Bill) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(bill).Error
}

func (r *billRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Bill{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *billRepository) FindMember(ctx context.Context, id uint) (*entity.Member, error) {
	var member entity.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
