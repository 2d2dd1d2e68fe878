package repository

import (
	"context"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uint) (*entity.Payment, error)
	// FindAll returns the payments visible under scope, newest first.
	FindAll(ctx context.Context, scope access.ListScope) ([]entity.Payment, error)
	Update(ctx context.Context, payment *entity.Payment) error
	Delete(ctx context.Context, id uint) error
	FindMember(ctx context.Context, id uint) (*entity.Member, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*entity.Payment, error) {
	var payment entity.Payment
	if err := r.db.WithContext(ctx).
		Preload("Member").
		First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindAll(ctx context.Context, scope access.ListScope) ([]entity.Payment, error) {
	payments := []entity.Payment{}
	if scope.Empty() {
		return payments, nil
	}

	query := r.db.WithContext(ctx).Preload("Member")
	if !scope.All {
		query = query.Where("member_id = ?", *scope.MemberID)
	}

	err := query.Order("payment_date DESC").Order("id DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Update(ctx context.Context, payment *entity.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Payment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepository) FindMember(ctx context.Context, id uint) (*entity.Member, error) {
	var member entity.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
