package repository

import (
	"context"

	"anoa.com/boardinghouse/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	// Delete removes the user and its identity. Linked members are kept with
	// the link cleared and returned.
	Delete(ctx context.Context, id uint) ([]entity.Member, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Identity").
		First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Preload("Identity").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Preload("Identity").
		Order("id").
		Find(&users).Error
	return users, err
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Delete(ctx context.Context, id uint) ([]entity.Member, error) {
	var unlinked []entity.Member

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user entity.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Order("id").Find(&unlinked).Error; err != nil {
			return err
		}
		if len(unlinked) > 0 {
			if err := tx.Model(&entity.Member{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
				return err
			}
			for i := range unlinked {
				unlinked[i].UserID = nil
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&entity.Identity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return unlinked, nil
}
