package repository

import (
	"context"
	"errors"

	"anoa.com/boardinghouse/internal/entity"
	"gorm.io/gorm"
)

type IdentityRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*entity.Identity, error)
	// GetOrCreate returns the identity of userID, inserting defaults when it
	// does not exist yet. created reports whether a row was written.
	GetOrCreate(ctx context.Context, defaults entity.Identity) (identity *entity.Identity, created bool, err error)
	Save(ctx context.Context, identity *entity.Identity) error
	FindUsersWithoutIdentity(ctx context.Context) ([]entity.User, error)
}

type identityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) FindByUserID(ctx context.Context, userID uint) (*entity.Identity, error) {
	var identity entity.Identity
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) GetOrCreate(ctx context.Context, defaults entity.Identity) (*entity.Identity, bool, error) {
	existing, err := r.FindByUserID(ctx, defaults.UserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	identity := defaults
	identity.ID = 0
	if err := r.db.WithContext(ctx).Create(&identity).Error; err != nil {
		// A concurrent request may have inserted it first; the unique index
		// on user_id keeps it to one row.
		existing, findErr := r.FindByUserID(ctx, defaults.UserID)
		if findErr != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return &identity, true, nil
}

func (r *identityRepository) Save(ctx context.Context, identity *entity.Identity) error {
	return r.db.WithContext(ctx).Save(identity).Error
}

func (r *identityRepository) FindUsersWithoutIdentity(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM identities WHERE identities.user_id = users.id)").
		Order("id").
		Find(&users).Error
	return users, err
}
