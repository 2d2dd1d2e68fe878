package bootstrap

import (
	"context"
	"errors"

	"anoa.com/boardinghouse/internal/entity"
	identityService "anoa.com/boardinghouse/internal/modules/identity/service"
	"anoa.com/boardinghouse/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminUsername = "admin"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Identity{},
		&entity.Member{},
		&entity.Schedule{},
		&entity.Payment{},
		&entity.Bill{},
		&entity.Repair{},
	)
}

// SeedAdminUser creates the development superuser once. Its identity is
// created by the resolver like any other caller's.
func SeedAdminUser(ctx context.Context, db *gorm.DB, password string) error {
	if password == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required to seed the admin user")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entity.User{}).
		Where("username = ?", adminUsername).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.FromContext(ctx).Info("admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     adminUsername,
		Email:        "admin@boardinghouse.local",
		FirstName:    "Administrator",
		PasswordHash: string(hashedPasswordBytes),
		IsSuperuser:  true,
	}

	if err := db.WithContext(ctx).Create(&adminUser).Error; err != nil {
		return err
	}

	logger.FromContext(ctx).Info("admin user seeded", zap.String("username", adminUsername))
	return nil
}

// BackfillIdentities gives every user without an identity the default one.
func BackfillIdentities(ctx context.Context, identities identityService.IdentityService) error {
	created, err := identities.Backfill(ctx)
	if err != nil {
		return err
	}
	if created > 0 {
		logger.FromContext(ctx).Info("identities backfilled", zap.Int("created", created))
	}
	return nil
}
