package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/internal/modules/identity/repository"
	"anoa.com/boardinghouse/pkg/apperror"
	"anoa.com/boardinghouse/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MemberLinker finds the member record linked to a user, if any.
type MemberLinker interface {
	LinkedMemberID(ctx context.Context, userID uint) (*uint, error)
}

type IdentityService interface {
	// Ensure returns the identity of user, creating it with the default role
	// when missing and promoting superusers to admin.
	Ensure(ctx context.Context, user *entity.User) (*entity.Identity, error)
	// Principal runs Ensure and assembles the caller used by the guards.
	Principal(ctx context.Context, user *entity.User) (access.Principal, error)
	// Backfill creates identities for every user that lacks one.
	Backfill(ctx context.Context) (int, error)
	SetRole(ctx context.Context, userID uint, role entity.Role, phone *string) (*entity.Identity, error)
}

type identityService struct {
	repo    repository.IdentityRepository
	members MemberLinker
}

func NewIdentityService(repo repository.IdentityRepository, members MemberLinker) IdentityService {
	return &identityService{repo: repo, members: members}
}

func (s *identityService) Ensure(ctx context.Context, user *entity.User) (*entity.Identity, error) {
	if user == nil || user.ID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	identity, created, err := s.repo.GetOrCreate(ctx, entity.Identity{
		UserID: user.ID,
		Role:   access.DefaultRole(user.IsSuperuser),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve identity for user %d: %w", user.ID, err)
	}
	if created {
		logger.FromContext(ctx).Info("identity created",
			zap.Uint("user_id", user.ID),
			zap.String("role", string(identity.Role)),
		)
	}

	if user.IsSuperuser && identity.Role != entity.RoleAdmin {
		previous := identity.Role
		identity.Role = entity.RoleAdmin
		if err := s.repo.Save(ctx, identity); err != nil {
			return nil, fmt.Errorf("elevate identity for user %d: %w", user.ID, err)
		}
		logger.FromContext(ctx).Info("superuser identity elevated",
			zap.Uint("user_id", user.ID),
			zap.String("from", string(previous)),
		)
	}

	return identity, nil
}

func (s *identityService) Principal(ctx context.Context, user *entity.User) (access.Principal, error) {
	identity, err := s.Ensure(ctx, user)
	if err != nil {
		return access.Principal{}, err
	}

	p := access.Principal{
		UserID:    user.ID,
		Username:  user.Username,
		Superuser: user.IsSuperuser,
		Role:      identity.Role,
	}

	if s.members != nil {
		memberID, err := s.members.LinkedMemberID(ctx, user.ID)
		if err != nil {
			return access.Principal{}, fmt.Errorf("resolve linked member for user %d: %w", user.ID, err)
		}
		p.MemberID = memberID
	}

	return p, nil
}

func (s *identityService) Backfill(ctx context.Context) (int, error) {
	users, err := s.repo.FindUsersWithoutIdentity(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for i := range users {
		identity, created, err := s.repo.GetOrCreate(ctx, entity.Identity{
			UserID: users[i].ID,
			Role:   access.DefaultRole(users[i].IsSuperuser),
		})
		if err != nil {
			return count, fmt.Errorf("backfill identity for user %d: %w", users[i].ID, err)
		}
		if created {
			count++
			logger.FromContext(ctx).Info("created identity",
				zap.String("username", users[i].Username),
				zap.String("role", string(identity.Role)),
			)
		}
	}

	return count, nil
}

func (s *identityService) SetRole(ctx context.Context, userID uint, role entity.Role, phone *string) (*entity.Identity, error) {
	if !role.Valid() {
		return nil, apperror.Invalid("role", "must be one of: admin, staff, member")
	}

	identity, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("identity for user %d: %w", userID, apperror.ErrNotFound)
		}
		return nil, err
	}

	identity.Role = role
	if phone != nil {
		identity.Phone = *phone
	}
	if err := s.repo.Save(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}
