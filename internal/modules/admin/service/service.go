package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/internal/modules/admin/dto"
	identityService "anoa.com/boardinghouse/internal/modules/identity/service"
	memberDto "anoa.com/boardinghouse/internal/modules/member/dto"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	userDto "anoa.com/boardinghouse/internal/modules/user/dto"
	userRepo "anoa.com/boardinghouse/internal/modules/user/repository"
	userService "anoa.com/boardinghouse/internal/modules/user/service"
	"anoa.com/boardinghouse/pkg/apperror"
	"anoa.com/boardinghouse/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*userDto.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]userDto.UserResponse, error)
	SetRole(ctx context.Context, userID uint, input dto.SetRoleInput) (*userDto.UserResponse, error)
	DeleteUser(ctx context.Context, caller access.Principal, userID uint) error
}

type adminService struct {
	users      userRepo.UserRepository
	identities identityService.IdentityService
	notifier   notification.Notifier
}

func NewAdminService(users userRepo.UserRepository, identities identityService.IdentityService, notifier notification.Notifier) AdminService {
	return &adminService{
		users:      users,
		identities: identities,
		notifier:   notifier,
	}
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*userDto.UserResponse, error) {
	username := strings.TrimSpace(input.Username)
	taken, err := s.users.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Invalid("username", "a user with that username already exists")
	}

	hash, err := userService.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Invalid("username", "a user with that username already exists")
		}
		return nil, err
	}

	identity, err := s.identities.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}
	if input.Role != "" || input.Phone != "" {
		role := identity.Role
		if input.Role != "" {
			role = entity.Role(input.Role)
		}
		phone := input.Phone
		if identity, err = s.identities.SetRole(ctx, user.ID, role, &phone); err != nil {
			return nil, err
		}
	}
	user.Identity = identity

	logger.FromContext(ctx).Info("user created",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(identity.Role)),
	)
	resp := userDto.NewUserResponse(user)
	return &resp, nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]userDto.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]userDto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userDto.NewUserResponse(&users[i]))
	}
	return out, nil
}

func (s *adminService) SetRole(ctx context.Context, userID uint, input dto.SetRoleInput) (*userDto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	// Users created outside the API may not have an identity yet.
	if _, err := s.identities.Ensure(ctx, user); err != nil {
		return nil, err
	}

	identity, err := s.identities.SetRole(ctx, userID, entity.Role(input.Role), input.Phone)
	if err != nil {
		return nil, err
	}
	user.Identity = identity

	resp := userDto.NewUserResponse(user)
	return &resp, nil
}

func (s *adminService) DeleteUser(ctx context.Context, caller access.Principal, userID uint) error {
	if caller.UserID == userID {
		return apperror.Invalid("id", "you cannot delete your own account")
	}

	unlinked, err := s.users.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	for i := range unlinked {
		s.notifier.Notify(ctx, notification.KindMember, notification.ActionUpdated, memberDto.NewMemberResponse(&unlinked[i]))
	}

	logger.FromContext(ctx).Info("user deleted",
		zap.Uint("user_id", userID),
		zap.Int("members_unlinked", len(unlinked)),
	)
	return nil
}
