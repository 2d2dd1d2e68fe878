package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/internal/modules/admin/dto"
	identityRepo "anoa.com/boardinghouse/internal/modules/identity/repository"
	identityService "anoa.com/boardinghouse/internal/modules/identity/service"
	memberDto "anoa.com/boardinghouse/internal/modules/member/dto"
	memberRepo "anoa.com/boardinghouse/internal/modules/member/repository"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	userRepo "anoa.com/boardinghouse/internal/modules/user/repository"
	"anoa.com/boardinghouse/internal/testutil"
	"anoa.com/boardinghouse/pkg/apperror"
	"gorm.io/gorm"
)

func setup(t *testing.T) (AdminService, *notification.Recorder, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	rec := &notification.Recorder{}
	identities := identityService.NewIdentityService(identityRepo.NewIdentityRepository(db), memberRepo.NewMemberRepository(db))
	return NewAdminService(userRepo.NewUserRepository(db), identities, rec), rec, db
}

func TestCreateUserWithRole(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	resp, err := svc.CreateUser(ctx, dto.CreateUserInput{Username: "desk", Password: "password1", Role: "staff", Phone: "0812"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if resp.Profile == nil || resp.Profile.Role != "staff" || resp.Profile.Phone != "0812" {
		t.Fatalf("profile = %+v", resp.Profile)
	}

	plain, err := svc.CreateUser(ctx, dto.CreateUserInput{Username: "tenant", Password: "password1"})
	if err != nil || plain.Profile == nil || plain.Profile.Role != "member" {
		t.Fatalf("default role = %+v, %v", plain, err)
	}

	_, err = svc.CreateUser(ctx, dto.CreateUserInput{Username: "desk", Password: "password1"})
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) || ve.Fields["username"] == "" {
		t.Fatalf("duplicate username err = %v", err)
	}

	users, err := svc.GetAllUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("GetAllUsers = %d, %v", len(users), err)
	}
}

func TestSetRole(t *testing.T) {
	svc, _, db := setup(t)
	ctx := context.Background()

	// A user without an identity gets one before the role is applied.
	user := &entity.User{Username: "legacy", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}

	resp, err := svc.SetRole(ctx, user.ID, dto.SetRoleInput{Role: "admin"})
	if err != nil || resp.Profile == nil || resp.Profile.Role != "admin" {
		t.Fatalf("SetRole = %+v, %v", resp, err)
	}

	if _, err := svc.SetRole(ctx, 999, dto.SetRoleInput{Role: "staff"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}

func TestDeleteUserUnlinksMember(t *testing.T) {
	svc, rec, db := setup(t)
	ctx := context.Background()

	user := &entity.User{Username: "ana", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}
	member := &entity.Member{Name: "Ana", Email: "ana@example.com", UserID: &user.ID, JoinedDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := db.Create(member).Error; err != nil {
		t.Fatal(err)
	}

	admin := access.Principal{UserID: 1000, Role: entity.RoleAdmin}
	self := access.Principal{UserID: user.ID, Role: entity.RoleAdmin}

	var ve *apperror.ValidationError
	if err := svc.DeleteUser(ctx, self, user.ID); !errors.As(err, &ve) {
		t.Fatalf("self delete err = %v, want validation error", err)
	}

	if err := svc.DeleteUser(ctx, admin, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := svc.DeleteUser(ctx, admin, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	var reloaded entity.Member
	if err := db.First(&reloaded, member.ID).Error; err != nil {
		t.Fatalf("member should survive its user: %v", err)
	}
	if reloaded.UserID != nil {
		t.Fatalf("member still linked to %d", *reloaded.UserID)
	}

	got := rec.Of(notification.KindMember)
	if len(got) != 1 || got[0].Action != notification.ActionUpdated {
		t.Fatalf("notifications = %+v", got)
	}
	if data := got[0].Data.(memberDto.MemberResponse); data.User != nil {
		t.Fatalf("notified member still linked: %+v", data)
	}
}
