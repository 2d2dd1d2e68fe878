package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/pkg/apperror"
	"gorm.io/gorm"
)

type fakeIdentityRepo struct {
	mu     sync.Mutex
	byUser map[uint]*entity.Identity
	users  []entity.User
	nextID uint
	saves  int
	create int
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{byUser: make(map[uint]*entity.Identity)}
}

func (f *fakeIdentityRepo) FindByUserID(_ context.Context, userID uint) (*entity.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	identity, ok := f.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *identity
	return &cp, nil
}

func (f *fakeIdentityRepo) GetOrCreate(_ context.Context, defaults entity.Identity) (*entity.Identity, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if identity, ok := f.byUser[defaults.UserID]; ok {
		cp := *identity
		return &cp, false, nil
	}
	f.nextID++
	f.create++
	identity := defaults
	identity.ID = f.nextID
	f.byUser[defaults.UserID] = &identity
	cp := identity
	return &cp, true, nil
}

func (f *fakeIdentityRepo) Save(_ context.Context, identity *entity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	cp := *identity
	f.byUser[identity.UserID] = &cp
	return nil
}

func (f *fakeIdentityRepo) FindUsersWithoutIdentity(_ context.Context) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.User
	for _, u := range f.users {
		if _, ok := f.byUser[u.ID]; !ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeLinker map[uint]uint

func (f fakeLinker) LinkedMemberID(_ context.Context, userID uint) (*uint, error) {
	if id, ok := f[userID]; ok {
		return &id, nil
	}
	return nil, nil
}

func TestEnsureCreatesDefaultRoleOnce(t *testing.T) {
	ctx := context.Background()
	repo := newFakeIdentityRepo()
	svc := NewIdentityService(repo, nil)

	regular := &entity.User{ID: 1, Username: "tenant"}
	identity, err := svc.Ensure(ctx, regular)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if identity.Role != entity.RoleMember {
		t.Fatalf("role = %q, want member", identity.Role)
	}

	if _, err := svc.Ensure(ctx, regular); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if repo.create != 1 {
		t.Fatalf("identities created = %d, want 1", repo.create)
	}

	super := &entity.User{ID: 2, Username: "root", IsSuperuser: true}
	identity, err = svc.Ensure(ctx, super)
	if err != nil {
		t.Fatalf("Ensure superuser: %v", err)
	}
	if identity.Role != entity.RoleAdmin {
		t.Fatalf("superuser role = %q, want admin", identity.Role)
	}
	if repo.saves != 0 {
		t.Fatalf("saves = %d, fresh superuser identity needs no elevation", repo.saves)
	}
}

func TestEnsureElevatesDemotedSuperuserExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := newFakeIdentityRepo()
	repo.byUser[5] = &entity.Identity{ID: 1, UserID: 5, Role: entity.RoleMember, Phone: "0812"}
	svc := NewIdentityService(repo, nil)

	super := &entity.User{ID: 5, Username: "owner", IsSuperuser: true}
	for i := 0; i < 3; i++ {
		identity, err := svc.Ensure(ctx, super)
		if err != nil {
			t.Fatalf("Ensure #%d: %v", i, err)
		}
		if identity.Role != entity.RoleAdmin {
			t.Fatalf("Ensure #%d role = %q, want admin", i, identity.Role)
		}
	}

	if repo.saves != 1 {
		t.Fatalf("saves = %d, want exactly one elevation", repo.saves)
	}
	if stored := repo.byUser[5]; stored.Role != entity.RoleAdmin || stored.Phone != "0812" {
		t.Fatalf("stored identity = %+v", stored)
	}
}

func TestEnsureRejectsAnonymous(t *testing.T) {
	svc := NewIdentityService(newFakeIdentityRepo(), nil)
	if _, err := svc.Ensure(context.Background(), nil); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Ensure(nil) = %v, want ErrUnauthorized", err)
	}
}

func TestPrincipalCarriesLinkedMember(t *testing.T) {
	ctx := context.Background()
	repo := newFakeIdentityRepo()
	repo.byUser[3] = &entity.Identity{ID: 1, UserID: 3, Role: entity.RoleStaff}
	svc := NewIdentityService(repo, fakeLinker{1: 7})

	p, err := svc.Principal(ctx, &entity.User{ID: 1, Username: "tenant"})
	if err != nil {
		t.Fatalf("Principal: %v", err)
	}
	if p.Role != entity.RoleMember || p.MemberID == nil || *p.MemberID != 7 {
		t.Fatalf("principal = %+v, want member linked to 7", p)
	}

	p, err = svc.Principal(ctx, &entity.User{ID: 3, Username: "warden"})
	if err != nil {
		t.Fatalf("Principal: %v", err)
	}
	if p.Role != entity.RoleStaff || p.MemberID != nil {
		t.Fatalf("principal = %+v, want unlinked staff", p)
	}
}

func TestBackfill(t *testing.T) {
	ctx := context.Background()
	repo := newFakeIdentityRepo()
	repo.users = []entity.User{
		{ID: 1, Username: "admin", IsSuperuser: true},
		{ID: 2, Username: "tenant"},
		{ID: 3, Username: "warden"},
	}
	repo.byUser[3] = &entity.Identity{ID: 99, UserID: 3, Role: entity.RoleStaff}
	svc := NewIdentityService(repo, nil)

	n, err := svc.Backfill(ctx)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if n != 2 {
		t.Fatalf("Backfill created %d, want 2", n)
	}
	if repo.byUser[1].Role != entity.RoleAdmin || repo.byUser[2].Role != entity.RoleMember {
		t.Fatalf("roles = %q/%q", repo.byUser[1].Role, repo.byUser[2].Role)
	}
	if repo.byUser[3].Role != entity.RoleStaff {
		t.Fatal("existing identity must be left alone")
	}

	if n, _ := svc.Backfill(ctx); n != 0 {
		t.Fatalf("second Backfill created %d, want 0", n)
	}
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	repo := newFakeIdentityRepo()
	repo.byUser[2] = &entity.Identity{ID: 1, UserID: 2, Role: entity.RoleMember}
	svc := NewIdentityService(repo, nil)

	phone := "0812-555"
	identity, err := svc.SetRole(ctx, 2, entity.RoleStaff, &phone)
	if err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if identity.Role != entity.RoleStaff || identity.Phone != phone {
		t.Fatalf("identity = %+v", identity)
	}

	if _, err := svc.SetRole(ctx, 2, entity.Role("owner"), nil); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("invalid role error = %v", err)
	}
	if _, err := svc.SetRole(ctx, 42, entity.RoleStaff, nil); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing identity error = %v", err)
	}
}
