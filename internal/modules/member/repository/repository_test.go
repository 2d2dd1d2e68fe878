package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/internal/testutil"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func seedMember(t *testing.T, db *gorm.DB, name, email string) *entity.Member {
	t.Helper()
	m := &entity.Member{
		Name:       name,
		Email:      email,
		RoomNumber: "A1",
		Status:     entity.MemberActive,
		JoinedDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m
}

func TestDeleteCascadesAndUnassigns(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	target := seedMember(t, db, "Ana", "ana@example.com")
	other := seedMember(t, db, "Budi", "budi@example.com")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mustCreate := func(v any) {
		t.Helper()
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("create %T: %v", v, err)
		}
	}
	p1 := &entity.Payment{MemberID: target.ID, Amount: decimal.NewFromInt(100), PaymentDate: day}
	p2 := &entity.Payment{MemberID: other.ID, Amount: decimal.NewFromInt(100), PaymentDate: day}
	b1 := &entity.Bill{MemberID: target.ID, Month: "March"}
	r1 := &entity.Repair{MemberID: target.ID, ItemName: "Fan", RepairDate: day, Cost: decimal.NewFromInt(20)}
	s1 := &entity.Schedule{TaskType: entity.TaskWater, AssignedToID: &target.ID, Date: day, Time: "07:00:00"}
	s2 := &entity.Schedule{TaskType: entity.TaskFood, AssignedToID: &other.ID, Date: day, Time: "08:00:00"}
	for _, v := range []any{p1, p2, b1, r1, s1, s2} {
		mustCreate(v)
	}

	result, err := repo.Delete(ctx, target.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(result.PaymentIDs) != 1 || result.PaymentIDs[0] != p1.ID {
		t.Errorf("PaymentIDs = %v, want [%d]", result.PaymentIDs, p1.ID)
	}
	if len(result.BillIDs) != 1 || len(result.RepairIDs) != 1 {
		t.Errorf("BillIDs = %v, RepairIDs = %v", result.BillIDs, result.RepairIDs)
	}
	if len(result.Schedules) != 1 || result.Schedules[0].ID != s1.ID || result.Schedules[0].AssignedToID != nil {
		t.Errorf("Schedules = %+v", result.Schedules)
	}

	var count int64
	db.Model(&entity.Payment{}).Count(&count)
	if count != 1 {
		t.Errorf("payments left = %d, want 1", count)
	}
	db.Model(&entity.Bill{}).Count(&count)
	if count != 0 {
		t.Errorf("bills left = %d, want 0", count)
	}
	db.Model(&entity.Schedule{}).Count(&count)
	if count != 2 {
		t.Errorf("schedules left = %d, want 2", count)
	}

	var kept entity.Schedule
	if err := db.First(&kept, s1.ID).Error; err != nil {
		t.Fatalf("reload schedule: %v", err)
	}
	if kept.AssignedToID != nil {
		t.Errorf("schedule still assigned to %d", *kept.AssignedToID)
	}

	if _, err := repo.FindByID(ctx, target.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("FindByID after delete err = %v", err)
	}
}

func TestDeleteMissingMember(t *testing.T) {
	repo := NewMemberRepository(testutil.NewDB(t))
	if _, err := repo.Delete(context.Background(), 99); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}

func TestLinkedMemberID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	user := &entity.User{Username: "ana", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	id, err := repo.LinkedMemberID(ctx, user.ID)
	if err != nil || id != nil {
		t.Fatalf("unlinked user = %v, %v; want nil", id, err)
	}

	m := seedMember(t, db, "Ana", "ana@example.com")
	m.UserID = &user.ID
	if err := repo.Update(ctx, m); err != nil {
		t.Fatalf("Update: %v", err)
	}

	id, err = repo.LinkedMemberID(ctx, user.ID)
	if err != nil || id == nil || *id != m.ID {
		t.Fatalf("LinkedMemberID = %v, %v; want %d", id, err, m.ID)
	}

	linked, err := repo.UserLinked(ctx, user.ID, m.ID)
	if err != nil || linked {
		t.Fatalf("UserLinked excluding owner = %v, %v", linked, err)
	}
	linked, _ = repo.UserLinked(ctx, user.ID, 0)
	if !linked {
		t.Fatal("UserLinked should see the existing link")
	}
}

func TestSearchAndFindByIDs(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	a := seedMember(t, db, "Ana Lestari", "ana@example.com")
	b := seedMember(t, db, "Budi", "budi@example.com")

	found, err := repo.Search(ctx, "LESTARI")
	if err != nil || len(found) != 1 || found[0].ID != a.ID {
		t.Fatalf("Search = %+v, %v", found, err)
	}

	ordered, err := repo.FindByIDs(ctx, []uint{b.ID, 999, a.ID})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(ordered) != 2 || ordered[0].ID != b.ID || ordered[1].ID != a.ID {
		t.Fatalf("FindByIDs order = %+v", ordered)
	}

	taken, _ := repo.EmailTaken(ctx, "ANA@example.com", 0)
	if !taken {
		t.Fatal("EmailTaken should be case-insensitive")
	}
	taken, _ = repo.EmailTaken(ctx, "ana@example.com", a.ID)
	if taken {
		t.Fatal("EmailTaken should ignore the member itself")
	}
}
