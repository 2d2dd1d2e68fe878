package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	"anoa.com/boardinghouse/internal/modules/bill/dto"
	"anoa.com/boardinghouse/internal/modules/bill/repository"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/internal/testutil"
	"anoa.com/boardinghouse/pkg/apperror"
	"github.com/shopspring/decimal"
)

type fixture struct {
	svc    BillService
	rec    *notification.Recorder
	staff  access.Principal
	tenant access.Principal
	mine   *entity.Member
	other  *entity.Member
}

// setup links user "ana" to a member owning bill 12; bill 13 belongs to
// someone else.
func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{rec: &notification.Recorder{}}
	f.svc = NewBillService(repository.NewBillRepository(db), f.rec)

	user := &entity.User{Username: "ana", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.mine = &entity.Member{Name: "Ana", Email: "ana@example.com", RoomNumber: "A1", UserID: &user.ID, JoinedDate: day}
	f.other = &entity.Member{Name: "Budi", Email: "budi@example.com", RoomNumber: "B2", JoinedDate: day}
	for _, v := range []any{f.mine, f.other} {
		if err := db.Create(v).Error; err != nil {
			t.Fatal(err)
		}
	}

	bills := []*entity.Bill{
		{ID: 12, MemberID: f.mine.ID, Month: "March", Balance: decimal.NewFromInt(50), PaidStatus: entity.PaymentUnpaid},
		{ID: 13, MemberID: f.other.ID, Month: "March", Balance: decimal.NewFromInt(75), PaidStatus: entity.PaymentUnpaid},
	}
	for _, b := range bills {
		if err := db.Omit("Member").Create(b).Error; err != nil {
			t.Fatal(err)
		}
	}

	memberID := f.mine.ID
	f.staff = access.Principal{UserID: 99, Role: entity.RoleStaff}
	f.tenant = access.Principal{UserID: user.ID, Role: entity.RoleMember, MemberID: &memberID}
	return f
}

func TestGetBillOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	own, err := f.svc.GetBill(ctx, f.tenant, 12)
	if err != nil {
		t.Fatalf("bill 12: %v", err)
	}
	if own.Balance != "50.00" || own.MemberName != "Ana" {
		t.Fatalf("bill 12 = %+v", own)
	}

	if _, err := f.svc.GetBill(ctx, f.tenant, 13); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("bill 13 err = %v, want forbidden", err)
	}
	if _, err := f.svc.GetBill(ctx, f.staff, 13); err != nil {
		t.Fatalf("staff bill 13: %v", err)
	}

	list, err := f.svc.ListBills(ctx, f.tenant)
	if err != nil || len(list) != 1 || list[0].ID != 12 {
		t.Fatalf("member list = %+v, %v", list, err)
	}
}

func TestCreateBillDefaults(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	water := decimal.RequireFromString("12.5")

	resp, err := f.svc.CreateBill(ctx, f.tenant, dto.BillRequest{Member: f.mine.ID, Month: "April", WaterAmount: &water})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if resp.PaidStatus != "Unpaid" || resp.WaterAmount != "12.50" || resp.ElectricityAmount != "0.00" || resp.Balance != "0.00" {
		t.Fatalf("resp = %+v", resp)
	}
	if got := f.rec.Of(notification.KindBill); len(got) != 1 || got[0].Action != notification.ActionCreated {
		t.Fatalf("notifications = %+v", got)
	}

	if _, err := f.svc.CreateBill(ctx, f.tenant, dto.BillRequest{Member: f.other.ID, Month: "April"}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("bill for another member err = %v, want forbidden", err)
	}

	_, err = f.svc.CreateBill(ctx, f.staff, dto.BillRequest{Member: 404, Month: "April"})
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) || ve.Fields["member"] == "" {
		t.Fatalf("unknown member err = %v, want field error", err)
	}
}

func TestUpdateAndDeleteBill(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	paid := "Paid"
	resp, err := f.svc.UpdateBill(ctx, f.tenant, 12, dto.PatchBillRequest{PaidStatus: &paid})
	if err != nil || resp.PaidStatus != "Paid" || resp.Balance != "50.00" {
		t.Fatalf("UpdateBill = %+v, %v", resp, err)
	}

	negative := decimal.NewFromInt(-3)
	_, err = f.svc.UpdateBill(ctx, f.staff, 13, dto.PatchBillRequest{Balance: &negative})
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) || ve.Fields["balance"] == "" {
		t.Fatalf("negative balance err = %v", err)
	}

	if err := f.svc.DeleteBill(ctx, f.tenant, 13); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("delete bill 13 err = %v, want forbidden", err)
	}
	if err := f.svc.DeleteBill(ctx, f.tenant, 12); err != nil {
		t.Fatalf("delete bill 12: %v", err)
	}
	if err := f.svc.DeleteBill(ctx, f.tenant, 12); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second delete err = %v, want not found", err)
	}

	got := f.rec.Of(notification.KindBill)
	last := got[len(got)-1]
	if last.Action != notification.ActionDeleted || last.Data.(notification.DeletedPayload).ID != 12 {
		t.Fatalf("last envelope = %+v", last)
	}
}
