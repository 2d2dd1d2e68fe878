package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/boardinghouse/internal/access"
	"anoa.com/boardinghouse/internal/entity"
	notification "anoa.com/boardinghouse/internal/modules/notification/service"
	"anoa.com/boardinghouse/internal/modules/payment/dto"
	"anoa.com/boardinghouse/internal/modules/payment/repository"
	"anoa.com/boardinghouse/internal/testutil"
	"anoa.com/boardinghouse/pkg/apperror"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      PaymentService
	rec      *notification.Recorder
	staff    access.Principal
	tenant   access.Principal
	mine     *entity.Member
	other    *entity.Member
	myPay    *entity.Payment
	theirPay *entity.Payment
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{db: db, rec: &notification.Recorder{}}
	f.svc = NewPaymentService(repository.NewPaymentRepository(db), f.rec)

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
	f.myPay = &entity.Payment{MemberID: f.mine.ID, Amount: decimal.NewFromInt(100), PaymentDate: day}
	f.theirPay = &entity.Payment{MemberID: f.other.ID, Amount: decimal.NewFromInt(200), PaymentDate: day}
	for _, v := range []any{f.myPay, f.theirPay} {
		if err := db.Omit("Member").Create(v).Error; err != nil {
			t.Fatal(err)
		}
	}

	memberID := f.mine.ID
	f.staff = access.Principal{UserID: 99, Role: entity.RoleStaff}
	f.tenant = access.Principal{UserID: user.ID, Role: entity.RoleMember, MemberID: &memberID}
	return f
}

func TestListPaymentsIsScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	all, err := f.svc.ListPayments(ctx, f.staff)
	if err != nil || len(all) != 2 {
		t.Fatalf("staff list = %d, %v; want 2", len(all), err)
	}

	own, err := f.svc.ListPayments(ctx, f.tenant)
	if err != nil || len(own) != 1 || own[0].ID != f.myPay.ID {
		t.Fatalf("member list = %+v, %v", own, err)
	}
	if own[0].MemberName != "Ana" || own[0].MemberRoom != "A1" || own[0].Amount != "100.00" {
		t.Fatalf("member decoration = %+v", own[0])
	}

	unlinked := access.Principal{UserID: 50, Role: entity.RoleMember}
	none, err := f.svc.ListPayments(ctx, unlinked)
	if err != nil || len(none) != 0 {
		t.Fatalf("unlinked member list = %+v, %v; want empty", none, err)
	}
}

func TestGetPaymentGuards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.GetPayment(ctx, f.tenant, f.myPay.ID); err != nil {
		t.Fatalf("own payment: %v", err)
	}
	if _, err := f.svc.GetPayment(ctx, f.tenant, f.theirPay.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("other payment err = %v, want forbidden", err)
	}
	if _, err := f.svc.GetPayment(ctx, f.tenant, 999); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing payment err = %v, want not found", err)
	}
	if _, err := f.svc.GetPayment(ctx, f.staff, f.theirPay.ID); err != nil {
		t.Fatalf("staff get: %v", err)
	}
}

func TestCreatePaymentNotifies(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	amount := decimal.RequireFromString("150")

	resp, err := f.svc.CreatePayment(ctx, f.staff, dto.PaymentRequest{Member: f.other.ID, Amount: &amount, CollectedBy: "Desk"})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if resp.Status != "Paid" || resp.Amount != "150.00" || resp.MemberEmail != "budi@example.com" {
		t.Fatalf("resp = %+v", resp)
	}

	got := f.rec.Of(notification.KindPayment)
	if len(got) != 1 || got[0].Action != notification.ActionCreated {
		t.Fatalf("notifications = %+v", got)
	}
	if data := got[0].Data.(dto.PaymentResponse); data.ID != resp.ID || data.Amount != "150.00" {
		t.Fatalf("envelope data = %+v", data)
	}
}

func TestMemberCannotWriteForOthers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(10)

	if _, err := f.svc.CreatePayment(ctx, f.tenant, dto.PaymentRequest{Member: f.other.ID, Amount: &amount}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("create for other err = %v, want forbidden", err)
	}
	if _, err := f.svc.CreatePayment(ctx, f.tenant, dto.PaymentRequest{Member: f.mine.ID, Amount: &amount}); err != nil {
		t.Fatalf("create for self: %v", err)
	}

	moveTo := f.other.ID
	if _, err := f.svc.UpdatePayment(ctx, f.tenant, f.myPay.ID, dto.PatchPaymentRequest{Member: &moveTo}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("move to other member err = %v, want forbidden", err)
	}

	if err := f.svc.DeletePayment(ctx, f.tenant, f.theirPay.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("delete other err = %v, want forbidden", err)
	}

	var count int64
	f.db.Model(&entity.Payment{}).Count(&count)
	if count != 3 {
		t.Fatalf("payments = %d, want 3", count)
	}
	if len(f.rec.Of(notification.KindPayment)) != 1 {
		t.Fatalf("rejected writes must not notify: %+v", f.rec.Envelopes)
	}
}

func TestUpdateAndDeletePayment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	status := "Unpaid"
	resp, err := f.svc.UpdatePayment(ctx, f.tenant, f.myPay.ID, dto.PatchPaymentRequest{Status: &status})
	if err != nil || resp.Status != "Unpaid" || resp.Amount != "100.00" {
		t.Fatalf("UpdatePayment = %+v, %v", resp, err)
	}

	bad := decimal.RequireFromString("1.234")
	_, err = f.svc.UpdatePayment(ctx, f.staff, f.myPay.ID, dto.PatchPaymentRequest{Amount: &bad})
	var ve *apperror.ValidationError
	if !errors.As(err, &ve) || ve.Fields["amount"] == "" {
		t.Fatalf("bad amount err = %v", err)
	}

	if err := f.svc.DeletePayment(ctx, f.tenant, f.myPay.ID); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	got := f.rec.Of(notification.KindPayment)
	last := got[len(got)-1]
	if last.Action != notification.ActionDeleted || last.Data != (notification.DeletedPayload{ID: f.myPay.ID}) {
		t.Fatalf("delete envelope = %+v", last)
	}
}
